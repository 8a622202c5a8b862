package mlops

import (
	"fmt"

	"github.com/getsentry/raven-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards logrus entries at the configured levels to sentry.
type SentryHook struct {
	levels []logrus.Level
}

// NewSentryHook sets the raven DSN and returns a hook for the given levels.
func NewSentryHook(dsn string, levels []logrus.Level) (*SentryHook, error) {
	if err := raven.SetDSN(dsn); err != nil {
		return nil, err
	}
	return &SentryHook{levels: levels}, nil
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	tags := map[string]string{}
	for key, value := range entry.Data {
		tags[key] = fmt.Sprintf("%v", value)
	}

	if err, ok := entry.Data["err"].(error); ok {
		raven.CaptureError(err, tags)
		return nil
	}

	raven.CaptureMessage(entry.Message, tags)
	return nil
}
