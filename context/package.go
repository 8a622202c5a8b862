// Package context stores run metadata in a context.Context and derives
// logrus entries and sentry events from it.
package context

import (
	"os"
	"time"

	gocontext "context"

	"github.com/getsentry/raven-go"
	"github.com/sirupsen/logrus"

	"github.com/franklinobasy/mlops/metrics"
)

type contextKey int

const (
	uuidKey contextKey = iota
	componentKey
	resourceKey
)

// FromUUID returns a context with the given run uuid attached.
func FromUUID(ctx gocontext.Context, uuid string) gocontext.Context {
	return gocontext.WithValue(ctx, uuidKey, uuid)
}

// FromComponent returns a context with the given component name attached.
func FromComponent(ctx gocontext.Context, component string) gocontext.Context {
	return gocontext.WithValue(ctx, componentKey, component)
}

// FromResource returns a context with the given resource id attached.
func FromResource(ctx gocontext.Context, resource string) gocontext.Context {
	return gocontext.WithValue(ctx, resourceKey, resource)
}

// UUIDFromContext returns the run uuid stored in the context, if any.
func UUIDFromContext(ctx gocontext.Context) (string, bool) {
	uuid, ok := ctx.Value(uuidKey).(string)
	return uuid, ok
}

// ComponentFromContext returns the component name stored in the context, if
// any.
func ComponentFromContext(ctx gocontext.Context) (string, bool) {
	component, ok := ctx.Value(componentKey).(string)
	return component, ok
}

// ResourceFromContext returns the resource id stored in the context, if any.
func ResourceFromContext(ctx gocontext.Context) (string, bool) {
	resource, ok := ctx.Value(resourceKey).(string)
	return resource, ok
}

// LoggerFromContext returns a logrus entry with the pid and any metadata
// stored in the context.
func LoggerFromContext(ctx gocontext.Context) *logrus.Entry {
	entry := logrus.WithField("pid", os.Getpid())

	if uuid, ok := UUIDFromContext(ctx); ok {
		entry = entry.WithField("uuid", uuid)
	}

	if component, ok := ComponentFromContext(ctx); ok {
		entry = entry.WithField("component", component)
	}

	if resource, ok := ResourceFromContext(ctx); ok {
		entry = entry.WithField("resource", resource)
	}

	return entry
}

// CaptureError sends an error to sentry, tagged with the context metadata.
// It is a no-op when no sentry DSN is configured.
func CaptureError(ctx gocontext.Context, err error) {
	if raven.DefaultClient == nil {
		return
	}

	tags := map[string]string{}
	if uuid, ok := UUIDFromContext(ctx); ok {
		tags["uuid"] = uuid
	}
	if component, ok := ComponentFromContext(ctx); ok {
		tags["component"] = component
	}
	if resource, ok := ResourceFromContext(ctx); ok {
		tags["resource"] = resource
	}

	raven.CaptureError(err, tags)
}

// TimeSince records the time elapsed since the given timestamp as a gauge.
func TimeSince(ctx gocontext.Context, name string, since time.Time) {
	metrics.Gauge(name+".ms", time.Since(since).Nanoseconds()/int64(time.Millisecond))
}
