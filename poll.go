package mlops

import (
	"fmt"
	"time"

	gocontext "context"

	"github.com/cenk/backoff"

	"github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/metrics"
)

// ProvisioningTimeoutError is returned when a resource has not reached its
// target state within the poll budget.
type ProvisioningTimeoutError struct {
	Resource string
	Attempts uint64
	Interval time.Duration
}

func (e *ProvisioningTimeoutError) Error() string {
	return fmt.Sprintf("%s not ready after %d polls %v apart", e.Resource, e.Attempts, e.Interval)
}

type notReadyError struct {
	resource string
}

func (e *notReadyError) Error() string {
	return fmt.Sprintf("%s not ready yet", e.resource)
}

// A Poller repeatedly describes a resource until a probe reports it done.
// The interval is constant: AWS provisioning latency is measured in
// minutes, so a backoff curve would only delay the first useful answer.
type Poller struct {
	Interval    time.Duration
	MaxAttempts uint64
}

// NewPoller creates a Poller with the given constant interval and attempt
// budget.
func NewPoller(interval time.Duration, maxAttempts uint64) *Poller {
	return &Poller{Interval: interval, MaxAttempts: maxAttempts}
}

// Poll invokes probe until it reports done, sleeping the configured
// interval between attempts. A probe error ends the wait immediately. When
// the attempt budget runs out a ProvisioningTimeoutError is returned, and
// cancelling the context bounds the total wait from outside.
func (p *Poller) Poll(ctx gocontext.Context, resource string, probe func(gocontext.Context) (bool, error)) error {
	logger := context.LoggerFromContext(ctx).WithField("self", "poller")
	started := time.Now()

	operation := func() error {
		done, err := probe(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if done {
			return nil
		}

		logger.WithField("resource", resource).Debug("still waiting")
		return &notReadyError{resource: resource}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), p.MaxAttempts),
		ctx)

	err := backoff.Retry(operation, b)
	metrics.TimeSince("mlops.poll.wait", started)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if _, ok := err.(*notReadyError); ok {
		return &ProvisioningTimeoutError{
			Resource: resource,
			Attempts: p.MaxAttempts + 1,
			Interval: p.Interval,
		}
	}

	return err
}
