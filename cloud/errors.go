package cloud

import (
	"fmt"

	gocontext "context"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/s3"

	workerctx "github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/metrics"
)

type errorKind int

const (
	kindNotFound errorKind = iota
	kindTransient
	kindPermanent
)

// Error is a provider failure translated into the taxonomy the workflows
// branch on: not-found, transient (retryable), or permanent.
type Error struct {
	kind     errorKind
	Op       string
	Resource string
	Code     string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Resource, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, e.Message)
}

// Cause returns the underlying provider error, for errors.Cause chains.
func (e *Error) Cause() error { return e.cause }

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	cerr, ok := err.(*Error)
	return ok && cerr.kind == kindNotFound
}

// IsTransient reports whether err is a retryable provider failure, such as
// throttling or a network interruption.
func IsTransient(err error) bool {
	cerr, ok := err.(*Error)
	return ok && cerr.kind == kindTransient
}

// IsPermanent reports whether err is a non-retryable provider failure, such
// as invalid input or a permission problem.
func IsPermanent(err error) bool {
	cerr, ok := err.(*Error)
	return ok && cerr.kind == kindPermanent
}

var notFoundCodes = map[string]struct{}{
	rds.ErrCodeDBParameterGroupNotFoundFault: {},
	rds.ErrCodeDBInstanceNotFoundFault:       {},
	rds.ErrCodeDBSnapshotNotFoundFault:       {},
	"InvalidInstanceID.NotFound":             {},
	"InvalidKeyPair.NotFound":                {},
	s3.ErrCodeNoSuchBucket:                   {},
}

var transientCodes = map[string]struct{}{
	"Throttling":              {},
	"ThrottlingException":     {},
	"RequestLimitExceeded":    {},
	"RequestThrottled":        {},
	"ServiceUnavailable":      {},
	"InternalError":           {},
	"InternalFailure":         {},
	"RequestTimeout":          {},
	"RequestTimeoutException": {},
}

// translate maps a raw provider error onto the taxonomy. AWS errors are
// classified by code; anything that is not an awserr.Error is assumed to be
// a network-level failure and treated as transient.
func translate(op, resource string, err error) error {
	if err == nil {
		return nil
	}

	aerr, ok := err.(awserr.Error)
	if !ok {
		return &Error{
			kind:     kindTransient,
			Op:       op,
			Resource: resource,
			Message:  err.Error(),
			cause:    err,
		}
	}

	kind := kindPermanent
	if _, ok := notFoundCodes[aerr.Code()]; ok {
		kind = kindNotFound
	} else if _, ok := transientCodes[aerr.Code()]; ok {
		kind = kindTransient
	} else if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() >= 500 {
		kind = kindTransient
	}

	return &Error{
		kind:     kind,
		Op:       op,
		Resource: resource,
		Code:     aerr.Code(),
		Message:  aerr.Message(),
		cause:    err,
	}
}

// fail translates err and logs it with the operation and resource id before
// handing it back to the caller. Not-found answers are logged at debug
// level only, since "does this exist yet" is a routine question here.
func fail(ctx gocontext.Context, self, op, resource string, err error) error {
	terr := translate(op, resource, err)
	if terr == nil {
		return nil
	}

	logger := workerctx.LoggerFromContext(ctx).WithField("self", self).
		WithField("op", op).WithField("resource", resource)

	if IsNotFound(terr) {
		logger.Debug("resource not found")
		return terr
	}

	metrics.Mark(fmt.Sprintf("mlops.cloud.%s.error", op))
	logger.WithField("err", terr).Error("provider call failed")
	return terr
}
