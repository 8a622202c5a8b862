package cloud

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTranslateClassifiesNotFoundCodes(t *testing.T) {
	codes := []string{
		rds.ErrCodeDBParameterGroupNotFoundFault,
		rds.ErrCodeDBInstanceNotFoundFault,
		rds.ErrCodeDBSnapshotNotFoundFault,
		"InvalidInstanceID.NotFound",
		"InvalidKeyPair.NotFound",
		s3.ErrCodeNoSuchBucket,
	}

	for _, code := range codes {
		err := translate("describe_thing", "thing-1", awserr.New(code, "no such thing", nil))
		assert.True(t, IsNotFound(err), code)
		assert.False(t, IsTransient(err), code)
		assert.False(t, IsPermanent(err), code)
	}
}

func TestTranslateClassifiesThrottlingAsTransient(t *testing.T) {
	for _, code := range []string{"Throttling", "ThrottlingException", "RequestLimitExceeded", "ServiceUnavailable"} {
		err := translate("create_thing", "thing-1", awserr.New(code, "slow down", nil))
		assert.True(t, IsTransient(err), code)
	}
}

func TestTranslateClassifies5xxAsTransient(t *testing.T) {
	raw := awserr.NewRequestFailure(awserr.New("UnknownError", "oops", nil), 503, "req-1")
	err := translate("create_thing", "thing-1", raw)
	assert.True(t, IsTransient(err))
}

func TestTranslateClassifiesNonAWSErrorsAsTransient(t *testing.T) {
	err := translate("describe_thing", "thing-1", errors.New("connection reset by peer"))
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestTranslateDefaultsToPermanent(t *testing.T) {
	err := translate("create_thing", "thing-1", awserr.New("AccessDenied", "not yours", nil))
	assert.True(t, IsPermanent(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsTransient(err))
}

func TestTranslateNil(t *testing.T) {
	assert.NoError(t, translate("describe_thing", "thing-1", nil))
}

func TestErrorKeepsOpResourceAndCode(t *testing.T) {
	raw := awserr.New("AccessDenied", "not yours", nil)
	err := translate("create_bucket", "fo-mlops-001", raw)

	cerr := err.(*Error)
	assert.Equal(t, "create_bucket", cerr.Op)
	assert.Equal(t, "fo-mlops-001", cerr.Resource)
	assert.Equal(t, "AccessDenied", cerr.Code)
	assert.Equal(t, raw, errors.Cause(cerr))
	assert.Contains(t, cerr.Error(), "create_bucket fo-mlops-001: AccessDenied")
}

func TestPredicatesIgnoreForeignErrors(t *testing.T) {
	err := errors.New("not a cloud error")
	assert.False(t, IsNotFound(err))
	assert.False(t, IsTransient(err))
	assert.False(t, IsPermanent(err))
}
