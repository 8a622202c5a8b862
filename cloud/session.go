package cloud

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// NewSession builds the AWS session shared by the service clients. Static
// credentials are used when both keys are set, otherwise resolution falls
// through to the shared config/instance chain. The SDK's own retries are
// disabled: create/modify/delete calls are single-shot, and any retry
// policy belongs to the workflow driving them.
func NewSession(region, accessKeyID, secretAccessKey string) (*session.Session, error) {
	awsConfig := aws.NewConfig().
		WithRegion(region).
		WithMaxRetries(0).
		WithCredentialsChainVerboseErrors(true)

	if accessKeyID != "" && secretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentials(accessKeyID, secretAccessKey, "")
		if _, err := staticCreds.Get(); err != credentials.ErrStaticCredentialsEmpty {
			awsConfig = awsConfig.WithCredentials(staticCreds)
		}
	}

	return session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            *awsConfig,
	})
}
