package cloud

import (
	gocontext "context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3 implements StorageClient against Amazon S3.
type S3 struct {
	s3     s3iface.S3API
	region string
}

// NewS3 creates an S3 client from an AWS session. region is used for the
// bucket location constraint.
func NewS3(sess *session.Session, region string) *S3 {
	return &S3{s3: s3.New(sess), region: region}
}

// CreateBucket creates a bucket in the client's region. us-east-1 is the S3
// default region and must not be sent as a location constraint.
func (c *S3) CreateBucket(ctx gocontext.Context, name string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}

	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(c.region),
		}
	}

	_, err := c.s3.CreateBucketWithContext(ctx, input)
	if err != nil {
		return fail(ctx, "cloud/s3", "create_bucket", name, err)
	}
	return nil
}
