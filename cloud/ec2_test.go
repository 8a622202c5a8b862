package cloud

import (
	"testing"
	"time"

	gocontext "context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/stretchr/testify/assert"
)

type stubEC2API struct {
	ec2iface.EC2API

	runInstances      func(*ec2.RunInstancesInput) (*ec2.Reservation, error)
	describeInstances func(*ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	describePages     []*ec2.DescribeInstancesOutput
	lastDescribeInput *ec2.DescribeInstancesInput
}

func (s *stubEC2API) RunInstancesWithContext(ctx aws.Context, input *ec2.RunInstancesInput, opts ...request.Option) (*ec2.Reservation, error) {
	return s.runInstances(input)
}

func (s *stubEC2API) DescribeInstancesWithContext(ctx aws.Context, input *ec2.DescribeInstancesInput, opts ...request.Option) (*ec2.DescribeInstancesOutput, error) {
	return s.describeInstances(input)
}

func (s *stubEC2API) DescribeInstancesPagesWithContext(ctx aws.Context, input *ec2.DescribeInstancesInput, fn func(*ec2.DescribeInstancesOutput, bool) bool, opts ...request.Option) error {
	s.lastDescribeInput = input
	for i, page := range s.describePages {
		if !fn(page, i == len(s.describePages)-1) {
			break
		}
	}
	return nil
}

func TestEC2RunInstanceTagsTheInstanceName(t *testing.T) {
	var gotInput *ec2.RunInstancesInput

	client := &EC2{ec2: &stubEC2API{
		runInstances: func(input *ec2.RunInstancesInput) (*ec2.Reservation, error) {
			gotInput = input
			return &ec2.Reservation{
				Instances: []*ec2.Instance{
					{
						InstanceId:   aws.String("i-0123456789abcdef0"),
						InstanceType: aws.String("t2.micro"),
						State:        &ec2.InstanceState{Name: aws.String("pending")},
					},
				},
			}, nil
		},
	}}

	inst, err := client.RunInstance(gocontext.TODO(), &RunInstanceRequest{
		ImageID:      "ami-0fc5d935ebf8bc3bc",
		InstanceType: "t2.micro",
		KeyName:      "mlops-practice-ec2-key-pair",
		Name:         "mlops-tracking-server",
	})

	assert.NoError(t, err)
	assert.Equal(t, "i-0123456789abcdef0", inst.ID)
	assert.Equal(t, "pending", inst.State)

	assert.Equal(t, int64(1), aws.Int64Value(gotInput.MinCount))
	assert.Equal(t, int64(1), aws.Int64Value(gotInput.MaxCount))
	if assert.Len(t, gotInput.TagSpecifications, 1) {
		tag := gotInput.TagSpecifications[0].Tags[0]
		assert.Equal(t, "Name", aws.StringValue(tag.Key))
		assert.Equal(t, "mlops-tracking-server", aws.StringValue(tag.Value))
	}
}

func TestEC2InstanceReportsAbsentOnNotFound(t *testing.T) {
	client := &EC2{ec2: &stubEC2API{
		describeInstances: func(*ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
			return nil, awserr.New("InvalidInstanceID.NotFound", "no such instance", nil)
		},
	}}

	inst, err := client.Instance(gocontext.TODO(), "i-0123456789abcdef0")
	assert.NoError(t, err)
	assert.Nil(t, inst)
}

func TestEC2RunningInstancesFiltersAndConcatenatesPages(t *testing.T) {
	launched := time.Date(2023, 10, 31, 12, 0, 0, 0, time.UTC)

	stub := &stubEC2API{
		describePages: []*ec2.DescribeInstancesOutput{
			{
				Reservations: []*ec2.Reservation{
					{
						Instances: []*ec2.Instance{
							{
								InstanceId:       aws.String("i-aaa"),
								InstanceType:     aws.String("t2.micro"),
								PublicIpAddress:  aws.String("203.0.113.10"),
								PrivateIpAddress: aws.String("10.0.0.10"),
								LaunchTime:       aws.Time(launched),
								State:            &ec2.InstanceState{Name: aws.String("running")},
							},
						},
					},
				},
			},
			{
				Reservations: []*ec2.Reservation{
					{
						Instances: []*ec2.Instance{
							{
								InstanceId: aws.String("i-bbb"),
								State:      &ec2.InstanceState{Name: aws.String("running")},
							},
						},
					},
				},
			},
		},
	}
	client := &EC2{ec2: stub}

	instances, err := client.RunningInstances(gocontext.TODO())
	assert.NoError(t, err)

	if assert.Len(t, instances, 2) {
		assert.Equal(t, "i-aaa", instances[0].ID)
		assert.Equal(t, "203.0.113.10", instances[0].PublicIP)
		assert.Equal(t, launched, instances[0].LaunchedAt)
		assert.Equal(t, "i-bbb", instances[1].ID)
	}

	if assert.Len(t, stub.lastDescribeInput.Filters, 1) {
		filter := stub.lastDescribeInput.Filters[0]
		assert.Equal(t, "instance-state-name", aws.StringValue(filter.Name))
		assert.Equal(t, "running", aws.StringValue(filter.Values[0]))
	}
}
