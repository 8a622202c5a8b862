package cloud

import (
	gocontext "context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
)

// EC2 implements ComputeClient against Amazon EC2.
type EC2 struct {
	ec2 ec2iface.EC2API
}

// NewEC2 creates an EC2 client from an AWS session.
func NewEC2(sess *session.Session) *EC2 {
	return &EC2{ec2: ec2.New(sess)}
}

func (c *EC2) CreateKeyPair(ctx gocontext.Context, name string) (*KeyPair, error) {
	resp, err := c.ec2.CreateKeyPairWithContext(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(name),
	})
	if err != nil {
		return nil, fail(ctx, "cloud/ec2", "create_key_pair", name, err)
	}

	return &KeyPair{
		Name:        aws.StringValue(resp.KeyName),
		Fingerprint: aws.StringValue(resp.KeyFingerprint),
		Material:    aws.StringValue(resp.KeyMaterial),
	}, nil
}

func (c *EC2) DeleteKeyPair(ctx gocontext.Context, name string) error {
	_, err := c.ec2.DeleteKeyPairWithContext(ctx, &ec2.DeleteKeyPairInput{
		KeyName: aws.String(name),
	})
	if err != nil {
		return fail(ctx, "cloud/ec2", "delete_key_pair", name, err)
	}
	return nil
}

func (c *EC2) RunInstance(ctx gocontext.Context, req *RunInstanceRequest) (*ComputeInstance, error) {
	runOpts := &ec2.RunInstancesInput{
		ImageId:      aws.String(req.ImageID),
		InstanceType: aws.String(req.InstanceType),
		MinCount:     aws.Int64(1),
		MaxCount:     aws.Int64(1),
		KeyName:      aws.String(req.KeyName),
	}

	if req.Name != "" {
		runOpts.TagSpecifications = []*ec2.TagSpecification{
			{
				ResourceType: aws.String("instance"),
				Tags: []*ec2.Tag{
					{
						Key:   aws.String("Name"),
						Value: aws.String(req.Name),
					},
				},
			},
		}
	}

	reservation, err := c.ec2.RunInstancesWithContext(ctx, runOpts)
	if err != nil {
		return nil, fail(ctx, "cloud/ec2", "run_instance", req.ImageID, err)
	}

	return computeInstanceFromAWS(reservation.Instances[0]), nil
}

// Instance describes a compute instance by id. A missing or terminated
// instance is reported as (nil, nil).
func (c *EC2) Instance(ctx gocontext.Context, id string) (*ComputeInstance, error) {
	resp, err := c.ec2.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(id)},
	})
	if err != nil {
		err = fail(ctx, "cloud/ec2", "describe_instance", id, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	for _, reservation := range resp.Reservations {
		for _, inst := range reservation.Instances {
			return computeInstanceFromAWS(inst), nil
		}
	}

	return nil, nil
}

// RunningInstances lists all instances in the running state, paging through
// every reservation.
func (c *EC2) RunningInstances(ctx gocontext.Context) ([]ComputeInstance, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []*string{aws.String("running")},
			},
		},
	}

	instances := []ComputeInstance{}
	err := c.ec2.DescribeInstancesPagesWithContext(ctx, input,
		func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
			for _, reservation := range page.Reservations {
				for _, inst := range reservation.Instances {
					instances = append(instances, *computeInstanceFromAWS(inst))
				}
			}
			return true
		})
	if err != nil {
		return nil, fail(ctx, "cloud/ec2", "describe_running_instances", "", err)
	}

	return instances, nil
}

func (c *EC2) StopInstance(ctx gocontext.Context, id string) error {
	_, err := c.ec2.StopInstancesWithContext(ctx, &ec2.StopInstancesInput{
		InstanceIds: []*string{aws.String(id)},
	})
	if err != nil {
		return fail(ctx, "cloud/ec2", "stop_instance", id, err)
	}
	return nil
}

func (c *EC2) TerminateInstance(ctx gocontext.Context, id string) error {
	_, err := c.ec2.TerminateInstancesWithContext(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []*string{aws.String(id)},
	})
	if err != nil {
		return fail(ctx, "cloud/ec2", "terminate_instance", id, err)
	}
	return nil
}

func computeInstanceFromAWS(i *ec2.Instance) *ComputeInstance {
	inst := &ComputeInstance{
		ID:         aws.StringValue(i.InstanceId),
		Type:       aws.StringValue(i.InstanceType),
		PublicIP:   aws.StringValue(i.PublicIpAddress),
		PrivateIP:  aws.StringValue(i.PrivateIpAddress),
		PublicDNS:  aws.StringValue(i.PublicDnsName),
		KeyName:    aws.StringValue(i.KeyName),
		LaunchedAt: aws.TimeValue(i.LaunchTime),
	}

	if i.State != nil {
		inst.State = aws.StringValue(i.State.Name)
	}

	return inst
}
