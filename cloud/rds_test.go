package cloud

import (
	"testing"

	gocontext "context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/rds/rdsiface"
	"github.com/stretchr/testify/assert"
)

type stubRDSAPI struct {
	rdsiface.RDSAPI

	describeGroups    func(*rds.DescribeDBParameterGroupsInput) (*rds.DescribeDBParameterGroupsOutput, error)
	describeInstances func(*rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error)
	parameterPages    []*rds.DescribeDBParametersOutput
}

func (s *stubRDSAPI) DescribeDBParameterGroupsWithContext(ctx aws.Context, input *rds.DescribeDBParameterGroupsInput, opts ...request.Option) (*rds.DescribeDBParameterGroupsOutput, error) {
	return s.describeGroups(input)
}

func (s *stubRDSAPI) DescribeDBInstancesWithContext(ctx aws.Context, input *rds.DescribeDBInstancesInput, opts ...request.Option) (*rds.DescribeDBInstancesOutput, error) {
	return s.describeInstances(input)
}

func (s *stubRDSAPI) DescribeDBParametersPagesWithContext(ctx aws.Context, input *rds.DescribeDBParametersInput, fn func(*rds.DescribeDBParametersOutput, bool) bool, opts ...request.Option) error {
	for i, page := range s.parameterPages {
		if !fn(page, i == len(s.parameterPages)-1) {
			break
		}
	}
	return nil
}

func TestRDSParameterGroupReportsAbsentOnNotFound(t *testing.T) {
	client := &RDS{rds: &stubRDSAPI{
		describeGroups: func(*rds.DescribeDBParameterGroupsInput) (*rds.DescribeDBParameterGroupsOutput, error) {
			return nil, awserr.New(rds.ErrCodeDBParameterGroupNotFoundFault, "no such group", nil)
		},
	}}

	group, err := client.ParameterGroup(gocontext.TODO(), "mlops-params-group")
	assert.NoError(t, err)
	assert.Nil(t, group)
}

func TestRDSParameterGroupMapsFields(t *testing.T) {
	client := &RDS{rds: &stubRDSAPI{
		describeGroups: func(input *rds.DescribeDBParameterGroupsInput) (*rds.DescribeDBParameterGroupsOutput, error) {
			assert.Equal(t, "mlops-params-group", aws.StringValue(input.DBParameterGroupName))
			return &rds.DescribeDBParameterGroupsOutput{
				DBParameterGroups: []*rds.DBParameterGroup{
					{
						DBParameterGroupName:   aws.String("mlops-params-group"),
						DBParameterGroupFamily: aws.String("postgres14"),
						Description:            aws.String("tracking database settings"),
					},
				},
			}, nil
		},
	}}

	group, err := client.ParameterGroup(gocontext.TODO(), "mlops-params-group")
	assert.NoError(t, err)
	assert.Equal(t, "mlops-params-group", group.Name)
	assert.Equal(t, "postgres14", group.Family)
}

func TestRDSParameterGroupSurfacesPermanentErrors(t *testing.T) {
	client := &RDS{rds: &stubRDSAPI{
		describeGroups: func(*rds.DescribeDBParameterGroupsInput) (*rds.DescribeDBParameterGroupsOutput, error) {
			return nil, awserr.New("AccessDenied", "not yours", nil)
		},
	}}

	group, err := client.ParameterGroup(gocontext.TODO(), "mlops-params-group")
	assert.Nil(t, group)
	assert.True(t, IsPermanent(err))
}

func TestRDSParametersConcatenatesPagesAndFiltersByPrefix(t *testing.T) {
	client := &RDS{rds: &stubRDSAPI{
		parameterPages: []*rds.DescribeDBParametersOutput{
			{
				Parameters: []*rds.Parameter{
					{ParameterName: aws.String("auto_increment_increment"), DataType: aws.String("integer"), IsModifiable: aws.Bool(true), AllowedValues: aws.String("1-65535")},
					{ParameterName: aws.String("autovacuum"), DataType: aws.String("boolean")},
				},
			},
			{
				Parameters: []*rds.Parameter{
					{ParameterName: aws.String("auto_increment_offset"), DataType: aws.String("integer"), IsModifiable: aws.Bool(true), AllowedValues: aws.String("1-65535")},
				},
			},
		},
	}}

	params, err := client.Parameters(gocontext.TODO(), "mlops-params-group", "auto_increment", "")
	assert.NoError(t, err)

	names := []string{}
	for _, p := range params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"auto_increment_increment", "auto_increment_offset"}, names)
	assert.True(t, params[0].Modifiable)
	assert.Equal(t, "1-65535", params[0].AllowedValues)
}

func TestRDSDBInstanceReportsAbsentOnNotFound(t *testing.T) {
	client := &RDS{rds: &stubRDSAPI{
		describeInstances: func(*rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error) {
			return nil, awserr.New(rds.ErrCodeDBInstanceNotFoundFault, "no such instance", nil)
		},
	}}

	inst, err := client.DBInstance(gocontext.TODO(), "mlflow-backend-db")
	assert.NoError(t, err)
	assert.Nil(t, inst)
}

func TestRDSDBInstanceMapsEndpointAndParameterGroup(t *testing.T) {
	client := &RDS{rds: &stubRDSAPI{
		describeInstances: func(*rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error) {
			return &rds.DescribeDBInstancesOutput{
				DBInstances: []*rds.DBInstance{
					{
						DBInstanceIdentifier: aws.String("mlflow-backend-db"),
						DBName:               aws.String("mlflow_db"),
						DBInstanceStatus:     aws.String("available"),
						Engine:               aws.String("postgres"),
						EngineVersion:        aws.String("14.2"),
						DBInstanceClass:      aws.String("db.t4g.micro"),
						MasterUsername:       aws.String("mlops_admin"),
						AllocatedStorage:     aws.Int64(5),
						DBParameterGroups: []*rds.DBParameterGroupStatus{
							{DBParameterGroupName: aws.String("mlops-params-group")},
						},
						Endpoint: &rds.Endpoint{
							Address: aws.String("mlflow-backend-db.abc123.us-east-1.rds.amazonaws.com"),
							Port:    aws.Int64(5432),
						},
					},
				},
			}, nil
		},
	}}

	inst, err := client.DBInstance(gocontext.TODO(), "mlflow-backend-db")
	assert.NoError(t, err)
	assert.Equal(t, StatusAvailable, inst.Status)
	assert.Equal(t, "mlops-params-group", inst.ParameterGroup)
	assert.Equal(t, "mlflow-backend-db.abc123.us-east-1.rds.amazonaws.com", inst.Endpoint)
	assert.Equal(t, int64(5432), inst.Port)
}
