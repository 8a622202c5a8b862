package cloud

import (
	"strings"

	gocontext "context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/rds/rdsiface"
)

// RDS implements DatabaseClient against Amazon RDS.
type RDS struct {
	rds rdsiface.RDSAPI
}

// NewRDS creates an RDS client from an AWS session.
func NewRDS(sess *session.Session) *RDS {
	return &RDS{rds: rds.New(sess)}
}

// ParameterGroup describes a DB parameter group by name. A missing group is
// reported as (nil, nil).
func (c *RDS) ParameterGroup(ctx gocontext.Context, name string) (*ParameterGroup, error) {
	resp, err := c.rds.DescribeDBParameterGroupsWithContext(ctx, &rds.DescribeDBParameterGroupsInput{
		DBParameterGroupName: aws.String(name),
	})
	if err != nil {
		err = fail(ctx, "cloud/rds", "describe_parameter_group", name, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(resp.DBParameterGroups) == 0 {
		return nil, nil
	}

	return parameterGroupFromAWS(resp.DBParameterGroups[0]), nil
}

func (c *RDS) CreateParameterGroup(ctx gocontext.Context, name, family, description string) (*ParameterGroup, error) {
	resp, err := c.rds.CreateDBParameterGroupWithContext(ctx, &rds.CreateDBParameterGroupInput{
		DBParameterGroupName:   aws.String(name),
		DBParameterGroupFamily: aws.String(family),
		Description:            aws.String(description),
	})
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "create_parameter_group", name, err)
	}

	return parameterGroupFromAWS(resp.DBParameterGroup), nil
}

func (c *RDS) DeleteParameterGroup(ctx gocontext.Context, name string) error {
	_, err := c.rds.DeleteDBParameterGroupWithContext(ctx, &rds.DeleteDBParameterGroupInput{
		DBParameterGroupName: aws.String(name),
	})
	if err != nil {
		return fail(ctx, "cloud/rds", "delete_parameter_group", name, err)
	}
	return nil
}

// Parameters lists the parameters in a group, paging through the provider
// API so the caller always sees the full ordered sequence. namePrefix and
// source are optional filters.
func (c *RDS) Parameters(ctx gocontext.Context, group, namePrefix, source string) ([]Parameter, error) {
	input := &rds.DescribeDBParametersInput{
		DBParameterGroupName: aws.String(group),
	}
	if source != "" {
		input.Source = aws.String(source)
	}

	params := []Parameter{}
	err := c.rds.DescribeDBParametersPagesWithContext(ctx, input,
		func(page *rds.DescribeDBParametersOutput, lastPage bool) bool {
			for _, p := range page.Parameters {
				if !strings.HasPrefix(aws.StringValue(p.ParameterName), namePrefix) {
					continue
				}
				params = append(params, parameterFromAWS(p))
			}
			return true
		})
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "describe_parameters", group, err)
	}

	return params, nil
}

func (c *RDS) ModifyParameters(ctx gocontext.Context, group string, params []Parameter) error {
	awsParams := make([]*rds.Parameter, 0, len(params))
	for _, p := range params {
		awsParams = append(awsParams, &rds.Parameter{
			ParameterName:  aws.String(p.Name),
			ParameterValue: aws.String(p.Value),
			ApplyMethod:    aws.String("immediate"),
		})
	}

	_, err := c.rds.ModifyDBParameterGroupWithContext(ctx, &rds.ModifyDBParameterGroupInput{
		DBParameterGroupName: aws.String(group),
		Parameters:           awsParams,
	})
	if err != nil {
		return fail(ctx, "cloud/rds", "modify_parameters", group, err)
	}
	return nil
}

// EngineVersions lists the available versions of a database engine,
// optionally restricted to a parameter group family.
func (c *RDS) EngineVersions(ctx gocontext.Context, engine, family string) ([]EngineVersion, error) {
	input := &rds.DescribeDBEngineVersionsInput{
		Engine: aws.String(engine),
	}
	if family != "" {
		input.DBParameterGroupFamily = aws.String(family)
	}

	resp, err := c.rds.DescribeDBEngineVersionsWithContext(ctx, input)
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "describe_engine_versions", engine, err)
	}

	versions := make([]EngineVersion, 0, len(resp.DBEngineVersions))
	for _, v := range resp.DBEngineVersions {
		versions = append(versions, EngineVersion{
			Engine:      aws.StringValue(v.Engine),
			Version:     aws.StringValue(v.EngineVersion),
			Family:      aws.StringValue(v.DBParameterGroupFamily),
			Description: aws.StringValue(v.DBEngineVersionDescription),
		})
	}

	return versions, nil
}

// OrderableInstanceOptions lists the DB instance configurations that can be
// ordered for an engine version, fully paginated.
func (c *RDS) OrderableInstanceOptions(ctx gocontext.Context, engine, version string) ([]InstanceOption, error) {
	opts := []InstanceOption{}
	err := c.rds.DescribeOrderableDBInstanceOptionsPagesWithContext(ctx,
		&rds.DescribeOrderableDBInstanceOptionsInput{
			Engine:        aws.String(engine),
			EngineVersion: aws.String(version),
		},
		func(page *rds.DescribeOrderableDBInstanceOptionsOutput, lastPage bool) bool {
			for _, o := range page.OrderableDBInstanceOptions {
				opts = append(opts, InstanceOption{
					Engine:        aws.StringValue(o.Engine),
					EngineVersion: aws.StringValue(o.EngineVersion),
					InstanceClass: aws.StringValue(o.DBInstanceClass),
					StorageType:   aws.StringValue(o.StorageType),
				})
			}
			return true
		})
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "describe_orderable_instance_options", engine, err)
	}

	return opts, nil
}

// DBInstance describes a DB instance by id. A missing instance is reported
// as (nil, nil).
func (c *RDS) DBInstance(ctx gocontext.Context, id string) (*DBInstance, error) {
	resp, err := c.rds.DescribeDBInstancesWithContext(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		err = fail(ctx, "cloud/rds", "describe_db_instance", id, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(resp.DBInstances) == 0 {
		return nil, nil
	}

	return dbInstanceFromAWS(resp.DBInstances[0]), nil
}

func (c *RDS) CreateDBInstance(ctx gocontext.Context, req *CreateDBInstanceRequest) (*DBInstance, error) {
	resp, err := c.rds.CreateDBInstanceWithContext(ctx, &rds.CreateDBInstanceInput{
		DBName:               aws.String(req.DBName),
		DBInstanceIdentifier: aws.String(req.ID),
		DBParameterGroupName: aws.String(req.ParameterGroup),
		Engine:               aws.String(req.Engine),
		EngineVersion:        aws.String(req.EngineVersion),
		DBInstanceClass:      aws.String(req.InstanceClass),
		StorageType:          aws.String(req.StorageType),
		AllocatedStorage:     aws.Int64(req.AllocatedStorage),
		MasterUsername:       aws.String(req.AdminUsername),
		MasterUserPassword:   aws.String(req.AdminPassword),
	})
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "create_db_instance", req.ID, err)
	}

	return dbInstanceFromAWS(resp.DBInstance), nil
}

func (c *RDS) DeleteDBInstance(ctx gocontext.Context, id string) (*DBInstance, error) {
	resp, err := c.rds.DeleteDBInstanceWithContext(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier:   aws.String(id),
		SkipFinalSnapshot:      aws.Bool(true),
		DeleteAutomatedBackups: aws.Bool(true),
	})
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "delete_db_instance", id, err)
	}

	return dbInstanceFromAWS(resp.DBInstance), nil
}

// Snapshot describes a DB snapshot by id. A missing snapshot is reported as
// (nil, nil).
func (c *RDS) Snapshot(ctx gocontext.Context, id string) (*Snapshot, error) {
	resp, err := c.rds.DescribeDBSnapshotsWithContext(ctx, &rds.DescribeDBSnapshotsInput{
		DBSnapshotIdentifier: aws.String(id),
	})
	if err != nil {
		err = fail(ctx, "cloud/rds", "describe_snapshot", id, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(resp.DBSnapshots) == 0 {
		return nil, nil
	}

	return snapshotFromAWS(resp.DBSnapshots[0]), nil
}

func (c *RDS) CreateSnapshot(ctx gocontext.Context, snapshotID, instanceID string) (*Snapshot, error) {
	resp, err := c.rds.CreateDBSnapshotWithContext(ctx, &rds.CreateDBSnapshotInput{
		DBSnapshotIdentifier: aws.String(snapshotID),
		DBInstanceIdentifier: aws.String(instanceID),
	})
	if err != nil {
		return nil, fail(ctx, "cloud/rds", "create_snapshot", snapshotID, err)
	}

	return snapshotFromAWS(resp.DBSnapshot), nil
}

func parameterGroupFromAWS(g *rds.DBParameterGroup) *ParameterGroup {
	return &ParameterGroup{
		Name:        aws.StringValue(g.DBParameterGroupName),
		Family:      aws.StringValue(g.DBParameterGroupFamily),
		Description: aws.StringValue(g.Description),
		ARN:         aws.StringValue(g.DBParameterGroupArn),
	}
}

func parameterFromAWS(p *rds.Parameter) Parameter {
	return Parameter{
		Name:          aws.StringValue(p.ParameterName),
		Description:   aws.StringValue(p.Description),
		Value:         aws.StringValue(p.ParameterValue),
		AllowedValues: aws.StringValue(p.AllowedValues),
		DataType:      aws.StringValue(p.DataType),
		Source:        aws.StringValue(p.Source),
		Modifiable:    aws.BoolValue(p.IsModifiable),
	}
}

func dbInstanceFromAWS(i *rds.DBInstance) *DBInstance {
	inst := &DBInstance{
		ID:               aws.StringValue(i.DBInstanceIdentifier),
		DBName:           aws.StringValue(i.DBName),
		Status:           Status(aws.StringValue(i.DBInstanceStatus)),
		Engine:           aws.StringValue(i.Engine),
		EngineVersion:    aws.StringValue(i.EngineVersion),
		InstanceClass:    aws.StringValue(i.DBInstanceClass),
		StorageType:      aws.StringValue(i.StorageType),
		AllocatedStorage: aws.Int64Value(i.AllocatedStorage),
		MasterUsername:   aws.StringValue(i.MasterUsername),
	}

	if len(i.DBParameterGroups) > 0 {
		inst.ParameterGroup = aws.StringValue(i.DBParameterGroups[0].DBParameterGroupName)
	}

	if i.Endpoint != nil {
		inst.Endpoint = aws.StringValue(i.Endpoint.Address)
		inst.Port = aws.Int64Value(i.Endpoint.Port)
	}

	return inst
}

func snapshotFromAWS(s *rds.DBSnapshot) *Snapshot {
	return &Snapshot{
		ID:               aws.StringValue(s.DBSnapshotIdentifier),
		InstanceID:       aws.StringValue(s.DBInstanceIdentifier),
		Status:           Status(aws.StringValue(s.Status)),
		Engine:           aws.StringValue(s.Engine),
		AllocatedStorage: aws.Int64Value(s.AllocatedStorage),
		CreatedAt:        aws.TimeValue(s.SnapshotCreateTime),
	}
}
