package mlops

import (
	"bytes"
	"testing"

	gocontext "context"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/franklinobasy/mlops/cloud"
	"github.com/franklinobasy/mlops/prompt"
)

func setupWorkflow(db *cloud.FakeDatabase, answers ...string) (*Workflow, *bytes.Buffer) {
	out := &bytes.Buffer{}
	w := &Workflow{
		DB:       db,
		Selector: prompt.NewScripted(answers...),
		Poller:   NewPoller(0, 10),
		Out:      out,

		Engine:             "postgres",
		ParameterGroupName: "mlops-params-group",
		InstanceID:         "mlflow-backend-db",
		DBName:             "mlflow_db",
		StorageType:        "standard",
		AllocatedStorage:   5,
	}
	return w, out
}

func seedEngineCatalog(db *cloud.FakeDatabase) {
	db.EngineVersionList = []cloud.EngineVersion{
		{Engine: "postgres", Version: "14.1", Family: "postgres14"},
		{Engine: "postgres", Version: "14.2", Family: "postgres14"},
		{Engine: "postgres", Version: "13.5", Family: "postgres13"},
	}
	db.InstanceOptionList = []cloud.InstanceOption{
		{Engine: "postgres", EngineVersion: "14.2", InstanceClass: "db.t3.micro"},
		{Engine: "postgres", EngineVersion: "14.2", InstanceClass: "db.t3.micro"},
		{Engine: "postgres", EngineVersion: "14.2", InstanceClass: "db.m5.large"},
		{Engine: "postgres", EngineVersion: "14.2", InstanceClass: "db.t4g.micro"},
	}
}

func seedAutoIncrementParams(db *cloud.FakeDatabase) {
	db.GroupParams["mlops-params-group"] = []cloud.Parameter{
		{
			Name:          "auto_increment_increment",
			Description:   "Interval between successive column values",
			AllowedValues: "1-65535",
			DataType:      "integer",
			Modifiable:    true,
		},
		{
			Name:          "auto_increment_offset",
			Description:   "Starting point for the first column value",
			AllowedValues: "1-65535",
			DataType:      "integer",
			Modifiable:    true,
		},
		{
			Name:          "autovacuum",
			Description:   "Not an integer, never offered for tuning",
			AllowedValues: "0,1",
			DataType:      "boolean",
			Modifiable:    true,
		},
	}
}

func TestWorkflowProvisionsSnapshotsAndCleansUp(t *testing.T) {
	db := cloud.NewFakeDatabase()
	seedEngineCatalog(db)
	seedAutoIncrementParams(db)

	db.InstanceStatuses["mlflow-backend-db"] = []cloud.Status{
		cloud.StatusGone,
		cloud.StatusCreating, cloud.StatusCreating, cloud.StatusAvailable,
		cloud.StatusDeleting, cloud.StatusDeleting, cloud.StatusGone,
	}
	db.SnapshotStatuses["*"] = []cloud.Status{
		cloud.StatusCreating, cloud.StatusAvailable,
	}

	w, out := setupWorkflow(db,
		"postgres14",
		"5", "10",
		"mlops_admin", "wordpass123",
		"14.2",
		"db.t4g.micro",
		"y",
		"y",
	)

	err := w.Run(gocontext.TODO())
	assert.NoError(t, err)

	assert.Equal(t, 1, db.CallCount("create_parameter_group"))
	assert.Equal(t, 1, db.CallCount("create_db_instance"))
	assert.Equal(t, 1, db.CallCount("modify_parameters"))
	assert.Equal(t, 1, db.CallCount("create_snapshot"))
	assert.Equal(t, 1, db.CallCount("delete_db_instance"))
	assert.Equal(t, 1, db.CallCount("delete_parameter_group"))

	// cleanup removed both resources
	assert.NotContains(t, db.Groups, "mlops-params-group")
	assert.NotContains(t, db.Instances, "mlflow-backend-db")

	params := db.GroupParams["mlops-params-group"]
	assert.Equal(t, "5", params[0].Value)
	assert.Equal(t, "user", params[0].Source)
	assert.Equal(t, "10", params[1].Value)
	assert.Equal(t, "user", params[1].Source)
	assert.Equal(t, "", params[2].Value)

	assert.Len(t, db.Snapshots, 1)
	for _, snap := range db.Snapshots {
		assert.Equal(t, "mlflow-backend-db", snap.InstanceID)
		assert.Equal(t, cloud.StatusAvailable, snap.Status)
	}

	assert.Contains(t, out.String(), "Parameter group mlops-params-group (family postgres14)")
	assert.Contains(t, out.String(), "auto_increment_increment = 5")
	assert.Contains(t, out.String(), "psql -h mlflow-backend-db.fake.rds.amazonaws.com -p 5432 -U mlops_admin mlflow_db")
	assert.Contains(t, out.String(), "Deleting parameter group mlops-params-group.")
}

func TestWorkflowSkipsResourcesThatAlreadyExist(t *testing.T) {
	db := cloud.NewFakeDatabase()
	seedEngineCatalog(db)
	db.Groups["mlops-params-group"] = &cloud.ParameterGroup{Name: "mlops-params-group", Family: "postgres14"}
	db.Instances["mlflow-backend-db"] = &cloud.DBInstance{
		ID:             "mlflow-backend-db",
		DBName:         "mlflow_db",
		Status:         cloud.StatusAvailable,
		Engine:         "postgres",
		EngineVersion:  "14.2",
		InstanceClass:  "db.t4g.micro",
		MasterUsername: "mlops_admin",
		Endpoint:       "mlflow-backend-db.fake.rds.amazonaws.com",
		Port:           5432,
	}

	w, out := setupWorkflow(db, "n", "n")

	err := w.Run(gocontext.TODO())
	assert.NoError(t, err)

	assert.Equal(t, 0, db.CallCount("create_parameter_group"))
	assert.Equal(t, 0, db.CallCount("create_db_instance"))
	assert.Equal(t, 0, db.CallCount("create_snapshot"))
	assert.Equal(t, 0, db.CallCount("delete_db_instance"))

	assert.Contains(t, out.String(), "Leaving the DB instance and parameter group in place.")
}

func TestDeleteParameterGroupRefusesWhileInstanceExists(t *testing.T) {
	db := cloud.NewFakeDatabase()
	db.Groups["mlops-params-group"] = &cloud.ParameterGroup{Name: "mlops-params-group", Family: "postgres14"}
	db.Instances["mlflow-backend-db"] = &cloud.DBInstance{
		ID:     "mlflow-backend-db",
		Status: cloud.StatusAvailable,
	}

	w, _ := setupWorkflow(db)

	err := w.deleteParameterGroup(gocontext.TODO())

	orderErr, ok := err.(*DependencyOrderError)
	if assert.True(t, ok, "expected a DependencyOrderError, got %v", err) {
		assert.Contains(t, orderErr.Error(), "parameter group mlops-params-group")
		assert.Contains(t, orderErr.Error(), "db instance mlflow-backend-db")
	}

	// the delete never reached the provider
	assert.Equal(t, 0, db.CallCount("delete_parameter_group"))
	assert.Contains(t, db.Groups, "mlops-params-group")
}

func TestWorkflowRejectsScriptedParameterValueOutOfRange(t *testing.T) {
	db := cloud.NewFakeDatabase()
	seedEngineCatalog(db)
	seedAutoIncrementParams(db)
	db.Groups["mlops-params-group"] = &cloud.ParameterGroup{Name: "mlops-params-group", Family: "postgres14"}

	w, _ := setupWorkflow(db, "123456789")

	err := w.Run(gocontext.TODO())

	valueErr, ok := errors.Cause(err).(*InvalidParameterValueError)
	if assert.True(t, ok, "expected an InvalidParameterValueError, got %v", err) {
		assert.Equal(t, "auto_increment_increment", valueErr.Name)
	}

	assert.Equal(t, 0, db.CallCount("modify_parameters"))
	assert.Equal(t, 0, db.CallCount("create_db_instance"))
}

func TestWorkflowTimesOutWhenInstanceNeverComesUp(t *testing.T) {
	db := cloud.NewFakeDatabase()
	seedEngineCatalog(db)
	db.Groups["mlops-params-group"] = &cloud.ParameterGroup{Name: "mlops-params-group", Family: "postgres14"}

	w, _ := setupWorkflow(db,
		"mlops_admin", "wordpass123",
		"14.2",
		"db.t3.micro",
	)
	w.Poller = NewPoller(0, 3)

	err := w.Run(gocontext.TODO())

	timeoutErr, ok := errors.Cause(err).(*ProvisioningTimeoutError)
	if assert.True(t, ok, "expected a ProvisioningTimeoutError, got %v", err) {
		assert.Equal(t, "db instance mlflow-backend-db", timeoutErr.Resource)
	}

	assert.Equal(t, 1, db.CallCount("create_db_instance"))
}

func TestWorkflowHaltsWhenTheProviderFails(t *testing.T) {
	db := cloud.NewFakeDatabase()
	db.Errs["describe_parameter_group"] = errors.New("the region is down")

	w, _ := setupWorkflow(db)

	err := w.Run(gocontext.TODO())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't check for an existing parameter group")

	assert.Equal(t, 0, db.CallCount("create_parameter_group"))
}
