// Package cloud wraps the AWS operations used by the provisioning
// workflows behind small request/response structs and a uniform error
// taxonomy. It can point at real AWS services or at the fake clients used
// in tests.
package cloud

import (
	"time"

	gocontext "context"
)

// Status is a provider-reported resource status. Status values are never
// cached; callers are expected to describe the resource again whenever they
// need a current value.
type Status string

const (
	StatusCreating  Status = "creating"
	StatusAvailable Status = "available"
	StatusDeleting  Status = "deleting"
)

// ParameterGroup is a named bundle of database engine configuration that can
// be applied to one or more DB instances.
type ParameterGroup struct {
	Name        string
	Family      string
	Description string
	ARN         string
}

// Parameter is a single entry in a parameter group.
type Parameter struct {
	Name          string
	Description   string
	Value         string
	AllowedValues string
	DataType      string
	Source        string
	Modifiable    bool
}

// DBInstance describes a managed database instance.
type DBInstance struct {
	ID               string
	DBName           string
	Status           Status
	Engine           string
	EngineVersion    string
	InstanceClass    string
	StorageType      string
	AllocatedStorage int64
	MasterUsername   string
	ParameterGroup   string
	Endpoint         string
	Port             int64
}

// Snapshot describes a point-in-time snapshot of a DB instance.
type Snapshot struct {
	ID               string
	InstanceID       string
	Status           Status
	Engine           string
	AllocatedStorage int64
	CreatedAt        time.Time
}

// EngineVersion is one version of a database engine, along with the
// parameter group family it belongs to.
type EngineVersion struct {
	Engine      string
	Version     string
	Family      string
	Description string
}

// InstanceOption is one orderable DB instance configuration compatible with
// an engine and engine version.
type InstanceOption struct {
	Engine        string
	EngineVersion string
	InstanceClass string
	StorageType   string
}

// CreateDBInstanceRequest carries the fully resolved parameters for a DB
// instance create call.
type CreateDBInstanceRequest struct {
	ID               string
	DBName           string
	ParameterGroup   string
	Engine           string
	EngineVersion    string
	InstanceClass    string
	StorageType      string
	AllocatedStorage int64
	AdminUsername    string
	AdminPassword    string
}

// ComputeInstance describes a virtual machine instance.
type ComputeInstance struct {
	ID         string
	Type       string
	State      string
	PublicIP   string
	PrivateIP  string
	PublicDNS  string
	KeyName    string
	LaunchedAt time.Time
}

// KeyPair is a named SSH key pair. Material is the PEM-encoded private key
// and is only populated on creation.
type KeyPair struct {
	Name        string
	Fingerprint string
	Material    string
}

// RunInstanceRequest carries the parameters for launching a compute
// instance.
type RunInstanceRequest struct {
	ImageID      string
	InstanceType string
	KeyName      string
	Name         string
}

// DatabaseClient is the set of managed-database operations the provisioning
// workflow needs. Describe-style calls return (nil, nil) when the resource
// does not exist; "absent" is a normal answer, not an error. Describe-many
// calls page through the provider API and always return the full sequence.
type DatabaseClient interface {
	ParameterGroup(ctx gocontext.Context, name string) (*ParameterGroup, error)
	CreateParameterGroup(ctx gocontext.Context, name, family, description string) (*ParameterGroup, error)
	DeleteParameterGroup(ctx gocontext.Context, name string) error
	Parameters(ctx gocontext.Context, group, namePrefix, source string) ([]Parameter, error)
	ModifyParameters(ctx gocontext.Context, group string, params []Parameter) error

	EngineVersions(ctx gocontext.Context, engine, family string) ([]EngineVersion, error)
	OrderableInstanceOptions(ctx gocontext.Context, engine, version string) ([]InstanceOption, error)

	DBInstance(ctx gocontext.Context, id string) (*DBInstance, error)
	CreateDBInstance(ctx gocontext.Context, req *CreateDBInstanceRequest) (*DBInstance, error)
	DeleteDBInstance(ctx gocontext.Context, id string) (*DBInstance, error)

	Snapshot(ctx gocontext.Context, id string) (*Snapshot, error)
	CreateSnapshot(ctx gocontext.Context, snapshotID, instanceID string) (*Snapshot, error)
}

// ComputeClient is the set of virtual machine operations used by the server
// tooling commands.
type ComputeClient interface {
	CreateKeyPair(ctx gocontext.Context, name string) (*KeyPair, error)
	DeleteKeyPair(ctx gocontext.Context, name string) error
	RunInstance(ctx gocontext.Context, req *RunInstanceRequest) (*ComputeInstance, error)
	Instance(ctx gocontext.Context, id string) (*ComputeInstance, error)
	RunningInstances(ctx gocontext.Context) ([]ComputeInstance, error)
	StopInstance(ctx gocontext.Context, id string) error
	TerminateInstance(ctx gocontext.Context, id string) error
}

// StorageClient creates object storage buckets.
type StorageClient interface {
	CreateBucket(ctx gocontext.Context, name string) error
}
