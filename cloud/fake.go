package cloud

import (
	"strings"
	"sync"

	gocontext "context"
)

// StatusGone is a scripted-status sentinel used by FakeDatabase to make a
// describe call answer "absent".
const StatusGone Status = "gone"

// FakeDatabase is an in-memory DatabaseClient used to drive workflow tests
// without AWS. Describe calls consume scripted status sequences so tests
// can play out slow provisioning and deletion transitions deterministically.
type FakeDatabase struct {
	mu sync.Mutex

	Groups      map[string]*ParameterGroup
	GroupParams map[string][]Parameter
	Instances   map[string]*DBInstance
	Snapshots   map[string]*Snapshot

	EngineVersionList  []EngineVersion
	InstanceOptionList []InstanceOption

	// InstanceStatuses and SnapshotStatuses are consumed one entry per
	// describe call; once drained, the stored resource's own status is
	// reported. A StatusGone entry removes the stored resource.
	InstanceStatuses map[string][]Status
	SnapshotStatuses map[string][]Status

	// Errs forces an error return for the named operation.
	Errs map[string]error

	// Calls records operation names in invocation order.
	Calls []string
}

// NewFakeDatabase creates an empty FakeDatabase.
func NewFakeDatabase() *FakeDatabase {
	return &FakeDatabase{
		Groups:           map[string]*ParameterGroup{},
		GroupParams:      map[string][]Parameter{},
		Instances:        map[string]*DBInstance{},
		Snapshots:        map[string]*Snapshot{},
		InstanceStatuses: map[string][]Status{},
		SnapshotStatuses: map[string][]Status{},
		Errs:             map[string]error{},
	}
}

func (f *FakeDatabase) record(op string) error {
	f.Calls = append(f.Calls, op)
	return f.Errs[op]
}

// CallCount returns how many times the named operation was invoked.
func (f *FakeDatabase) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.Calls {
		if call == op {
			n++
		}
	}
	return n
}

func (f *FakeDatabase) ParameterGroup(ctx gocontext.Context, name string) (*ParameterGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("describe_parameter_group"); err != nil {
		return nil, err
	}

	group, ok := f.Groups[name]
	if !ok {
		return nil, nil
	}
	copied := *group
	return &copied, nil
}

func (f *FakeDatabase) CreateParameterGroup(ctx gocontext.Context, name, family, description string) (*ParameterGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("create_parameter_group"); err != nil {
		return nil, err
	}

	group := &ParameterGroup{Name: name, Family: family, Description: description}
	f.Groups[name] = group
	copied := *group
	return &copied, nil
}

func (f *FakeDatabase) DeleteParameterGroup(ctx gocontext.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("delete_parameter_group"); err != nil {
		return err
	}

	delete(f.Groups, name)
	return nil
}

func (f *FakeDatabase) Parameters(ctx gocontext.Context, group, namePrefix, source string) ([]Parameter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("describe_parameters"); err != nil {
		return nil, err
	}

	params := []Parameter{}
	for _, p := range f.GroupParams[group] {
		if !strings.HasPrefix(p.Name, namePrefix) {
			continue
		}
		if source != "" && p.Source != source {
			continue
		}
		params = append(params, p)
	}
	return params, nil
}

func (f *FakeDatabase) ModifyParameters(ctx gocontext.Context, group string, params []Parameter) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("modify_parameters"); err != nil {
		return err
	}

	stored := f.GroupParams[group]
	for _, update := range params {
		for i := range stored {
			if stored[i].Name == update.Name {
				stored[i].Value = update.Value
				stored[i].Source = "user"
			}
		}
	}
	f.GroupParams[group] = stored
	return nil
}

func (f *FakeDatabase) EngineVersions(ctx gocontext.Context, engine, family string) ([]EngineVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("describe_engine_versions"); err != nil {
		return nil, err
	}

	versions := []EngineVersion{}
	for _, v := range f.EngineVersionList {
		if v.Engine != engine {
			continue
		}
		if family != "" && v.Family != family {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (f *FakeDatabase) OrderableInstanceOptions(ctx gocontext.Context, engine, version string) ([]InstanceOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("describe_orderable_instance_options"); err != nil {
		return nil, err
	}

	opts := []InstanceOption{}
	for _, o := range f.InstanceOptionList {
		if o.Engine != engine || o.EngineVersion != version {
			continue
		}
		opts = append(opts, o)
	}
	return opts, nil
}

func (f *FakeDatabase) DBInstance(ctx gocontext.Context, id string) (*DBInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("describe_db_instance"); err != nil {
		return nil, err
	}

	if seq := f.InstanceStatuses[id]; len(seq) > 0 {
		status := seq[0]
		f.InstanceStatuses[id] = seq[1:]
		if status == StatusGone {
			delete(f.Instances, id)
			return nil, nil
		}
		if inst, ok := f.Instances[id]; ok {
			inst.Status = status
		}
	}

	inst, ok := f.Instances[id]
	if !ok {
		return nil, nil
	}
	copied := *inst
	return &copied, nil
}

func (f *FakeDatabase) CreateDBInstance(ctx gocontext.Context, req *CreateDBInstanceRequest) (*DBInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("create_db_instance"); err != nil {
		return nil, err
	}

	inst := &DBInstance{
		ID:               req.ID,
		DBName:           req.DBName,
		Status:           StatusCreating,
		Engine:           req.Engine,
		EngineVersion:    req.EngineVersion,
		InstanceClass:    req.InstanceClass,
		StorageType:      req.StorageType,
		AllocatedStorage: req.AllocatedStorage,
		MasterUsername:   req.AdminUsername,
		ParameterGroup:   req.ParameterGroup,
		Endpoint:         req.ID + ".fake.rds.amazonaws.com",
		Port:             5432,
	}
	f.Instances[req.ID] = inst
	copied := *inst
	return &copied, nil
}

func (f *FakeDatabase) DeleteDBInstance(ctx gocontext.Context, id string) (*DBInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("delete_db_instance"); err != nil {
		return nil, err
	}

	inst, ok := f.Instances[id]
	if !ok {
		return nil, &Error{kind: kindNotFound, Op: "delete_db_instance", Resource: id, Message: "no such instance"}
	}
	inst.Status = StatusDeleting
	copied := *inst
	return &copied, nil
}

func (f *FakeDatabase) Snapshot(ctx gocontext.Context, id string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("describe_snapshot"); err != nil {
		return nil, err
	}

	// Snapshot ids are generated by the caller at run time, so the key "*"
	// scripts statuses for whatever snapshot gets described.
	key := id
	if len(f.SnapshotStatuses[key]) == 0 && len(f.SnapshotStatuses["*"]) > 0 {
		key = "*"
	}
	if seq := f.SnapshotStatuses[key]; len(seq) > 0 {
		status := seq[0]
		f.SnapshotStatuses[key] = seq[1:]
		if status == StatusGone {
			delete(f.Snapshots, id)
			return nil, nil
		}
		if snap, ok := f.Snapshots[id]; ok {
			snap.Status = status
		}
	}

	snap, ok := f.Snapshots[id]
	if !ok {
		return nil, nil
	}
	copied := *snap
	return &copied, nil
}

func (f *FakeDatabase) CreateSnapshot(ctx gocontext.Context, snapshotID, instanceID string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("create_snapshot"); err != nil {
		return nil, err
	}

	inst, ok := f.Instances[instanceID]
	if !ok {
		return nil, &Error{kind: kindNotFound, Op: "create_snapshot", Resource: instanceID, Message: "no such instance"}
	}

	snap := &Snapshot{
		ID:               snapshotID,
		InstanceID:       instanceID,
		Status:           StatusCreating,
		Engine:           inst.Engine,
		AllocatedStorage: inst.AllocatedStorage,
	}
	f.Snapshots[snapshotID] = snap
	copied := *snap
	return &copied, nil
}
