package mlops

import (
	"strings"
	"time"

	gocontext "context"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/multistep"
	"github.com/pkg/errors"

	"github.com/franklinobasy/mlops/cloud"
	"github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/prompt"
)

// stepCreateDBInstance makes sure the workflow's DB instance exists,
// gathering the remaining choices (admin credentials, engine version,
// instance class) and then waiting for the instance to come up.
type stepCreateDBInstance struct{}

func (s *stepCreateDBInstance) Run(state multistep.StateBag) multistep.StepAction {
	w := state.Get("workflow").(*Workflow)
	ctx := state.Get("ctx").(gocontext.Context)
	group := state.Get("parameterGroup").(*cloud.ParameterGroup)
	logger := context.LoggerFromContext(ctx).WithField("self", "step_create_db_instance")

	w.printf("Checking for an existing DB instance.\n")
	inst, err := w.DB.DBInstance(ctx, w.InstanceID)
	if err != nil {
		return w.halt(state, err, "couldn't check for an existing DB instance")
	}

	if inst == nil {
		w.printf("Let's create a DB instance.\n")

		adminUsername, err := w.Selector.Ask("Enter an administrator user name for the database: ", prompt.NonEmpty)
		if err != nil {
			return w.halt(state, err, "couldn't get an administrator user name")
		}

		adminPassword, err := w.Selector.Ask("Enter a password for the administrator (at least 8 characters): ", prompt.NonEmpty)
		if err != nil {
			return w.halt(state, err, "couldn't get an administrator password")
		}

		versions, err := w.DB.EngineVersions(ctx, w.Engine, group.Family)
		if err != nil {
			return w.halt(state, err, "couldn't list engine versions for the parameter group family")
		}
		if len(versions) == 0 {
			return w.halt(state, errors.Errorf("no engine versions compatible with family %s", group.Family), "nothing to create the instance from")
		}

		versionChoices := make([]string, 0, len(versions))
		for _, version := range versions {
			versionChoices = append(versionChoices, version.Version)
		}
		w.printf("The available engines for your parameter group are:\n")
		versionIdx, err := w.Selector.Choose("Which engine do you want to use? ", versionChoices)
		if err != nil {
			return w.halt(state, err, "couldn't pick an engine version")
		}
		selected := versions[versionIdx]

		opts, err := w.DB.OrderableInstanceOptions(ctx, selected.Engine, selected.Version)
		if err != nil {
			return w.halt(state, err, "couldn't list orderable instance options")
		}

		classes := []string{}
		for _, opt := range opts {
			if strings.Contains(opt.InstanceClass, "micro") {
				classes = append(classes, opt.InstanceClass)
			}
		}
		classes = uniqueStrings(classes)
		if len(classes) == 0 {
			return w.halt(state, errors.Errorf("no micro instance classes for %s %s", selected.Engine, selected.Version), "nothing to create the instance from")
		}

		w.printf("The available micro DB instance classes for your database engine are:\n")
		classIdx, err := w.Selector.Choose("Which micro DB instance class do you want to use? ", classes)
		if err != nil {
			return w.halt(state, err, "couldn't pick an instance class")
		}

		w.printf("Creating a DB instance named %s and database %s.\n"+
			"The DB instance uses your custom parameter group %s, engine %s,\n"+
			"instance class %s, and %s of %s storage.\n"+
			"This typically takes several minutes.\n",
			w.InstanceID, w.DBName, group.Name, selected.Version,
			classes[classIdx],
			humanize.IBytes(uint64(w.AllocatedStorage)*humanize.GiByte),
			w.StorageType)

		started := time.Now()
		_, err = w.DB.CreateDBInstance(ctx, &cloud.CreateDBInstanceRequest{
			ID:               w.InstanceID,
			DBName:           w.DBName,
			ParameterGroup:   group.Name,
			Engine:           selected.Engine,
			EngineVersion:    selected.Version,
			InstanceClass:    classes[classIdx],
			StorageType:      w.StorageType,
			AllocatedStorage: w.AllocatedStorage,
			AdminUsername:    adminUsername,
			AdminPassword:    adminPassword,
		})
		if err != nil {
			return w.halt(state, err, "couldn't create the DB instance")
		}

		inst, err = w.waitForInstanceAvailable(ctx)
		if err != nil {
			return w.halt(state, err, "gave up waiting for the DB instance")
		}

		context.TimeSince(ctx, "mlops.db_instance.boot", started)
		logger.WithField("boot_time", time.Since(started)).Info("db instance available")
	}

	w.printf("Instance %s is %s (engine %s %s, class %s).\n",
		inst.ID, inst.Status, inst.Engine, inst.EngineVersion, inst.InstanceClass)
	w.rule()

	state.Put("dbInstance", inst)
	return multistep.ActionContinue
}

func (s *stepCreateDBInstance) Cleanup(multistep.StateBag) {}
