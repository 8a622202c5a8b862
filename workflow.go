package mlops

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	gocontext "context"

	"github.com/mitchellh/multistep"
	"github.com/pkg/errors"

	"github.com/franklinobasy/mlops/cloud"
	"github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/prompt"
)

// Workflow drives the interactive database provisioning scenario: create a
// parameter group, tune it, create a DB instance that uses it, optionally
// snapshot it, and optionally tear everything down again. Each step checks
// whether its resource already exists, so a run can be repeated after an
// interruption without re-creating anything.
type Workflow struct {
	DB       cloud.DatabaseClient
	Selector prompt.Selector
	Poller   *Poller
	Out      io.Writer

	Engine             string
	ParameterGroupName string
	InstanceID         string
	DBName             string
	StorageType        string
	AllocatedStorage   int64
}

// Run executes the provisioning steps in order. The context bounds the
// whole run, including every status poll.
func (w *Workflow) Run(ctx gocontext.Context) error {
	logger := context.LoggerFromContext(ctx).WithField("self", "workflow")
	started := time.Now()

	w.rule()
	w.printf("Welcome to the %s tracking stack provisioning demo.\n", w.DBName)
	w.rule()

	state := new(multistep.BasicStateBag)
	state.Put("ctx", ctx)
	state.Put("workflow", w)

	runner := &multistep.BasicRunner{
		Steps: []multistep.Step{
			&stepCreateParameterGroup{},
			&stepUpdateParameters{},
			&stepCreateDBInstance{},
			&stepDisplayConnection{},
			&stepCreateSnapshot{},
			&stepCleanup{},
		},
	}
	runner.Run(state)

	context.TimeSince(ctx, "mlops.workflow.run", started)

	if err, ok := state.GetOk("err"); ok {
		return err.(error)
	}

	logger.WithField("took", time.Since(started)).Info("workflow finished")
	w.printf("\nThanks for watching!\n")
	w.rule()
	return nil
}

// halt records err in the state bag and stops the pipeline.
func (w *Workflow) halt(state multistep.StateBag, err error, msg string) multistep.StepAction {
	ctx := state.Get("ctx").(gocontext.Context)

	err = errors.Wrap(err, msg)
	context.LoggerFromContext(ctx).WithField("self", "workflow").WithField("err", err).Error("workflow halting")
	context.CaptureError(ctx, err)

	state.Put("err", err)
	return multistep.ActionHalt
}

func (w *Workflow) printf(format string, a ...interface{}) {
	fmt.Fprintf(w.Out, format, a...)
}

func (w *Workflow) rule() {
	fmt.Fprintln(w.Out, strings.Repeat("-", 88))
}

// waitForInstanceAvailable polls the DB instance until the provider reports
// it available, then returns the final description.
func (w *Workflow) waitForInstanceAvailable(ctx gocontext.Context) (*cloud.DBInstance, error) {
	var inst *cloud.DBInstance

	err := w.Poller.Poll(ctx, "db instance "+w.InstanceID, func(ctx gocontext.Context) (bool, error) {
		var perr error
		inst, perr = w.DB.DBInstance(ctx, w.InstanceID)
		if perr != nil {
			return false, perr
		}
		return inst != nil && inst.Status == cloud.StatusAvailable, nil
	})
	if err != nil {
		return nil, err
	}

	return inst, nil
}

// waitForInstanceGone polls the DB instance until the provider reports it
// absent. An absent answer is the success condition here, not a failure.
func (w *Workflow) waitForInstanceGone(ctx gocontext.Context) error {
	return w.Poller.Poll(ctx, "db instance "+w.InstanceID, func(ctx gocontext.Context) (bool, error) {
		inst, perr := w.DB.DBInstance(ctx, w.InstanceID)
		if perr != nil {
			return false, perr
		}
		return inst == nil, nil
	})
}

func (w *Workflow) waitForSnapshotAvailable(ctx gocontext.Context, snapshotID string) (*cloud.Snapshot, error) {
	var snap *cloud.Snapshot

	err := w.Poller.Poll(ctx, "snapshot "+snapshotID, func(ctx gocontext.Context) (bool, error) {
		var perr error
		snap, perr = w.DB.Snapshot(ctx, snapshotID)
		if perr != nil {
			return false, perr
		}
		return snap != nil && snap.Status == cloud.StatusAvailable, nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// deleteParameterGroup deletes the workflow's parameter group, first
// confirming that the DB instance using it is gone. The ordering is ours to
// enforce: the provider would reject the delete, but only after the call
// was already made.
func (w *Workflow) deleteParameterGroup(ctx gocontext.Context) error {
	inst, err := w.DB.DBInstance(ctx, w.InstanceID)
	if err != nil {
		return err
	}
	if inst != nil {
		return &DependencyOrderError{
			Resource:  "parameter group " + w.ParameterGroupName,
			DependsOn: "db instance " + w.InstanceID,
		}
	}

	return w.DB.DeleteParameterGroup(ctx, w.ParameterGroupName)
}

// parseAllowedRange splits an allowed-values declaration of the form
// "lower-upper" into its two integer bounds.
func parseAllowedRange(allowed string) (int64, int64, error) {
	parts := strings.SplitN(allowed, "-", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("allowed values %q is not a range", allowed)
	}

	lower, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "bad lower bound in %q", allowed)
	}

	upper, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "bad upper bound in %q", allowed)
	}

	return lower, upper, nil
}
