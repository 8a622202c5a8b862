package mlops

import (
	gocontext "context"

	"github.com/mitchellh/multistep"

	"github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/prompt"
)

// stepCleanup optionally deletes the DB instance and, only once the
// instance is confirmed gone, the parameter group it used. The ordering is
// not optional: the provider refuses to delete a parameter group that is
// still attached to an instance.
type stepCleanup struct{}

func (s *stepCleanup) Run(state multistep.StateBag) multistep.StepAction {
	w := state.Get("workflow").(*Workflow)
	ctx := state.Get("ctx").(gocontext.Context)
	logger := context.LoggerFromContext(ctx).WithField("self", "step_cleanup")

	wanted, err := prompt.AskYesNo(w.Selector, "\nDo you want to delete the DB instance and parameter group (y/n)? ")
	if err != nil {
		return w.halt(state, err, "couldn't get a cleanup decision")
	}
	if !wanted {
		w.printf("Leaving the DB instance and parameter group in place.\n")
		return multistep.ActionContinue
	}

	w.printf("Deleting DB instance %s.\n", w.InstanceID)
	if _, err := w.DB.DeleteDBInstance(ctx, w.InstanceID); err != nil {
		return w.halt(state, err, "couldn't delete the DB instance")
	}

	w.printf("Waiting for the DB instance to delete. This typically takes several minutes.\n")
	if err := w.waitForInstanceGone(ctx); err != nil {
		return w.halt(state, err, "gave up waiting for the DB instance to delete")
	}

	w.printf("Deleting parameter group %s.\n", w.ParameterGroupName)
	if err := w.deleteParameterGroup(ctx); err != nil {
		return w.halt(state, err, "couldn't delete the parameter group")
	}

	logger.Info("cleanup complete")
	return multistep.ActionContinue
}

func (s *stepCleanup) Cleanup(multistep.StateBag) {}
