package mlops

import (
	"fmt"
	"time"

	gocontext "context"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/multistep"
	"github.com/pborman/uuid"

	"github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/prompt"
)

// stepCreateSnapshot optionally snapshots the DB instance and waits for
// the snapshot to become available.
type stepCreateSnapshot struct{}

func (s *stepCreateSnapshot) Run(state multistep.StateBag) multistep.StepAction {
	w := state.Get("workflow").(*Workflow)
	ctx := state.Get("ctx").(gocontext.Context)
	logger := context.LoggerFromContext(ctx).WithField("self", "step_create_snapshot")

	wanted, err := prompt.AskYesNo(w.Selector, "Do you want to create a snapshot of your DB instance (y/n)? ")
	if err != nil {
		return w.halt(state, err, "couldn't get a snapshot decision")
	}
	if !wanted {
		return multistep.ActionContinue
	}

	snapshotID := fmt.Sprintf("%s-%s", w.InstanceID, uuid.NewRandom())
	w.printf("Creating a snapshot named %s. This typically takes a few minutes.\n", snapshotID)

	started := time.Now()
	if _, err := w.DB.CreateSnapshot(ctx, snapshotID, w.InstanceID); err != nil {
		return w.halt(state, err, "couldn't create a snapshot")
	}

	snap, err := w.waitForSnapshotAvailable(ctx, snapshotID)
	if err != nil {
		return w.halt(state, err, "gave up waiting for the snapshot")
	}

	logger.WithField("took", time.Since(started)).Info("snapshot available")
	w.printf("Snapshot %s of %s is %s (%s, created %s).\n",
		snap.ID, snap.InstanceID, snap.Status,
		humanize.IBytes(uint64(snap.AllocatedStorage)*humanize.GiByte),
		humanize.Time(snap.CreatedAt))
	w.rule()

	state.Put("snapshot", snap)
	return multistep.ActionContinue
}

func (s *stepCreateSnapshot) Cleanup(multistep.StateBag) {}
