package mlops

import (
	gocontext "context"

	"github.com/mitchellh/multistep"
	"github.com/pkg/errors"

	"github.com/franklinobasy/mlops/context"
)

// stepCreateParameterGroup makes sure the workflow's DB parameter group
// exists, asking the selector which parameter group family to base a new
// group on.
type stepCreateParameterGroup struct{}

func (s *stepCreateParameterGroup) Run(state multistep.StateBag) multistep.StepAction {
	w := state.Get("workflow").(*Workflow)
	ctx := state.Get("ctx").(gocontext.Context)
	logger := context.LoggerFromContext(ctx).WithField("self", "step_create_parameter_group")

	w.printf("Checking for an existing DB parameter group named %s.\n", w.ParameterGroupName)
	group, err := w.DB.ParameterGroup(ctx, w.ParameterGroupName)
	if err != nil {
		return w.halt(state, err, "couldn't check for an existing parameter group")
	}

	if group == nil {
		w.printf("Getting available database engine versions for %s.\n", w.Engine)
		versions, err := w.DB.EngineVersions(ctx, w.Engine, "")
		if err != nil {
			return w.halt(state, err, "couldn't list engine versions")
		}

		families := make([]string, 0, len(versions))
		for _, version := range versions {
			families = append(families, version.Family)
		}
		families = uniqueStrings(families)
		if len(families) == 0 {
			return w.halt(state, errors.Errorf("no parameter group families found for engine %s", w.Engine), "couldn't pick a family")
		}

		idx, err := w.Selector.Choose("Which family do you want to use? ", families)
		if err != nil {
			return w.halt(state, err, "couldn't pick a parameter group family")
		}

		w.printf("Creating a parameter group.\n")
		_, err = w.DB.CreateParameterGroup(ctx, w.ParameterGroupName, families[idx], "Parameter group for the mlops tracking database")
		if err != nil {
			return w.halt(state, err, "couldn't create the parameter group")
		}

		// a descriptor is only trusted once a describe confirms it
		group, err = w.DB.ParameterGroup(ctx, w.ParameterGroupName)
		if err != nil {
			return w.halt(state, err, "couldn't re-read the created parameter group")
		}
		if group == nil {
			return w.halt(state, errors.Errorf("parameter group %s missing right after create", w.ParameterGroupName), "create didn't stick")
		}

		logger.WithField("family", group.Family).Info("created parameter group")
	}

	w.printf("Parameter group %s (family %s)\n", group.Name, group.Family)
	w.rule()

	state.Put("parameterGroup", group)
	return multistep.ActionContinue
}

func (s *stepCreateParameterGroup) Cleanup(multistep.StateBag) {}
