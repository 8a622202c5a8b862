package mlops

import (
	"fmt"
	"strconv"

	gocontext "context"

	"github.com/mitchellh/multistep"

	"github.com/franklinobasy/mlops/cloud"
	"github.com/franklinobasy/mlops/context"
	"github.com/franklinobasy/mlops/prompt"
)

// autoIncrementPrefix selects the parameters offered for interactive
// tuning; anything else in the group keeps the family default.
const autoIncrementPrefix = "auto_increment"

// stepUpdateParameters walks the group's auto-increment parameters and asks
// for a value for each one that is modifiable, integer-typed, and declares
// a parseable allowed range.
type stepUpdateParameters struct{}

func (s *stepUpdateParameters) Run(state multistep.StateBag) multistep.StepAction {
	w := state.Get("workflow").(*Workflow)
	ctx := state.Get("ctx").(gocontext.Context)
	logger := context.LoggerFromContext(ctx).WithField("self", "step_update_parameters")

	w.printf("Let's set some parameter values in your parameter group.\n")

	params, err := w.DB.Parameters(ctx, w.ParameterGroupName, autoIncrementPrefix, "")
	if err != nil {
		return w.halt(state, err, "couldn't list the group's parameters")
	}

	updates := []cloud.Parameter{}
	for _, param := range params {
		if !param.Modifiable || param.DataType != "integer" {
			continue
		}

		lower, upper, err := parseAllowedRange(param.AllowedValues)
		if err != nil {
			logger.WithField("parameter", param.Name).WithField("err", err).Warn("skipping parameter without a numeric range")
			continue
		}

		w.printf("The %s parameter is described as:\n\t%s\n", param.Name, param.Description)
		value, err := prompt.AskInt(w.Selector,
			fmt.Sprintf("Enter a value between %d and %d: ", lower, upper),
			prompt.InRange(lower, upper))
		if err != nil {
			return w.halt(state, &InvalidParameterValueError{Name: param.Name, Reason: err.Error()}, "couldn't get a parameter value")
		}

		param.Value = strconv.FormatInt(value, 10)
		updates = append(updates, param)
	}

	if len(updates) > 0 {
		if err := w.DB.ModifyParameters(ctx, w.ParameterGroupName, updates); err != nil {
			return w.halt(state, err, "couldn't update the group's parameters")
		}
		logger.WithField("count", len(updates)).Info("updated parameters")
	}

	w.printf("You can get a list of parameters you've set by specifying a source of 'user'.\n")
	userParams, err := w.DB.Parameters(ctx, w.ParameterGroupName, "", "user")
	if err != nil {
		return w.halt(state, err, "couldn't list user-set parameters")
	}
	for _, param := range userParams {
		w.printf("\t%s = %s\n", param.Name, param.Value)
	}
	w.rule()

	return multistep.ActionContinue
}

func (s *stepUpdateParameters) Cleanup(multistep.StateBag) {}
