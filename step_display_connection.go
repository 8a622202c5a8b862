package mlops

import (
	"strings"

	"github.com/mitchellh/multistep"

	"github.com/franklinobasy/mlops/cloud"
)

// stepDisplayConnection prints how to reach the freshly provisioned
// database from a client in the same VPC.
type stepDisplayConnection struct{}

func (s *stepDisplayConnection) Run(state multistep.StateBag) multistep.StepAction {
	w := state.Get("workflow").(*Workflow)
	inst := state.Get("dbInstance").(*cloud.DBInstance)

	w.printf("You can now connect to your database using your favorite %s client\n"+
		"from a machine running in the same VPC as your DB instance:\n\n", inst.Engine)

	if strings.Contains(inst.Engine, "postgres") {
		w.printf("\tpsql -h %s -p %d -U %s %s\n\n", inst.Endpoint, inst.Port, inst.MasterUsername, inst.DBName)
	} else {
		w.printf("\tmysql -h %s -P %d -u %s -p\n\n", inst.Endpoint, inst.Port, inst.MasterUsername)
	}

	w.rule()
	return multistep.ActionContinue
}

func (s *stepDisplayConnection) Cleanup(multistep.StateBag) {}
