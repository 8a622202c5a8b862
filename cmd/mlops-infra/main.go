package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/franklinobasy/mlops"
	"github.com/franklinobasy/mlops/config"
)

func main() {
	app := cli.NewApp()
	app.Usage = "Provision the MLOps tracking stack on AWS"
	app.Version = mlops.VersionString
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("%v v=%v rev=%v d=%v\n", c.App.Name,
			mlops.VersionString, mlops.RevisionString, mlops.GeneratedString)
	}
	app.Flags = config.Flags

	app.Commands = []cli.Command{
		{
			Name:  "database",
			Usage: "Manage the tracking backend database",
			Subcommands: []cli.Command{
				{
					Name:   "provision",
					Usage:  "Interactively create the parameter group and DB instance",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.ProvisionDatabase() }),
				},
				{
					Name:   "teardown",
					Usage:  "Delete the DB instance and its parameter group",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.TeardownDatabase() }),
				},
			},
		},
		{
			Name:  "server",
			Usage: "Manage the tracking server instance",
			Subcommands: []cli.Command{
				{
					Name:   "key-pair",
					Usage:  "Create the SSH key pair and store the private key locally",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.CreateKeyPair() }),
				},
				{
					Name:   "delete-key-pair",
					Usage:  "Delete the SSH key pair from the provider",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.DeleteKeyPair() }),
				},
				{
					Name:   "launch",
					Usage:  "Launch the tracking server and wait for it to run",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.LaunchServer() }),
				},
				{
					Name:   "list",
					Usage:  "List running instances",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.ListServers() }),
				},
				{
					Name:      "ip",
					Usage:     "Print the public IP of an instance",
					ArgsUsage: "<instance-id>",
					Action: run(func(i *mlops.CLI, c *cli.Context) error {
						return i.ShowServerIP(c.Args().First())
					}),
				},
				{
					Name:      "stop",
					Usage:     "Stop an instance",
					ArgsUsage: "<instance-id>",
					Action: run(func(i *mlops.CLI, c *cli.Context) error {
						return i.StopServer(c.Args().First())
					}),
				},
				{
					Name:      "terminate",
					Usage:     "Terminate an instance",
					ArgsUsage: "<instance-id>",
					Action: run(func(i *mlops.CLI, c *cli.Context) error {
						return i.TerminateServer(c.Args().First())
					}),
				},
			},
		},
		{
			Name:  "artifacts",
			Usage: "Manage the artifact store",
			Subcommands: []cli.Command{
				{
					Name:   "create-bucket",
					Usage:  "Create the artifact store bucket",
					Action: run(func(i *mlops.CLI, _ *cli.Context) error { return i.CreateArtifactBucket() }),
				},
			},
		},
	}

	app.Run(os.Args)
}

func run(f func(*mlops.CLI, *cli.Context) error) func(*cli.Context) {
	return func(c *cli.Context) {
		infraCLI := mlops.NewCLI(c)

		canRun, err := infraCLI.Setup()
		if err != nil {
			logrus.WithField("err", err).Fatal("setup failed")
		}
		if !canRun {
			return
		}

		if err := f(infraCLI, c); err != nil {
			logrus.WithField("err", err).Fatal("command failed")
		}
	}
}
