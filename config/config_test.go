package config

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/urfave/cli.v1"
)

func newTestContext(args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		f.Apply(set)
	}
	_ = set.Parse(args)
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestFromCLIContextDefaults(t *testing.T) {
	cfg := FromCLIContext(newTestContext())

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "postgres", cfg.Engine)
	assert.Equal(t, "mlops-params-group", cfg.ParameterGroupName)
	assert.Equal(t, "mlflow-backend-db", cfg.DBInstanceID)
	assert.Equal(t, "mlflow_db", cfg.DBName)
	assert.Equal(t, "standard", cfg.StorageType)
	assert.Equal(t, 5, cfg.AllocatedStorage)
	assert.Equal(t, "t2.micro", cfg.InstanceType)
	assert.Equal(t, "mlops-practice-ec2-key-pair", cfg.KeyPairName)
	assert.Equal(t, "fo-mlops-001", cfg.BucketName)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 120, cfg.PollMaxAttempts)
	assert.False(t, cfg.Debug)
}

func TestFromCLIContextFlagOverrides(t *testing.T) {
	cfg := FromCLIContext(newTestContext(
		"-region", "eu-west-1",
		"-engine", "mysql",
		"-allocated-storage", "20",
		"-poll-interval", "2s",
		"-debug",
	))

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "mysql", cfg.Engine)
	assert.Equal(t, 20, cfg.AllocatedStorage)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.True(t, cfg.Debug)
}

func TestWriteEnvConfig(t *testing.T) {
	cfg := FromCLIContext(newTestContext("-region", "eu-west-1"))

	out := &bytes.Buffer{}
	WriteEnvConfig(cfg, out)

	assert.Contains(t, out.String(), `export MLOPS_INFRA_REGION="eu-west-1"`)
	assert.Contains(t, out.String(), `export MLOPS_INFRA_DB_NAME="mlflow_db"`)
	assert.Contains(t, out.String(), `export MLOPS_INFRA_POLL_INTERVAL="10s"`)
}

func TestUpcaseEnv(t *testing.T) {
	assert.Equal(t, "PARAMETER_GROUP_NAME", upcaseEnv("parameter-group-name"))
	assert.Equal(t, "DEBUG", upcaseEnv("debug"))
}
