// Package config contains the flag-driven configuration for the
// provisioning CLI. Every flag can also be set through the environment with
// an MLOPS_INFRA_ prefix.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/urfave/cli.v1"
)

var (
	defaultRegion           = "us-east-1"
	defaultEngine           = "postgres"
	defaultParameterGroup   = "mlops-params-group"
	defaultDBInstanceID     = "mlflow-backend-db"
	defaultDBName           = "mlflow_db"
	defaultStorageType      = "standard"
	defaultAllocatedStorage = 5

	defaultInstanceType = "t2.micro"
	defaultImageID      = "ami-0fc5d935ebf8bc3bc"
	defaultKeyPairName  = "mlops-practice-ec2-key-pair"
	defaultKeyStoreDir  = os.TempDir()

	defaultBucketName = "fo-mlops-001"

	defaultPollInterval, _ = time.ParseDuration("10s")
	defaultPollMaxAttempts = 120

	defaultHostname, _ = os.Hostname()
)

// Config contains all the configuration needed to run the provisioning
// workflows.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	Engine             string
	ParameterGroupName string
	DBInstanceID       string
	DBName             string
	StorageType        string
	AllocatedStorage   int

	InstanceType string
	ImageID      string
	KeyPairName  string
	KeyStoreDir  string

	BucketName string

	PollInterval    time.Duration
	PollMaxAttempts int

	LibratoEmail  string
	LibratoToken  string
	LibratoSource string
	SentryDSN     string
	Hostname      string

	SentryHookErrors bool
	SilenceMetrics   bool
	Debug            bool
}

// FromCLIContext creates a Config using a cli.Context by pulling
// configuration from the flags in the context.
func FromCLIContext(c *cli.Context) *Config {
	return &Config{
		Region:          c.GlobalString("region"),
		AccessKeyID:     c.GlobalString("aws-access-key-id"),
		SecretAccessKey: c.GlobalString("aws-secret-access-key"),

		Engine:             c.GlobalString("engine"),
		ParameterGroupName: c.GlobalString("parameter-group-name"),
		DBInstanceID:       c.GlobalString("db-instance-id"),
		DBName:             c.GlobalString("db-name"),
		StorageType:        c.GlobalString("storage-type"),
		AllocatedStorage:   c.GlobalInt("allocated-storage"),

		InstanceType: c.GlobalString("instance-type"),
		ImageID:      c.GlobalString("image-id"),
		KeyPairName:  c.GlobalString("key-pair-name"),
		KeyStoreDir:  c.GlobalString("key-store-dir"),

		BucketName: c.GlobalString("bucket-name"),

		PollInterval:    c.GlobalDuration("poll-interval"),
		PollMaxAttempts: c.GlobalInt("poll-max-attempts"),

		LibratoEmail:  c.GlobalString("librato-email"),
		LibratoToken:  c.GlobalString("librato-token"),
		LibratoSource: c.GlobalString("librato-source"),
		SentryDSN:     c.GlobalString("sentry-dsn"),
		Hostname:      c.GlobalString("hostname"),

		SentryHookErrors: c.GlobalBool("sentry-hook-errors"),
		SilenceMetrics:   c.GlobalBool("silence-metrics"),
		Debug:            c.GlobalBool("debug"),
	}
}

// WriteEnvConfig writes the given configuration to out as a list of
// environment variable settings suitable to be sourced by a Bourne-like
// shell.
func WriteEnvConfig(cfg *Config, out io.Writer) {
	cfgMap := map[string]interface{}{
		"region":                cfg.Region,
		"aws-access-key-id":     cfg.AccessKeyID,
		"aws-secret-access-key": cfg.SecretAccessKey,
		"engine":                cfg.Engine,
		"parameter-group-name":  cfg.ParameterGroupName,
		"db-instance-id":        cfg.DBInstanceID,
		"db-name":               cfg.DBName,
		"storage-type":          cfg.StorageType,
		"allocated-storage":     cfg.AllocatedStorage,
		"instance-type":         cfg.InstanceType,
		"image-id":              cfg.ImageID,
		"key-pair-name":         cfg.KeyPairName,
		"key-store-dir":         cfg.KeyStoreDir,
		"bucket-name":           cfg.BucketName,
		"poll-interval":         cfg.PollInterval,
		"poll-max-attempts":     cfg.PollMaxAttempts,
		"librato-email":         cfg.LibratoEmail,
		"librato-token":         cfg.LibratoToken,
		"librato-source":        cfg.LibratoSource,
		"sentry-dsn":            cfg.SentryDSN,
		"hostname":              cfg.Hostname,
		"sentry-hook-errors":    cfg.SentryHookErrors,
		"silence-metrics":       cfg.SilenceMetrics,
		"debug":                 cfg.Debug,
	}

	keys := make([]string, 0, len(cfgMap))
	for key := range cfgMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "# %s env config generated %s\n", "mlops-infra", time.Now().UTC())
	for _, key := range keys {
		envKey := fmt.Sprintf("MLOPS_INFRA_%s", upcaseEnv(key))
		fmt.Fprintf(out, "export %s=%q\n", envKey, fmt.Sprintf("%v", cfgMap[key]))
	}
}
