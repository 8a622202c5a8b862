package config

import (
	"fmt"
	"strings"

	"gopkg.in/urfave/cli.v1"
)

// Flags is all CLI flags accepted by mlops-infra.
var Flags = []cli.Flag{
	cli.StringFlag{Name: "region", Value: defaultRegion, Usage: "AWS region to provision resources in", EnvVar: miEnvVars("REGION")},
	cli.StringFlag{Name: "aws-access-key-id", Usage: "AWS access key id; when unset the shared credential chain is used", EnvVar: miEnvVars("AWS_ACCESS_KEY_ID")},
	cli.StringFlag{Name: "aws-secret-access-key", Usage: "AWS secret access key", EnvVar: miEnvVars("AWS_SECRET_ACCESS_KEY")},

	cli.StringFlag{Name: "engine", Value: defaultEngine, Usage: "Database engine for the tracking backend store", EnvVar: miEnvVars("ENGINE")},
	cli.StringFlag{Name: "parameter-group-name", Value: defaultParameterGroup, EnvVar: miEnvVars("PARAMETER_GROUP_NAME")},
	cli.StringFlag{Name: "db-instance-id", Value: defaultDBInstanceID, EnvVar: miEnvVars("DB_INSTANCE_ID")},
	cli.StringFlag{Name: "db-name", Value: defaultDBName, EnvVar: miEnvVars("DB_NAME")},
	cli.StringFlag{Name: "storage-type", Value: defaultStorageType, EnvVar: miEnvVars("STORAGE_TYPE")},
	cli.IntFlag{Name: "allocated-storage", Value: defaultAllocatedStorage, Usage: "DB instance storage in GiB", EnvVar: miEnvVars("ALLOCATED_STORAGE")},

	cli.StringFlag{Name: "instance-type", Value: defaultInstanceType, Usage: "EC2 instance type for the tracking server", EnvVar: miEnvVars("INSTANCE_TYPE")},
	cli.StringFlag{Name: "image-id", Value: defaultImageID, Usage: "AMI to launch the tracking server from", EnvVar: miEnvVars("IMAGE_ID")},
	cli.StringFlag{Name: "key-pair-name", Value: defaultKeyPairName, EnvVar: miEnvVars("KEY_PAIR_NAME")},
	cli.StringFlag{Name: "key-store-dir", Value: defaultKeyStoreDir, Usage: "Directory the private key file is written to", EnvVar: miEnvVars("KEY_STORE_DIR")},

	cli.StringFlag{Name: "bucket-name", Value: defaultBucketName, Usage: "Artifact store bucket", EnvVar: miEnvVars("BUCKET_NAME")},

	cli.DurationFlag{Name: "poll-interval", Value: defaultPollInterval, Usage: "Sleep between resource status polls", EnvVar: miEnvVars("POLL_INTERVAL")},
	cli.IntFlag{Name: "poll-max-attempts", Value: defaultPollMaxAttempts, Usage: "Give up waiting for a resource after this many polls", EnvVar: miEnvVars("POLL_MAX_ATTEMPTS")},

	cli.StringFlag{Name: "librato-email", Usage: "Librato metrics account email", EnvVar: miEnvVars("LIBRATO_EMAIL")},
	cli.StringFlag{Name: "librato-token", Usage: "Librato metrics account token", EnvVar: miEnvVars("LIBRATO_TOKEN")},
	cli.StringFlag{Name: "librato-source", Value: defaultHostname, Usage: "Librato metrics source name", EnvVar: miEnvVars("LIBRATO_SOURCE")},
	cli.StringFlag{Name: "sentry-dsn", Usage: "The DSN to send Sentry events to", EnvVar: miEnvVars("SENTRY_DSN")},
	cli.BoolFlag{Name: "sentry-hook-errors", Usage: "Add logrus.ErrorLevel to logrus sentry hook", EnvVar: miEnvVars("SENTRY_HOOK_ERRORS")},
	cli.StringFlag{Name: "hostname", Value: defaultHostname, Usage: "Host name used in log output", EnvVar: miEnvVars("HOSTNAME")},

	cli.BoolFlag{Name: "silence-metrics", Usage: "silence metrics logging in case no Librato creds have been provided", EnvVar: miEnvVars("SILENCE_METRICS")},
	cli.BoolFlag{Name: "echo-config", Usage: "echo parsed config and exit", EnvVar: miEnvVars("ECHO_CONFIG")},
	cli.BoolFlag{Name: "debug", Usage: "set log level to debug", EnvVar: miEnvVars("DEBUG")},
}

func miEnvVars(key string) string {
	return strings.ToUpper(fmt.Sprintf("MLOPS_INFRA_%s,%s", key, key))
}

func upcaseEnv(flagName string) string {
	return strings.ToUpper(strings.Replace(flagName, "-", "_", -1))
}
