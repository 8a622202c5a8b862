package mlops

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gocontext "context"

	"github.com/dustin/go-humanize"
	"github.com/mihasya/go-metrics-librato"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/franklinobasy/mlops/cloud"
	"github.com/franklinobasy/mlops/config"
	"github.com/franklinobasy/mlops/context"
	mlopsmetrics "github.com/franklinobasy/mlops/metrics"
	"github.com/franklinobasy/mlops/prompt"
)

// CLI is the top level of execution for the whole shebang
type CLI struct {
	c        *cli.Context
	bootTime time.Time

	ctx    gocontext.Context
	cancel gocontext.CancelFunc
	logger *logrus.Entry

	Config *config.Config

	DB       cloud.DatabaseClient
	Compute  cloud.ComputeClient
	Storage  cloud.StorageClient
	Selector prompt.Selector
}

// NewCLI creates a new *CLI from a *cli.Context
func NewCLI(c *cli.Context) *CLI {
	return &CLI{
		c:        c,
		bootTime: time.Now().UTC(),
	}
}

// Setup runs one-time preparatory actions and returns a boolean success
// value that is used to determine if it is safe to invoke the command func
func (i *CLI) Setup() (bool, error) {
	if i.c.GlobalBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	ctx, cancel := gocontext.WithCancel(gocontext.Background())
	ctx = context.FromUUID(ctx, uuid.NewRandom().String())
	ctx = context.FromComponent(ctx, "cli")

	i.ctx = ctx
	i.cancel = cancel
	i.logger = context.LoggerFromContext(ctx).WithField("self", "cli")

	cfg := config.FromCLIContext(i.c)
	i.Config = cfg

	if i.c.GlobalBool("echo-config") {
		config.WriteEnvConfig(cfg, os.Stdout)
		return false, nil
	}

	i.logger.WithFields(logrus.Fields{
		"cfg": fmt.Sprintf("%#v", cfg),
	}).Debug("read config")

	i.setupSentry()
	i.setupMetrics()
	i.signalHandler()

	sess, err := cloud.NewSession(cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		i.logger.WithField("err", err).Error("couldn't create an AWS session")
		return false, err
	}

	i.DB = cloud.NewRDS(sess)
	i.Compute = cloud.NewEC2(sess)
	i.Storage = cloud.NewS3(sess, cfg.Region)
	i.Selector = prompt.NewTerminal(os.Stdin, os.Stdout)

	return true, nil
}

func (i *CLI) setupSentry() {
	if i.Config.SentryDSN == "" {
		return
	}

	levels := []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
	}

	if i.Config.SentryHookErrors {
		levels = append(levels, logrus.ErrorLevel)
	}

	sentryHook, err := NewSentryHook(i.Config.SentryDSN, levels)
	if err != nil {
		i.logger.WithField("err", err).Error("couldn't create sentry hook")
		return
	}

	logrus.AddHook(sentryHook)
}

func (i *CLI) setupMetrics() {
	go mlopsmetrics.ReportMemstatsMetrics()

	if i.Config.LibratoEmail != "" && i.Config.LibratoToken != "" && i.Config.LibratoSource != "" {
		i.logger.Info("starting librato metrics reporter")

		go librato.Librato(metrics.DefaultRegistry, time.Minute,
			i.Config.LibratoEmail, i.Config.LibratoToken, i.Config.LibratoSource,
			[]float64{0.50, 0.75, 0.90, 0.95, 0.99, 0.999, 1.0}, time.Millisecond)
	} else if !i.Config.SilenceMetrics {
		i.logger.Info("starting logger metrics reporter")

		go metrics.Log(metrics.DefaultRegistry, time.Minute,
			log.New(os.Stderr, "metrics: ", log.Lmicroseconds))
	}
}

// signalHandler cancels the run context on SIGINT and SIGTERM so any
// in-flight poll loop unwinds instead of sleeping on.
func (i *CLI) signalHandler() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signalChan
		i.logger.WithField("signal", sig).Info("cancelling run")
		i.cancel()
	}()
}

func (i *CLI) newPoller() *Poller {
	return NewPoller(i.Config.PollInterval, uint64(i.Config.PollMaxAttempts))
}

func (i *CLI) newWorkflow() *Workflow {
	return &Workflow{
		DB:       i.DB,
		Selector: i.Selector,
		Poller:   i.newPoller(),
		Out:      os.Stdout,

		Engine:             i.Config.Engine,
		ParameterGroupName: i.Config.ParameterGroupName,
		InstanceID:         i.Config.DBInstanceID,
		DBName:             i.Config.DBName,
		StorageType:        i.Config.StorageType,
		AllocatedStorage:   int64(i.Config.AllocatedStorage),
	}
}

// ProvisionDatabase runs the interactive database provisioning workflow.
func (i *CLI) ProvisionDatabase() error {
	defer context.TimeSince(i.ctx, "mlops.cli.provision_database", time.Now())
	return i.newWorkflow().Run(i.ctx)
}

// TeardownDatabase deletes the DB instance, waits for it to be gone, and
// then deletes the parameter group.
func (i *CLI) TeardownDatabase() error {
	wanted, err := prompt.AskYesNo(i.Selector,
		fmt.Sprintf("Delete DB instance %s and parameter group %s (y/n)? ",
			i.Config.DBInstanceID, i.Config.ParameterGroupName))
	if err != nil {
		return err
	}
	if !wanted {
		return nil
	}

	w := i.newWorkflow()

	inst, err := i.DB.DBInstance(i.ctx, i.Config.DBInstanceID)
	if err != nil {
		return errors.Wrap(err, "couldn't check for the DB instance")
	}

	if inst != nil {
		if inst.Status != cloud.StatusDeleting {
			i.logger.WithField("instance", inst.ID).Info("deleting db instance")
			if _, err := i.DB.DeleteDBInstance(i.ctx, inst.ID); err != nil {
				return errors.Wrap(err, "couldn't delete the DB instance")
			}
		}

		if err := w.waitForInstanceGone(i.ctx); err != nil {
			return errors.Wrap(err, "gave up waiting for the DB instance to delete")
		}
	}

	i.logger.WithField("group", i.Config.ParameterGroupName).Info("deleting parameter group")
	if err := w.deleteParameterGroup(i.ctx); err != nil {
		return errors.Wrap(err, "couldn't delete the parameter group")
	}

	return nil
}

// CreateKeyPair creates the tracking server's SSH key pair and writes the
// private key to a mode 0400 file under the configured key store dir.
func (i *CLI) CreateKeyPair() error {
	key, err := i.Compute.CreateKeyPair(i.ctx, i.Config.KeyPairName)
	if err != nil {
		return errors.Wrap(err, "couldn't create a key pair")
	}

	keyPath := filepath.Join(i.Config.KeyStoreDir, key.Name+".pem")
	handle, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o400)
	if err != nil {
		return errors.Wrapf(err, "couldn't open %s for the private key", keyPath)
	}
	defer handle.Close()

	if _, err := handle.WriteString(key.Material); err != nil {
		return errors.Wrap(err, "couldn't write the private key")
	}

	i.logger.WithFields(logrus.Fields{
		"key":         key.Name,
		"fingerprint": key.Fingerprint,
	}).Info("created key pair")
	fmt.Println(keyPath)
	return nil
}

// LaunchServer starts the tracking server instance and waits for it to
// reach the running state.
func (i *CLI) LaunchServer() error {
	startBooting := time.Now()

	inst, err := i.Compute.RunInstance(i.ctx, &cloud.RunInstanceRequest{
		ImageID:      i.Config.ImageID,
		InstanceType: i.Config.InstanceType,
		KeyName:      i.Config.KeyPairName,
		Name:         "mlops-tracking-server",
	})
	if err != nil {
		return errors.Wrap(err, "couldn't launch the tracking server")
	}

	logger := i.logger.WithField("instance", inst.ID)
	logger.Info("launched, waiting for it to run")

	err = i.newPoller().Poll(i.ctx, "compute instance "+inst.ID, func(ctx gocontext.Context) (bool, error) {
		var perr error
		inst, perr = i.Compute.Instance(ctx, inst.ID)
		if perr != nil {
			return false, perr
		}
		return inst != nil && inst.State == "running" && inst.PublicIP != "", nil
	})
	if err != nil {
		return errors.Wrap(err, "gave up waiting for the tracking server")
	}

	context.TimeSince(i.ctx, "mlops.server.boot", startBooting)
	logger.WithField("boot_time", time.Since(startBooting)).Info("tracking server running")
	fmt.Printf("%s\t%s\n", inst.ID, inst.PublicIP)
	return nil
}

// ListServers prints every running instance in the region.
func (i *CLI) ListServers() error {
	instances, err := i.Compute.RunningInstances(i.ctx)
	if err != nil {
		return errors.Wrap(err, "couldn't list running instances")
	}

	for _, inst := range instances {
		fmt.Printf("%s\t%s\t%s\t%s\tup %s\n",
			inst.ID, inst.Type, inst.PublicIP, inst.PrivateIP,
			humanize.Time(inst.LaunchedAt))
	}
	return nil
}

// ShowServerIP prints the public IP of one instance.
func (i *CLI) ShowServerIP(instanceID string) error {
	inst, err := i.Compute.Instance(i.ctx, instanceID)
	if err != nil {
		return errors.Wrap(err, "couldn't describe the instance")
	}
	if inst == nil {
		return errors.Errorf("no instance %s", instanceID)
	}

	fmt.Println(inst.PublicIP)
	return nil
}

// StopServer stops an instance without terminating it.
func (i *CLI) StopServer(instanceID string) error {
	if err := i.Compute.StopInstance(i.ctx, instanceID); err != nil {
		return errors.Wrap(err, "couldn't stop the instance")
	}
	i.logger.WithField("instance", instanceID).Info("stopping instance")
	return nil
}

// TerminateServer terminates an instance.
func (i *CLI) TerminateServer(instanceID string) error {
	if err := i.Compute.TerminateInstance(i.ctx, instanceID); err != nil {
		return errors.Wrap(err, "couldn't terminate the instance")
	}
	i.logger.WithField("instance", instanceID).Info("terminating instance")
	return nil
}

// DeleteKeyPair removes the tracking server's key pair from the provider.
// The local key file, if any, is left alone.
func (i *CLI) DeleteKeyPair() error {
	if err := i.Compute.DeleteKeyPair(i.ctx, i.Config.KeyPairName); err != nil {
		return errors.Wrap(err, "couldn't delete the key pair")
	}
	i.logger.WithField("key", i.Config.KeyPairName).Info("deleted key pair")
	return nil
}

// CreateArtifactBucket creates the artifact store bucket.
func (i *CLI) CreateArtifactBucket() error {
	if err := i.Storage.CreateBucket(i.ctx, i.Config.BucketName); err != nil {
		return errors.Wrap(err, "couldn't create the artifact bucket")
	}
	i.logger.WithField("bucket", i.Config.BucketName).Info("created artifact bucket")
	return nil
}
