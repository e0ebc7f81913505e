// internal/cli/cli.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnnekeHeelsum/android-uploader/config"
	"github.com/AnnekeHeelsum/android-uploader/db"
	"github.com/AnnekeHeelsum/android-uploader/logging"
	"github.com/AnnekeHeelsum/android-uploader/metrics"
	"github.com/AnnekeHeelsum/android-uploader/settings"
	"github.com/AnnekeHeelsum/android-uploader/version"
)

// errRejected marks a run that ended with a validation diagnostic. It maps
// to exit code 2.
var errRejected = errors.New("configuration rejected")

// Run is the entrypoint used by cmd/uploadcfg.
//
// binName is the CLI name shown in help text. args excludes the binary name
// (i.e. os.Args[1:]). It returns a process exit code; callers should
// os.Exit(Run(...)).
func Run(binName string, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, binName, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, binName string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{logger: zap.NewNop()}
	root := buildRootCmd(binName, a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.finish()

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errRejected):
		return 2
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

// app is the state shared by every command of one run.
type app struct {
	logger *zap.Logger
	cfg    *config.CoreConfig
}

// setup loads configuration from the root's persistent flags and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(logging.BootstrapLogger(), cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	logger, err := logging.BuildLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	metrics.RegisterDefault(logger)
	logger.Debug("configuration loaded", zap.String("config", cfg.Dump()))
	return nil
}

// openStore opens the configured settings backend.
func (a *app) openStore(ctx context.Context) (settings.Store, error) {
	store, err := db.Open(ctx, a.cfg.Store, a.cfg.DBConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store.Backend, err)
	}
	return store, nil
}

// finish exports metrics and flushes the logger. It runs after every
// command, including failed ones.
func (a *app) finish() {
	if a.cfg != nil && a.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.logger.Warn("cannot write metrics textfile",
				zap.String("file", a.cfg.MetricsTextfile), zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func buildRootCmd(binName string, a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   binName,
		Short: "Configure uploader targets from setup codes",
		Long: `Reads an uploader setup payload, validates each target it describes,
and writes the result to the settings store.

Targets: document store (MongoDB), REST API, MQTT broker.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		buildApplyCmd(a),
		buildPlanCmd(a),
		buildShowCmd(a),
		buildSetCmd(a),
		buildEncodeCmd(a),
	)
	return root
}
