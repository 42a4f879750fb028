package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/specialistvlad/learngrid/internal/app"
	"github.com/specialistvlad/learngrid/internal/config"
)

// Build information, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "learngrid"

// options holds the global flags shared by every subcommand.
type options struct {
	logW io.Writer

	curriculum      []string
	settings        string
	backend         string
	dsn             string
	logLevel        string
	logFormat       string
	workers         int
	healthcheckPort int
}

// Execute runs the command line described by args. Errors are returned as
// *ExitError.
func Execute(ctx context.Context, args []string, outW, logW io.Writer) error {
	root := NewRootCommand(outW, logW)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return toExitError(err)
	}
	return nil
}

// NewRootCommand builds the learngrid command tree. Command output goes to
// outW and logs to logW.
func NewRootCommand(outW, logW io.Writer) *cobra.Command {
	o := &options{logW: logW}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Prerequisite graph engine for philosophy courses",
		Long: `learngrid keeps the prerequisite graph of a course of lectures and
philosophical entities free of cycles, orders study paths, scores how ready a
learner is for each node, and moves learners through the study workflow.

The graph and learner progress are seeded from HCL curriculum files. Use the
duckdb store with --dsn to keep progress between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(logW)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	o.bindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		checkCycleCmd(o),
		addPrerequisiteCmd(o),
		removePrerequisiteCmd(o),
		readinessCmd(o),
		availabilityCmd(o),
		statusCmd(o),
		suggestCmd(o),
		pathCmd(o),
		nextStatesCmd(),
		advanceCmd(o),
		masteryCmd(o),
		serveCmd(o),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  exactArgs(0),
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// bindFlags registers the global flags on flags.
func (o *options) bindFlags(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&o.curriculum, "curriculum", "c", nil, "Curriculum file or directory to seed from (repeatable)")
	flags.StringVar(&o.settings, "settings", "", "Settings file path (YAML)")
	flags.StringVar(&o.backend, "store", config.BackendMemory, "Store backend: memory or duckdb")
	flags.StringVar(&o.dsn, "dsn", "", "DuckDB database path (implies --store duckdb)")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&o.logFormat, "log-format", "text", "Log output format (text or json)")
	flags.IntVar(&o.workers, "workers", 0, "Availability workers (0 uses GOMAXPROCS)")
	flags.IntVar(&o.healthcheckPort, "healthcheck-port", 0, "Port for the health and metrics server (0 disables it)")
}

// loadConfig reads the settings file, if any, and applies the flags the user
// set explicitly on top of it.
func (o *options) loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.settings != "" {
		loaded, err := config.LoadFromFile(o.settings)
		if err != nil {
			return nil, usageError(err)
		}
		cfg = loaded
	}

	// Explicit flags win over the file, zero values included.
	if flags.Changed("store") {
		cfg.Store.Backend = strings.ToLower(o.backend)
		if cfg.Store.Backend == config.BackendMemory && !flags.Changed("dsn") {
			cfg.Store.DSN = ""
		}
	}
	if flags.Changed("dsn") {
		cfg.Store.DSN = o.dsn
		if !flags.Changed("store") && o.dsn != "" {
			cfg.Store.Backend = config.BackendDuckDB
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(o.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = strings.ToLower(o.logFormat)
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("healthcheck-port") {
		cfg.Healthcheck.Port = o.healthcheckPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageError(fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg, nil
}

// open builds the App and seeds it from the curriculum flags.
func (o *options) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.loadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), o.logW, cfg)
	if err != nil {
		return nil, err
	}
	if len(o.curriculum) > 0 {
		if _, err := a.LoadCurriculum(o.curriculum...); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	return a, nil
}

// withApp adapts fn into a cobra RunE that opens and closes the App around it.
func (o *options) withApp(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, a, args)
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
