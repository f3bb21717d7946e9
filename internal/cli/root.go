// Package cli implements the gomarket command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/gomarket/internal/paths"
	"github.com/mesh-intelligence/gomarket/pkg/cart"
	"github.com/mesh-intelligence/gomarket/pkg/storage"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// annotationCart marks commands that run against an open cart.
const annotationCart = "gomarket.cart"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	jsonMode  bool
}

// app holds the state of one CLI invocation.
type app struct {
	flags  rootFlags
	stdout io.Writer
	stderr io.Writer

	configDir string
	viper     *viper.Viper
	log       *logrus.Logger
	backend   types.Backend
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// rootCmd creates the top-level "gomarket" command with global flags and all
// subcommands registered. Output goes to stdout; logs and errors go to stderr.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gomarket",
		Short: "A persistent shopping cart",
		Long: "gomarket keeps a shopping cart of products with quantities and\n" +
			"persists it to a pluggable key-value backend (file, sqlite, redis, memory).",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory for file and sqlite backends (default: platform data dir)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: memory, file, sqlite, redis (default: file)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		a.newVersionCmd(),
		a.newInitCmd(),
		a.newAddCmd(),
		a.newIncrementCmd(),
		a.newDecrementCmd(),
		a.newListCmd(),
	)
	return root
}

// setup loads configuration and the logger for every command. Commands
// annotated with annotationCart additionally get an attached backend and an
// open cart installed in their context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.viper = v

	level := v.GetString(cfgKeyLogLevel)
	if a.flags.logLevel != "" {
		level = a.flags.logLevel
	}
	log, err := newLogger(a.stderr, level, v.GetString(cfgKeyLogFormat))
	if err != nil {
		return err
	}
	a.log = log

	if _, ok := cmd.Annotations[annotationCart]; !ok {
		return nil
	}

	cfg, err := storeConfig(v, a.flags)
	if err != nil {
		return err
	}
	backend, err := storage.Attach(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrStorageIO, err)
	}
	a.backend = backend
	a.log.WithFields(logrus.Fields{
		"backend":  cfg.Backend,
		"data_dir": cfg.DataDir,
	}).Debug("backend attached")

	c, err := cart.Open(cmd.Context(), backend, cfg, a.log)
	if err != nil {
		return err
	}
	cmd.SetContext(cart.NewContext(cmd.Context(), c))
	return nil
}

// close detaches the backend opened by setup, if any.
func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Detach()
	a.backend = nil
	return err
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = fmt.Errorf("detach backend: %w", cerr)
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// Execute runs the root command against the process arguments and exits
// with the appropriate code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// exitCode maps storage and backend failures to exitSysError and everything
// else to exitUserError.
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrStorageIO),
		errors.Is(err, types.ErrDetached),
		errors.Is(err, types.ErrCartContextMissing):
		return exitSysError
	default:
		return exitUserError
	}
}
