// Package cli implements the fundiary command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fundiary/fundiary/internal/logging"
	"github.com/fundiary/fundiary/internal/paths"
	"github.com/fundiary/fundiary/internal/sqlite"
	"github.com/fundiary/fundiary/pkg/fundiary"
	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the state built before each command.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string

	config   fileConfig
	logger   zerolog.Logger
	registry *pane.Registry
}

// NewRootCmd creates the top-level "fundiary" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:     "fundiary",
		Short:   "Compose diaries from panes on a grid",
		Long:    "Fundiary stores diaries, diary templates, and images in a local SQLite\ndatabase and builds diaries by laying out typed panes on a grid.",
		Version: fundiary.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (default: config.yaml log_level or info)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newPaneCmd(a))
	root.AddCommand(newTemplateCmd(a))
	root.AddCommand(newDiaryCmd(a))
	root.AddCommand(newImageCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("error:"), err)
		os.Exit(exitCode(err))
	}
}

// setup loads config.yaml and builds the logger and pane registry.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return systemError(err)
	}
	a.config = cfg

	level := a.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level, true)
	if err != nil {
		return err
	}
	a.logger = logger
	a.registry = pane.NewDefaultRegistry(pane.WithLogger(logger))
	return nil
}

// attachBackend resolves the data directory and attaches a SQLite backend.
// The caller must Detach it.
func (a *app) attachBackend() (*sqlite.Backend, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.config.DataDir)
	if err != nil {
		return nil, systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	backend := sqlite.NewBackend(a.registry, sqlite.WithLogger(a.logger))
	if err := backend.Attach(types.Config{Backend: a.config.Backend, DataDir: dataDir}); err != nil {
		return nil, systemError(fmt.Errorf("attach backend: %w", err))
	}
	a.logger.Debug().Str("path", backend.Path()).Msg("attached")
	return backend, nil
}

// withBackend runs fn against an attached backend and detaches afterwards.
func (a *app) withBackend(fn func(*sqlite.Backend) error) error {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()
	return classify(fn(backend))
}

// sysError marks failures of the environment rather than of the request.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(err error) error {
	if err == nil {
		return nil
	}
	return &sysError{err: err}
}

// userErrors are the sentinels caused by bad input.
var userErrors = []error{
	types.ErrNotFound, types.ErrInvalidID, types.ErrInvalidData, types.ErrInvalidName,
	types.ErrUnknownPane, types.ErrFieldNotFound, types.ErrTypeMismatch, types.ErrOutOfRange,
	types.ErrConstraintViolation, types.ErrMediaRejected, types.ErrInvalidIdentifier,
	errUsage,
}

// errUsage reports malformed command arguments.
var errUsage = errors.New("invalid argument")

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classify marks store errors that are not caused by the request as system
// errors.
func classify(err error) error {
	if err == nil || isUserError(err) {
		return err
	}
	var se *sysError
	if errors.As(err, &se) {
		return err
	}
	return systemError(err)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *sysError
	if errors.As(err, &se) && !isUserError(err) {
		return exitSysError
	}
	return exitUserError
}
