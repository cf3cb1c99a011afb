// Package cli implements the compdb command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/albertocavalcante/compdb/internal/log"
	"github.com/albertocavalcante/compdb/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// globalFlags holds persistent flags that apply to all commands
type globalFlags struct {
	verbosity  int
	logFormat  string
	configPath string
}

// flagAliases maps accepted spellings to the registered flag names.
var flagAliases = map[string]string{
	"exclude-dirs": "exclude_dirs",
	"names_only":   "names-only",
}

// rootCmd is the command run by Execute.
var rootCmd = NewRootCmd()

// NewRootCmd builds a fresh command tree with its own flag state.
func NewRootCmd() *cobra.Command {
	var (
		global globalFlags
		reduce reduceFlags
		cfg    *config.Config
	)

	cmd := &cobra.Command{
		Use:   "compdb <compile_commands.json>",
		Short: "Reduce a compilation database to one command per file",
		Long: `Compdb reads a compilation database (compile_commands.json) and keeps only
the first compile command for each source file. Editors, static analyzers and
IDE indexers want exactly one command per file; some build systems emit many.

Entries under --exclude_dirs (relative to the project root) are dropped before
deduplication. With --names-only the unique file names are printed relative
to the project root instead of the reduced JSON.

Example:

  compdb build/compile_commands.json > compile_commands.json
  compdb build/compile_commands.json --exclude_dirs third_party,build/_deps
  compdb build/compile_commands.json --names-only`,
		Args:          inputArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = loadConfig(global.configPath)
			if err != nil {
				return &usageError{err: err}
			}
			return initLogging(cmd, global, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(cmd, args, reduce, cfg)
		},
	}

	// Global flags (persistent across all commands)
	cmd.PersistentFlags().IntVarP(&global.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	cmd.PersistentFlags().StringVar(&global.logFormat, "log-format", "text",
		"Log format (text, json)")
	cmd.PersistentFlags().StringVar(&global.configPath, "config", "",
		"Config file to use instead of project config discovery")

	addReduceFlags(cmd, &reduce)
	cmd.Flags().SetNormalizeFunc(normalizeFlagName)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// newVersionCmd shows version information
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "compdb %s (%s)\n", Version, GitCommit)
			return err
		},
	}
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

// loadConfig loads layered configuration, or the explicit file when given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadWithFile(path)
	}
	return config.Load(), nil
}

// initLogging applies config and CLI flags to the logger.
// This runs after flags are parsed but before command execution.
func initLogging(cmd *cobra.Command, global globalFlags, cfg *config.Config) error {
	verbosity := cfg.Verbosity()
	if cmd.Flags().Changed("verbosity") {
		verbosity = global.verbosity
	}

	format := cfg.Log.Format
	if cmd.Flags().Changed("log-format") || format == "" {
		format = global.logFormat
	}
	if err := log.ValidateFormat(format); err != nil {
		return &usageError{err: err}
	}

	log.InitWriter(cmd.ErrOrStderr(), verbosity, format)
	if len(cfg.Sources) > 0 {
		log.Component("cli").Infow("loaded config", "sources", cfg.Sources)
	}
	return nil
}

// Execute runs the root command and exits with its status.
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	os.Exit(report(os.Stderr, err))
}

// report prints err the way cobra would and returns the exit code.
func report(w io.Writer, err error) int {
	code := ExitCode(err)
	switch {
	case err == nil:
	case errors.Is(err, errNeedsReduce):
		// Already explained on stderr
	case code == ExitUsage:
		fmt.Fprintf(w, "Error: %v\n", err)
		fmt.Fprintln(w, "Run 'compdb --help' for usage.")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return code
}

// ExitCode maps an error returned by the command to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var uerr *usageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	return ExitError
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
