package cli

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/albertocavalcante/compdb/internal/log"
	"github.com/albertocavalcante/compdb/pkg/compdb"
	"github.com/albertocavalcante/compdb/pkg/config"
	"github.com/spf13/cobra"
)

type reduceFlags struct {
	namesOnly       bool
	excludeDirs     []string
	excludePatterns []string
	separator       string
	root            string
	check           bool
}

func addReduceFlags(cmd *cobra.Command, f *reduceFlags) {
	cmd.Flags().BoolVar(&f.namesOnly, "names-only", false,
		"Print unique file names relative to the project root instead of JSON")
	cmd.Flags().StringSliceVar(&f.excludeDirs, "exclude_dirs", nil,
		"Directories (relative to the project root) whose files are dropped")
	cmd.Flags().StringSliceVar(&f.excludePatterns, "exclude-pattern", nil,
		"Glob patterns (e.g. **/_deps/**) whose files are dropped")
	cmd.Flags().StringVar(&f.separator, "separator", string(compdb.SeparatorSpace),
		"Separator for --names-only output (space, newline)")
	cmd.Flags().StringVar(&f.root, "root", "",
		"Project root (defaults to the Bazel workspace or current directory)")
	cmd.Flags().BoolVar(&f.check, "check", false,
		"Check if the database is already reduced (exit 1 if not)")
}

// inputArgs accepts the input file followed, for `--exclude_dirs a b`, by
// further excluded directories.
func inputArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing input compile_commands.json")
	}
	if len(args) > 1 && !cmd.Flags().Changed("exclude_dirs") {
		return usageErrorf("unexpected arguments after input: %v", args[1:])
	}
	return nil
}

func runReduce(cmd *cobra.Command, args []string, f reduceFlags, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := log.Component("cli")

	input := args[0]
	// Trailing positionals belong to a multi-value --exclude_dirs
	excludeDirs := append(append([]string(nil), f.excludeDirs...), args[1:]...)

	opts, err := reduceOptions(cmd, f, cfg, excludeDirs)
	if err != nil {
		return err
	}

	namesOnly := cfg.NamesOnly()
	if cmd.Flags().Changed("names-only") {
		namesOnly = f.namesOnly
	}

	sepValue := cfg.Reduce.Separator
	if cmd.Flags().Changed("separator") || sepValue == "" {
		sepValue = f.separator
	}
	sep, err := compdb.ParseSeparator(sepValue)
	if err != nil {
		return &usageError{err: err}
	}

	db, err := compdb.Load(input)
	if err != nil {
		return err
	}

	result, err := compdb.Reduce(db, opts)
	if errors.Is(err, compdb.ErrBadPattern) {
		return &usageError{err: err}
	}
	if err != nil {
		return err
	}

	if f.check {
		return runCheck(cmd, input, result)
	}

	// Render fully before writing so failures never leave partial output
	var buf bytes.Buffer
	if namesOnly {
		err = result.WriteNames(&buf, sep)
	} else {
		err = result.WriteJSON(&buf)
	}
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Debugw("wrote output", "bytes", buf.Len(), "names_only", namesOnly)
	return nil
}

// reduceOptions combines config and flags; flags take precedence and
// exclusions from both are applied.
func reduceOptions(cmd *cobra.Command, f reduceFlags, cfg *config.Config, excludeDirs []string) (compdb.Options, error) {
	root := cfg.Reduce.Root
	if cmd.Flags().Changed("root") {
		root = f.root
	}
	if root == "" {
		var err error
		root, err = config.DefaultRoot()
		if err != nil {
			return compdb.Options{}, err
		}
	}

	return compdb.Options{
		Root:            root,
		ExcludeDirs:     mergeUnique(cfg.Reduce.ExcludeDirs, excludeDirs),
		ExcludePatterns: mergeUnique(cfg.Reduce.ExcludePatterns, f.excludePatterns),
	}, nil
}

func runCheck(cmd *cobra.Command, input string, result *compdb.Result) error {
	stats := result.Stats()
	if result.Changed() {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"%s needs reducing: %d of %d entries would be dropped (%d excluded, %d duplicate(s), %d conflicting)\n",
			input, stats.Excluded+stats.Duplicates, stats.Total,
			stats.Excluded, stats.Duplicates, stats.Conflicting)
		fmt.Fprintf(cmd.ErrOrStderr(), "Run 'compdb %s' to reduce it\n", input)
		return errNeedsReduce
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "compile database is already reduced")
	return nil
}

func mergeUnique(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string(nil), a...), b...) {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
