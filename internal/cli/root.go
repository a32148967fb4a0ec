// Package cli wires configuration, file discovery, the fixing engine and
// report rendering into the stylefx command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oxhq/stylefx/internal/engine"
	"github.com/oxhq/stylefx/internal/model"
)

// RootOptions holds the flags every command shares.
type RootOptions struct {
	ConfigFile string
	Rules      string
	Format     string
	Diff       bool
	Verbose    int
	Quiet      bool
}

// exitError carries the exit status of a finished run through cobra.
type exitError struct {
	status engine.ExitStatus
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e.status))
}

// NewRootCommand creates the stylefx command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stylefx",
		Short: "stylefx normalizes source code style",
		Long: `stylefx tokenizes source files and applies style fixers until the
code stops changing. Rules and presets come from .stylefx.yaml, .toml or
.json, the STYLEFX_ environment and command line flags.`,
		Version:       model.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "configuration file (default: .stylefx.{yaml,yml,toml,json})")
	flags.StringVar(&opts.Rules, "rules", "", `rules as a JSON object, applied after the file's rules, e.g. '{"@Standard": true}'`)
	flags.StringVar(&opts.Format, "format", "txt", "output format (txt|json)")
	flags.BoolVar(&opts.Diff, "diff", false, "show a unified diff of every changed file")
	flags.CountVarP(&opts.Verbose, "verbose", "v", "more output; repeat for debug logs")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "no text output and no logs")

	flags.Bool("allow-risky", false, "allow fixers that may change code behavior")
	flags.Int("workers", 0, "parallel workers (0 means one per CPU)")
	flags.Int("max-iterations", engine.DefaultMaxIterations, "passes over a file before giving up")
	flags.Bool("using-cache", true, "skip files whose content and rules did not change")
	flags.String("cache-file", ".stylefx.cache", "cache file")
	flags.String("cache-dsn", "", "keep the cache in a SQLite file or libsql:// database instead")
	flags.String("language", "", "tokenize every file as this language")
	flags.String("log-level", "", "log level (debug|info|warn|error|silent)")
	flags.StringSlice("include", nil, "only files matching these glob patterns")
	flags.StringSlice("exclude", nil, "skip files matching these glob patterns")
	flags.Int("max-depth", 0, "directory depth limit (0 means unlimited)")
	flags.Bool("follow-links", false, "follow symbolic links")
	flags.Bool("no-gitignore", false, "do not honor .gitignore files")

	cmd.AddCommand(newFixCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newListRulesCommand(opts))
	cmd.AddCommand(newListSetsCommand(opts))
	return cmd
}

// Execute runs the command tree with args and returns the process exit
// code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	var exit *exitError
	switch {
	case err == nil:
		return int(engine.ExitOK)
	case errors.As(err, &exit):
		return int(exit.status)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return int(engine.ExitConfig)
	}
}
