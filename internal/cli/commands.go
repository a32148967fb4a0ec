package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxhq/stylefx/internal/config"
	"github.com/oxhq/stylefx/internal/engine"
	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/report"
	"github.com/oxhq/stylefx/internal/rules"
)

func newFixCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Fix the style of files in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, false)
		},
	}
}

func newCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report files that need fixing without writing them",
		Long: `check runs every fixer like fix does but writes nothing. The exit
status has bit 8 set when any file would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, true)
		},
	}
}

func run(cmd *cobra.Command, opts *RootOptions, args []string, dryRun bool) error {
	runner := NewRunner(opts, cmd.Flags(), cmd.OutOrStdout(), cmd.ErrOrStderr(), dryRun)
	status, err := runner.Run(cmd.Context(), args)
	if err != nil {
		return err
	}
	if status != engine.ExitOK {
		return &exitError{status: status}
	}
	return nil
}

type ruleInfo struct {
	Name      string   `json:"name"`
	Priority  int      `json:"priority"`
	Risky     bool     `json:"risky"`
	Languages []string `json:"languages,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

func newListRulesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-rules",
		Short: "List every built-in rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(opts.Format)
			if err != nil {
				return err
			}

			var infos []ruleInfo
			for _, f := range rules.NewRegistry().All() {
				info := ruleInfo{Name: f.Name(), Priority: f.Priority(), Risky: f.Risky(), Summary: fixer.Summary(f)}
				if scoped, ok := f.(fixer.Scoped); ok {
					info.Languages = scoped.Languages()
				}
				infos = append(infos, info)
			}

			w := cmd.OutOrStdout()
			if format == report.FormatJSON {
				return writeJSON(w, infos)
			}
			for _, info := range infos {
				line := fmt.Sprintf("%-26s %4d", info.Name, info.Priority)
				if info.Risky {
					line += " risky"
				}
				if len(info.Languages) > 0 {
					line += " [" + strings.Join(info.Languages, ", ") + "]"
				}
				if info.Summary != "" {
					line += "  " + info.Summary
				}
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type setInfo struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

func newListSetsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-sets",
		Short: "List the built-in presets and those of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(opts.Format)
			if err != nil {
				return err
			}
			cfg, err := config.Load(config.LoadOptions{File: opts.ConfigFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}

			var sets []setInfo
			for _, name := range resolver.Presets() {
				resolved, err := resolver.Expand(name)
				if err != nil {
					return err
				}
				sets = append(sets, setInfo{Name: name, Rules: resolved.EnabledNames()})
			}

			w := cmd.OutOrStdout()
			if format == report.FormatJSON {
				return writeJSON(w, sets)
			}
			for _, set := range sets {
				if _, err := fmt.Fprintf(w, "%s\n  %s\n", set.Name, strings.Join(set.Rules, ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
