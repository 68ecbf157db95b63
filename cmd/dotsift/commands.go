package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dotsift/dotsift/pkg/config"
	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/machine"
	"github.com/dotsift/dotsift/pkg/ruleset"
)

// loadRuleSet wires the whole engine: rule document, machine context,
// loader. Everything after this is a pure query.
func loadRuleSet() (*ruleset.RuleSet, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	ctx, err := machine.Capture(machine.SystemProvider{})
	if err != nil {
		return nil, err
	}

	return ruleset.Load(doc, ctx)
}

type fileVerdict struct {
	File     string `json:"file" yaml:"file"`
	Included bool   `json:"included" yaml:"included"`
}

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Decide whether files are included on this machine",
	Long: `Evaluates each file name against the loaded rules and reports whether
it should be treated as included on the current machine. Matching is
against the name as given, not against the filesystem.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRuleSet()
		if err != nil {
			return err
		}

		verdicts := make([]fileVerdict, 0, len(args))
		for _, name := range args {
			verdicts = append(verdicts, fileVerdict{File: name, Included: set.Included(name)})
		}
		return renderVerdicts(cmd.OutOrStdout(), verdicts)
	},
}

func renderVerdicts(w io.Writer, verdicts []fileVerdict) error {
	format, err := outputFormat(w)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return renderJSON(w, verdicts)
	case FormatYAML:
		return renderYAML(w, verdicts)
	case FormatTerminal:
		for _, v := range verdicts {
			verdict := includedStyle.Render("included")
			if !v.Included {
				verdict = excludedStyle.Render("excluded")
			}
			fmt.Fprintf(w, "%-30s %s\n", v.File, verdict)
		}
	default:
		for _, v := range verdicts {
			verdict := "included"
			if !v.Included {
				verdict = "excluded"
			}
			fmt.Fprintf(w, "%-30s %s\n", v.File, verdict)
		}
	}
	return nil
}

type ruleReport struct {
	When    string   `json:"when" yaml:"when"`
	Actions []string `json:"actions" yaml:"actions"`
	Matches bool     `json:"matches" yaml:"matches"`
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the loaded rules and which apply on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRuleSet()
		if err != nil {
			return err
		}

		reports := make([]ruleReport, 0, set.Len())
		for _, rule := range set.Rules() {
			report := ruleReport{
				When:    rule.When.Describe(),
				Matches: rule.When.Test(set.Context()),
			}
			for _, action := range rule.Actions.Entries() {
				directive := "exclude"
				if action.Include {
					directive = "include"
				}
				report.Actions = append(report.Actions, directive+" "+action.Pattern.String())
			}
			reports = append(reports, report)
		}
		return renderRules(cmd.OutOrStdout(), reports)
	},
}

func renderRules(w io.Writer, reports []ruleReport) error {
	format, err := outputFormat(w)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return renderJSON(w, reports)
	case FormatYAML:
		return renderYAML(w, reports)
	default:
		styled := format == FormatTerminal
		for i, report := range reports {
			marker := " "
			if report.Matches {
				marker = "*"
			}
			when := report.When
			if styled {
				when = predicateStyle.Render(when)
			}
			fmt.Fprintf(w, "%s rule %d: when %s\n", marker, i, when)
			for _, action := range report.Actions {
				fmt.Fprintf(w, "    %s\n", action)
			}
		}
	}
	return nil
}

type contextReport struct {
	Host    string `json:"host" yaml:"host"`
	OS      string `json:"os" yaml:"os"`
	User    string `json:"user" yaml:"user"`
	EnvVars int    `json:"envVars" yaml:"envVars"`
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the machine identity rules are evaluated against",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := machine.Capture(machine.SystemProvider{})
		if err != nil {
			return err
		}

		report := contextReport{
			Host:    ctx.Host,
			OS:      ctx.OS.String(),
			User:    ctx.User,
			EnvVars: len(ctx.Env),
		}

		w := cmd.OutOrStdout()
		format, err := outputFormat(w)
		if err != nil {
			return err
		}
		switch format {
		case FormatJSON:
			return renderJSON(w, report)
		case FormatYAML:
			return renderYAML(w, report)
		default:
			fmt.Fprintf(w, "host: %s\n", ctx.Host)
			fmt.Fprintf(w, "os:   %s\n", ctx.OS.DisplayName())
			fmt.Fprintf(w, "user: %s\n", ctx.User)
			fmt.Fprintf(w, "env:  %d variables\n", len(ctx.Env))
			if verbosity >= 2 {
				names := make([]string, 0, len(ctx.Env))
				for name := range ctx.Env {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(w, "  %s=%s\n", name, ctx.Env[name])
				}
			}
		}
		return nil
	},
}

var genConfigWrite bool

var genConfigCmd = &cobra.Command{
	Use:   "gen-config",
	Short: "Generate a starter rule file",
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, err := config.Sample()
		if err != nil {
			return err
		}

		if !genConfigWrite {
			fmt.Fprint(cmd.OutOrStdout(), sample)
			return nil
		}

		const path = "dotsift.toml"
		if _, err := os.Stat(path); err == nil {
			return errors.Newf(errors.ErrInvalidInput, "%s already exists, not overwriting", path)
		}
		if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot write %s", path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	genConfigCmd.Flags().BoolVarP(&genConfigWrite, "write", "w", false,
		"Write dotsift.toml instead of printing to stdout")
}

// outputFormat resolves the --format flag against the writer the output
// actually goes to, so auto-detection sees redirection.
func outputFormat(w io.Writer) (Format, error) {
	format, err := ParseFormat(formatName)
	if err != nil {
		return FormatAuto, err
	}
	return resolveFormat(format, w), nil
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(v)
}
