package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dotsift/dotsift/internal/version"
	"github.com/dotsift/dotsift/pkg/logging"
)

var (
	verbosity  int
	configPath string
	formatName string

	rootCmd = &cobra.Command{
		Use:   "dotsift",
		Short: "Decide which dotfiles belong on this machine",
		Long: `dotsift evaluates declarative rules keyed on machine identity
(hostname, OS class, user, environment variables) and decides, per
managed file, whether that file should be synced, symlinked or tracked
on the current machine.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	initTemplateFormatting()
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Rule file (default: dotsift.toml, .dotsift.toml, or $XDG_CONFIG_HOME/dotsift/)")
	rootCmd.PersistentFlags().StringVarP(&formatName, "format", "f", "auto",
		"Output format: auto, term, text, json, yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(genConfigCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dotsift version %s\n", version.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.Date)
	},
}
