package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillcheck/pkg/logger"
	"github.com/jingkaihe/skillcheck/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLCHECK")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillcheck")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillcheck",
	Short: "Validate, list and format Agent Skill packages",
	Long: `skillcheck discovers Agent Skill packages in a repository and checks
them against the AgentSkills specification and best practices. It can
also list discovered skills, normalize SKILL.md formatting, and
scaffold new skills.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				presenter.Error(err, "Invalid log level")
				os.Exit(1)
			}
		}
		format, _ := cmd.Flags().GetString("log-format")
		logger.SetLogFormat(format)

		colorMode, _ := cmd.Flags().GetString("color")
		presenter.SetColorMode(colorMode)

		quiet, _ := cmd.Flags().GetBool("quiet")
		presenter.SetQuiet(quiet)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func main() {
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().String("color", "auto", "Colored output (auto, always, never)")

	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
