// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package main is the entry point for the arpi CLI, the AI Regulatory
// Policy Intelligence batch toolchain. Scraped policy CSVs go in, an
// analyzed table plus metadata sidecar comes out; the archive and alerts
// subcommands operate on accumulated results.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhiyuanplus/ai-policy-platform/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// log is the root logger, built before any subcommand runs.
var log zerolog.Logger

// rootCmd is the base command for the arpi CLI.
var rootCmd = &cobra.Command{
	Use:   "arpi",
	Short: "Batch analysis of Chinese AI regulatory policy records",
	Long: `arpi ingests scraped policy records from government source CSVs,
clusters artifacts of the same policy, filters for AI relevance, scores
regulatory stance, and writes an analyzed table with a metadata sidecar.

Each operation is a subcommand: run executes the full pipeline, archive
maintains the searchable policy store, alerts flags high-risk policies.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.New(logging.Options{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arpi.yaml or ~/.config/arpi/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arpi")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arpi"))
		}
	}

	viper.SetEnvPrefix("ARPI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
