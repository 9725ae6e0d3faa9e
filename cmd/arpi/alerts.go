// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhiyuanplus/ai-policy-platform/internal/alert"
	"github.com/zhiyuanplus/ai-policy-platform/internal/output"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts [analyzed.csv]",
	Short: "Flag high-risk policies from an analyzed table",
	Long: `Alerts scans an analyzed table for policies at or above the risk
threshold, annotates each with its risk factors (penalty language,
compliance deadlines, urgency phrasing, binding instruments), and writes
a markdown report plus a JSON sidecar.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAlerts,
}

func runAlerts(cmd *cobra.Command, args []string) error {
	tablePath, _ := cmd.Flags().GetString("table")
	if len(args) == 1 {
		tablePath = args[0]
	}

	records, err := output.ReadTable(tablePath)
	if err != nil {
		return err
	}

	cfg := types.AlertConfig{}
	cfg.Threshold, _ = cmd.Flags().GetInt("threshold")
	cfg.Domains, _ = cmd.Flags().GetStringSlice("domain")
	cfg.Sources, _ = cmd.Flags().GetStringSlice("source")

	alerts := alert.Detect(records, cfg)
	log.Info().Int("records", len(records)).Int("alerts", len(alerts)).Msg("alert scan complete")

	reportDir, _ := cmd.Flags().GetString("report-dir")
	if err := alert.WriteReport(alerts, reportDir); err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Println("No high-risk policies found.")
		return nil
	}
	for _, a := range alerts {
		date := "-"
		if a.Record.HasDate() {
			date = a.Record.Date.Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "[%d] %s  %s  %s  (%s)\n",
			a.Record.RegulatoryScore, date, a.Record.Source, a.Record.Title,
			strings.Join(a.RiskFactors, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d alerts written to %s\n", len(alerts), reportDir)
	return nil
}

func init() {
	alertsCmd.Flags().String("table", "data/output/analyzed.csv", "analyzed table to scan")
	alertsCmd.Flags().Int("threshold", alert.DefaultThreshold, "inclusive regulatory score threshold")
	alertsCmd.Flags().StringSlice("domain", nil, "restrict to domain tags (repeatable)")
	alertsCmd.Flags().StringSlice("source", nil, "restrict to source bodies (repeatable)")
	alertsCmd.Flags().String("report-dir", "data/alerts", "directory for the alert reports")

	rootCmd.AddCommand(alertsCmd)
}
