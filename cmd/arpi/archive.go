// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhiyuanplus/ai-policy-platform/internal/archive"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the policy archive (store, query, export)",
	Long: `Archive maintains a local SQLite store of every analyzed policy across
pipeline runs, with FTS5 title search. Use subcommands to ingest an
analyzed table, query the accumulated corpus, or export it.`,
}

// --- store subcommand ---

var archiveStoreCmd = &cobra.Command{
	Use:   "store [analyzed.csv]",
	Short: "Ingest an analyzed table into the policy archive",
	Long: `Store upserts rows from an analyzed CSV table into the archive
database. An unchanged table is skipped on subsequent runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchiveStore,
}

func runArchiveStore(cmd *cobra.Command, args []string) error {
	tablePath, _ := cmd.Flags().GetString("table")
	if len(args) == 1 {
		tablePath = args[0]
	}

	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(context.Background(), tablePath, os.Stdout)
	return err
}

// --- query subcommand ---

var archiveQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the policy archive with full-text search and filters",
	Long: `Query searches archived policies by FTS5 title match, source body,
domain tag, or minimum regulatory score. Filters combine with AND.`,
	RunE: runArchiveQuery,
}

func runArchiveQuery(cmd *cobra.Command, args []string) error {
	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := archive.QueryOptions{Text: strings.Join(args, " ")}
	opts.Source, _ = cmd.Flags().GetString("source")
	opts.Domain, _ = cmd.Flags().GetString("domain")
	opts.MinScore, _ = cmd.Flags().GetInt("min-score")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	results, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.AnalyzedRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-8s  %-50s  %-5s  %-12s  %s\n",
		"Date", "Source", "Title", "Score", "Level", "Domains")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range results {
		date := "-"
		if r.HasDate() {
			date = r.Date.Format("2006-01-02")
		}
		title := r.Title
		if runes := []rune(title); len(runes) > 25 {
			title = string(runes[:24]) + "…"
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-8s  %-50s  %-5d  %-12s  %s\n",
			date, r.Source, title, r.RegulatoryScore, r.EnforcementLevel,
			strings.Join(r.DomainTags, ";"))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the policy archive to YAML",
	RunE:  runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	outPath, _ := cmd.Flags().GetString("out")
	count, err := store.ExportYAML(context.Background(), outPath)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d policies to %s\n", count, outPath)
	return nil
}

// --- shared helpers ---

func archiveConfig(cmd *cobra.Command) types.ArchiveConfig {
	dir, _ := cmd.Flags().GetString("archive-dir")
	maxResults, _ := cmd.Flags().GetInt("limit")
	return types.ArchiveConfig{ArchiveDir: dir, MaxResults: maxResults}
}

func init() {
	archiveCmd.PersistentFlags().String("archive-dir", "data/archive", "directory holding the archive database")
	archiveCmd.PersistentFlags().Int("limit", 20, "maximum query results")

	archiveStoreCmd.Flags().String("table", "data/output/analyzed.csv", "analyzed table to ingest")

	archiveQueryCmd.Flags().String("source", "", "filter by source body")
	archiveQueryCmd.Flags().String("domain", "", "filter by domain tag")
	archiveQueryCmd.Flags().Int("min-score", 0, "minimum regulatory score")
	archiveQueryCmd.Flags().Bool("json", false, "emit results as JSON")

	archiveExportCmd.Flags().String("out", "data/archive/export.yaml", "export destination")

	archiveCmd.AddCommand(archiveStoreCmd)
	archiveCmd.AddCommand(archiveQueryCmd)
	archiveCmd.AddCommand(archiveExportCmd)
	rootCmd.AddCommand(archiveCmd)
}
