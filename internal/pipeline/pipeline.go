// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package pipeline wires the batch stages together: load and normalize
// raw records, cluster policy artifacts, filter for AI relevance, quantify
// the survivors, and write the analyzed table with its metadata sidecar.
// The run is a pure transformation of the input files; re-running on the
// same inputs produces byte-identical output.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhiyuanplus/ai-policy-platform/internal/cluster"
	"github.com/zhiyuanplus/ai-policy-platform/internal/ingest"
	"github.com/zhiyuanplus/ai-policy-platform/internal/output"
	"github.com/zhiyuanplus/ai-policy-platform/internal/quantify"
	"github.com/zhiyuanplus/ai-policy-platform/internal/relevance"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// Summary reports counts at each stage so silent data loss is observable.
type Summary struct {
	RawLoaded    int
	Dropped      int
	Duplicates   int
	Clusters     int
	PassedFilter int
	Written      int
}

// Run executes the full pipeline. Per-record problems are recovered
// locally by the stages; only whole-run I/O failures (no readable input,
// unwritable output) return an error. Progress and the final stage counts
// stream to w.
func Run(cfg types.PipelineConfig, log zerolog.Logger, w io.Writer) (Summary, error) {
	var summary Summary

	loaded, err := ingest.LoadSources(cfg.Ingest, log)
	if err != nil {
		return summary, fmt.Errorf("loading sources: %w", err)
	}
	summary.RawLoaded = loaded.Loaded() + loaded.Dropped + loaded.Duplicates
	summary.Dropped = loaded.Dropped
	summary.Duplicates = loaded.Duplicates
	fmt.Fprintf(w, "loaded %d records (%d dropped, %d duplicates) from %d sources\n",
		loaded.Loaded(), loaded.Dropped, loaded.Duplicates,
		len(cfg.Ingest.Sources)-len(loaded.MissingSources))

	// Freshness covers every input record, including ones the filter
	// removes below.
	latest := latestDate(loaded.Records)

	clusters := cluster.Cluster(loaded.Records, cfg.Cluster)
	summary.Clusters = len(clusters)
	fmt.Fprintf(w, "clustered into %d policies\n", len(clusters))

	filter, err := relevance.New(cfg.Filter)
	if err != nil {
		return summary, fmt.Errorf("building relevance filter: %w", err)
	}
	scored := filter.Apply(cluster.Canonicals(clusters))
	summary.PassedFilter = len(scored)
	fmt.Fprintf(w, "relevance filter kept %d of %d policies\n", len(scored), len(clusters))
	if len(scored) == 0 {
		log.Warn().Msg("no records passed the relevance filter; writing an empty table")
	}

	analyzed := quantify.New(cfg.Quantify).AnalyzeAll(scored)

	if err := output.Write(analyzed, latest, cfg.Output); err != nil {
		return summary, err
	}
	summary.Written = len(analyzed)
	fmt.Fprintf(w, "wrote %d analyzed records to %s\n", len(analyzed), cfg.Output.TablePath)

	return summary, nil
}

// latestDate returns the maximum publication date over the records, or
// the zero time when none is dated.
func latestDate(records []types.NormalizedRecord) time.Time {
	var latest time.Time
	for _, r := range records {
		if r.HasDate() && r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}
