// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package ingest loads raw policy records from per-source CSV files and
// normalizes them into the pipeline's common record form. Each regulatory
// body's retrieval collaborator writes one CSV; this package unifies
// columns, cleans titles, parses dates, and assigns stable identifiers.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhiyuanplus/ai-policy-platform/internal/textnorm"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// LoadResult holds the outcome of loading every configured source.
type LoadResult struct {
	// Records is the unified, normalized record sequence, ordered by
	// source then file position.
	Records []types.NormalizedRecord

	// Dropped counts records discarded because their title was empty
	// after cleaning.
	Dropped int

	// Duplicates counts rows collapsed because another row already
	// produced the same identifier. Source files are not assumed
	// pre-deduplicated.
	Duplicates int

	// MissingSources lists configured sources whose file was absent.
	MissingSources []string
}

// Loaded returns the number of records that survived normalization.
func (r LoadResult) Loaded() int {
	return len(r.Records)
}

// LoadSources reads every configured source file concurrently and merges
// the results in source-name order, so the output is independent of
// filesystem and goroutine scheduling. A missing file is a warning, not an
// error; the run fails only when no source file could be read at all.
func LoadSources(cfg types.IngestConfig, log zerolog.Logger) (LoadResult, error) {
	if len(cfg.Sources) == 0 {
		return LoadResult{}, fmt.Errorf("no input sources configured")
	}

	names := make([]string, 0, len(cfg.Sources))
	for name := range cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	type sourceResult struct {
		name    string
		records []types.NormalizedRecord
		dropped int
		missing bool
		err     error
	}

	results := make([]sourceResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name, path string) {
			defer wg.Done()
			records, dropped, err := loadSource(name, path, log)
			if err != nil {
				if os.IsNotExist(err) {
					results[i] = sourceResult{name: name, missing: true}
					return
				}
				results[i] = sourceResult{name: name, err: err}
				return
			}
			results[i] = sourceResult{name: name, records: records, dropped: dropped}
		}(i, name, cfg.Sources[name])
	}
	wg.Wait()

	var out LoadResult
	readable := 0
	seen := make(map[string]struct{})
	for _, sr := range results {
		switch {
		case sr.missing:
			log.Warn().Str("source", sr.name).Msg("source file not found, skipping")
			out.MissingSources = append(out.MissingSources, sr.name)
		case sr.err != nil:
			log.Warn().Str("source", sr.name).Err(sr.err).Msg("source file unreadable, skipping")
			out.MissingSources = append(out.MissingSources, sr.name)
		default:
			readable++
			out.Dropped += sr.dropped
			for _, rec := range sr.records {
				if _, dup := seen[rec.ID]; dup {
					out.Duplicates++
					continue
				}
				seen[rec.ID] = struct{}{}
				out.Records = append(out.Records, rec)
			}
		}
	}

	if readable == 0 {
		return LoadResult{}, fmt.Errorf("none of the %d configured source files could be read", len(names))
	}
	return out, nil
}

// loadSource reads one source CSV and normalizes its rows.
func loadSource(name, path string, log zerolog.Logger) ([]types.NormalizedRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	raws, err := readCSV(f, name)
	if err != nil {
		return nil, 0, fmt.Errorf("reading source %s: %w", path, err)
	}

	records := make([]types.NormalizedRecord, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		rec, ok := Normalize(raw)
		if !ok {
			log.Warn().Str("source", name).Str("url", raw.URL).Msg("dropping record with empty title")
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

// readCSV parses one source file into raw records. The header row names
// the columns; unknown columns are ignored and missing optional columns
// degrade to empty values. Rows with the wrong field count are skipped.
func readCSV(r io.Reader, source string) ([]types.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(textnorm.Clean(h)))] = i
	}
	if _, ok := col["title"]; !ok {
		return nil, fmt.Errorf("header has no title column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var raws []types.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip and continue, never abort the source.
			continue
		}
		raw := types.RawRecord{
			Source:  field(row, "source"),
			Title:   field(row, "title"),
			Date:    field(row, "date"),
			URL:     field(row, "url"),
			DocType: field(row, "doc_type"),
			Body:    field(row, "body"),
		}
		if raw.Source == "" {
			raw.Source = source
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// Normalize converts a raw record into its normalized form. The second
// return value is false when the title is empty after cleaning, in which
// case the record must be dropped.
func Normalize(raw types.RawRecord) (types.NormalizedRecord, bool) {
	title := textnorm.Clean(raw.Title)
	if title == "" {
		return types.NormalizedRecord{}, false
	}

	date := ParseDate(raw.Date)
	rec := types.NormalizedRecord{
		ID:      types.RecordID(raw.Source, title, date),
		Source:  raw.Source,
		Title:   title,
		Date:    date,
		URL:     strings.TrimSpace(raw.URL),
		DocType: types.ParseDocType(strings.ToLower(strings.TrimSpace(raw.DocType))),
		Body:    textnorm.Clean(raw.Body),
	}
	return rec, true
}

