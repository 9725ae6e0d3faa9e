// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package output serializes the analyzed policy table and its metadata
// sidecar. Both files are written to a temporary path and renamed into
// place, so a reader never observes a truncated table, and the row
// ordering is total, so re-running on the same inputs is byte-identical.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// Columns is the stable output schema, in order.
var Columns = []string{
	"source", "title", "date", "url", "doc_type",
	"ai_score", "regulatory_score", "domain_tags", "enforcement_level",
}

const (
	dateFormat    = "2006-01-02"
	tagSeparator  = ";"
	tempFileGlob  = ".arpi-*.tmp"
	filePermWorld = 0o644
)

// Metadata is the sidecar consumed by the visualization collaborator for
// freshness display.
type Metadata struct {
	// LatestDate is the maximum publication date across all input
	// records, including ones the filter removed. Empty when no input
	// record carried a date.
	LatestDate string `json:"latest_date"`
}

// Write sorts the analyzed records into the output ordering and writes
// the CSV table and metadata sidecar atomically. latest is the maximum
// date over all inputs; the zero time yields an empty latest_date.
func Write(records []types.AnalyzedRecord, latest time.Time, cfg types.OutputConfig) error {
	sorted := make([]types.AnalyzedRecord, len(records))
	copy(sorted, records)
	sortRecords(sorted)

	if err := writeTable(sorted, cfg.TablePath); err != nil {
		return fmt.Errorf("writing analyzed table: %w", err)
	}

	meta := Metadata{}
	if !latest.IsZero() {
		meta.LatestDate = latest.Format(dateFormat)
	}
	if err := writeMetadata(meta, cfg.MetadataPath); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// sortRecords applies the output ordering: date descending with unknown
// dates last, then source, title, and ID ascending. The ID tie-break makes
// the ordering total.
func sortRecords(records []types.AnalyzedRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.HasDate() && !b.HasDate():
			return true
		case !a.HasDate() && b.HasDate():
			return false
		case a.HasDate() && b.HasDate() && !a.Date.Equal(b.Date):
			return a.Date.After(b.Date)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

func writeTable(records []types.AnalyzedRecord, path string) error {
	return atomicWrite(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(Columns); err != nil {
			return err
		}
		for _, r := range records {
			date := ""
			if r.HasDate() {
				date = r.Date.Format(dateFormat)
			}
			row := []string{
				r.Source,
				r.Title,
				date,
				r.URL,
				string(r.DocType),
				strconv.Itoa(r.AIScore),
				strconv.Itoa(r.RegulatoryScore),
				strings.Join(r.DomainTags, tagSeparator),
				string(r.EnforcementLevel),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

func writeMetadata(meta Metadata, path string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return atomicWrite(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// atomicWrite creates a temporary file next to path, fills it, and renames
// it into place. On any failure the temporary file is removed and the
// previous file, if any, stays visible.
func atomicWrite(path string, fill func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempFileGlob)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fillErr := fill(tmp)
	closeErr := tmp.Close()
	if fillErr != nil {
		os.Remove(tmpPath)
		return fillErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, filePermWorld); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadTable loads an analyzed table previously produced by Write. The
// archive and alerting commands consume it.
func ReadTable(path string) ([]types.AnalyzedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening analyzed table: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, want := range Columns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("analyzed table %s missing column %q", path, want)
		}
	}

	var records []types.AnalyzedRecord
	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		get := func(name string) string { return row[col[name]] }

		date := time.Time{}
		if s := get("date"); s != "" {
			date, _ = time.Parse(dateFormat, s)
		}
		aiScore, _ := strconv.Atoi(get("ai_score"))
		regScore, _ := strconv.Atoi(get("regulatory_score"))
		tags := []string{}
		if s := get("domain_tags"); s != "" {
			tags = strings.Split(s, tagSeparator)
		}

		rec := types.AnalyzedRecord{
			ScoredRecord: types.ScoredRecord{
				NormalizedRecord: types.NormalizedRecord{
					Source:  get("source"),
					Title:   get("title"),
					Date:    date,
					URL:     get("url"),
					DocType: types.DocType(get("doc_type")),
				},
				AIScore: aiScore,
			},
			RegulatoryScore:  regScore,
			DomainTags:       tags,
			EnforcementLevel: types.EnforcementLevel(get("enforcement_level")),
		}
		rec.ID = types.RecordID(rec.Source, rec.Title, rec.Date)
		records = append(records, rec)
	}
	return records, nil
}
