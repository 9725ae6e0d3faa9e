// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

type exportEntry struct {
	ID               string   `yaml:"id"`
	Source           string   `yaml:"source"`
	Title            string   `yaml:"title"`
	Date             string   `yaml:"date,omitempty"`
	URL              string   `yaml:"url,omitempty"`
	DocType          string   `yaml:"doc_type"`
	AIScore          int      `yaml:"ai_score"`
	RegulatoryScore  int      `yaml:"regulatory_score"`
	DomainTags       []string `yaml:"domain_tags,omitempty"`
	EnforcementLevel string   `yaml:"enforcement_level"`
}

type exportDoc struct {
	Count    int           `yaml:"count"`
	Policies []exportEntry `yaml:"policies"`
}

// ExportYAML writes the full archive to path as a YAML document so the
// accumulated corpus can be versioned or consumed by other tooling.
func (s *Store) ExportYAML(ctx context.Context, path string) (int, error) {
	records, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	doc := exportDoc{Count: len(records), Policies: make([]exportEntry, 0, len(records))}
	for _, r := range records {
		doc.Policies = append(doc.Policies, toExportEntry(r))
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshaling export: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	return len(records), nil
}

func toExportEntry(r types.AnalyzedRecord) exportEntry {
	e := exportEntry{
		ID:               r.ID,
		Source:           r.Source,
		Title:            r.Title,
		URL:              r.URL,
		DocType:          string(r.DocType),
		AIScore:          r.AIScore,
		RegulatoryScore:  r.RegulatoryScore,
		DomainTags:       r.DomainTags,
		EnforcementLevel: string(r.EnforcementLevel),
	}
	if r.HasDate() {
		e.Date = r.Date.Format(dateFormat)
	}
	return e
}
