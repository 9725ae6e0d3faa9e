// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package alert flags analyzed policies that warrant immediate analyst
// attention: restrictive stance combined with penalty language, explicit
// compliance deadlines, urgency phrasing, or a high legal authority tier.
package alert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/zhiyuanplus/ai-policy-platform/internal/textnorm"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// DefaultThreshold is the inclusive regulatory score at which a record
// becomes an alert candidate.
const DefaultThreshold = 8

// Risk factor labels carried on alerts.
const (
	FactorPenalty     = "penalty language"
	FactorDeadline    = "compliance deadline"
	FactorUrgency     = "urgency phrasing"
	FactorEnforcement = "binding instrument"
)

var (
	penaltyKeywords = []string{"处罚", "罚款", "责任", "违法"}
	urgencyKeywords = []string{"紧急", "立即", "尽快", "马上"}
	deadlineRe      = regexp.MustCompile(`\d{4}年\d{1,2}月`)
)

// Alert is one flagged policy with the risk factors that triggered it.
type Alert struct {
	Record      types.AnalyzedRecord `json:"record"`
	RiskFactors []string             `json:"risk_factors"`
}

// Detect scans analyzed records and returns alerts for every record at or
// above the configured threshold that matches the optional domain and
// source filters. Output is ordered by regulatory score descending, ties
// broken by record ID, independent of input order.
func Detect(records []types.AnalyzedRecord, cfg types.AlertConfig) []Alert {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	alerts := make([]Alert, 0)
	for _, r := range records {
		if r.RegulatoryScore < threshold {
			continue
		}
		if len(cfg.Sources) > 0 && !contains(cfg.Sources, r.Source) {
			continue
		}
		if len(cfg.Domains) > 0 && !intersects(cfg.Domains, r.DomainTags) {
			continue
		}
		alerts = append(alerts, Alert{Record: r, RiskFactors: riskFactors(r)})
	}

	sort.Slice(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Record, alerts[j].Record
		if ri.RegulatoryScore != rj.RegulatoryScore {
			return ri.RegulatoryScore > rj.RegulatoryScore
		}
		return ri.ID < rj.ID
	})
	return alerts
}

func riskFactors(r types.AnalyzedRecord) []string {
	text := textnorm.Key(r.Title + " " + r.Body)
	factors := make([]string, 0, 4)
	if containsAny(text, penaltyKeywords) {
		factors = append(factors, FactorPenalty)
	}
	if deadlineRe.MatchString(text) {
		factors = append(factors, FactorDeadline)
	}
	if containsAny(text, urgencyKeywords) {
		factors = append(factors, FactorUrgency)
	}
	switch r.EnforcementLevel {
	case types.EnforcementLaw, types.EnforcementAdminRule:
		factors = append(factors, FactorEnforcement)
	}
	return factors
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range b {
		if contains(a, v) {
			return true
		}
	}
	return false
}

// report is the JSON sidecar structure written next to the markdown.
type report struct {
	Count  int     `json:"count"`
	Alerts []Alert `json:"alerts"`
}

// WriteReport writes the alerts as a markdown report plus a JSON sidecar
// under dir. Both files are written via temp-file-and-rename so a crash
// never leaves a truncated report behind.
func WriteReport(alerts []Alert, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating alerts directory: %w", err)
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# Policy Risk Alerts\n\n")
	fmt.Fprintf(&md, "%d high-risk policies flagged.\n\n", len(alerts))
	for _, a := range alerts {
		r := a.Record
		fmt.Fprintf(&md, "## %s\n\n", r.Title)
		fmt.Fprintf(&md, "- Source: %s\n", r.Source)
		if r.HasDate() {
			fmt.Fprintf(&md, "- Date: %s\n", r.Date.Format("2006-01-02"))
		}
		fmt.Fprintf(&md, "- Regulatory score: %d\n", r.RegulatoryScore)
		fmt.Fprintf(&md, "- Enforcement level: %s\n", r.EnforcementLevel)
		if len(r.DomainTags) > 0 {
			fmt.Fprintf(&md, "- Domains: %s\n", strings.Join(r.DomainTags, ", "))
		}
		if len(a.RiskFactors) > 0 {
			fmt.Fprintf(&md, "- Risk factors: %s\n", strings.Join(a.RiskFactors, ", "))
		}
		if r.URL != "" {
			fmt.Fprintf(&md, "- URL: %s\n", r.URL)
		}
		fmt.Fprintf(&md, "\n")
	}

	if err := atomicWriteFile(filepath.Join(dir, "alerts.md"), []byte(md.String())); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}

	data, err := json.MarshalIndent(report{Count: len(alerts), Alerts: alerts}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling alerts: %w", err)
	}
	data = append(data, '\n')
	if err := atomicWriteFile(filepath.Join(dir, "alerts.json"), data); err != nil {
		return fmt.Errorf("writing JSON report: %w", err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".arpi-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
