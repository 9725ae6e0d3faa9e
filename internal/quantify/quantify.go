// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package quantify enriches filtered policy records with three derived
// attributes: a regulatory-stance score on a 1-10 scale, a set of
// subject-matter domain tags, and an enforcement-level classification.
// Each attribute comes from its own declarative rule table in rules.go;
// every value a record receives traces to the rows that matched.
package quantify

import (
	"strings"

	"github.com/zhiyuanplus/ai-policy-platform/internal/textnorm"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// Score scale defaults. A record with no polarity signal scores the
// neutral midpoint of 5; that convention is fixed, not configurable in
// production runs.
const (
	DefaultNeutral = 5
	DefaultMin     = 1
	DefaultMax     = 10
)

// Quantifier computes the derived attributes for analyzed records.
type Quantifier struct {
	neutral, min, max int
}

// New builds a Quantifier, filling unset bounds with the defaults.
func New(cfg types.QuantifyConfig) *Quantifier {
	q := &Quantifier{neutral: cfg.Neutral, min: cfg.Min, max: cfg.Max}
	if q.neutral == 0 {
		q.neutral = DefaultNeutral
	}
	if q.min == 0 {
		q.min = DefaultMin
	}
	if q.max == 0 {
		q.max = DefaultMax
	}
	return q
}

// Analyze computes all three attributes for one record. Every attribute is
// total: the score is always in bounds, the tag set is non-nil, and the
// enforcement level is always one of the closed set.
func (q *Quantifier) Analyze(r types.ScoredRecord) types.AnalyzedRecord {
	text := textnorm.Key(r.Title + " " + r.Body)
	return types.AnalyzedRecord{
		ScoredRecord:     r,
		RegulatoryScore:  q.RegulatoryScore(text),
		DomainTags:       DomainTags(text),
		EnforcementLevel: EnforcementFor(textnorm.Key(r.Title)),
	}
}

// AnalyzeAll quantifies a batch, preserving order.
func (q *Quantifier) AnalyzeAll(records []types.ScoredRecord) []types.AnalyzedRecord {
	out := make([]types.AnalyzedRecord, len(records))
	for i, r := range records {
		out[i] = q.Analyze(r)
	}
	return out
}

// RegulatoryScore grades stance over folded text: the neutral midpoint
// plus the net weight of all matched polarity phrases, clamped to the
// scale. Each phrase counts once, so the scale stays comparable across
// records of any length.
func (q *Quantifier) RegulatoryScore(text string) int {
	net := 0
	for _, entry := range polarityTable {
		if strings.Contains(text, entry.Phrase) {
			net += entry.Weight
		}
	}
	score := q.neutral + net
	if score < q.min {
		return q.min
	}
	if score > q.max {
		return q.max
	}
	return score
}

// DomainTags returns the subject-matter labels whose keywords occur in
// the folded text, in rule-definition order. The result is non-nil even
// when no rule matches, distinguishing "computed, empty" from "absent".
func DomainTags(text string) []string {
	tags := make([]string, 0, len(domainRules))
	for _, rule := range domainRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, rule.Label)
				break
			}
		}
	}
	return tags
}

// EnforcementFor classifies a folded title into the closed enforcement
// set. Rules are evaluated in priority order and the first match wins;
// titles matching nothing fall back to the guidance tier.
func EnforcementFor(titleKey string) types.EnforcementLevel {
	for _, rule := range enforcementRules {
		for _, kw := range rule.Keywords {
			if countOutside(titleKey, kw, rule.Exclusions) > 0 {
				return rule.Level
			}
		}
	}
	return DefaultEnforcement
}

// countOutside counts occurrences of kw in text that are not accounted
// for by occurrences of any exclusion compound containing kw. Overlapping
// exclusions may over-subtract; the result is used only as a positive
// match signal, so that errs on the conservative side.
func countOutside(text, kw string, exclusions []string) int {
	n := strings.Count(text, kw)
	if n == 0 {
		return 0
	}
	for _, excl := range exclusions {
		if per := strings.Count(excl, kw); per > 0 {
			n -= strings.Count(text, excl) * per
		}
	}
	return n
}
