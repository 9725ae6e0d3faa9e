// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package relevance scores how strongly a policy record is about
// artificial intelligence and gates it into the analyzed set. Scoring is a
// pure function of the record text and a weighted keyword lexicon: the
// weights of all distinct lexicon entries present in the text are summed,
// each entry counting once per record so long documents gain no advantage.
package relevance

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/zhiyuanplus/ai-policy-platform/internal/textnorm"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// ScoreThreshold is the exclusive ai_score cutoff. A record survives only
// when its score is strictly greater; the value matches the historical
// output, where >4 separated policies centrally about AI from ones that
// mention it in passing.
const ScoreThreshold = 4

// KeywordWeight is one lexicon entry: a keyword or phrase and the weight
// its presence contributes to the AI-relevance score.
type KeywordWeight struct {
	Keyword string `yaml:"keyword"`
	Weight  int    `yaml:"weight"`
}

// DefaultLexicon returns the built-in ordered lexicon. Core AI terms carry
// weight 3, key technique terms weight 2, and broad vocabulary weight 1.
// The table is data, not code, so every scoring decision traces to a row.
func DefaultLexicon() []KeywordWeight {
	return []KeywordWeight{
		{Keyword: "人工智能", Weight: 3},
		{Keyword: "大模型", Weight: 3},
		{Keyword: "生成式", Weight: 3},
		{Keyword: "aigc", Weight: 3},
		{Keyword: "算法", Weight: 2},
		{Keyword: "智能", Weight: 2},
		{Keyword: "深度合成", Weight: 2},
		{Keyword: "机器学习", Weight: 2},
		{Keyword: "深度学习", Weight: 2},
		{Keyword: "ai", Weight: 1},
		{Keyword: "自然语言处理", Weight: 1},
		{Keyword: "算法推荐", Weight: 1},
	}
}

// LoadLexicon reads a lexicon override from a YAML file: a list of
// {keyword, weight} entries. Keywords are folded into matching form.
func LoadLexicon(path string) ([]KeywordWeight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	var entries []KeywordWeight
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	for i := range entries {
		entries[i].Keyword = textnorm.Key(entries[i].Keyword)
		if entries[i].Keyword == "" {
			return nil, fmt.Errorf("lexicon %s: entry %d has an empty keyword", path, i)
		}
	}
	return entries, nil
}

// Filter applies the lexicon and threshold to canonical records.
type Filter struct {
	lexicon   []KeywordWeight
	threshold int
}

// New builds a Filter from configuration: the built-in lexicon unless an
// override path is set, and the historical threshold unless the config
// names another (tests use synthetic thresholds).
func New(cfg types.FilterConfig) (*Filter, error) {
	lexicon := DefaultLexicon()
	if cfg.LexiconPath != "" {
		var err error
		lexicon, err = LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = ScoreThreshold
	}
	return &Filter{lexicon: lexicon, threshold: threshold}, nil
}

// Score computes the AI-relevance score of a record from its title and
// body. Absent body text, the title alone decides; that is the normal case
// for sources whose retrieval captures no full text.
func (f *Filter) Score(r types.NormalizedRecord) int {
	text := textnorm.Key(r.Title + " " + r.Body)
	score := 0
	for _, entry := range f.lexicon {
		if strings.Contains(text, entry.Keyword) {
			score += entry.Weight
		}
	}
	return score
}

// Apply scores every record and keeps those strictly above the threshold,
// preserving input order.
func (f *Filter) Apply(records []types.NormalizedRecord) []types.ScoredRecord {
	kept := make([]types.ScoredRecord, 0, len(records))
	for _, r := range records {
		score := f.Score(r)
		if score > f.threshold {
			kept = append(kept, types.ScoredRecord{NormalizedRecord: r, AIScore: score})
		}
	}
	return kept
}
