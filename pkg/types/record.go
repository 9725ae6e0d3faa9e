// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DocType hints at which artifact of a policy a record represents.
// Regulators typically publish a policy as several artifacts: the full
// text, an announcement, and an official Q&A or interpretation.
type DocType string

const (
	DocFullText     DocType = "full text"
	DocAnnouncement DocType = "announcement"
	DocQA           DocType = "qa"
	DocOther        DocType = "other"
)

// Rank orders document types by canonical preference: lower is preferred
// when selecting a cluster's representative record.
func (d DocType) Rank() int {
	switch d {
	case DocFullText:
		return 0
	case DocAnnouncement:
		return 1
	case DocQA:
		return 2
	default:
		return 3
	}
}

// ParseDocType maps the free-form doc_type column values the retrieval
// collaborators emit onto the closed DocType set. Unrecognized values
// degrade to DocOther.
func ParseDocType(s string) DocType {
	switch s {
	case "full text", "fulltext", "full_text", "全文", "正文":
		return DocFullText
	case "announcement", "notice", "通知", "公告", "发布":
		return DocAnnouncement
	case "qa", "q&a", "Q&A", "QA", "解读", "答记者问", "政策解读":
		return DocQA
	default:
		return DocOther
	}
}

// RawRecord is one scraped document row as produced by a retrieval
// collaborator. Source and Title are always present; every other field
// may be empty.
type RawRecord struct {
	// Source identifies the regulatory body (e.g. "cac", "miit", "tc260").
	Source string `json:"source" yaml:"source"`

	// Title is the document title as scraped.
	Title string `json:"title" yaml:"title"`

	// Date is the publication date string in a source-specific format.
	Date string `json:"date" yaml:"date"`

	// URL is the document URL.
	URL string `json:"url" yaml:"url"`

	// DocType is the free-form document type hint.
	DocType string `json:"doc_type" yaml:"doc_type"`

	// Body is the scraped document text, when retrieval captured it.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
}

// NormalizedRecord is a RawRecord after title cleanup, date parsing, and
// identifier assignment. It is never mutated after the loader produces it.
type NormalizedRecord struct {
	// ID is a stable identifier derived from source, cleaned title, and
	// date. Within one pipeline run it uniquely determines a record.
	ID string `json:"id" yaml:"id"`

	// Source identifies the regulatory body.
	Source string `json:"source" yaml:"source"`

	// Title is the cleaned title: valid UTF-8, format characters removed,
	// whitespace collapsed. Wording and punctuation are preserved.
	Title string `json:"title" yaml:"title"`

	// Date is the parsed publication date. The zero value means the source
	// date was missing or unparsable; such records are retained.
	Date time.Time `json:"date" yaml:"date"`

	// URL is the document URL.
	URL string `json:"url" yaml:"url"`

	// DocType is the parsed document type hint.
	DocType DocType `json:"doc_type" yaml:"doc_type"`

	// Body is the document text, possibly empty.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
}

// HasDate reports whether the record carries a resolved publication date.
func (r NormalizedRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// RecordID derives the stable identifier from source, cleaned title, and
// resolved date: the first 12 hex digits of their SHA-256. Identical rows
// map to the same ID, so duplicate scrapes collapse for free.
func RecordID(source, title string, date time.Time) string {
	dateStr := ""
	if !date.IsZero() {
		dateStr = date.Format("2006-01-02")
	}
	sum := sha256.Sum256([]byte(source + "|" + title + "|" + dateStr))
	return hex.EncodeToString(sum[:])[:12]
}

// PolicyCluster groups records believed to be artifacts of one underlying
// policy. Canonical is the single member selected for downstream analysis.
type PolicyCluster struct {
	// Members holds every record in the cluster, ordered by ID.
	Members []NormalizedRecord `json:"members" yaml:"members"`

	// Canonical is the designated representative record.
	Canonical NormalizedRecord `json:"canonical" yaml:"canonical"`
}

// Size returns the number of member records.
func (c PolicyCluster) Size() int {
	return len(c.Members)
}

// ScoredRecord is a canonical record that passed the AI-relevance filter.
type ScoredRecord struct {
	NormalizedRecord `yaml:",inline"`

	// AIScore is the weighted keyword-match score that gated inclusion.
	AIScore int `json:"ai_score" yaml:"ai_score"`
}

// EnforcementLevel classifies a document's legal authority tier. The set
// is closed and ordered from highest to lowest force: laws and
// regulations, administrative rules, sector standards, guidance.
type EnforcementLevel string

const (
	EnforcementLaw       EnforcementLevel = "法律法规"
	EnforcementAdminRule EnforcementLevel = "行政规章"
	EnforcementStandard  EnforcementLevel = "行业标准"
	EnforcementGuidance  EnforcementLevel = "指导性文件"
)

// AnalyzedRecord is the terminal pipeline entity: a scored record enriched
// with the three derived analytical attributes. Every analyzed record has
// all three fields populated.
type AnalyzedRecord struct {
	ScoredRecord `yaml:",inline"`

	// RegulatoryScore grades stance from 1 (innovation-friendly) to 10
	// (restrictive). Records with no polarity signal score the neutral
	// midpoint of 5.
	RegulatoryScore int `json:"regulatory_score" yaml:"regulatory_score"`

	// DomainTags lists the subject-matter domains the record touches, in
	// rule-definition order. It is non-nil even when empty.
	DomainTags []string `json:"domain_tags" yaml:"domain_tags"`

	// EnforcementLevel is the document's legal authority tier.
	EnforcementLevel EnforcementLevel `json:"enforcement_level" yaml:"enforcement_level"`
}
