// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// QueryOptions narrows an archive search. All filters are optional and
// combine with AND semantics.
type QueryOptions struct {
	// Text runs an FTS5 trigram match against policy titles. Terms
	// shorter than three characters cannot match.
	Text string
	// Source restricts results to one regulator.
	Source string
	// Domain restricts results to policies carrying the given domain tag.
	Domain string
	// MinScore restricts results to regulatory scores at or above it.
	MinScore int
	// Limit caps the result count. Zero falls back to the store default.
	Limit int
}

// Query searches the archive. Results are ordered date descending with
// undated policies last, ties broken by record ID.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.AnalyzedRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		conditions []string
		args       []any
	)

	query := `SELECT p.id, p.source, p.title, p.date, p.url, p.doc_type,
		p.ai_score, p.regulatory_score, p.domain_tags, p.enforcement_level
		FROM policies p`

	if opts.Text != "" {
		query += ` JOIN policies_fts f ON f.rowid = p.rowid`
		conditions = append(conditions, `policies_fts MATCH ?`)
		args = append(args, ftsQuote(opts.Text))
	}
	if opts.Source != "" {
		conditions = append(conditions, `p.source = ?`)
		args = append(args, opts.Source)
	}
	if opts.Domain != "" {
		// Tags are stored as a JSON array of strings.
		conditions = append(conditions, `p.domain_tags LIKE ?`)
		args = append(args, `%"`+opts.Domain+`"%`)
	}
	if opts.MinScore > 0 {
		conditions = append(conditions, `p.regulatory_score >= ?`)
		args = append(args, opts.MinScore)
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY p.date = '' ASC, p.date DESC, p.id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []types.AnalyzedRecord
	for rows.Next() {
		r, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// All returns every archived policy in the query ordering, for export.
func (s *Store) All(ctx context.Context) ([]types.AnalyzedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, title, date, url, doc_type,
			ai_score, regulatory_score, domain_tags, enforcement_level
		 FROM policies
		 ORDER BY date = '' ASC, date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []types.AnalyzedRecord
	for rows.Next() {
		r, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

func scanPolicy(rows *sql.Rows) (types.AnalyzedRecord, error) {
	var (
		r       types.AnalyzedRecord
		dateStr string
		docType string
		tags    string
		level   string
	)
	if err := rows.Scan(&r.ID, &r.Source, &r.Title, &dateStr, &r.URL, &docType,
		&r.AIScore, &r.RegulatoryScore, &tags, &level); err != nil {
		return r, fmt.Errorf("scanning policy row: %w", err)
	}
	if dateStr != "" {
		d, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			return r, fmt.Errorf("parsing archived date %q: %w", dateStr, err)
		}
		r.Date = d
	}
	r.DocType = types.DocType(docType)
	r.EnforcementLevel = types.EnforcementLevel(level)
	r.DomainTags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &r.DomainTags); err != nil {
			return r, fmt.Errorf("parsing domain tags for %s: %w", r.ID, err)
		}
	}
	return r, nil
}

// ftsQuote wraps each whitespace-separated term in double quotes so FTS5
// treats user input as literal terms rather than query syntax.
func ftsQuote(text string) string {
	terms := strings.Fields(text)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
