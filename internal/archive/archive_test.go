// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiyuanplus/ai-policy-platform/internal/output"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

func analyzed(source, title, date string, regScore int, tags []string, level types.EnforcementLevel) types.AnalyzedRecord {
	var d time.Time
	if date != "" {
		var err error
		d, err = time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
	}
	return types.AnalyzedRecord{
		ScoredRecord: types.ScoredRecord{
			NormalizedRecord: types.NormalizedRecord{
				ID:      types.RecordID(source, title, d),
				Source:  source,
				Title:   title,
				Date:    d,
				DocType: types.DocFullText,
			},
			AIScore: 5,
		},
		RegulatoryScore:  regScore,
		DomainTags:       tags,
		EnforcementLevel: level,
	}
}

func writeTable(t *testing.T, dir string, records []types.AnalyzedRecord) string {
	t.Helper()
	tablePath := filepath.Join(dir, "analyzed.csv")
	cfg := types.OutputConfig{
		TablePath:    tablePath,
		MetadataPath: filepath.Join(dir, "metadata.json"),
	}
	latest := time.Time{}
	for _, r := range records {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	require.NoError(t, output.Write(records, latest, cfg))
	return tablePath
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(types.ArchiveConfig{ArchiveDir: filepath.Join(dir, "archive")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func TestIngestAndQuery(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()

	records := []types.AnalyzedRecord{
		analyzed("miit", "人工智能安全管理办法", "2024-01-15", 7,
			[]string{"数据安全"}, types.EnforcementAdminRule),
		analyzed("cac", "生成式人工智能服务管理暂行办法", "2024-02-01", 8,
			[]string{"生成式AI", "内容安全"}, types.EnforcementAdminRule),
		analyzed("tc260", "人工智能安全标准体系", "", 5,
			[]string{}, types.EnforcementStandard),
	}
	tablePath := writeTable(t, dir, records)

	var buf bytes.Buffer
	summary, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Contains(t, buf.String(), "archived 3 new")

	results, err := store.Query(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Date descending, undated last.
	assert.Equal(t, "生成式人工智能服务管理暂行办法", results[0].Title)
	assert.Equal(t, "人工智能安全管理办法", results[1].Title)
	assert.Equal(t, "人工智能安全标准体系", results[2].Title)
	assert.False(t, results[2].HasDate())
	assert.Equal(t, []string{"生成式AI", "内容安全"}, results[0].DomainTags)
	assert.Equal(t, types.EnforcementStandard, results[2].EnforcementLevel)
}

func TestIngestSkipsUnchangedFile(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()

	tablePath := writeTable(t, dir, []types.AnalyzedRecord{
		analyzed("miit", "人工智能安全管理办法", "2024-01-15", 7, nil, types.EnforcementAdminRule),
	})

	var buf bytes.Buffer
	_, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)

	summary, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	assert.Contains(t, buf.String(), "skipped")
}

func TestIngestUpsertsChangedRows(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()

	first := analyzed("miit", "人工智能安全管理办法", "2024-01-15", 7, nil, types.EnforcementAdminRule)
	tablePath := writeTable(t, dir, []types.AnalyzedRecord{first})

	var buf bytes.Buffer
	_, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)

	// Rewrite with a changed score plus one new record. The mod time must
	// differ for the ingestion to run.
	second := first
	second.RegulatoryScore = 9
	extra := analyzed("cac", "算法推荐管理规定", "2024-03-01", 6, nil, types.EnforcementAdminRule)
	writeTable(t, dir, []types.AnalyzedRecord{second, extra})
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(tablePath, future, future))

	summary, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)

	results, err := store.Query(ctx, QueryOptions{Source: "miit"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].RegulatoryScore)
}

func TestQueryFilters(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()

	tablePath := writeTable(t, dir, []types.AnalyzedRecord{
		analyzed("miit", "人工智能安全管理办法", "2024-01-15", 7,
			[]string{"数据安全"}, types.EnforcementAdminRule),
		analyzed("cac", "生成式人工智能服务管理暂行办法", "2024-02-01", 8,
			[]string{"生成式AI"}, types.EnforcementAdminRule),
		analyzed("cac", "互联网信息服务算法推荐管理规定", "2024-01-20", 6,
			[]string{"算法透明度"}, types.EnforcementAdminRule),
	})

	var buf bytes.Buffer
	_, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)

	bySource, err := store.Query(ctx, QueryOptions{Source: "cac"})
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	byDomain, err := store.Query(ctx, QueryOptions{Domain: "生成式AI"})
	require.NoError(t, err)
	require.Len(t, byDomain, 1)
	assert.Equal(t, "生成式人工智能服务管理暂行办法", byDomain[0].Title)

	byScore, err := store.Query(ctx, QueryOptions{MinScore: 7})
	require.NoError(t, err)
	assert.Len(t, byScore, 2)

	byText, err := store.Query(ctx, QueryOptions{Text: "算法推荐"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "互联网信息服务算法推荐管理规定", byText[0].Title)

	limited, err := store.Query(ctx, QueryOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestExportYAML(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()

	tablePath := writeTable(t, dir, []types.AnalyzedRecord{
		analyzed("miit", "人工智能安全管理办法", "2024-01-15", 7,
			[]string{"数据安全"}, types.EnforcementAdminRule),
	})
	var buf bytes.Buffer
	_, err := store.Ingest(ctx, tablePath, &buf)
	require.NoError(t, err)

	exportPath := filepath.Join(dir, "export", "policies.yaml")
	count, err := store.ExportYAML(ctx, exportPath)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "count: 1")
	assert.Contains(t, string(data), "人工智能安全管理办法")
	assert.Contains(t, string(data), "enforcement_level: 行政规章")
}

func TestStoreReopens(t *testing.T) {
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")
	cfg := types.ArchiveConfig{ArchiveDir: archiveDir}

	store, err := NewStore(cfg)
	require.NoError(t, err)
	tablePath := writeTable(t, dir, []types.AnalyzedRecord{
		analyzed("miit", "人工智能安全管理办法", "2024-01-15", 7, nil, types.EnforcementAdminRule),
	})
	var buf bytes.Buffer
	_, err = store.Ingest(context.Background(), tablePath, &buf)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	results, err := reopened.Query(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
