package cluster

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiyuanplus/ai-policy-platform/internal/ingest"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

func rec(t *testing.T, source, title, date, docType string) types.NormalizedRecord {
	t.Helper()
	r, ok := ingest.Normalize(types.RawRecord{
		Source: source, Title: title, Date: date, DocType: docType,
	})
	require.True(t, ok)
	return r
}

func TestCoreTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"book marks win", "关于印发《人工智能安全治理框架》的通知", "人工智能安全治理框架"},
		{"trailing qualifier stripped", "人工智能安全管理办法（全文）", "人工智能安全管理办法"},
		{"wrapper unwrapped", "关于人工智能安全管理的通知", "人工智能安全管理"},
		{"draft qualifier", "生成式人工智能服务管理暂行办法（征求意见稿）", "生成式人工智能服务管理暂行办法"},
		{"plain title unchanged", "网络安全审查办法", "网络安全审查办法"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoreTitle(tt.title))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("网络安全审查办法", "网络安全审查办法"))
	assert.Equal(t, 0.0, Similarity("", "网络安全审查办法"))

	// Containment: one core title fully inside the other.
	s := Similarity("人工智能安全管理", "人工智能安全管理办法")
	assert.GreaterOrEqual(t, s, containmentScore)

	// Unrelated policies stay far below the threshold.
	s = Similarity("网络安全审查办法", "人工智能安全管理办法")
	assert.Less(t, s, 0.5)
}

func TestClusterScenario(t *testing.T) {
	// The announcement and the full text of one MIIT policy must collapse
	// into a single cluster represented by the full text; the unrelated
	// CAC policy stays alone.
	announcement := rec(t, "MIIT", "关于人工智能安全管理的通知", "2024-01-10", "announcement")
	fullText := rec(t, "MIIT", "人工智能安全管理办法（全文）", "2024-01-12", "full text")
	unrelated := rec(t, "CAC", "网络安全审查办法", "2024-02-01", "full text")

	clusters := Cluster([]types.NormalizedRecord{announcement, fullText, unrelated}, types.ClusterConfig{})
	require.Len(t, clusters, 2)

	var merged, single types.PolicyCluster
	for _, c := range clusters {
		if c.Size() == 2 {
			merged = c
		} else {
			single = c
		}
	}
	require.Equal(t, 2, merged.Size())
	assert.Equal(t, fullText.ID, merged.Canonical.ID)
	assert.Equal(t, unrelated.ID, single.Canonical.ID)
}

func TestClusterOrderIndependence(t *testing.T) {
	records := []types.NormalizedRecord{
		rec(t, "MIIT", "关于人工智能安全管理的通知", "2024-01-10", "announcement"),
		rec(t, "MIIT", "人工智能安全管理办法（全文）", "2024-01-12", "full text"),
		rec(t, "MIIT", "《人工智能安全管理办法》政策解读", "2024-01-15", "qa"),
		rec(t, "CAC", "网络安全审查办法", "2024-02-01", "full text"),
		rec(t, "TC260", "生成式人工智能服务安全基本要求", "2024-03-01", "full text"),
	}

	want := Cluster(records, types.ClusterConfig{})

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]types.NormalizedRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Cluster(shuffled, types.ClusterConfig{})
		assert.Equal(t, want, got)
	}
}

func TestClusterTransitive(t *testing.T) {
	// A~B and B~C within the window implies one cluster for all three,
	// even if A and C were never compared directly.
	a := rec(t, "MIIT", "关于人工智能安全管理的通知", "2024-01-01", "announcement")
	b := rec(t, "MIIT", "人工智能安全管理办法（全文）", "2024-01-10", "full text")
	c := rec(t, "MIIT", "《人工智能安全管理办法》政策解读", "2024-01-20", "qa")

	clusters := Cluster([]types.NormalizedRecord{a, b, c}, types.ClusterConfig{})
	require.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].Size())
	assert.Equal(t, b.ID, clusters[0].Canonical.ID)
}

func TestClusterDateWindowGate(t *testing.T) {
	// Identical titles far apart in time are distinct policies (e.g. an
	// annual re-issue) and must not merge.
	a := rec(t, "CAC", "网络安全审查办法", "2023-01-01", "full text")
	b := rec(t, "CAC", "网络安全审查办法", "2024-06-01", "full text")

	clusters := Cluster([]types.NormalizedRecord{a, b}, types.ClusterConfig{})
	assert.Len(t, clusters, 2)
}

func TestClusterCrossSourceNearIdentical(t *testing.T) {
	// Cross-posted records merge only when titles are near identical.
	a := rec(t, "CAC", "生成式人工智能服务管理暂行办法", "2023-07-10", "full text")
	b := rec(t, "MIIT", "生成式人工智能服务管理暂行办法", "2023-07-11", "full text")
	clusters := Cluster([]types.NormalizedRecord{a, b}, types.ClusterConfig{})
	require.Len(t, clusters, 1)

	// Same-source similarity that clears 0.75 but not 0.9 must not merge
	// across sources.
	c := rec(t, "CAC", "人工智能安全管理办法", "2024-01-10", "full text")
	d := rec(t, "MIIT", "人工智能安全管理规定", "2024-01-11", "full text")
	sim := Similarity(matchKey(c.Title), matchKey(d.Title))
	require.Greater(t, sim, 0.75)
	require.Less(t, sim, 0.9)
	clusters = Cluster([]types.NormalizedRecord{c, d}, types.ClusterConfig{})
	assert.Len(t, clusters, 2)
}

func TestClusterNullDates(t *testing.T) {
	// Both dates unknown: similarity alone decides.
	a := rec(t, "CAC", "人工智能安全管理办法", "", "full text")
	b := rec(t, "CAC", "人工智能安全管理办法（全文）", "", "announcement")
	clusters := Cluster([]types.NormalizedRecord{a, b}, types.ClusterConfig{})
	require.Len(t, clusters, 1)
	// Full text wins regardless of the missing dates.
	assert.Equal(t, a.ID, clusters[0].Canonical.ID)

	// One date unknown across different sources: never candidates.
	c := rec(t, "MIIT", "人工智能安全管理办法", "2024-01-10", "full text")
	clusters = Cluster([]types.NormalizedRecord{a, c}, types.ClusterConfig{})
	assert.Len(t, clusters, 2)
}

func TestClusterSizeOne(t *testing.T) {
	a := rec(t, "CAC", "网络安全审查办法", "2024-02-01", "full text")
	clusters := Cluster([]types.NormalizedRecord{a}, types.ClusterConfig{})
	require.Len(t, clusters, 1)
	assert.Equal(t, a, clusters[0].Canonical)
	assert.Equal(t, 1, clusters[0].Size())
}

func TestCanonicalTieBreaks(t *testing.T) {
	// Same doc type: earliest date wins.
	early := rec(t, "CAC", "人工智能安全管理办法", "2024-01-10", "full text")
	late := rec(t, "CAC", "人工智能安全管理办法（全文）", "2024-01-12", "full text")
	clusters := Cluster([]types.NormalizedRecord{late, early}, types.ClusterConfig{})
	require.Len(t, clusters, 1)
	assert.Equal(t, early.ID, clusters[0].Canonical.ID)

	// Dated member beats the undated one at equal doc-type rank.
	undated := rec(t, "CAC", "人工智能安全管理办法（印发稿）", "", "full text")
	clusters = Cluster([]types.NormalizedRecord{undated, early}, types.ClusterConfig{})
	require.Len(t, clusters, 1)
	assert.Equal(t, early.ID, clusters[0].Canonical.ID)
}

func TestClusterEmpty(t *testing.T) {
	assert.Nil(t, Cluster(nil, types.ClusterConfig{}))
}

func TestCanonicals(t *testing.T) {
	a := rec(t, "CAC", "网络安全审查办法", "2024-02-01", "full text")
	b := rec(t, "MIIT", "人工智能安全管理办法", "2024-01-12", "full text")
	clusters := Cluster([]types.NormalizedRecord{a, b}, types.ClusterConfig{})
	cans := Canonicals(clusters)
	require.Len(t, cans, 2)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{cans[0].ID, cans[1].ID})
}

// Guards the sliding-window bound: records sorted by date stop being
// compared once the gap exceeds the window, so a long stream of unrelated
// records costs near-linear pair checks.
func TestClusterManyRecords(t *testing.T) {
	var records []types.NormalizedRecord
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	titles := []string{"网络安全审查办法", "数据出境安全评估办法", "汽车数据安全管理若干规定"}
	for i := 0; i < 300; i++ {
		records = append(records, rec(t, "CAC",
			titles[i%len(titles)],
			base.AddDate(0, 0, i*30).Format("2006-01-02"),
			"full text"))
	}
	clusters := Cluster(records, types.ClusterConfig{})
	// 30-day spacing exceeds the 14-day window, so nothing merges.
	assert.Len(t, clusters, 300)
}
