package relevance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

func newFilter(t *testing.T) *Filter {
	t.Helper()
	f, err := New(types.FilterConfig{})
	require.NoError(t, err)
	return f
}

func record(title, body string) types.NormalizedRecord {
	return types.NormalizedRecord{ID: "test", Source: "cac", Title: title, Body: body}
}

func TestScore(t *testing.T) {
	f := newFilter(t)
	tests := []struct {
		name  string
		title string
		body  string
		want  int
	}{
		// 人工智能 (3) also contains 智能 (2).
		{"core term", "人工智能安全管理办法（全文）", "", 5},
		{"no ai terms", "网络安全审查办法", "", 0},
		// 生成式人工智能: 生成式 (3) + 人工智能 (3) + 智能 (2).
		{"stacked terms", "生成式人工智能服务管理暂行办法", "", 8},
		{"body contributes", "网络安全审查办法", "涉及人工智能的采购活动", 5},
		// Repetition does not inflate the score.
		{"counted once", "算法算法算法", "算法 算法 算法", 2},
		{"ascii keyword case folded", "AI安全治理框架", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Score(record(tt.title, tt.body)))
		})
	}
}

func TestScoreMonotonic(t *testing.T) {
	f := newFilter(t)
	// A record matching a strict superset of another's keywords scores at
	// least as high.
	base := f.Score(record("算法推荐管理规定", ""))
	super := f.Score(record("生成式人工智能算法推荐管理规定", ""))
	assert.GreaterOrEqual(t, super, base)
}

func TestApplyThresholdExclusive(t *testing.T) {
	f := newFilter(t)

	// 智能 (2) + 深度合成 (2) = exactly 4: must be excluded.
	boundary := record("智能网联汽车深度合成数据规定", "")
	require.Equal(t, 4, f.Score(boundary))

	passing := record("人工智能安全管理办法", "")
	require.Equal(t, 5, f.Score(passing))

	kept := f.Apply([]types.NormalizedRecord{boundary, passing})
	require.Len(t, kept, 1)
	assert.Equal(t, passing.Title, kept[0].Title)
	assert.Equal(t, 5, kept[0].AIScore)
}

func TestApplyEmptyResult(t *testing.T) {
	f := newFilter(t)
	kept := f.Apply([]types.NormalizedRecord{record("网络安全审查办法", "")})
	assert.NotNil(t, kept)
	assert.Empty(t, kept)
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := "- keyword: 量子计算\n  weight: 5\n- keyword: ＡＩ芯片\n  weight: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := New(types.FilterConfig{LexiconPath: path})
	require.NoError(t, err)

	// Loaded keywords are folded: fullwidth ＡＩ matches ascii "ai芯片".
	assert.Equal(t, 7, f.Score(record("量子计算与AI芯片发展规划", "")))
	assert.Equal(t, 0, f.Score(record("人工智能安全管理办法", "")))
}

func TestLoadLexiconErrors(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- keyword: \"\"\n  weight: 1\n"), 0o644))
	_, err = LoadLexicon(path)
	assert.Error(t, err)
}

func TestCustomThreshold(t *testing.T) {
	f, err := New(types.FilterConfig{Threshold: 1})
	require.NoError(t, err)
	kept := f.Apply([]types.NormalizedRecord{record("算法备案公告", "")})
	require.Len(t, kept, 1)
	assert.Equal(t, 2, kept[0].AIScore)
}
