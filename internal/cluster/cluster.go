// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package cluster collapses the artifacts of one policy (announcement,
// full text, Q&A) into a single representative record. Records whose core
// titles are similar and whose publication dates lie within a bounded
// window are joined transitively with a union-find relation; each cluster
// then elects one canonical record by a deterministic rule.
package cluster

import (
	"sort"
	"time"

	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

// Defaults used when ClusterConfig fields are unset.
const (
	DefaultDateWindowDays       = 14
	DefaultSimilarityThreshold  = 0.75
	DefaultCrossSourceThreshold = 0.9
)

// Cluster partitions records into policy clusters. The partition and each
// cluster's canonical record are independent of input ordering: records
// are re-sorted internally and union-find yields the same partition for
// any union order. Every input record lands in exactly one cluster.
//
// Date handling: pairs with both dates known must lie within the window;
// pairs with both dates unknown are gated by similarity alone; pairs with
// exactly one date unknown are considered only within the same source
// body, a deliberately conservative choice to avoid over-merging
// unrelated policies across regulators.
func Cluster(records []types.NormalizedRecord, cfg types.ClusterConfig) []types.PolicyCluster {
	if len(records) == 0 {
		return nil
	}

	windowDays := cfg.DateWindowDays
	if windowDays <= 0 {
		windowDays = DefaultDateWindowDays
	}
	sameSourceTh := cfg.SimilarityThreshold
	if sameSourceTh <= 0 {
		sameSourceTh = DefaultSimilarityThreshold
	}
	crossSourceTh := cfg.CrossSourceThreshold
	if crossSourceTh <= 0 {
		crossSourceTh = DefaultCrossSourceThreshold
	}
	window := time.Duration(windowDays) * 24 * time.Hour

	// Work on a deterministic ordering regardless of caller ordering.
	recs := make([]types.NormalizedRecord, len(records))
	copy(recs, records)
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })

	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = matchKey(r.Title)
	}

	var dated, undated []int
	for i, r := range recs {
		if r.HasDate() {
			dated = append(dated, i)
		} else {
			undated = append(undated, i)
		}
	}
	sort.Slice(dated, func(a, b int) bool {
		di, dj := recs[dated[a]], recs[dated[b]]
		if !di.Date.Equal(dj.Date) {
			return di.Date.Before(dj.Date)
		}
		return di.ID < dj.ID
	})

	uf := newUnionFind(len(recs))
	join := func(i, j int) {
		th := sameSourceTh
		if recs[i].Source != recs[j].Source {
			th = crossSourceTh
		}
		if Similarity(keys[i], keys[j]) >= th {
			uf.union(i, j)
		}
	}

	// Sliding window over date-sorted records keeps the pair count near
	// linear when publication dates are spread out.
	for a := 0; a < len(dated); a++ {
		for b := a + 1; b < len(dated); b++ {
			i, j := dated[a], dated[b]
			if recs[j].Date.Sub(recs[i].Date) > window {
				break
			}
			join(i, j)
		}
	}

	// Undated records: no window can gate them.
	for a, u := range undated {
		for _, d := range dated {
			if recs[u].Source == recs[d].Source {
				join(u, d)
			}
		}
		for _, v := range undated[a+1:] {
			join(u, v)
		}
	}

	// Materialize clusters grouped by union-find root.
	groups := make(map[int][]int)
	for i := range recs {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	clusters := make([]types.PolicyCluster, 0, len(groups))
	for _, members := range groups {
		c := types.PolicyCluster{Members: make([]types.NormalizedRecord, 0, len(members))}
		// Member indices are already ascending, and recs is ID-sorted.
		for _, i := range members {
			c.Members = append(c.Members, recs[i])
		}
		c.Canonical = selectCanonical(c.Members)
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Canonical.ID < clusters[j].Canonical.ID
	})
	return clusters
}

// selectCanonical picks a cluster's representative: document-type priority
// (full text over announcement over Q&A), then earliest publication date
// with unknown dates last, then smallest ID. The rule is total, so the
// choice is reproducible.
func selectCanonical(members []types.NormalizedRecord) types.NormalizedRecord {
	best := members[0]
	for _, m := range members[1:] {
		if canonicalLess(m, best) {
			best = m
		}
	}
	return best
}

func canonicalLess(a, b types.NormalizedRecord) bool {
	if ra, rb := a.DocType.Rank(), b.DocType.Rank(); ra != rb {
		return ra < rb
	}
	switch {
	case a.HasDate() && !b.HasDate():
		return true
	case !a.HasDate() && b.HasDate():
		return false
	case a.HasDate() && b.HasDate() && !a.Date.Equal(b.Date):
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

// Canonicals returns every cluster's representative record, preserving
// cluster order.
func Canonicals(clusters []types.PolicyCluster) []types.NormalizedRecord {
	out := make([]types.NormalizedRecord, len(clusters))
	for i, c := range clusters {
		out[i] = c.Canonical
	}
	return out
}
