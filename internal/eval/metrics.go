package eval

// Metric aggregates one metric pair at a cutoff k.
type Metric struct {
	Recall float64 `json:"recall"`
	MRR    float64 `json:"mrr"`
}

// firstRankMatch returns the 1-based rank of the first ranked item that is
// relevant, looking only at the top k, or 0 when none matches.
func firstRankMatch(relevant, ranked []string, k int) int {
	if len(relevant) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(relevant))
	for _, r := range relevant {
		set[r] = struct{}{}
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	for i := 0; i < k; i++ {
		if _, ok := set[ranked[i]]; ok {
			return i + 1
		}
	}
	return 0
}

// aggregate folds per-query first-hit ranks into Recall@k and MRR@k.
// ranks[i] is the first relevant rank of query i at the largest cutoff,
// or 0 for a miss; a hit counts toward a smaller k only when rank <= k.
func aggregate(ranks []int, k int) Metric {
	if len(ranks) == 0 {
		return Metric{}
	}
	var hits int
	var rrSum float64
	for _, r := range ranks {
		if r > 0 && r <= k {
			hits++
			rrSum += 1.0 / float64(r)
		}
	}
	n := float64(len(ranks))
	return Metric{
		Recall: float64(hits) / n,
		MRR:    rrSum / n,
	}
}
