package eval

import (
	"math"
	"testing"
)

func TestFirstRankMatch(t *testing.T) {
	ranked := []string{"a#0", "b#0", "c#0"}
	if r := firstRankMatch([]string{"b#0"}, ranked, 5); r != 2 {
		t.Errorf("rank = %d, want 2", r)
	}
	if r := firstRankMatch([]string{"b#0"}, ranked, 1); r != 0 {
		t.Errorf("rank beyond cutoff = %d, want 0", r)
	}
	if r := firstRankMatch([]string{"z#0"}, ranked, 5); r != 0 {
		t.Errorf("miss = %d, want 0", r)
	}
	if r := firstRankMatch(nil, ranked, 5); r != 0 {
		t.Errorf("no relevants = %d, want 0", r)
	}
	if r := firstRankMatch([]string{"c#0", "a#0"}, ranked, 5); r != 1 {
		t.Errorf("multiple relevants = %d, want first match rank 1", r)
	}
}

func TestAggregateSingleHitAtRankTwo(t *testing.T) {
	// One query, first relevant hit at rank 2: Recall@5 = 1, MRR@5 = 1/2.
	m := aggregate([]int{2}, 5)
	if m.Recall != 1.0 {
		t.Errorf("Recall = %v, want 1.0", m.Recall)
	}
	if math.Abs(m.MRR-0.5) > 1e-12 {
		t.Errorf("MRR = %v, want 0.5", m.MRR)
	}
}

func TestAggregateMixedQueries(t *testing.T) {
	// Hits at ranks 1 and 3, one miss.
	m := aggregate([]int{1, 3, 0}, 5)
	if math.Abs(m.Recall-2.0/3.0) > 1e-12 {
		t.Errorf("Recall = %v, want 2/3", m.Recall)
	}
	want := (1.0 + 1.0/3.0) / 3.0
	if math.Abs(m.MRR-want) > 1e-12 {
		t.Errorf("MRR = %v, want %v", m.MRR, want)
	}
}

func TestAggregateRecallMonotonicInK(t *testing.T) {
	ranks := []int{1, 2, 4, 7, 0}
	prev := 0.0
	for _, k := range []int{1, 3, 5, 10} {
		m := aggregate(ranks, k)
		if m.Recall < prev {
			t.Errorf("Recall@%d = %v decreased below %v", k, m.Recall, prev)
		}
		prev = m.Recall
	}
}

func TestAggregateEmpty(t *testing.T) {
	m := aggregate(nil, 5)
	if m.Recall != 0 || m.MRR != 0 {
		t.Errorf("empty aggregate = %+v", m)
	}
}
