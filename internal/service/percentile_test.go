package service

import (
	"errors"
	"math"
	"testing"
)

func TestErfKnownValues(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		0.5:  0.5204998778,
		1:    0.8427007929,
		2:    0.9953222650,
		-1:   -0.8427007929,
		-0.5: -0.5204998778,
	}
	for x, want := range cases {
		if got := Erf(x); math.Abs(got-want) > 2e-7 {
			t.Fatalf("erf(%v): expected %v, got %v", x, want, got)
		}
	}
}

func TestPercentileAtMeanIsFifty(t *testing.T) {
	if got := Percentile(ScoreMean); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestPercentileExamples(t *testing.T) {
	cases := []struct {
		score float64
		want  float64
	}{
		{6.2, 68},
		{7, 84},
		{8.5, 98},
		{4, 16},
		{10, 100},
		{1, 0},
	}
	for _, tc := range cases {
		if got := Percentile(tc.score); got != tc.want {
			t.Fatalf("percentile(%v): expected %v, got %v", tc.score, tc.want, got)
		}
	}
}

func TestPercentileMonotonic(t *testing.T) {
	prev := -1.0
	for s := 0.0; s <= 10.0; s += 0.05 {
		p := Percentile(s)
		if p < prev {
			t.Fatalf("percentile decreased at %v: %v < %v", s, p, prev)
		}
		if p < 0 || p > 100 {
			t.Fatalf("percentile out of range at %v: %v", s, p)
		}
		prev = p
	}
}

func TestWorldRankIdentity(t *testing.T) {
	for pct := 0.0; pct <= 100; pct++ {
		rank := WorldRank(pct)
		if rank < 1 {
			t.Fatalf("rank below 1 for percentile %v: %v", pct, rank)
		}
		sum := rank + pct/100*float64(WorldPopulation)
		if math.Abs(sum-float64(WorldPopulation+1)) > 1 {
			t.Fatalf("rank identity broken for percentile %v: %v", pct, sum)
		}
	}
	if WorldRank(100) != 1 {
		t.Fatalf("expected rank 1 at percentile 100, got %v", WorldRank(100))
	}
	if WorldRank(0) != float64(WorldPopulation+1) {
		t.Fatalf("expected total+1 at percentile 0, got %v", WorldRank(0))
	}
}

func TestEstimateStanding(t *testing.T) {
	st, err := EstimateStanding(6.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.DisplayScore != 62 || st.Percentile != 68 {
		t.Fatalf("unexpected standing %+v", st)
	}
	wantRank := int64(math.Round(0.32*float64(WorldPopulation))) + 1
	if st.Rank != wantRank {
		t.Fatalf("expected rank %d, got %d", wantRank, st.Rank)
	}
	if st.Total != WorldPopulation {
		t.Fatalf("expected total %d, got %d", WorldPopulation, st.Total)
	}

	if _, err := EstimateStanding(math.NaN()); !errors.Is(err, ErrNonFiniteScore) {
		t.Fatalf("expected ErrNonFiniteScore, got %v", err)
	}
	if !math.IsNaN(Percentile(math.NaN())) {
		t.Fatalf("expected NaN to propagate through Percentile")
	}

	top, err := EstimateStanding(math.Inf(1))
	if err != nil || top.Percentile != 100 || top.Rank != 1 {
		t.Fatalf("expected saturation at +Inf, got %+v err=%v", top, err)
	}
	bottom, err := EstimateStanding(math.Inf(-1))
	if err != nil || bottom.Percentile != 0 || bottom.Rank != WorldPopulation+1 {
		t.Fatalf("expected saturation at -Inf, got %+v err=%v", bottom, err)
	}
}

func TestStandingVerdictTiers(t *testing.T) {
	if got := StandingVerdict(97); got != verdictTiers[0].message {
		t.Fatalf("unexpected top verdict %q", got)
	}
	if got := StandingVerdict(95); got != verdictTiers[0].message {
		t.Fatalf("95 should be top tier, got %q", got)
	}
	if got := StandingVerdict(94); got != verdictTiers[1].message {
		t.Fatalf("94 should be second tier, got %q", got)
	}
	if got := StandingVerdict(50); got != verdictTiers[7].message {
		t.Fatalf("50 should be NICE tier, got %q", got)
	}
	if got := StandingVerdict(5); got != baseVerdict {
		t.Fatalf("expected base verdict, got %q", got)
	}
}

func TestExpectedAge(t *testing.T) {
	age := 31
	if got, estimated := ExpectedAge(7, &age); got != 31 || estimated {
		t.Fatalf("expected detected age 31, got %d (estimated=%v)", got, estimated)
	}
	if got, estimated := ExpectedAge(7, nil); got != 24 || !estimated {
		t.Fatalf("expected estimated age 24, got %d (estimated=%v)", got, estimated)
	}
	if got, _ := ExpectedAge(6.2, nil); got != 22 {
		t.Fatalf("expected 22 for 6.2, got %d", got)
	}
}
