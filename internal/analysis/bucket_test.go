package analysis

import (
	"math"
	"testing"
)

func TestBucketizeDegenerateSeries(t *testing.T) {
	bins := Bucketize([]float64{5, 5, 5}, 10)
	if len(bins) != 1 {
		t.Fatalf("bins = %#v, want one bin", bins)
	}
	if bins[0].Range != "5" || bins[0].Count != 3 {
		t.Fatalf("bin = %#v, want {5 3}", bins[0])
	}
}

func TestBucketizeEmpty(t *testing.T) {
	if bins := Bucketize(nil, 10); bins == nil || len(bins) != 0 {
		t.Fatalf("empty series = %#v, want empty non-nil slice", bins)
	}
	if bins := Bucketize([]float64{math.NaN(), math.Inf(1)}, 10); len(bins) != 0 {
		t.Fatalf("non-finite series = %#v, want empty", bins)
	}
}

func TestBucketizeCountsAndLabels(t *testing.T) {
	values := []float64{0, 1, 2.5, 9.99, 10, 4, 4, 7}
	bins := Bucketize(values, 10)
	if len(bins) != 10 {
		t.Fatalf("len(bins) = %d, want 10", len(bins))
	}
	if bins[0].Range != "0-1" || bins[9].Range != "9-10" {
		t.Fatalf("labels = %q .. %q", bins[0].Range, bins[9].Range)
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(values) {
		t.Fatalf("sum of counts = %d, want %d", total, len(values))
	}
	if bins[9].Count != 2 {
		t.Fatalf("last bin = %d, want 2 (max is clamped into it)", bins[9].Count)
	}
	if bins[4].Count != 2 {
		t.Fatalf("bin 4-5 = %d, want 2", bins[4].Count)
	}
}

func TestBucketizeFiltersNonFiniteAndDefaultsBins(t *testing.T) {
	bins := Bucketize([]float64{1, math.NaN(), 3}, 2)
	if len(bins) != 2 || bins[0].Count != 1 || bins[1].Count != 1 {
		t.Fatalf("bins = %#v", bins)
	}
	if bins[0].Range != "1-2" || bins[1].Range != "2-3" {
		t.Fatalf("labels = %#v", bins)
	}
	if got := len(Bucketize([]float64{0, 100}, 0)); got != DefaultHistogramBins {
		t.Fatalf("default bins = %d, want %d", got, DefaultHistogramBins)
	}
}

func TestBucketizeNegativeRangeLabels(t *testing.T) {
	bins := Bucketize([]float64{-0.4, 0.4}, 2)
	if bins[0].Range != "0-0" {
		t.Fatalf("label = %q, want 0-0 without a negative zero", bins[0].Range)
	}
}

func TestAverageByRange(t *testing.T) {
	got := AverageByRange([]Pair{{0, 10}, {10, 30}, {10, 50}}, 2)
	if len(got) != 2 {
		t.Fatalf("ranges = %#v", got)
	}
	if got[0].Range != "0-5" || got[0].Average != 10 || got[0].Count != 1 {
		t.Fatalf("first = %#v", got[0])
	}
	if got[1].Range != "5-10" || got[1].Average != 40 || got[1].Count != 2 {
		t.Fatalf("second = %#v", got[1])
	}
}

func TestAverageByRangeDropsEmptyBins(t *testing.T) {
	got := AverageByRange([]Pair{{0, 1}, {8, 3}}, 0)
	if len(got) != 2 {
		t.Fatalf("ranges = %#v, want 2 non-empty of %d", got, DefaultRangeBins)
	}
	if got[0].Range != "0-1" || got[1].Range != "7-8" {
		t.Fatalf("labels = %q, %q", got[0].Range, got[1].Range)
	}
}

func TestAverageByRangeDegenerate(t *testing.T) {
	got := AverageByRange([]Pair{{5, 10}, {5, 21}}, 8)
	if len(got) != 1 || got[0].Range != "5" || got[0].Average != 15.5 || got[0].Count != 2 {
		t.Fatalf("degenerate = %#v", got)
	}
	if got := AverageByRange(nil, 8); len(got) != 0 {
		t.Fatalf("empty = %#v", got)
	}
}

func TestAverageByRangeRounding(t *testing.T) {
	got := AverageByRange([]Pair{{0, 1}, {0, 1}, {0, 2}, {9, 0}}, 2)
	if got[0].Average != 1.33 {
		t.Fatalf("average = %v, want 1.33", got[0].Average)
	}
}

func TestFixedRangesClosesLastRange(t *testing.T) {
	got := FixedRanges([]float64{0, 20, 99.9, 100, 101}, PyramidRanges)
	wantCounts := []int{1, 1, 0, 0, 2}
	wantPct := []float64{20, 20, 0, 0, 40}
	for i := range got {
		if got[i].Range != PyramidRanges[i].Label {
			t.Fatalf("range %d label = %q", i, got[i].Range)
		}
		if got[i].Count != wantCounts[i] || got[i].Percentage != wantPct[i] {
			t.Fatalf("range %d = %#v, want count %d pct %v", i, got[i], wantCounts[i], wantPct[i])
		}
	}
	for _, rc := range FixedRanges(nil, PyramidRanges) {
		if rc.Count != 0 || rc.Percentage != 0 {
			t.Fatalf("empty = %#v", rc)
		}
	}
}
