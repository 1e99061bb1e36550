package util

import (
	"math"
	"testing"
)

// TestNewStats tests the summary of a sample set
func TestNewStats(t *testing.T) {
	s := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if s.Min != 2 || s.Max != 9 {
		t.Errorf("Expected min 2 and max 9, got %v and %v", s.Min, s.Max)
	}
	if s.Mean != 5 {
		t.Errorf("Expected mean 5, got %v", s.Mean)
	}
	if s.StdDeviation != 2 {
		t.Errorf("Expected standard deviation 2, got %v", s.StdDeviation)
	}
	if math.Abs(s.MinMaxRatio-2.0/9.0) > 1e-9 {
		t.Errorf("Expected min/max ratio %v, got %v", 2.0/9.0, s.MinMaxRatio)
	}

	if empty := NewStats(nil); empty != (Stats{}) {
		t.Errorf("Expected zero stats for no samples, got %+v", empty)
	}
}

// TestNewDistributionStats tests the distribution quality score
func TestNewDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if even.DistributionQuality != 1 {
		t.Errorf("even distribution should score 1, got %v", even.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{1, 1, 1, 37})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("skewed distribution should score lower, got %v", skewed.DistributionQuality)
	}
}
