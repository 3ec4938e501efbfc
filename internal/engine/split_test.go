package engine

import (
	"math"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		memberIDs []string
		want      map[string]float64
	}{
		{
			name:      "three-way even split",
			amount:    30,
			memberIDs: []string{"u1", "u2", "u3"},
			want:      map[string]float64{"u1": 10, "u2": 10, "u3": 10},
		},
		{
			name:      "two-way split with repeating decimal",
			amount:    100,
			memberIDs: []string{"u1", "u2", "u3"},
			want:      map[string]float64{"u1": 100.0 / 3, "u2": 100.0 / 3, "u3": 100.0 / 3},
		},
		{
			name:      "duplicate id accumulates a double share",
			amount:    30,
			memberIDs: []string{"u1", "u1", "u2"},
			want:      map[string]float64{"u1": 20, "u2": 10},
		},
		{
			name:      "zero amount",
			amount:    0,
			memberIDs: []string{"u1", "u2"},
			want:      map[string]float64{"u1": 0, "u2": 0},
		},
		{
			name:      "empty member list leaves amount unassigned",
			amount:    42.5,
			memberIDs: nil,
			want:      map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.amount, tt.memberIDs)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() returned %d shares, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				if math.Abs(got[id]-want) > 1e-9 {
					t.Errorf("share[%s] = %v, want %v", id, got[id], want)
				}
			}
		})
	}
}

// Shares must sum back to the amount: no share is silently dropped.
func TestSplitConservation(t *testing.T) {
	amounts := []float64{0, 0.01, 1, 29.99, 100, 1234.56, 1e6}
	memberSets := [][]string{
		{"u1"},
		{"u1", "u2"},
		{"u1", "u2", "u3"},
		{"u1", "u2", "u3", "u4", "u5", "u6", "u7"},
		{"u1", "u1", "u2"},
	}

	for _, amount := range amounts {
		for _, members := range memberSets {
			shares := Split(amount, members)
			var sum float64
			for _, v := range shares {
				sum += v
			}
			if math.Abs(sum-amount) > 1e-9 {
				t.Errorf("Split(%v, %v): shares sum to %v, want %v", amount, members, sum, amount)
			}
		}
	}
}
