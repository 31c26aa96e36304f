package trust

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    float64
	}{
		{"empty is neutral", nil, 5.0},
		{"all true", []Result{True, True}, 10.0},
		{"all false", []Result{False}, 0.0},
		{"mixed", []Result{True, False, Unverified}, 5.0},
		{"rounded", []Result{True, True, Unverified}, 8.3},
		{"half rounds to even", []Result{True, True, Unverified, False}, 6.2},
		{"half rounds to even upward", []Result{True, True, True, Unverified}, 8.8},
		{"unknown weighs as unverified", []Result{"MOSTLY TRUE"}, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.results))
		})
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	all := []Result{True, False, Unverified}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := r.Intn(12)
		results := make([]Result, n)
		for j := range results {
			results[j] = all[r.Intn(len(all))]
		}
		s := Score(results)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 10.0)
	}
}

func TestRecommend_Bands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, HighlyReliable},
		{8.0, HighlyReliable},
		{7.99, MixedCaution},
		{6.0, MixedCaution},
		{5.99, SignificantUnverified},
		{4.0, SignificantUnverified},
		{3.99, Misleading},
		{0, Misleading},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommend(tt.score), "score %v", tt.score)
	}
}

func TestCount(t *testing.T) {
	got := Count([]Result{True, False, Unverified, Unverified})
	assert.Equal(t, Tally{Total: 4, True: 1, False: 1, Unverified: 2}, got)
}
