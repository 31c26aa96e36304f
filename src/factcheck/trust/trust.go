// Package trust reduces verdicts to a 0-10 trust score and a recommendation.
package trust

import "math"

// Result is the verdict classification.
type Result string

const (
	True       Result = "TRUE"
	False      Result = "FALSE"
	Unverified Result = "UNVERIFIED"
)

// Neutral is the score of an empty verdict list.
const Neutral = 5.0

var weights = map[Result]float64{
	True:       10,
	False:      0,
	Unverified: 5,
}

// Score is the mean verdict weight rounded to one decimal. Unknown results
// weigh as UNVERIFIED.
func Score(results []Result) float64 {
	if len(results) == 0 {
		return Neutral
	}
	var total float64
	for _, r := range results {
		w, ok := weights[r]
		if !ok {
			w = weights[Unverified]
		}
		total += w
	}
	return math.RoundToEven(total/float64(len(results))*10) / 10
}

// Tally counts verdicts per result.
type Tally struct {
	Total      int `json:"total_claims"`
	True       int `json:"verified_true"`
	False      int `json:"verified_false"`
	Unverified int `json:"unverified"`
}

func Count(results []Result) Tally {
	t := Tally{Total: len(results)}
	for _, r := range results {
		switch r {
		case True:
			t.True++
		case False:
			t.False++
		default:
			t.Unverified++
		}
	}
	return t
}

const (
	HighlyReliable        = "This content appears highly reliable and factually accurate."
	MixedCaution          = "This content contains a mix of accurate and unverified information. Exercise some caution."
	SignificantUnverified = "This content contains significant unverified information. Verify important claims with additional sources."
	Misleading            = "This content contains multiple false or misleading claims. Approach with significant skepticism."
)

// Recommend maps a score to its band.
func Recommend(score float64) string {
	switch {
	case score >= 8.0:
		return HighlyReliable
	case score >= 6.0:
		return MixedCaution
	case score >= 4.0:
		return SignificantUnverified
	default:
		return Misleading
	}
}
