package debate

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	WinnerUser = "user"
	WinnerAI   = "ai"
	WinnerTie  = "tie"
)

const (
	defaultScore        = 50
	fallbackScore       = 75
	defaultImprovements = "Focus on providing more specific evidence to support your claims and addressing your opponent's strongest arguments directly."
	fallbackFeedback    = "Both sides presented compelling arguments. For future debates, focus on providing more specific evidence."
)

// Judgment is the heuristic reading of a judge's free-form verdict.
type Judgment struct {
	Winner       string `json:"winner"`
	UserScore    int    `json:"userScore"`
	AIScore      int    `json:"aiScore"`
	Reasoning    string `json:"reasoning"`
	Improvements string `json:"improvements"`
}

var (
	userScoreRe = regexp.MustCompile(`(?:human|user)(?:'s)? score[^0-9\n]{0,15}(\d{1,3})`)
	aiScoreRe   = regexp.MustCompile(`\bai(?:'s)? score[^0-9\n]{0,15}(\d{1,3})`)
	feedbackRe  = regexp.MustCompile(`(?i)feedback`)
)

// ParseJudgment mines scores, winner and feedback out of judge text.
//
// Scores come from "human score"/"user score" and "ai score" markers and
// default to 50. The higher score wins; on a tie the text is searched for
// "human wins", "user wins" or "ai wins", and otherwise the result is a tie.
// Improvements are whatever follows the first "feedback".
func ParseJudgment(text string) Judgment {
	lower := strings.ToLower(text)
	j := Judgment{
		UserScore: scoreAfter(userScoreRe, lower),
		AIScore:   scoreAfter(aiScoreRe, lower),
		Reasoning: text,
	}

	switch {
	case j.UserScore > j.AIScore:
		j.Winner = WinnerUser
	case j.AIScore > j.UserScore:
		j.Winner = WinnerAI
	case strings.Contains(lower, "human wins") || strings.Contains(lower, "user wins"):
		j.Winner = WinnerUser
	case strings.Contains(lower, "ai wins"):
		j.Winner = WinnerAI
	default:
		j.Winner = WinnerTie
	}

	if loc := feedbackRe.FindStringIndex(text); loc != nil {
		j.Improvements = strings.TrimSpace(strings.TrimLeft(text[loc[1]:], ":*# \t\n"))
	}
	if j.Improvements == "" {
		j.Improvements = defaultImprovements
	}
	return j
}

// FallbackJudgment is used when the judge produced nothing.
func FallbackJudgment(text string) Judgment {
	return Judgment{
		Winner:       WinnerTie,
		UserScore:    fallbackScore,
		AIScore:      fallbackScore,
		Reasoning:    text,
		Improvements: fallbackFeedback,
	}
}

func scoreAfter(re *regexp.Regexp, lower string) int {
	m := re.FindStringSubmatch(lower)
	if m == nil {
		return defaultScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultScore
	}
	return min(max(n, 0), 100)
}
