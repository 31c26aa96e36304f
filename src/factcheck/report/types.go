package report

import (
	"github.com/stake-plus/sentinel/src/factcheck/trust"
	"github.com/stake-plus/sentinel/src/factcheck/verify"
)

// ReportedVerdict is a verdict with its sources flattened alongside.
type ReportedVerdict struct {
	verify.Verdict
	SourceNames []string `json:"source_names"`
	SourceLinks []string `json:"source_links"`
}

func NewReportedVerdict(v verify.Verdict) ReportedVerdict {
	return ReportedVerdict{Verdict: v, SourceNames: v.SourceNames(), SourceLinks: v.SourceLinks()}
}

type AnalysisSummary struct {
	trust.Tally
	TrustScore     float64 `json:"trust_score"`
	Recommendation string  `json:"recommendation"`
	OriginalText   string  `json:"original_text,omitempty"`
	Transcript     string  `json:"transcript,omitempty"`
}

type Report struct {
	VerifiedClaims  []ReportedVerdict `json:"verified_claims"`
	AnalysisSummary AnalysisSummary   `json:"analysis_summary"`
}

// Empty reports whether no claims were found.
func (r *Report) Empty() bool {
	return r == nil || len(r.VerifiedClaims) == 0
}

// NoClaims is the response for input without verifiable claims.
type NoClaims struct {
	NoClaimsFound  bool   `json:"no_claims_found"`
	Error          string `json:"error"`
	Recommendation string `json:"recommendation"`
	Text           string `json:"text"`
}

func NewNoClaims(text string) NoClaims {
	return NoClaims{
		NoClaimsFound:  true,
		Error:          "Could not extract any verifiable claims from the text",
		Recommendation: "Try providing text with clear factual statements.",
		Text:           Truncate(text, 100),
	}
}

// CompactVerdict is the trimmed verdict shape of the compact check endpoint.
type CompactVerdict struct {
	Claim            string          `json:"claim"`
	Result           trust.Result    `json:"result"`
	Explanation      string          `json:"explanation"`
	DetailedAnalysis string          `json:"detailed_analysis,omitempty"`
	Sources          []verify.Source `json:"sources"`
}

// Compact converts a report. A report without claims becomes one UNVERIFIED
// entry for the submitted text.
func Compact(r *Report, text string) []CompactVerdict {
	if r.Empty() {
		return []CompactVerdict{{
			Claim:       Truncate(text, 100),
			Result:      trust.Unverified,
			Explanation: "Insufficient context to make a proper analysis. No clear factual claims could be identified.",
			Sources:     []verify.Source{},
		}}
	}
	out := make([]CompactVerdict, 0, len(r.VerifiedClaims))
	for _, v := range r.VerifiedClaims {
		out = append(out, CompactVerdict{
			Claim:            v.Claim,
			Result:           v.Result,
			Explanation:      v.Summary,
			DetailedAnalysis: v.DetailedAnalysis,
			Sources:          v.Sources,
		})
	}
	return out
}

// Truncate cuts s to n characters and marks the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
