package discordbot

import (
	"fmt"
	"strings"

	"github.com/stake-plus/sentinel/src/factcheck/report"
	"github.com/stake-plus/sentinel/src/factcheck/trust"
)

const (
	maxMessageLen = 2000
	safeChunkLen  = 1900
)

var resultBadge = map[trust.Result]string{
	trust.True:       "✅ TRUE",
	trust.False:      "❌ FALSE",
	trust.Unverified: "❔ UNVERIFIED",
}

func badge(r trust.Result) string {
	if b, ok := resultBadge[r]; ok {
		return b
	}
	return resultBadge[trust.Unverified]
}

// FormatReport renders a report as Discord markdown.
func FormatReport(rep *report.Report) string {
	if rep.Empty() {
		nc := report.NewNoClaims("")
		return "**No verifiable claims found.** " + nc.Recommendation
	}
	sum := rep.AnalysisSummary
	var b strings.Builder
	fmt.Fprintf(&b, "**Trust score: %.1f/10**\n%s\n", sum.TrustScore, sum.Recommendation)
	fmt.Fprintf(&b, "Claims: %d · true %d · false %d · unverified %d\n",
		sum.Total, sum.True, sum.False, sum.Unverified)
	for i, v := range rep.VerifiedClaims {
		b.WriteString("\n")
		b.WriteString(formatVerdict(i+1, v))
	}
	return b.String()
}

// FormatVerdict renders a single-claim result.
func FormatVerdict(v report.ReportedVerdict) string {
	return formatVerdict(0, v)
}

func formatVerdict(n int, v report.ReportedVerdict) string {
	var b strings.Builder
	if n > 0 {
		fmt.Fprintf(&b, "**%d. %s**: %s\n", n, badge(v.Result), v.Claim)
	} else {
		fmt.Fprintf(&b, "**%s**: %s\n", badge(v.Result), v.Claim)
	}
	if v.Summary != "" {
		fmt.Fprintf(&b, "> %s\n", v.Summary)
	}
	for i, src := range v.Sources {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- [%s](<%s>)\n", src.Name, src.URL)
	}
	return b.String()
}

// splitMessage breaks text into chunks Discord accepts, preferring line
// boundaries.
func splitMessage(text string) []string {
	if len(text) <= maxMessageLen {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > safeChunkLen {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut := safeChunkLen
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+len(line) > safeChunkLen {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
