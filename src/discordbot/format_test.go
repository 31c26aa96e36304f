package discordbot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/sentinel/src/factcheck/report"
	"github.com/stake-plus/sentinel/src/factcheck/trust"
	"github.com/stake-plus/sentinel/src/factcheck/verify"
)

func TestFormatReport(t *testing.T) {
	rep := &report.Report{
		VerifiedClaims: []report.ReportedVerdict{
			report.NewReportedVerdict(verify.Verdict{
				Claim: "Water boils at 100C at sea level", Result: trust.True, Summary: "Confirmed.",
				Sources: []verify.Source{{Name: "Britannica", URL: "https://britannica.example"}},
			}),
			report.NewReportedVerdict(verify.Verdict{Claim: "The moon is cheese", Result: trust.False}),
		},
		AnalysisSummary: report.AnalysisSummary{
			Tally:          trust.Tally{Total: 2, True: 1, False: 1},
			TrustScore:     5,
			Recommendation: trust.Recommend(5),
		},
	}
	out := FormatReport(rep)
	assert.Contains(t, out, "Trust score: 5.0/10")
	assert.Contains(t, out, "**1. ✅ TRUE**: Water boils")
	assert.Contains(t, out, "**2. ❌ FALSE**: The moon is cheese")
	assert.Contains(t, out, "[Britannica](<https://britannica.example>)")

	assert.Contains(t, FormatReport(&report.Report{}), "No verifiable claims found")
}

func TestFormatVerdictUnknownResult(t *testing.T) {
	out := FormatVerdict(report.NewReportedVerdict(verify.Verdict{Claim: "x", Result: "MAYBE"}))
	assert.True(t, strings.HasPrefix(out, "**❔ UNVERIFIED**: x"))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short"))

	line := strings.Repeat("é", 300) + "\n"
	text := strings.Repeat(line, 10)
	chunks := splitMessage(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), maxMessageLen)
		assert.True(t, utf8.ValidString(c))
	}

	long := strings.Repeat("ü", 3000)
	chunks = splitMessage(long)
	assert.Equal(t, long, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
	}
}

func TestOptionString(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: CommandClaim,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "claim", Type: discordgo.ApplicationCommandOptionString, Value: "The earth is flat"},
		},
	}
	assert.Equal(t, "The earth is flat", optionString(data, "claim"))
	assert.Equal(t, "", optionString(data, "text"))
}
