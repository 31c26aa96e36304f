package report

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/sentinel/src/factcheck/claims"
	"github.com/stake-plus/sentinel/src/factcheck/trust"
	"github.com/stake-plus/sentinel/src/factcheck/verify"
)

type fakeExtractor struct {
	ExtractFunc func(ctx context.Context, text string) []claims.Claim
	calls       int
	lastText    string
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) []claims.Claim {
	f.calls++
	f.lastText = text
	return f.ExtractFunc(ctx, text)
}

type fakeVerifier struct {
	VerifyFunc func(ctx context.Context, c claims.Claim) verify.Verdict
	mu         sync.Mutex
	seen       []claims.Claim
}

func (f *fakeVerifier) Verify(ctx context.Context, c claims.Claim) verify.Verdict {
	f.mu.Lock()
	f.seen = append(f.seen, c)
	f.mu.Unlock()
	return f.VerifyFunc(ctx, c)
}

func byPrefix(ctx context.Context, c claims.Claim) verify.Verdict {
	v := verify.Verdict{Claim: c.Text, Result: trust.Unverified, Sources: []verify.Source{}}
	switch {
	case strings.HasPrefix(c.Text, "T"):
		v.Result = trust.True
		v.Sources = []verify.Source{{Name: "Britannica", URL: "https://britannica.example"}}
	case strings.HasPrefix(c.Text, "F"):
		v.Result = trust.False
	}
	return v
}

const longText = "This is a long enough text that it will be sent to the extractor because it has " +
	"well over twenty words in it, which is the default threshold for the short text shortcut."

func TestCheckText_AssemblesReport(t *testing.T) {
	ex := &fakeExtractor{ExtractFunc: func(context.Context, string) []claims.Claim {
		return []claims.Claim{{Text: "T1"}, {Text: "F1"}, {Text: "U1"}, {Text: "T2"}}
	}}
	svc := NewService(ex, &fakeVerifier{VerifyFunc: byPrefix}, Options{Workers: 2, ShortTextWords: 20}, nil, nil)

	rep, err := svc.CheckText(context.Background(), longText)
	require.NoError(t, err)
	require.Len(t, rep.VerifiedClaims, 4)
	assert.Equal(t, []string{"T1", "F1", "U1", "T2"}, []string{
		rep.VerifiedClaims[0].Claim, rep.VerifiedClaims[1].Claim, rep.VerifiedClaims[2].Claim, rep.VerifiedClaims[3].Claim,
	})
	sum := rep.AnalysisSummary
	assert.Equal(t, trust.Tally{Total: 4, True: 2, False: 1, Unverified: 1}, sum.Tally)
	assert.Equal(t, 6.3, sum.TrustScore)
	assert.Equal(t, trust.MixedCaution, sum.Recommendation)
	assert.Equal(t, longText, sum.OriginalText)
	assert.Equal(t, []string{"Britannica"}, rep.VerifiedClaims[0].SourceNames)
	assert.Equal(t, []string{}, rep.VerifiedClaims[1].SourceLinks)

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	var generic struct {
		VerifiedClaims  json.RawMessage        `json:"verified_claims"`
		AnalysisSummary map[string]interface{} `json:"analysis_summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, float64(4), generic.AnalysisSummary["total_claims"])
	assert.Equal(t, float64(2), generic.AnalysisSummary["verified_true"])
	assert.Contains(t, string(generic.VerifiedClaims), `"source_links":["https://britannica.example"]`)
}

func TestCheckText_ShortTextIsOneClaim(t *testing.T) {
	ex := &fakeExtractor{ExtractFunc: func(context.Context, string) []claims.Claim { t.Fatal("extractor called"); return nil }}
	ver := &fakeVerifier{VerifyFunc: byPrefix}
	svc := NewService(ex, ver, Options{ShortTextWords: 20}, nil, nil)

	rep, err := svc.CheckText(context.Background(), "The <b>Eiffel Tower</b> is in Berlin")
	require.NoError(t, err)
	require.Len(t, ver.seen, 1)
	assert.Equal(t, claims.Claim{
		Text:        "The Eiffel Tower is in Berlin",
		Context:     UserStatementContext,
		SearchQuery: "fact check The Eiffel Tower is in Berlin",
	}, ver.seen[0])
	assert.Equal(t, "The Eiffel Tower is in Berlin", rep.VerifiedClaims[0].Claim)
	assert.Equal(t, "The Eiffel Tower is in Berlin", rep.AnalysisSummary.OriginalText)
}

func TestCheckText_EmptyInputIsNoClaims(t *testing.T) {
	ex := &fakeExtractor{ExtractFunc: func(context.Context, string) []claims.Claim { return []claims.Claim{} }}
	ver := &fakeVerifier{VerifyFunc: byPrefix}
	svc := NewService(ex, ver, Options{ShortTextWords: 20}, nil, nil)

	rep, err := svc.CheckText(context.Background(), "   ")
	require.NoError(t, err)
	assert.True(t, rep.Empty())
	assert.Equal(t, trust.Neutral, rep.AnalysisSummary.TrustScore)
	assert.Equal(t, 0, ex.calls)
	assert.Empty(t, ver.seen)

	rep, err = svc.CheckText(context.Background(), longText)
	require.NoError(t, err)
	assert.True(t, rep.Empty())
	assert.Equal(t, 1, ex.calls)
}

func TestVerifyAll_BoundedConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	ver := &fakeVerifier{VerifyFunc: func(ctx context.Context, c claims.Claim) verify.Verdict {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return byPrefix(ctx, c)
	}}
	svc := NewService(nil, ver, Options{Workers: 3}, nil, nil)

	cs := make([]claims.Claim, 12)
	for i := range cs {
		cs[i] = claims.Claim{Text: "T"}
	}
	got := svc.VerifyAll(context.Background(), cs)
	assert.Len(t, got, 12)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestCheckText_CancelledContext(t *testing.T) {
	ex := &fakeExtractor{ExtractFunc: func(context.Context, string) []claims.Claim { return []claims.Claim{{Text: "T"}} }}
	svc := NewService(ex, &fakeVerifier{VerifyFunc: byPrefix}, Options{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.CheckText(ctx, longText)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckTranscript(t *testing.T) {
	ex := &fakeExtractor{ExtractFunc: func(context.Context, string) []claims.Claim { return []claims.Claim{{Text: "F"}} }}
	svc := NewService(ex, &fakeVerifier{VerifyFunc: byPrefix}, Options{ShortTextWords: 20}, nil, nil)
	rep, err := svc.CheckTranscript(context.Background(), "short transcript")
	require.NoError(t, err)
	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, "short transcript", rep.AnalysisSummary.Transcript)
	assert.Empty(t, rep.AnalysisSummary.OriginalText)
	assert.Equal(t, 0.0, rep.AnalysisSummary.TrustScore)
}

func TestCheckClaim(t *testing.T) {
	svc := NewService(nil, &fakeVerifier{VerifyFunc: byPrefix}, Options{}, nil, nil)
	got := svc.CheckClaim(context.Background(), "The sky is blue")
	assert.Equal(t, trust.True, got.Result)
	assert.Equal(t, []string{"https://britannica.example"}, got.SourceLinks)
}

func TestCompactAndNoClaims(t *testing.T) {
	long := strings.Repeat("a", 150)
	c := Compact(&Report{}, long)
	require.Len(t, c, 1)
	assert.Equal(t, trust.Unverified, c[0].Result)
	assert.Equal(t, strings.Repeat("a", 100)+"...", c[0].Claim)

	nc := NewNoClaims(long)
	assert.True(t, nc.NoClaimsFound)
	assert.Equal(t, "Try providing text with clear factual statements.", nc.Recommendation)
	assert.Len(t, nc.Text, 103)

	assert.Equal(t, "héllo...", Truncate("héllo wörld", 5))
	assert.Equal(t, "short", Truncate("short", 5))
}
