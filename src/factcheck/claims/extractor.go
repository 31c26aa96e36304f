// Package claims turns free text into discrete, verifiable claims with one
// language-model call per invocation.
package claims

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/OneOfOne/xxhash"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/factcheck/repair"
	"github.com/stake-plus/sentinel/src/metrics"
)

const maxInputLength = 12000

var spaceRe = regexp.MustCompile(`\s+`)

type Extractor struct {
	llm     core.Client
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewExtractor(llm core.Client, log *zap.Logger, m *metrics.Metrics) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{llm: llm, log: log, metrics: m}
}

// Extract asks the model for 4-6 claims in text. Model or parse failures
// yield an empty slice, which callers treat as "no verifiable claims".
func (e *Extractor) Extract(ctx context.Context, text string) []Claim {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Claim{}
	}
	if len(text) > maxInputLength {
		text = truncate(text, maxInputLength) + "\n\n[Content truncated for analysis]"
	}

	resp, err := e.llm.Complete(ctx, extractPrompt, text, core.Options{})
	if err != nil {
		e.log.Warn("claim extraction failed", zap.String("stage", "extract"), zap.Error(err))
		e.metrics.StageFailure("extract", err)
		return []Claim{}
	}

	out := ParseClaimArray(resp)
	if len(out) == 0 {
		e.log.Info("no claims in model output", zap.Int("response_len", len(resp)))
	}
	e.metrics.ObserveClaims(len(out))
	return out
}

// ExtractFactual runs the stricter prompt used for debate turns, which answers
// with {"factual_claims": [...]}.
func (e *Extractor) ExtractFactual(ctx context.Context, text string) []Claim {
	if strings.TrimSpace(text) == "" {
		return []Claim{}
	}
	resp, err := e.llm.Complete(ctx, factualPrompt, text, core.Options{Temperature: 0.1})
	if err != nil {
		e.log.Warn("factual claim extraction failed", zap.String("stage", "extract_factual"), zap.Error(err))
		e.metrics.StageFailure("extract_factual", err)
		return []Claim{}
	}
	return ParseFactualClaims(resp)
}

// ParseClaimArray reads the JSON array between the first '[' and the last ']'
// of raw. Anything unparseable yields an empty slice.
func ParseClaimArray(raw string) []Claim {
	candidate, ok := repair.Slice(raw, '[', ']')
	if !ok {
		return []Claim{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(repair.Repair(candidate)), &elems); err != nil {
		return []Claim{}
	}
	items := make([]rawClaim, 0, len(elems))
	for _, el := range elems {
		var it rawClaim
		if json.Unmarshal(el, &it) == nil {
			items = append(items, it)
		}
	}
	return dedupe(items)
}

// ParseFactualClaims reads a {"factual_claims": [...]} object from raw.
func ParseFactualClaims(raw string) []Claim {
	candidate, ok := repair.Slice(raw, '{', '}')
	if !ok {
		return []Claim{}
	}
	var wrapper struct {
		FactualClaims []rawClaim `json:"factual_claims"`
	}
	if err := json.Unmarshal([]byte(repair.Repair(candidate)), &wrapper); err != nil {
		return []Claim{}
	}
	return dedupe(wrapper.FactualClaims)
}

func dedupe(items []rawClaim) []Claim {
	seen := make(map[uint64]struct{}, len(items))
	out := make([]Claim, 0, len(items))
	for _, it := range items {
		c := it.toClaim()
		if c.Text == "" {
			continue
		}
		fp := fingerprint(c.Text)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, c)
	}
	return out
}

func fingerprint(text string) uint64 {
	norm := spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	h := xxhash.NewS64(0)
	h.Write([]byte(norm))
	return h.Sum64()
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
