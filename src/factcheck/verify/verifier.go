// Package verify decides a verdict for one claim: search for evidence, ask a
// model to weigh it, and coerce the answer into a fixed schema. Every upstream
// failure ends in an UNVERIFIED verdict; Verify never returns an error.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/factcheck/claims"
	"github.com/stake-plus/sentinel/src/factcheck/repair"
	"github.com/stake-plus/sentinel/src/factcheck/trust"
	"github.com/stake-plus/sentinel/src/logging"
	"github.com/stake-plus/sentinel/src/metrics"
	"github.com/stake-plus/sentinel/src/search"
)

// ErrNoJSONObject means the model answered without any {...} payload.
var ErrNoJSONObject = errors.New("verify: no JSON object in model response")

// ContextUnavailable replaces additional context the model failed to produce.
const ContextUnavailable = "Additional context could not be generated."

type Options struct {
	// SearchResults is how many results to request from the search engine.
	SearchResults int
	// EvidenceLimit is how many results are embedded in the prompt.
	EvidenceLimit int
	// AdditionalContext enables the background-enrichment model call.
	AdditionalContext bool
	// CallTimeout bounds each outbound call.
	CallTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.SearchResults <= 0 {
		o.SearchResults = 8
	}
	if o.EvidenceLimit <= 0 {
		o.EvidenceLimit = 5
	}
	if o.EvidenceLimit > o.SearchResults {
		o.EvidenceLimit = o.SearchResults
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 30 * time.Second
	}
	return o
}

type Verifier struct {
	llm      core.Client
	searcher search.WebSearcher
	facts    search.FactChecker
	opts     Options
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// New builds a Verifier. facts may be nil.
func New(llm core.Client, searcher search.WebSearcher, facts search.FactChecker, opts Options, log *zap.Logger, m *metrics.Metrics) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{
		llm:      llm,
		searcher: searcher,
		facts:    facts,
		opts:     opts.withDefaults(),
		log:      log,
		metrics:  m,
	}
}

// Verify runs the state machine for c and always returns a well-formed verdict.
func (v *Verifier) Verify(ctx context.Context, c claims.Claim) (verdict Verdict) {
	start := time.Now()
	log := v.log.With(zap.String("claim", c.Text))
	v.transition(log, StagePending)

	defer func() {
		if r := recover(); r != nil {
			log.Error("verifier panic", zap.Any("panic", r))
			verdict = interrupted(c.Text, fmt.Errorf("panic: %v", r))
		}
		if c.Context != "" {
			verdict.OriginalContext = c.Context
		}
		if verdict.Sources == nil {
			verdict.Sources = []Source{}
		}
		v.transition(log, StageVerdict)
		v.metrics.ObserveVerdict(string(verdict.Result), string(verdict.Stage), time.Since(start))
		log.Info("claim verified",
			zap.String("result", string(verdict.Result)),
			zap.String("stage", string(verdict.Stage)),
			zap.Int("sources", len(verdict.Sources)),
			zap.Duration("took", time.Since(start)))
	}()

	v.lookupFactChecks(ctx, log, c.Text)

	v.transition(log, StageSearching)
	evidence, err := v.search(ctx, c.EffectiveQuery())
	if err != nil || len(evidence) == 0 {
		if err != nil && !errors.Is(err, search.ErrNoResults) {
			log.Warn("evidence search failed", zap.String("stage", string(StageSearching)), zap.Error(err))
			v.metrics.StageFailure(string(StageSearching), err)
		}
		v.transition(log, StageNoEvidence)
		return noEvidence(c.Text)
	}
	log.Debug("evidence retrieved", zap.Int("evidence", len(evidence)))

	v.transition(log, StageAnalyzing)
	resp, err := v.complete(ctx, BuildPrompt(c, search.Top(evidence, v.opts.EvidenceLimit)))
	if err != nil {
		log.Warn("verdict synthesis failed", zap.String("stage", string(StageAnalyzing)), zap.Error(err))
		v.metrics.StageFailure(string(StageAnalyzing), err)
		verdict = interrupted(c.Text, err)
	} else if verdict, err = Parse(resp, c.Text); err != nil {
		log.Warn("verdict parse failed", zap.String("stage", string(StageParseFailed)), zap.Error(err))
		v.metrics.StageFailure(string(StageParseFailed), err)
		verdict = unparsed(c.Text)
	}
	v.transition(log, verdict.Stage)

	if v.opts.AdditionalContext {
		verdict.AdditionalContext = v.enrich(ctx, log, verdict)
	}
	return verdict
}

func (v *Verifier) transition(log *zap.Logger, s Stage) {
	log.Debug("verifier stage", zap.String("stage", string(s)))
}

func (v *Verifier) search(ctx context.Context, query string) ([]search.Evidence, error) {
	if v.searcher == nil {
		return nil, errors.New("verify: no search backend")
	}
	callCtx, cancel := context.WithTimeout(ctx, v.opts.CallTimeout)
	defer cancel()
	return v.searcher.Search(callCtx, query, v.opts.SearchResults)
}

func (v *Verifier) complete(ctx context.Context, system string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, v.opts.CallTimeout)
	defer cancel()
	return v.llm.Complete(callCtx, system, "", core.Options{})
}

// lookupFactChecks queries prior fact checks. The result is advisory and only logged.
func (v *Verifier) lookupFactChecks(ctx context.Context, log *zap.Logger, text string) {
	if v.facts == nil {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, v.opts.CallTimeout)
	defer cancel()
	reviews := v.facts.Lookup(callCtx, text)
	if len(reviews) > 0 {
		log.Debug("prior fact checks found",
			zap.Int("reviews", len(reviews)),
			zap.String("publisher", reviews[0].Publisher),
			zap.String("rating", reviews[0].Rating))
	}
}

// enrich never changes the verdict it annotates. Failures, panics included,
// yield ContextUnavailable.
func (v *Verifier) enrich(ctx context.Context, log *zap.Logger, verdict Verdict) (extra string) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Error("context enrichment panic", zap.String("stage", "enrich"), zap.Error(err))
			v.metrics.StageFailure("enrich", err)
			extra = ContextUnavailable
		}
	}()

	prompt := strings.NewReplacer(
		"{{claim}}", verdict.Claim,
		"{{result}}", string(verdict.Result),
		"{{summary}}", verdict.Summary,
	).Replace(contextPrompt)

	out, err := v.complete(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		if err == nil {
			err = core.ErrEmptyResponse
		}
		log.Warn("context enrichment failed", zap.String("stage", "enrich"), zap.Error(err))
		v.metrics.StageFailure("enrich", err)
		return ContextUnavailable
	}
	return strings.TrimSpace(out)
}

type promptEvidence struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// BuildPrompt embeds the claim and its evidence in the verification prompt.
func BuildPrompt(c claims.Claim, evidence []search.Evidence) string {
	items := make([]promptEvidence, 0, len(evidence))
	for _, e := range evidence {
		items = append(items, promptEvidence{Title: e.Title, Snippet: e.Snippet, Link: e.URL})
	}
	formatted, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		formatted = []byte("[]")
	}
	prompt := strings.NewReplacer(
		"{{claim}}", c.Text,
		"{{search_results}}", string(formatted),
	).Replace(verificationPrompt)
	if c.Context != "" {
		prompt += "\n\nAdditional Context: " + c.Context
	}
	return prompt
}

// Parse extracts the verdict object from a model response and normalises it.
func Parse(resp, claim string) (Verdict, error) {
	candidate, ok := repair.Slice(resp, '{', '}')
	if !ok {
		return Verdict{}, ErrNoJSONObject
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repair.Repair(candidate)), &obj); err != nil {
		return Verdict{}, fmt.Errorf("verify: decode verdict: %w", err)
	}
	v := normalize(obj, claim)
	v.Stage = StageParsed
	return v, nil
}

func noEvidence(claim string) Verdict {
	return Verdict{
		Claim:            claim,
		Result:           trust.Unverified,
		Summary:          "Insufficient evidence available to verify this claim.",
		DetailedAnalysis: "After extensive searching, no reliable sources were found to verify this specific claim. Without credible evidence, it's not possible to determine the accuracy of this statement.",
		Sources:          []Source{},
		Stage:            StageNoEvidence,
	}
}

func unparsed(claim string) Verdict {
	return Verdict{
		Claim:            claim,
		Result:           trust.Unverified,
		Summary:          "Technical issues prevented proper verification.",
		DetailedAnalysis: "While search results were found, the analysis could not be processed correctly to determine the claim's accuracy. The information available was either insufficient or could not be properly analyzed.",
		Sources:          []Source{},
		Stage:            StageParseFailed,
	}
}

func interrupted(claim string, err error) Verdict {
	return Verdict{
		Claim:            claim,
		Result:           trust.Unverified,
		Summary:          "Technical difficulties interrupted the verification process.",
		DetailedAnalysis: fmt.Sprintf("An error occurred during the analysis of search results (%s). Without complete verification, the claim's accuracy cannot be determined.", logging.Reason(err)),
		Sources:          []Source{},
		Stage:            StageParseFailed,
	}
}
