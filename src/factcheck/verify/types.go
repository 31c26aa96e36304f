package verify

import (
	"encoding/json"
	"strings"

	"github.com/stake-plus/sentinel/src/factcheck/trust"
)

// Stage names a step of the per-claim state machine.
type Stage string

const (
	StagePending     Stage = "pending"
	StageSearching   Stage = "searching"
	StageNoEvidence  Stage = "no_evidence"
	StageAnalyzing   Stage = "analyzing"
	StageParsed      Stage = "parsed"
	StageParseFailed Stage = "parse_failed"
	StageVerdict     Stage = "verdict"
)

type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Verdict is the outcome of verifying one claim. Result is always TRUE, FALSE
// or UNVERIFIED and Sources is never nil.
type Verdict struct {
	Claim             string       `json:"claim"`
	Result            trust.Result `json:"result"`
	Summary           string       `json:"summary"`
	DetailedAnalysis  string       `json:"detailed_analysis"`
	Sources           []Source     `json:"sources"`
	AdditionalContext string       `json:"additional_context,omitempty"`
	OriginalContext   string       `json:"original_context,omitempty"`

	// Stage is the state the verdict was decided in.
	Stage Stage `json:"-"`
}

func (v Verdict) SourceNames() []string {
	out := make([]string, 0, len(v.Sources))
	for _, s := range v.Sources {
		out = append(out, s.Name)
	}
	return out
}

func (v Verdict) SourceLinks() []string {
	out := make([]string, 0, len(v.Sources))
	for _, s := range v.Sources {
		out = append(out, s.URL)
	}
	return out
}

// Results projects verdicts onto their classifications.
func Results(vs []Verdict) []trust.Result {
	out := make([]trust.Result, len(vs))
	for i, v := range vs {
		out[i] = v.Result
	}
	return out
}

// NormalizeResult keeps TRUE and FALSE and maps everything else to UNVERIFIED.
func NormalizeResult(s string) trust.Result {
	switch r := trust.Result(strings.ToUpper(strings.TrimSpace(s))); r {
	case trust.True, trust.False:
		return r
	default:
		return trust.Unverified
	}
}

const (
	noSummary  = "No summary was provided for this verdict."
	noAnalysis = "No detailed analysis was provided for this verdict."
)

// normalize coerces a decoded model object into a Verdict for claim.
func normalize(obj map[string]json.RawMessage, claim string) Verdict {
	v := Verdict{
		Claim:            claim,
		Result:           NormalizeResult(asString(obj["result"])),
		Summary:          strings.TrimSpace(asString(obj["summary"])),
		DetailedAnalysis: strings.TrimSpace(asString(obj["detailed_analysis"])),
		Sources:          parseSources(obj["sources"]),
	}
	if c := strings.TrimSpace(asString(obj["claim"])); c != "" {
		v.Claim = c
	}
	if v.Summary == "" {
		v.Summary = noSummary
	}
	if v.DetailedAnalysis == "" {
		v.DetailedAnalysis = noAnalysis
	}
	return v
}

func parseSources(raw json.RawMessage) []Source {
	out := []Source{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, it := range items {
		var fields map[string]json.RawMessage
		if json.Unmarshal(it, &fields) != nil {
			continue
		}
		name := strings.TrimSpace(asString(fields["name"]))
		url := strings.TrimSpace(asString(fields["url"]))
		if name == "" || url == "" {
			continue
		}
		out = append(out, Source{Name: name, URL: url})
	}
	return out
}

func asString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
