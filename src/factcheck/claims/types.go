package claims

import (
	"encoding/json"
	"strings"
)

// Claim is one verifiable statement pulled from input text.
type Claim struct {
	Text        string `json:"claim"`
	Context     string `json:"context,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`
}

// EffectiveQuery is the search query, or "fact check <claim>" when none was suggested.
func (c Claim) EffectiveQuery() string {
	if q := strings.TrimSpace(c.SearchQuery); q != "" {
		return q
	}
	return "fact check " + c.Text
}

// rawClaim tolerates fields of the wrong JSON type.
type rawClaim struct {
	Claim       json.RawMessage `json:"claim"`
	Context     json.RawMessage `json:"context"`
	SearchQuery json.RawMessage `json:"search_query"`
}

func (r rawClaim) toClaim() Claim {
	return Claim{
		Text:        strings.TrimSpace(asString(r.Claim)),
		Context:     strings.TrimSpace(asString(r.Context)),
		SearchQuery: strings.TrimSpace(asString(r.SearchQuery)),
	}
}

func asString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
