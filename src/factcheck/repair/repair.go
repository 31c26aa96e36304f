// Package repair coerces near-valid JSON emitted by language models into
// something encoding/json accepts.
//
// Repair runs an ordered cascade of strategies and stops at the first output
// that parses. When nothing parses the original input is returned unchanged
// and the caller treats it as a hard parse failure.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy is one repair step.
type Strategy struct {
	Name string
	// FromOriginal strategies start again from the unrepaired input instead of
	// building on the previous step's output.
	FromOriginal bool
	Apply        func(string) string
}

var (
	stringFieldRe = regexp.MustCompile(`(".*?":\s*".*?")\s*\n\s*(".*?")`)
	valueFieldRe  = regexp.MustCompile(`(".*?":\s*[^",\s{\[].*?[^,\s{\[])(\s*\n\s*)(".*?")`)
	fieldStartRe  = regexp.MustCompile(`^"[^"]+"\s*:`)
)

const lookahead = 30

// Cascade is the default strategy order.
var Cascade = []Strategy{
	{Name: "string_field_commas", Apply: InsertStringFieldCommas},
	{Name: "value_field_commas", Apply: InsertValueFieldCommas},
	{Name: "rebuild_object", FromOriginal: true, Apply: RebuildObject},
}

// Repair returns s when it already parses, otherwise the first cascade output
// that parses, otherwise s.
func Repair(s string) string {
	return RepairWith(s, Cascade)
}

// RepairWith runs a custom cascade.
func RepairWith(s string, strategies []Strategy) string {
	if json.Valid([]byte(s)) {
		return s
	}
	current := s
	for _, st := range strategies {
		in := current
		if st.FromOriginal {
			in = s
		}
		out := safeApply(st.Apply, in)
		if json.Valid([]byte(out)) {
			return out
		}
		current = out
	}
	return s
}

func safeApply(fn func(string) string, in string) (out string) {
	defer func() {
		if recover() != nil {
			out = in
		}
	}()
	return fn(in)
}

// InsertStringFieldCommas adds the comma missing between a string-valued field
// and a quoted field on the next line.
func InsertStringFieldCommas(s string) string {
	return stringFieldRe.ReplaceAllString(s, "${1},\n  ${2}")
}

// InsertValueFieldCommas adds the comma missing between a bare value (number,
// literal) and a quoted field on the next line.
func InsertValueFieldCommas(s string) string {
	return valueFieldRe.ReplaceAllString(s, "${1},${2}${3}")
}

// RebuildObject splits the outermost object into fields at every quote that
// opens a `"key":` outside a string, keeps the pieces that look like
// key/value pairs and rejoins them with commas.
func RebuildObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	content := strings.TrimSpace(s[start+1 : end])

	var (
		props    []string
		cur      strings.Builder
		inQuotes bool
		escaped  bool
	)
	for i := 0; i < len(content); i++ {
		ch := content[i]
		if inQuotes {
			cur.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inQuotes = false
			}
			continue
		}
		if ch == '"' {
			window := content[i:min(i+lookahead, len(content))]
			if fieldStartRe.MatchString(window) {
				if p := strings.TrimSpace(cur.String()); p != "" {
					props = append(props, p)
				}
				cur.Reset()
			}
			inQuotes = true
		}
		cur.WriteByte(ch)
	}
	if p := strings.TrimSpace(cur.String()); p != "" {
		props = append(props, p)
	}

	kept := make([]string, 0, len(props))
	for _, p := range props {
		if strings.Contains(p, ":") {
			kept = append(kept, strings.TrimRight(p, ","))
		}
	}
	return "{\n  " + strings.Join(kept, ",\n  ") + "\n}"
}

// Slice returns the substring from the first open byte to the last close byte,
// tolerating commentary around a JSON payload.
func Slice(raw string, open, close byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
