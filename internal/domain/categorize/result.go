package categorize

import (
	"encoding/json"
	"strings"
)

// Result is the parsed model output. Models are asked to answer with a
// bare category name but sometimes wrap it in JSON; both shapes are
// accepted and malformed output never blocks the response.
type Result struct {
	// Category is the classified category, empty when the model output
	// carried none
	Category string

	// Fields holds every key of a JSON object reply, if there was one
	Fields map[string]interface{}

	// Partial is true when the output was not a parseable JSON object
	// and only the bare-text fallback applied
	Partial bool
}

// ParseResult extracts the first JSON object substring (leftmost "{" to
// rightmost "}") from raw model text. When no parseable object exists
// the trimmed text itself is taken as the category name and the result
// is marked partial.
func ParseResult(raw string) Result {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start >= 0 && end > start {
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err == nil {
			res := Result{Fields: fields}
			if cat, ok := fields["category"].(string); ok {
				res.Category = cat
			}
			return res
		}
	}

	return Result{
		Category: strings.TrimSpace(raw),
		Partial:  true,
	}
}

// Payload renders the wire object for jsonResponse, appending
// credits_left to whatever the model produced.
func (r Result) Payload(creditsLeft int) map[string]interface{} {
	payload := make(map[string]interface{}, len(r.Fields)+2)
	for k, v := range r.Fields {
		payload[k] = v
	}
	if _, ok := payload["category"]; !ok && r.Category != "" {
		payload["category"] = r.Category
	}
	payload["credits_left"] = creditsLeft
	return payload
}
