package dto

// RefreshProgress is one progress event from the analysis pipeline. This is
// the sole output contract of the orchestrator: consumers (SSE stream, batch
// consumer) observe pipeline state only through these events.
type RefreshProgress struct {
	Symbol   string  `json:"symbol"`
	Step     string  `json:"step"`
	Category *string `json:"category"`
	Done     bool    `json:"done"`
}

// SignalResult is one validated category outcome kept in memory for the
// synthesis stage.
type SignalResult struct {
	Score      float64 `json:"score"`
	Confidence string  `json:"confidence"`
	Narrative  string  `json:"narrative"`
	BullCase   string  `json:"bull_case,omitempty"`
	BearCase   string  `json:"bear_case,omitempty"`
}

// LLMResult is the loosely-typed payload returned by a reasoning provider.
// It should contain "score", "confidence" and "narrative", but may instead
// carry only an "error" string, or a "narrative" plus "parse_error": true
// when the response could not be decoded as JSON.
type LLMResult map[string]interface{}

// Clone returns a shallow copy of the result.
func (r LLMResult) Clone() LLMResult {
	out := make(LLMResult, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Score returns the numeric score and whether one was present.
func (r LLMResult) Score() (float64, bool) {
	return toFloat(r["score"])
}

// Confidence returns the confidence string, or "" when absent.
func (r LLMResult) Confidence() string {
	return r.GetString("confidence")
}

// Narrative returns the narrative string, or "" when absent.
func (r LLMResult) Narrative() string {
	return r.GetString("narrative")
}

// ErrorText returns the provider error string, or "" when the result carries
// no error.
func (r LLMResult) ErrorText() string {
	return r.GetString("error")
}

// GetString returns the string at key, or "" for missing or non-string values.
func (r LLMResult) GetString(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// GetFloat returns the numeric value at key and whether one was present.
// JSON numbers decode as float64; ints from hand-built results are coerced.
func (r LLMResult) GetFloat(key string) (float64, bool) {
	return toFloat(r[key])
}

// GetStringSlice returns the strings at key, tolerating []interface{} from
// JSON decoding.
func (r LLMResult) GetStringSlice(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
