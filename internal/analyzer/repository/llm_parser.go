package repository

import (
	"encoding/json"
	"strings"

	"golang-stock-selector/internal/analyzer/dto"
)

// ParseLLMResponse extracts a JSON object from raw LLM output. It tries a
// direct parse, then the content of a ```json fence, then any ``` fence, and
// finally wraps the text as a narrative with a parse_error flag.
func ParseLLMResponse(text string) dto.LLMResult {
	if result, ok := tryParseJSON(text); ok {
		return result
	}

	if inner, ok := fencedBlock(text, "```json"); ok {
		if result, ok := tryParseJSON(inner); ok {
			return result
		}
	}

	if inner, ok := fencedBlock(text, "```"); ok {
		if result, ok := tryParseJSON(inner); ok {
			return result
		}
	}

	return dto.LLMResult{"narrative": text, "parse_error": true}
}

func tryParseJSON(text string) (dto.LLMResult, bool) {
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return nil, false
	}
	return dto.LLMResult(result), true
}

func fencedBlock(text, marker string) (string, bool) {
	start := strings.Index(text, marker)
	if start < 0 {
		return "", false
	}
	start += len(marker)
	end := strings.Index(text[start:], "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+end]), true
}

var codexStreamEventTypes = map[string]bool{
	"thread.started": true,
	"turn.started":   true,
	"item.completed": true,
	"turn.completed": true,
}

// ExtractCodexStreamText unwraps the line-delimited event stream emitted by
// `codex exec --json`. The second return value reports whether the input was
// a stream at all; when true, the first value is the text of the final
// agent_message item (possibly empty). Non-stream input passes through.
func ExtractCodexStreamText(text string) (string, bool) {
	var lastAgentText *string
	isStream := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			continue
		}

		eventType, _ := payload["type"].(string)
		if codexStreamEventTypes[eventType] {
			isStream = true
		}
		if eventType == "item.completed" {
			item, _ := payload["item"].(map[string]interface{})
			if itemType, _ := item["type"].(string); itemType == "agent_message" {
				if itemText, ok := item["text"].(string); ok {
					lastAgentText = &itemText
				}
			}
		}
	}

	if isStream {
		if lastAgentText != nil {
			return strings.TrimSpace(*lastAgentText), true
		}
		return "", true
	}
	return text, false
}

var opencodeStreamEventTypes = map[string]bool{
	"step_start":  true,
	"text":        true,
	"step_finish": true,
}

// ExtractOpencodeStreamText unwraps the event stream emitted by
// `opencode run --format json`, returning the last text part.
func ExtractOpencodeStreamText(text string) (string, bool) {
	var lastText *string
	isStream := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			continue
		}

		eventType, _ := payload["type"].(string)
		if opencodeStreamEventTypes[eventType] {
			isStream = true
		}
		if eventType == "text" {
			part, _ := payload["part"].(map[string]interface{})
			if partText, ok := part["text"].(string); ok {
				lastText = &partText
			}
		}
	}

	if isStream {
		if lastText != nil {
			return strings.TrimSpace(*lastText), true
		}
		return "", true
	}
	return text, false
}
