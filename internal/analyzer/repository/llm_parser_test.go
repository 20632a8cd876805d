package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLLMResponse_DirectJSON(t *testing.T) {
	result := ParseLLMResponse(`{"score": 5.5, "confidence": "high", "narrative": "solid"}`)
	score, ok := result.Score()
	require.True(t, ok)
	assert.Equal(t, 5.5, score)
	assert.Equal(t, "high", result.Confidence())
	assert.Nil(t, result["parse_error"])
}

func TestParseLLMResponse_JSONFence(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"score\": -2, \"confidence\": \"low\", \"narrative\": \"weak\"}\n```\nDone."
	result := ParseLLMResponse(text)
	score, ok := result.Score()
	require.True(t, ok)
	assert.Equal(t, -2.0, score)
}

func TestParseLLMResponse_PlainFence(t *testing.T) {
	text := "```\n{\"score\": 1, \"confidence\": \"medium\", \"narrative\": \"meh\"}\n```"
	result := ParseLLMResponse(text)
	score, ok := result.Score()
	require.True(t, ok)
	assert.Equal(t, 1.0, score)
}

func TestParseLLMResponse_NarrativeFallback(t *testing.T) {
	text := "I could not produce JSON, sorry."
	result := ParseLLMResponse(text)
	assert.Equal(t, text, result.Narrative())
	assert.Equal(t, true, result["parse_error"])
	_, ok := result.Score()
	assert.False(t, ok)
}

func TestExtractCodexStreamText(t *testing.T) {
	stream := `{"type":"thread.started","thread_id":"t1"}
{"type":"turn.started"}
{"type":"item.completed","item":{"type":"reasoning","text":"thinking"}}
{"type":"item.completed","item":{"type":"agent_message","text":"{\"score\": 4}"}}
{"type":"turn.completed","usage":{}}`

	text, isStream := ExtractCodexStreamText(stream)
	require.True(t, isStream)
	assert.Equal(t, `{"score": 4}`, text)
}

func TestExtractCodexStreamText_LastAgentMessageWins(t *testing.T) {
	stream := `{"type":"item.completed","item":{"type":"agent_message","text":"first"}}
{"type":"item.completed","item":{"type":"agent_message","text":"second"}}`

	text, isStream := ExtractCodexStreamText(stream)
	require.True(t, isStream)
	assert.Equal(t, "second", text)
}

func TestExtractCodexStreamText_NotAStream(t *testing.T) {
	raw := `{"score": 3, "confidence": "low"}`
	text, isStream := ExtractCodexStreamText(raw)
	assert.False(t, isStream)
	assert.Equal(t, raw, text)
}

func TestExtractCodexStreamText_StreamWithoutAgentMessage(t *testing.T) {
	stream := `{"type":"turn.started"}
{"type":"turn.completed"}`
	text, isStream := ExtractCodexStreamText(stream)
	require.True(t, isStream)
	assert.Empty(t, text)
}

func TestExtractOpencodeStreamText(t *testing.T) {
	stream := `{"type":"step_start"}
{"type":"text","part":{"text":"{\"score\": -1}"}}
{"type":"step_finish"}`

	text, isStream := ExtractOpencodeStreamText(stream)
	require.True(t, isStream)
	assert.Equal(t, `{"score": -1}`, text)
}

func TestExtractOpencodeStreamText_NotAStream(t *testing.T) {
	raw := "plain output"
	text, isStream := ExtractOpencodeStreamText(raw)
	assert.False(t, isStream)
	assert.Equal(t, raw, text)
}
