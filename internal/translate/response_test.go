package translate

import (
	"encoding/json"
	"testing"

	"github.com/yarenty/modelmux/internal/wire"
)

func TestResponseTranslator_TextOnly(t *testing.T) {
	resp := wire.AnthropicResponse{
		StopReason: "end_turn",
		Content:    []wire.AnthropicContent{{Type: wire.ContentText, Text: "hi there"}},
		Usage:      &wire.AnthropicUsage{InputTokens: 10, OutputTokens: 5},
	}

	out, err := NewResponseTranslator().Translate(resp, "gpt-4", 1700000000)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.Choices[0].Message.Content != "hi there" {
		t.Fatalf("unexpected content: %q", out.Choices[0].Message.Content)
	}
	if out.Choices[0].FinishReason != "stop" {
		t.Fatalf("expected finish_reason stop, got %q", out.Choices[0].FinishReason)
	}
	if out.Usage.TotalTokens != 15 {
		t.Fatalf("expected total tokens 15, got %d", out.Usage.TotalTokens)
	}
}

func TestResponseTranslator_ToolUse(t *testing.T) {
	resp := wire.AnthropicResponse{
		StopReason: "tool_use",
		Content: []wire.AnthropicContent{
			{Type: wire.ContentToolUse, ID: "toolu_1", Name: "get_weather", Input: json.RawMessage(`{"city":"nyc"}`)},
		},
	}

	out, err := NewResponseTranslator().Translate(resp, "gpt-4", 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.Choices[0].FinishReason != "tool_calls" {
		t.Fatalf("expected finish_reason tool_calls, got %q", out.Choices[0].FinishReason)
	}
	calls := out.Choices[0].Message.ToolCalls
	if len(calls) != 1 || calls[0].Function.Name != "get_weather" || calls[0].Function.Arguments != `{"city":"nyc"}` {
		t.Fatalf("unexpected tool calls: %+v", calls)
	}
}
