package translate

import (
	"encoding/json"
	"testing"

	"github.com/yarenty/modelmux/internal/wire"
)

func boolPtr(b bool) *bool { return &b }

func TestRequestTranslator_SystemPromptPrepended(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages: []wire.OpenAIMessage{
			{Role: wire.RoleSystem, Content: "You are terse."},
			{Role: wire.RoleUser, Content: "Hi"},
		},
	}

	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out.Messages) != 1 {
		t.Fatalf("expected one user message, got %d", len(out.Messages))
	}
	got := out.Messages[0].Content[0].Text
	want := "You are terse.\n\nHi"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRequestTranslator_ToolCallAndResultRoundAlternation(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages: []wire.OpenAIMessage{
			{Role: wire.RoleUser, Content: "What's the weather?"},
			{
				Role: wire.RoleAssistant,
				ToolCalls: []wire.OpenAIToolCall{
					{ID: "call_1", Type: "function", Function: wire.OpenAIToolCallFunction{Name: "get_weather", Arguments: `{"city":"nyc"}`}},
				},
			},
			{Role: wire.RoleTool, Content: "72F and sunny", ToolCallID: "call_1"},
			{Role: wire.RoleUser, Content: "Thanks"},
		},
	}

	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out.Messages) != 4 {
		t.Fatalf("expected 4 messages (user, assistant, user-tool-result, user), got %d: %+v", len(out.Messages), out.Messages)
	}
	roles := make([]wire.AnthropicRole, len(out.Messages))
	for i, m := range out.Messages {
		roles[i] = m.Role
	}
	want := []wire.AnthropicRole{
		wire.AnthropicRoleUser, wire.AnthropicRoleAssistant, wire.AnthropicRoleUser, wire.AnthropicRoleUser,
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("role[%d] = %s, want %s (full: %+v)", i, roles[i], want[i], roles)
		}
	}

	toolResult := out.Messages[2].Content[0]
	if toolResult.Type != wire.ContentToolResult || toolResult.ToolUseID != "call_1" {
		t.Fatalf("unexpected tool result block: %+v", toolResult)
	}
}

func TestRequestTranslator_AssistantContentNullWithToolCallsYieldsOnlyToolUse(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages: []wire.OpenAIMessage{
			{Role: wire.RoleUser, Content: "go"},
			{
				Role: wire.RoleAssistant,
				ToolCalls: []wire.OpenAIToolCall{
					{ID: "call_1", Type: "function", Function: wire.OpenAIToolCallFunction{Name: "noop", Arguments: ""}},
				},
			},
		},
	}

	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	assistant := out.Messages[1]
	if len(assistant.Content) != 1 || assistant.Content[0].Type != wire.ContentToolUse {
		t.Fatalf("expected a single tool_use block, got %+v", assistant.Content)
	}
	if string(assistant.Content[0].Input) != "{}" {
		t.Fatalf("empty arguments should become {}, got %s", assistant.Content[0].Input)
	}
}

func TestRequestTranslator_EmptyToolsOmitted(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages: []wire.OpenAIMessage{{Role: wire.RoleUser, Content: "hi"}},
		Tools:    []wire.OpenAITool{},
	}
	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.Tools != nil {
		t.Fatalf("expected nil Tools for empty input, got %+v", out.Tools)
	}
}

func TestRequestTranslator_ToolChoiceNoneOmitted(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages:   []wire.OpenAIMessage{{Role: wire.RoleUser, Content: "hi"}},
		ToolChoice: json.RawMessage(`"none"`),
	}
	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.ToolChoice != nil {
		t.Fatalf("expected nil ToolChoice for \"none\", got %+v", out.ToolChoice)
	}
}

func TestRequestTranslator_ToolChoiceNamedFunction(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages:   []wire.OpenAIMessage{{Role: wire.RoleUser, Content: "hi"}},
		ToolChoice: json.RawMessage(`{"type":"function","function":{"name":"get_weather"}}`),
	}
	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out.ToolChoice == nil || out.ToolChoice.Type != "tool" || out.ToolChoice.Name != "get_weather" {
		t.Fatalf("unexpected tool_choice: %+v", out.ToolChoice)
	}
}

func TestRequestTranslator_UnknownRoleErrors(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages: []wire.OpenAIMessage{{Role: "developer", Content: "hi"}},
	}
	if _, err := NewRequestTranslator().Translate(req); err == nil {
		t.Fatal("expected an error for an unknown role")
	}
}

func TestRequestTranslator_StreamFlagForwarded(t *testing.T) {
	req := wire.ChatCompletionRequest{
		Messages: []wire.OpenAIMessage{{Role: wire.RoleUser, Content: "hi"}},
		Stream:   boolPtr(true),
	}
	out, err := NewRequestTranslator().Translate(req)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !out.Stream {
		t.Fatal("expected Stream to be forwarded as true")
	}
}
