package streaming

import (
	"strings"
	"testing"

	"github.com/yarenty/modelmux/internal/wire"
)

func intPtr(i int) *int { return &i }

func TestStreamTranslator_TextOnly(t *testing.T) {
	tr := NewStreamTranslator("chatcmpl-1", "gpt-4", 1000)

	chunks, err := tr.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventMessageStart})
	if err != nil {
		t.Fatalf("message_start: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Choices[0].Delta.Role != wire.RoleAssistant {
		t.Fatalf("expected single role chunk, got %+v", chunks)
	}

	chunks, err = tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:  wire.EventContentBlockDelta,
		Index: intPtr(0),
		Delta: &wire.AnthropicStreamDelta{Type: wire.DeltaText, Text: "hello"},
	})
	if err != nil {
		t.Fatalf("content_block_delta: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Choices[0].Delta.Content != "hello" {
		t.Fatalf("expected text delta chunk, got %+v", chunks)
	}

	chunks, err = tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:  wire.EventMessageDelta,
		Delta: &wire.AnthropicStreamDelta{StopReason: "end_turn"},
	})
	if err != nil || len(chunks) != 0 {
		t.Fatalf("message_delta should produce no chunk, got %+v, err %v", chunks, err)
	}

	chunks, err = tr.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventMessageStop})
	if err != nil {
		t.Fatalf("message_stop: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Choices[0].FinishReason == nil || *chunks[0].Choices[0].FinishReason != "stop" {
		t.Fatalf("expected finish_reason stop, got %+v", chunks)
	}
}

func TestStreamTranslator_ToolCall(t *testing.T) {
	tr := NewStreamTranslator("chatcmpl-2", "gpt-4", 1000)

	if _, err := tr.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventMessageStart}); err != nil {
		t.Fatalf("message_start: %v", err)
	}

	chunks, err := tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:  wire.EventContentBlockStart,
		Index: intPtr(0),
		ContentBlock: &wire.AnthropicContent{
			Type: wire.ContentToolUse,
			ID:   "toolu_1",
			Name: "get_weather",
		},
	})
	if err != nil {
		t.Fatalf("content_block_start: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk opening the tool call, got %+v", chunks)
	}
	diff := chunks[0].Choices[0].Delta.ToolCalls[0]
	if diff.Index != 0 || diff.ID != "toolu_1" || diff.Function.Name != "get_weather" {
		t.Fatalf("unexpected tool call open frame: %+v", diff)
	}

	chunks, err = tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:  wire.EventContentBlockDelta,
		Index: intPtr(0),
		Delta: &wire.AnthropicStreamDelta{Type: wire.DeltaPartialJSON, PartialJSON: `{"city":`},
	})
	if err != nil {
		t.Fatalf("partial_json delta: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Choices[0].Delta.ToolCalls[0].Function.Arguments != `{"city":` {
		t.Fatalf("unexpected argument accumulation frame: %+v", chunks)
	}
	if chunks[0].Choices[0].Delta.ToolCalls[0].Function.Name != "" {
		t.Fatalf("argument-only frame must not repeat the function name: %+v", chunks)
	}

	if _, err := tr.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventContentBlockStop, Index: intPtr(0)}); err != nil {
		t.Fatalf("content_block_stop: %v", err)
	}

	chunks, err = tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:  wire.EventMessageDelta,
		Delta: &wire.AnthropicStreamDelta{StopReason: "tool_use"},
	})
	if err != nil || len(chunks) != 0 {
		t.Fatalf("message_delta should produce no chunk, got %+v, err %v", chunks, err)
	}

	chunks, err = tr.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventMessageStop})
	if err != nil || *chunks[0].Choices[0].FinishReason != "tool_calls" {
		t.Fatalf("expected finish_reason tool_calls, got %+v, err %v", chunks, err)
	}
}

func TestStreamTranslator_MultipleToolCallsAssignMonotonicIndex(t *testing.T) {
	tr := NewStreamTranslator("chatcmpl-3", "gpt-4", 1000)

	// Anthropic's own content-block index for the two tool_use blocks is 1
	// and 3 (interleaved with other blocks); the OpenAI-facing index must
	// still come out as 0 and 1.
	first, err := tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:         wire.EventContentBlockStart,
		Index:        intPtr(1),
		ContentBlock: &wire.AnthropicContent{Type: wire.ContentToolUse, ID: "toolu_a", Name: "a"},
	})
	if err != nil {
		t.Fatalf("first tool open: %v", err)
	}
	if _, err := tr.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventContentBlockStop, Index: intPtr(1)}); err != nil {
		t.Fatalf("first tool stop: %v", err)
	}

	second, err := tr.ProcessEvent(wire.AnthropicStreamEvent{
		Type:         wire.EventContentBlockStart,
		Index:        intPtr(3),
		ContentBlock: &wire.AnthropicContent{Type: wire.ContentToolUse, ID: "toolu_b", Name: "b"},
	})
	if err != nil {
		t.Fatalf("second tool open: %v", err)
	}

	if first[0].Choices[0].Delta.ToolCalls[0].Index != 0 {
		t.Fatalf("expected first tool call OpenAI index 0, got %d", first[0].Choices[0].Delta.ToolCalls[0].Index)
	}
	if second[0].Choices[0].Delta.ToolCalls[0].Index != 1 {
		t.Fatalf("expected second tool call OpenAI index 1, got %d", second[0].Choices[0].Delta.ToolCalls[0].Index)
	}
}

func TestScanSSEPayloads(t *testing.T) {
	body := "event: message_start\ndata: {\"type\":\"message_start\"}\n\n" +
		"data: {\"type\":\"content_block_stop\",\"index\":0}\n\n" +
		"data: [DONE]\n" +
		"data: {\"type\":\"should_not_be_seen\"}\n"

	var got []string
	err := scanSSEPayloads(strings.NewReader(body), func(payload string) error {
		got = append(got, payload)
		return nil
	})
	if err != nil {
		t.Fatalf("scanSSEPayloads: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 payloads before [DONE], got %v", got)
	}
}
