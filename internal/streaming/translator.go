// Package streaming implements the stateful translation of an Anthropic SSE
// response stream into OpenAI-shaped chat-completion stream chunks. A single
// StreamTranslator instance is scoped to one request: it owns the monotonic
// OpenAI tool-call index assignment (distinct from Anthropic's per-block
// content index) and the partial-JSON argument buffer for whichever tool
// block is currently open.
package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/yarenty/modelmux/internal/wire"
)

// activeToolBlock tracks the tool_use content block currently accumulating
// partial_json deltas.
type activeToolBlock struct {
	anthropicIndex int
	openAIIndex    int
	id             string
	name           string
	argBuffer      string
}

// StreamTranslator converts one Anthropic SSE event at a time into zero or
// more OpenAI stream chunks. It is not safe for concurrent use; one instance
// per in-flight stream.
type StreamTranslator struct {
	id      string
	model   string
	created int64

	started         bool
	toolCallsEmitted int
	activeToolBlock *activeToolBlock
	stopReason      string
}

// NewStreamTranslator returns a translator for a single stream, stamping id
// and created into every chunk it emits so a client sees a consistent
// stream identity across the whole response.
func NewStreamTranslator(id, model string, created int64) *StreamTranslator {
	return &StreamTranslator{id: id, model: model, created: created}
}

func (t *StreamTranslator) baseChunk() wire.StreamChunk {
	return wire.StreamChunk{
		ID:      t.id,
		Object:  "chat.completion.chunk",
		Created: t.created,
		Model:   t.model,
	}
}

// roleChunk emits the single role-announcing chunk OpenAI clients expect as
// the first frame of a stream.
func (t *StreamTranslator) roleChunk() wire.StreamChunk {
	chunk := t.baseChunk()
	chunk.Choices = []wire.StreamChunkChoice{{
		Index: 0,
		Delta: wire.StreamDelta{Role: wire.RoleAssistant},
	}}
	return chunk
}

// ProcessEvent consumes one decoded Anthropic stream event and returns the
// OpenAI chunks it produces, in order. Most events produce zero or one
// chunk; message_start produces the leading role chunk. Usage carried by
// the upstream events is not reported in any chunk.
func (t *StreamTranslator) ProcessEvent(event wire.AnthropicStreamEvent) ([]wire.StreamChunk, error) {
	switch event.Type {
	case wire.EventMessageStart:
		t.started = true
		return []wire.StreamChunk{t.roleChunk()}, nil

	case wire.EventContentBlockStart:
		if event.ContentBlock == nil || event.Index == nil {
			return nil, nil
		}
		if event.ContentBlock.Type != wire.ContentToolUse {
			return nil, nil
		}
		t.activeToolBlock = &activeToolBlock{
			anthropicIndex: *event.Index,
			openAIIndex:    t.toolCallsEmitted,
			id:             event.ContentBlock.ID,
			name:           event.ContentBlock.Name,
		}
		t.toolCallsEmitted++

		chunk := t.baseChunk()
		chunk.Choices = []wire.StreamChunkChoice{{
			Index: 0,
			Delta: wire.StreamDelta{
				ToolCalls: []wire.StreamToolCallDiff{{
					Index: t.activeToolBlock.openAIIndex,
					ID:    t.activeToolBlock.id,
					Type:  "function",
					Function: wire.StreamToolCallFunctionDiff{
						Name: t.activeToolBlock.name,
					},
				}},
			},
		}}
		return []wire.StreamChunk{chunk}, nil

	case wire.EventContentBlockDelta:
		if event.Delta == nil {
			return nil, nil
		}
		switch event.Delta.Type {
		case wire.DeltaText:
			chunk := t.baseChunk()
			chunk.Choices = []wire.StreamChunkChoice{{
				Index: 0,
				Delta: wire.StreamDelta{Content: event.Delta.Text},
			}}
			return []wire.StreamChunk{chunk}, nil

		case wire.DeltaPartialJSON:
			if t.activeToolBlock == nil || event.Index == nil || *event.Index != t.activeToolBlock.anthropicIndex {
				return nil, nil
			}
			t.activeToolBlock.argBuffer += event.Delta.PartialJSON
			chunk := t.baseChunk()
			chunk.Choices = []wire.StreamChunkChoice{{
				Index: 0,
				Delta: wire.StreamDelta{
					ToolCalls: []wire.StreamToolCallDiff{{
						Index: t.activeToolBlock.openAIIndex,
						Function: wire.StreamToolCallFunctionDiff{
							Arguments: event.Delta.PartialJSON,
						},
					}},
				},
			}}
			return []wire.StreamChunk{chunk}, nil

		default:
			return nil, nil
		}

	case wire.EventContentBlockStop:
		if t.activeToolBlock != nil && event.Index != nil && *event.Index == t.activeToolBlock.anthropicIndex {
			t.activeToolBlock = nil
		}
		return nil, nil

	case wire.EventMessageDelta:
		if event.Delta != nil && event.Delta.StopReason != "" {
			t.stopReason = event.Delta.StopReason
		}
		return nil, nil

	case wire.EventMessageStop:
		reason := wire.MapFinishReason(t.stopReason)
		chunk := t.baseChunk()
		chunk.Choices = []wire.StreamChunkChoice{{
			Index:        0,
			Delta:        wire.StreamDelta{},
			FinishReason: &reason,
		}}
		return []wire.StreamChunk{chunk}, nil

	default:
		return nil, nil
	}
}

// decodeEvent unmarshals one SSE data payload into an AnthropicStreamEvent.
// Malformed frames are reported to the caller rather than silently dropped
// here; Run decides whether to warn-and-skip or abort.
func decodeEvent(payload string) (wire.AnthropicStreamEvent, error) {
	var event wire.AnthropicStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return wire.AnthropicStreamEvent{}, fmt.Errorf("decode stream event: %w", err)
	}
	return event, nil
}
