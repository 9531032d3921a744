package streaming

import "github.com/yarenty/modelmux/internal/wire"

// Collapse replays a completed, non-streaming Anthropic response as the SSE
// frame sequence a streaming client expects: a role-delta frame, one content
// frame per text block, one tool-call frame per tool call, and a final
// finish frame. Callers append the `[DONE]` sentinel themselves once these
// frames are written, matching the same termination point Run uses.
func Collapse(resp wire.AnthropicResponse, id, model string, created int64) []wire.StreamChunk {
	base := wire.StreamChunk{ID: id, Object: "chat.completion.chunk", Created: created, Model: model}

	chunks := []wire.StreamChunk{withDelta(base, wire.StreamDelta{Role: wire.RoleAssistant})}

	toolIndex := 0
	for _, block := range resp.Content {
		switch block.Type {
		case wire.ContentText:
			if block.Text != "" {
				chunks = append(chunks, withDelta(base, wire.StreamDelta{Content: block.Text}))
			}
		case wire.ContentToolUse:
			args := "{}"
			if len(block.Input) > 0 {
				args = string(block.Input)
			}
			chunks = append(chunks, withDelta(base, wire.StreamDelta{
				ToolCalls: []wire.StreamToolCallDiff{{
					Index: toolIndex,
					ID:    block.ID,
					Type:  "function",
					Function: wire.StreamToolCallFunctionDiff{
						Name:      block.Name,
						Arguments: args,
					},
				}},
			}))
			toolIndex++
		}
	}

	reason := wire.MapFinishReason(resp.StopReason)
	finish := base
	finish.Choices = []wire.StreamChunkChoice{{Index: 0, Delta: wire.StreamDelta{}, FinishReason: &reason}}
	chunks = append(chunks, finish)

	return chunks
}

func withDelta(base wire.StreamChunk, delta wire.StreamDelta) wire.StreamChunk {
	chunk := base
	chunk.Choices = []wire.StreamChunkChoice{{Index: 0, Delta: delta}}
	return chunk
}
