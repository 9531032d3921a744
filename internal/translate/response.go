package translate

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/yarenty/modelmux/internal/wire"
)

// ResponseTranslator synthesizes an OpenAI chat-completion response from a
// completed, non-streaming Anthropic response.
type ResponseTranslator struct{}

func NewResponseTranslator() *ResponseTranslator { return &ResponseTranslator{} }

// Translate converts resp into an OpenAI response. displayModel is echoed
// back as the `model` field; now is the Unix timestamp stamped into
// `created`.
func (t *ResponseTranslator) Translate(resp wire.AnthropicResponse, displayModel string, now int64) (wire.ChatCompletionResponse, error) {
	var text strings.Builder
	var toolCalls []wire.OpenAIToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case wire.ContentText:
			text.WriteString(block.Text)
		case wire.ContentToolUse:
			args, err := json.Marshal(rawOrEmptyObject(block.Input))
			if err != nil {
				return wire.ChatCompletionResponse{}, newConversionError("marshal tool_use input", err)
			}
			toolCalls = append(toolCalls, wire.OpenAIToolCall{
				ID:   block.ID,
				Type: "function",
				Function: wire.OpenAIToolCallFunction{
					Name:      block.Name,
					Arguments: string(args),
				},
			})
		}
	}

	message := wire.OpenAIMessage{
		Role:      wire.RoleAssistant,
		Content:   text.String(),
		ToolCalls: toolCalls,
	}

	out := wire.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: now,
		Model:   displayModel,
		Choices: []wire.OpenAIChoice{{
			Index:        0,
			Message:      message,
			FinishReason: wire.MapFinishReason(resp.StopReason),
		}},
	}

	if resp.Usage != nil {
		out.Usage = &wire.OpenAIUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return out, nil
}

func rawOrEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}
