package wire

import "encoding/json"

// AnthropicVersion is the Vertex-flavored Anthropic API version pinned by
// the Vertex AI :rawPredict / :streamRawPredict contract.
const AnthropicVersion = "vertex-2023-10-16"

// Default generation parameters applied when the inbound OpenAI request
// omits them.
const (
	DefaultMaxTokens  = 8000
	DefaultTemperature = 0.9
)

// AnthropicRequest is the outbound request body sent to Vertex.
type AnthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	Messages         []AnthropicMessage `json:"messages"`
	MaxTokens        int64              `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Stream           bool               `json:"stream"`
	Tools            []AnthropicTool    `json:"tools,omitempty"`
	ToolChoice       *AnthropicToolChoice `json:"tool_choice,omitempty"`
}

// AnthropicRole is restricted to {user, assistant}; system prompts never
// appear as a message role (their text is prepended to the first user
// message instead).
type AnthropicRole string

const (
	AnthropicRoleUser      AnthropicRole = "user"
	AnthropicRoleAssistant AnthropicRole = "assistant"
)

// AnthropicMessage is one element of the outbound `messages` array.
type AnthropicMessage struct {
	Role    AnthropicRole      `json:"role"`
	Content []AnthropicContent `json:"content"`
}

// AnthropicContentType is the tag discriminant for AnthropicContent.
type AnthropicContentType string

const (
	ContentText       AnthropicContentType = "text"
	ContentImage      AnthropicContentType = "image"
	ContentToolUse    AnthropicContentType = "tool_use"
	ContentToolResult AnthropicContentType = "tool_result"
)

// AnthropicContent is a tagged-variant content block. Only the fields
// relevant to Type are populated; json tags with omitempty keep the
// serialized shape minimal per block kind.
type AnthropicContent struct {
	Type AnthropicContentType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// image
	Source *AnthropicImageSource `json:"source,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string          `json:"tool_use_id,omitempty"`
	ToolError bool            `json:"is_error,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

type AnthropicImageSource struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// AnthropicTool mirrors an OpenAI function tool.
type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// AnthropicToolChoice selects how the model is allowed to use tools.
type AnthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// AnthropicResponse is the completed, non-streaming Vertex response.
type AnthropicResponse struct {
	ID         string             `json:"id"`
	StopReason string             `json:"stop_reason"`
	Content    []AnthropicContent `json:"content"`
	Usage      *AnthropicUsage    `json:"usage,omitempty"`
}

type AnthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// AnthropicStreamEvent is one SSE `data:` payload from Vertex. Fields are a
// superset over all event types; Type selects which are meaningful, mirroring
// the wire shape rather than imposing a class hierarchy over event kinds.
type AnthropicStreamEvent struct {
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`

	// message_start
	Message *AnthropicResponse `json:"message,omitempty"`

	// content_block_start
	ContentBlock *AnthropicContent `json:"content_block,omitempty"`

	// content_block_delta
	Delta *AnthropicStreamDelta `json:"delta,omitempty"`

	// message_delta also reuses Delta.StopReason
}

// AnthropicStreamDelta carries either a text delta, a partial-JSON
// (input_json) delta, or an updated stop_reason, depending on the event type
// it is nested under.
type AnthropicStreamDelta struct {
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

// Anthropic stream event type discriminants.
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
)

// Anthropic content_block_delta delta-type discriminants.
const (
	DeltaText        = "text_delta"
	DeltaPartialJSON = "input_json_delta"
)

// MapFinishReason maps an Anthropic stop_reason to the OpenAI finish_reason
// vocabulary. Unknown reasons map to "stop".
func MapFinishReason(stopReason string) string {
	switch stopReason {
	case "end_turn":
		return "stop"
	case "max_tokens":
		return "length"
	case "tool_use":
		return "tool_calls"
	case "stop_sequence":
		return "stop"
	default:
		return "stop"
	}
}
