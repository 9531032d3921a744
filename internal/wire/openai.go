// Package wire defines the OpenAI and Anthropic chat-completion wire schemas
// as plain, JSON-tagged Go types. Content blocks are modeled as tagged
// variants (a `Type` discriminant plus the union of possible fields) rather
// than as a class hierarchy, matching the shape both APIs actually send on
// the wire.
package wire

import "encoding/json"

// ChatCompletionRequest is the inbound OpenAI-compatible request body.
type ChatCompletionRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []OpenAIMessage `json:"messages"`
	MaxTokens   *int64          `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	Stream      *bool           `json:"stream,omitempty"`
	Tools       []OpenAITool    `json:"tools,omitempty"`
	ToolChoice  json.RawMessage `json:"tool_choice,omitempty"`
}

// IsStreaming reports whether the client asked for a streaming response.
func (r *ChatCompletionRequest) IsStreaming() bool {
	return r.Stream != nil && *r.Stream
}

// OpenAIRole enumerates the roles allowed on an inbound message.
type OpenAIRole string

const (
	RoleSystem    OpenAIRole = "system"
	RoleUser      OpenAIRole = "user"
	RoleAssistant OpenAIRole = "assistant"
	RoleTool      OpenAIRole = "tool"
)

// OpenAIMessage is one element of the inbound `messages` array.
//
// Content is either a bare string or an ordered array of typed blocks; both
// shapes unmarshal into Content/Parts below (see UnmarshalJSON).
type OpenAIMessage struct {
	Role       OpenAIRole          `json:"role"`
	Content    string              `json:"-"`
	Parts      []OpenAIContentPart `json:"-"`
	HasParts   bool                `json:"-"`
	ToolCalls  []OpenAIToolCall    `json:"tool_calls,omitempty"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
}

type openAIMessageWire struct {
	Role       OpenAIRole       `json:"role"`
	Content    json.RawMessage  `json:"content,omitempty"`
	ToolCalls  []OpenAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// UnmarshalJSON accepts both a string `content` and an array of typed parts.
func (m *OpenAIMessage) UnmarshalJSON(data []byte) error {
	var w openAIMessageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Role = w.Role
	m.ToolCalls = w.ToolCalls
	m.ToolCallID = w.ToolCallID

	if len(w.Content) == 0 || string(w.Content) == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(w.Content, &asString); err == nil {
		m.Content = asString
		return nil
	}

	var parts []OpenAIContentPart
	if err := json.Unmarshal(w.Content, &parts); err != nil {
		return err
	}
	m.Parts = parts
	m.HasParts = true
	return nil
}

// MarshalJSON re-emits the string-or-array content shape. A response message
// that carries tool calls and no text emits `content: null`, matching the
// OpenAI API's own convention.
func (m OpenAIMessage) MarshalJSON() ([]byte, error) {
	w := openAIMessageWire{
		Role:       m.Role,
		ToolCalls:  m.ToolCalls,
		ToolCallID: m.ToolCallID,
	}
	var err error
	switch {
	case m.HasParts:
		w.Content, err = json.Marshal(m.Parts)
	case m.Content == "" && len(m.ToolCalls) > 0:
		w.Content = json.RawMessage("null")
	default:
		w.Content, err = json.Marshal(m.Content)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// OpenAIContentPart is a single typed content block: {type: "text"|"image_url", ...}.
type OpenAIContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *OpenAIImgURL `json:"image_url,omitempty"`
}

type OpenAIImgURL struct {
	URL string `json:"url"`
}

// OpenAIToolCall is an assistant-issued function call.
type OpenAIToolCall struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Function OpenAIToolCallFunction `json:"function"`
}

type OpenAIToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// OpenAITool describes a callable function in the `tools` catalog.
type OpenAITool struct {
	Type     string             `json:"type"`
	Function OpenAIToolFunction `json:"function"`
}

type OpenAIToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ChatCompletionResponse is the non-streaming OpenAI-shaped response.
type ChatCompletionResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   *OpenAIUsage   `json:"usage,omitempty"`
}

type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type OpenAIUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// StreamChunk is one `chat.completion.chunk` SSE frame.
type StreamChunk struct {
	ID      string              `json:"id"`
	Object  string              `json:"object"`
	Created int64               `json:"created"`
	Model   string              `json:"model"`
	Choices []StreamChunkChoice `json:"choices"`
}

type StreamChunkChoice struct {
	Index        int          `json:"index"`
	Delta        StreamDelta  `json:"delta"`
	FinishReason *string      `json:"finish_reason"`
}

// StreamDelta carries the incremental fields of one stream chunk. Role is
// only set on the first chunk; Content carries a text delta; ToolCalls
// carries partial tool-call accumulation frames.
type StreamDelta struct {
	Role      OpenAIRole           `json:"role,omitempty"`
	Content   string               `json:"content,omitempty"`
	ToolCalls []StreamToolCallDiff `json:"tool_calls,omitempty"`
}

// StreamToolCallDiff is one element of delta.tool_calls. Id/Type/Function.Name
// are only present on the frame that opens the tool call; subsequent frames
// for the same index carry only the next Function.Arguments fragment.
type StreamToolCallDiff struct {
	Index    int                        `json:"index"`
	ID       string                     `json:"id,omitempty"`
	Type     string                     `json:"type,omitempty"`
	Function StreamToolCallFunctionDiff `json:"function"`
}

type StreamToolCallFunctionDiff struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

// ErrorResponse is the error body shape returned to OpenAI clients.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// Model is one entry of the /v1/models listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the full /v1/models response body.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
