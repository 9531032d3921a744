package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yarenty/modelmux/internal/wire"
)

// RequestTranslator converts an OpenAI chat-completions request into an
// Anthropic messages request. It makes a single pass over the inbound
// messages, accumulating system text and deferring tool-result attachment
// until the next assistant/user message is seen, per the conversion rules.
type RequestTranslator struct{}

// NewRequestTranslator returns a stateless RequestTranslator; translation
// state lives entirely within a single Translate call.
func NewRequestTranslator() *RequestTranslator { return &RequestTranslator{} }

// translationState is the per-call working state the single pass maintains.
type translationState struct {
	out            []wire.AnthropicMessage
	pendingResults []wire.AnthropicContent
	systemParts    []string
}

// Translate converts req into an Anthropic request. It never mutates req.
func (t *RequestTranslator) Translate(req wire.ChatCompletionRequest) (wire.AnthropicRequest, error) {
	st := &translationState{}

	for _, m := range req.Messages {
		switch m.Role {
		case wire.RoleSystem:
			st.addSystemText(messageText(m))

		case wire.RoleAssistant:
			st.flushPendingResults()
			content, err := assistantContent(m)
			if err != nil {
				return wire.AnthropicRequest{}, err
			}
			st.out = append(st.out, wire.AnthropicMessage{Role: wire.AnthropicRoleAssistant, Content: content})

		case wire.RoleTool:
			result, err := toolResultContent(m)
			if err != nil {
				return wire.AnthropicRequest{}, err
			}
			st.pendingResults = append(st.pendingResults, result)

		case wire.RoleUser:
			st.flushPendingResults()
			content, err := userContent(m)
			if err != nil {
				return wire.AnthropicRequest{}, err
			}
			st.out = append(st.out, wire.AnthropicMessage{Role: wire.AnthropicRoleUser, Content: content})

		default:
			return wire.AnthropicRequest{}, newConversionError(fmt.Sprintf("unknown role %q", m.Role), nil)
		}
	}

	// Trailing tool results with no following message: flush if the
	// conversation ends on an assistant turn.
	if len(st.pendingResults) > 0 && len(st.out) > 0 && st.out[len(st.out)-1].Role == wire.AnthropicRoleAssistant {
		st.flushPendingResults()
	}

	st.prependSystemText()

	out := wire.AnthropicRequest{
		AnthropicVersion: wire.AnthropicVersion,
		Messages:         st.out,
		MaxTokens:        wire.DefaultMaxTokens,
		Temperature:      wire.DefaultTemperature,
		Stream:           false,
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.Stream != nil {
		out.Stream = *req.Stream
	}

	tools, err := convertTools(req.Tools)
	if err != nil {
		return wire.AnthropicRequest{}, err
	}
	out.Tools = tools

	toolChoice, err := convertToolChoice(req.ToolChoice)
	if err != nil {
		return wire.AnthropicRequest{}, err
	}
	out.ToolChoice = toolChoice

	return out, nil
}

// flushPendingResults emits the buffered tool results as a single user
// message of tool_result blocks, placed immediately after the preceding
// assistant message, then clears the buffer.
func (s *translationState) flushPendingResults() {
	if len(s.pendingResults) == 0 {
		return
	}
	s.out = append(s.out, wire.AnthropicMessage{
		Role:    wire.AnthropicRoleUser,
		Content: s.pendingResults,
	})
	s.pendingResults = nil
}

func (s *translationState) addSystemText(text string) {
	if text == "" {
		return
	}
	s.systemParts = append(s.systemParts, text)
}

// prependSystemText joins the accumulated system text with blank lines and
// prefixes it onto the first user message's first text block, inserting one
// if necessary.
func (s *translationState) prependSystemText() {
	if len(s.systemParts) == 0 {
		return
	}
	systemText := strings.Join(s.systemParts, "\n\n")

	for i := range s.out {
		if s.out[i].Role != wire.AnthropicRoleUser {
			continue
		}
		if len(s.out[i].Content) > 0 && s.out[i].Content[0].Type == wire.ContentText {
			s.out[i].Content[0].Text = systemText + "\n\n" + s.out[i].Content[0].Text
		} else {
			prefix := wire.AnthropicContent{Type: wire.ContentText, Text: systemText}
			s.out[i].Content = append([]wire.AnthropicContent{prefix}, s.out[i].Content...)
		}
		return
	}
}

func messageText(m wire.OpenAIMessage) string {
	if m.HasParts {
		var b strings.Builder
		for _, p := range m.Parts {
			if p.Type == "text" {
				b.WriteString(p.Text)
			}
		}
		return b.String()
	}
	return m.Content
}

// assistantContent converts an assistant message's text and tool_calls into
// Anthropic content blocks. If the result is empty, an empty text block is
// emitted to preserve role alternation.
func assistantContent(m wire.OpenAIMessage) ([]wire.AnthropicContent, error) {
	var blocks []wire.AnthropicContent

	if text := messageText(m); text != "" {
		blocks = append(blocks, wire.AnthropicContent{Type: wire.ContentText, Text: text})
	}

	for _, tc := range m.ToolCalls {
		input := parseToolArguments(tc.Function.Arguments)
		blocks = append(blocks, wire.AnthropicContent{
			Type:  wire.ContentToolUse,
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}

	if len(blocks) == 0 {
		blocks = append(blocks, wire.AnthropicContent{Type: wire.ContentText, Text: ""})
	}

	return blocks, nil
}

// parseToolArguments parses an OpenAI tool call's JSON-string arguments into
// a JSON value. If the string isn't valid JSON, it is forwarded verbatim as
// a JSON string so no information is lost.
func parseToolArguments(arguments string) json.RawMessage {
	if arguments == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(arguments)) {
		return json.RawMessage(arguments)
	}
	raw, err := json.Marshal(arguments)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}

// toolResultContent buffers one tool message into a tool_result block.
func toolResultContent(m wire.OpenAIMessage) (wire.AnthropicContent, error) {
	block := wire.AnthropicContent{Type: wire.ContentToolResult, ToolUseID: m.ToolCallID}

	if !m.HasParts {
		raw, err := json.Marshal(m.Content)
		if err != nil {
			return block, newConversionError("marshal tool result content", err)
		}
		block.Content = raw
		return block, nil
	}

	parts, err := convertContentParts(m.Parts)
	if err != nil {
		return block, err
	}
	raw, err := json.Marshal(parts)
	if err != nil {
		return block, newConversionError("marshal tool result content array", err)
	}
	block.Content = raw
	return block, nil
}

// userContent converts a user message's string-or-array content into
// Anthropic text/image blocks.
func userContent(m wire.OpenAIMessage) ([]wire.AnthropicContent, error) {
	if !m.HasParts {
		return []wire.AnthropicContent{{Type: wire.ContentText, Text: m.Content}}, nil
	}
	return convertContentParts(m.Parts)
}

func convertContentParts(parts []wire.OpenAIContentPart) ([]wire.AnthropicContent, error) {
	out := make([]wire.AnthropicContent, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case "text":
			out = append(out, wire.AnthropicContent{Type: wire.ContentText, Text: p.Text})
		case "image_url":
			if p.ImageURL == nil {
				return nil, newConversionError("image_url part missing image_url", nil)
			}
			out = append(out, wire.AnthropicContent{
				Type:   wire.ContentImage,
				Source: &wire.AnthropicImageSource{Type: "url", URL: p.ImageURL.URL},
			})
		default:
			return nil, newConversionError(fmt.Sprintf("unknown content part type %q", p.Type), nil)
		}
	}
	return out, nil
}

// convertTools maps OpenAI tool definitions to Anthropic tools. An empty or
// nil input yields a nil slice so the field is omitted from the serialized
// payload rather than sent as an empty array.
func convertTools(tools []wire.OpenAITool) ([]wire.AnthropicTool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]wire.AnthropicTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, wire.AnthropicTool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			InputSchema: t.Function.Parameters,
		})
	}
	return out, nil
}

// convertToolChoice maps the OpenAI tool_choice selector to Anthropic's
// tool_choice shape. "none" and any choice the Anthropic API has no
// equivalent for are omitted rather than rejected.
func convertToolChoice(raw json.RawMessage) (*wire.AnthropicToolChoice, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		switch asString {
		case "auto":
			return &wire.AnthropicToolChoice{Type: "auto"}, nil
		default:
			// "none" and any other bare string has no Anthropic equivalent.
			return nil, nil
		}
	}

	var asObject struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil, newConversionError("malformed tool_choice", err)
	}
	if asObject.Type == "function" && asObject.Function.Name != "" {
		return &wire.AnthropicToolChoice{Type: "tool", Name: asObject.Function.Name}, nil
	}
	return nil, nil
}
