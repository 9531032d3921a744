package streaming

import (
	"testing"

	"github.com/yarenty/modelmux/internal/wire"
)

func textFrame(content string) Frame {
	return Frame{Chunk: wire.StreamChunk{
		Choices: []wire.StreamChunkChoice{{Index: 0, Delta: wire.StreamDelta{Content: content}}},
	}}
}

func TestBufferRelay_FlushesOnMinBytes(t *testing.T) {
	in := make(chan Frame, 4)
	in <- textFrame("ab")
	in <- textFrame("cdefghij")
	close(in)

	var got []string
	for frame := range BufferRelay(in, 5) {
		got = append(got, frame.Chunk.Choices[0].Delta.Content)
	}
	if len(got) != 1 || got[0] != "abcdefghij" {
		t.Fatalf("expected one merged batch, got %v", got)
	}
}

func TestBufferRelay_FlushesOnSentenceBoundary(t *testing.T) {
	in := make(chan Frame, 4)
	in <- textFrame("Hi.")
	in <- textFrame("more")
	close(in)

	var got []string
	for frame := range BufferRelay(in, 100) {
		got = append(got, frame.Chunk.Choices[0].Delta.Content)
	}
	if len(got) != 2 || got[0] != "Hi." || got[1] != "more" {
		t.Fatalf("expected a flush at the sentence boundary, got %v", got)
	}
}

func TestBufferRelay_NonTextFrameFlushesPendingFirst(t *testing.T) {
	in := make(chan Frame, 4)
	in <- textFrame("partial")
	reason := "stop"
	in <- Frame{Chunk: wire.StreamChunk{Choices: []wire.StreamChunkChoice{{Index: 0, FinishReason: &reason}}}}
	close(in)

	var got []Frame
	for frame := range BufferRelay(in, 100) {
		got = append(got, frame)
	}
	if len(got) != 2 {
		t.Fatalf("expected pending text flushed before the finish frame, got %d frames", len(got))
	}
	if got[0].Chunk.Choices[0].Delta.Content != "partial" {
		t.Fatalf("expected first frame to carry the flushed text, got %+v", got[0])
	}
	if got[1].Chunk.Choices[0].FinishReason == nil {
		t.Fatalf("expected second frame to be the finish frame, got %+v", got[1])
	}
}

func TestCollapse_TextAndToolUse(t *testing.T) {
	resp := wire.AnthropicResponse{
		StopReason: "tool_use",
		Content: []wire.AnthropicContent{
			{Type: wire.ContentText, Text: "ok"},
			{Type: wire.ContentToolUse, ID: "t1", Name: "run", Input: []byte(`{"x":1}`)},
		},
	}

	chunks := Collapse(resp, "chatcmpl-1", "gpt-4", 0)
	if len(chunks) != 4 {
		t.Fatalf("expected role + text + tool + finish chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Choices[0].Delta.Role != wire.RoleAssistant {
		t.Fatalf("expected first chunk to carry the role delta, got %+v", chunks[0])
	}
	if chunks[3].Choices[0].FinishReason == nil || *chunks[3].Choices[0].FinishReason != "tool_calls" {
		t.Fatalf("expected final chunk finish_reason tool_calls, got %+v", chunks[3])
	}
}
