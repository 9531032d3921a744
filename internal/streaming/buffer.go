package streaming

import (
	"strings"

	"github.com/yarenty/modelmux/internal/wire"
)

// sentenceEndings are the characters that, as the last rune of a text delta,
// force a buffered batch to flush even if it hasn't reached minBytes yet.
const sentenceEndings = ".!?\n"

// BufferRelay wraps a Frame channel, accumulating consecutive text-only
// content deltas into larger batches before re-emitting them. A batch
// flushes when its accumulated length reaches minBytes, or when the delta
// that just arrived ends in a sentence-ending character. Non-text frames
// (role, tool-call, finish) flush any pending text first, then pass through
// unchanged, preserving emission order.
func BufferRelay(in <-chan Frame, minBytes int) <-chan Frame {
	out := make(chan Frame, frameBufferSize)

	go func() {
		defer close(out)

		var pending strings.Builder
		var template wire.StreamChunk

		flush := func() {
			if pending.Len() == 0 {
				return
			}
			chunk := template
			chunk.Choices = []wire.StreamChunkChoice{{
				Index: 0,
				Delta: wire.StreamDelta{Content: pending.String()},
			}}
			pending.Reset()
			out <- Frame{Chunk: chunk}
		}

		for frame := range in {
			if frame.Err != nil {
				flush()
				out <- frame
				continue
			}

			if isPureTextDelta(frame.Chunk) {
				template = frame.Chunk
				delta := frame.Chunk.Choices[0].Delta.Content
				pending.WriteString(delta)
				if pending.Len() >= minBytes || endsWithSentenceBoundary(delta) {
					flush()
				}
				continue
			}

			flush()
			out <- frame
		}

		flush()
	}()

	return out
}

func isPureTextDelta(chunk wire.StreamChunk) bool {
	if len(chunk.Choices) != 1 {
		return false
	}
	choice := chunk.Choices[0]
	return choice.Delta.Content != "" &&
		choice.Delta.Role == "" &&
		len(choice.Delta.ToolCalls) == 0 &&
		choice.FinishReason == nil
}

func endsWithSentenceBoundary(s string) bool {
	if s == "" {
		return false
	}
	return strings.ContainsRune(sentenceEndings, rune(s[len(s)-1]))
}
