package streaming

import (
	"context"
	"io"
	"log/slog"

	"github.com/yarenty/modelmux/internal/wire"
)

// Frame is one item delivered on the channel Run returns: either a chunk
// ready to write to the client, or a terminal error.
type Frame struct {
	Chunk wire.StreamChunk
	Err   error
}

// frameBufferSize bounds the channel Run returns so a slow client applies
// backpressure to the upstream read loop instead of letting translated
// chunks pile up unbounded in memory.
const frameBufferSize = 100

// Run drives a StreamTranslator over an Anthropic SSE body, emitting OpenAI
// stream chunks on the returned channel as they are produced. The channel is
// closed once the body is exhausted, the context is canceled, or a
// non-recoverable read error occurs. A malformed individual SSE frame is
// logged and skipped rather than aborting the whole stream, since isolated
// corruption in one frame shouldn't sink an otherwise-healthy response.
func Run(ctx context.Context, body io.Reader, id, model string, created int64) <-chan Frame {
	out := make(chan Frame, frameBufferSize)
	translator := NewStreamTranslator(id, model, created)

	go func() {
		defer close(out)

		finished := false
		err := scanSSEPayloads(body, func(payload string) error {
			event, decodeErr := decodeEvent(payload)
			if decodeErr != nil {
				slog.Warn("skipping malformed stream frame", "error", decodeErr)
				return nil
			}
			if event.Type == wire.EventMessageStop {
				finished = true
			}

			chunks, procErr := translator.ProcessEvent(event)
			if procErr != nil {
				return procErr
			}

			for _, chunk := range chunks {
				select {
				case out <- Frame{Chunk: chunk}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})

		// An upstream that ends without message_stop still gets one closing
		// finish_reason chunk, built from the last recorded stop_reason.
		if err == nil && !finished {
			chunks, _ := translator.ProcessEvent(wire.AnthropicStreamEvent{Type: wire.EventMessageStop})
			for _, chunk := range chunks {
				select {
				case out <- Frame{Chunk: chunk}:
				case <-ctx.Done():
					return
				}
			}
		}

		if err != nil {
			select {
			case out <- Frame{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}
