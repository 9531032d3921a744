package streaming

import (
	"bufio"
	"io"
	"strings"
)

const ssePayloadPrefix = "data: "

// scanSSEPayloads reads Anthropic SSE frames from r and invokes onPayload
// for each `data: ` line's payload, in order. The literal "[DONE]" payload
// stops scanning without invoking onPayload. A partial trailing line is
// retained by bufio.Scanner's own internal buffering across reads, so no
// manual buffer bookkeeping is needed here.
//
// The scan buffer is enlarged to accommodate large tool-call argument
// fragments and multi-block text deltas, matching the sizing the broader
// example corpus uses for the same purpose.
func scanSSEPayloads(r io.Reader, onPayload func(payload string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePayloadPrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, ssePayloadPrefix)
		if payload == "[DONE]" {
			return nil
		}
		if err := onPayload(payload); err != nil {
			return err
		}
	}
	return scanner.Err()
}
