package translate

import "fmt"

// ConversionError reports an OpenAI request that cannot be translated into
// an Anthropic request, or an Anthropic response that cannot be translated
// back: an unknown role, a malformed JSON shape, or a schema violation.
type ConversionError struct {
	msg string
	err error
}

func (e *ConversionError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("conversion: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("conversion: %s", e.msg)
}

func (e *ConversionError) Unwrap() error { return e.err }

func newConversionError(msg string, err error) *ConversionError {
	return &ConversionError{msg: msg, err: err}
}
