package ai

import (
	"errors"
	"strings"
)

// ErrEmptyGeneration indicates the model returned no usable text.
var ErrEmptyGeneration = errors.New("model returned no text")

// Generation is the outcome of one generation call: text or a failure, never both.
type Generation struct {
	text string
	err  error
}

// Generated wraps model output. Blank output is recorded as ErrEmptyGeneration.
func Generated(text string) Generation {
	if strings.TrimSpace(text) == "" {
		return Failed(ErrEmptyGeneration)
	}
	return Generation{text: text}
}

// Failed records a failed generation. A nil err is recorded as ErrEmptyGeneration.
func Failed(err error) Generation {
	if err == nil {
		err = ErrEmptyGeneration
	}
	return Generation{err: err}
}

// OK reports whether the generation produced text. The zero Generation is not OK.
func (g Generation) OK() bool {
	return g.err == nil && g.text != ""
}

// Text returns the generated text, or "" for a failed generation.
func (g Generation) Text() string {
	return g.text
}

// Err returns the failure, or nil for a successful generation.
func (g Generation) Err() error {
	if g.err == nil && g.text == "" {
		return ErrEmptyGeneration
	}
	return g.err
}
