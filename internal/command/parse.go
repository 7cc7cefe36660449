package command

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

var (
	// ErrEndOfStream is returned when a command has fewer arguments than
	// requested.
	ErrEndOfStream = errors.New("command: end of stream")

	// ErrInvalidCommand wraps every malformed-command error.
	ErrInvalidCommand = errors.New("command: invalid command")
)

// Parse is a cursor over the elements of a command array.
type Parse struct {
	parts []frame.Frame
	pos   int
}

// NewParse returns a Parse over the elements of f, which must be an Array.
func NewParse(f frame.Frame) (*Parse, error) {
	arr, ok := f.(frame.Array)
	if !ok {
		return nil, fmt.Errorf("%w: expected array frame, got %T", ErrInvalidCommand, f)
	}
	return &Parse{parts: arr}, nil
}

// Next returns the next element.
func (p *Parse) Next() (frame.Frame, error) {
	if p.pos >= len(p.parts) {
		return nil, ErrEndOfStream
	}
	f := p.parts[p.pos]
	p.pos++
	return f, nil
}

// NextString returns the next element as text. It must be a Simple string
// or a Bulk holding valid UTF-8.
func (p *Parse) NextString() (string, error) {
	f, err := p.Next()
	if err != nil {
		return "", err
	}
	switch v := f.(type) {
	case frame.Simple:
		return string(v), nil
	case frame.Bulk:
		if !utf8.Valid(v) {
			return "", fmt.Errorf("%w: argument is not valid utf-8", ErrInvalidCommand)
		}
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: expected simple or bulk frame, got %s", ErrInvalidCommand, describe(f))
	}
}

// NextBytes returns the next element as raw bytes. It must be a Simple
// string or a Bulk.
func (p *Parse) NextBytes() ([]byte, error) {
	f, err := p.Next()
	if err != nil {
		return nil, err
	}
	switch v := f.(type) {
	case frame.Simple:
		return []byte(v), nil
	case frame.Bulk:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: expected simple or bulk frame, got %s", ErrInvalidCommand, describe(f))
	}
}

// NextInt returns the next element as an integer. Integer frames are taken
// as is; Simple and Bulk frames must hold a decimal.
func (p *Parse) NextInt() (int64, error) {
	f, err := p.Next()
	if err != nil {
		return 0, err
	}
	var text string
	switch v := f.(type) {
	case frame.Integer:
		return int64(v), nil
	case frame.Simple:
		text = string(v)
	case frame.Bulk:
		text = string(v)
	default:
		return 0, fmt.Errorf("%w: expected integer frame, got %s", ErrInvalidCommand, describe(f))
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value is not an integer or out of range", ErrInvalidCommand)
	}
	return n, nil
}

// Finish fails if elements are left unconsumed.
func (p *Parse) Finish() error {
	if p.pos < len(p.parts) {
		return fmt.Errorf("%w: expected end of frame, %d elements left", ErrInvalidCommand, len(p.parts)-p.pos)
	}
	return nil
}

func describe(f frame.Frame) string {
	switch f.(type) {
	case frame.Simple:
		return "simple"
	case frame.Error:
		return "error"
	case frame.Integer:
		return "integer"
	case frame.Bulk:
		return "bulk"
	case frame.Null:
		return "null"
	case frame.Array:
		return "array"
	default:
		return fmt.Sprintf("%T", f)
	}
}
