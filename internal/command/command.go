package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

// Command is a decoded client command.
type Command interface {
	// Name returns the lower-case command name.
	Name() string
}

// FromFrame decodes a command array such as ["GET", "foo"].
//
// Names are matched case-insensitively. Commands this package does not know
// decode to *Unknown rather than failing, so the caller can reply with an
// error and keep the connection open.
func FromFrame(f frame.Frame) (Command, error) {
	p, err := NewParse(f)
	if err != nil {
		return nil, err
	}

	name, err := p.NextString()
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return nil, fmt.Errorf("%w: empty command", ErrInvalidCommand)
		}
		return nil, err
	}
	name = strings.ToLower(name)

	var cmd Command
	switch name {
	case "get":
		cmd, err = parseGet(p)
	case "set":
		cmd, err = parseSet(p)
	case "ping":
		cmd, err = parsePing(p)
	default:
		return NewUnknown(name), nil
	}
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return nil, wrongArity(name)
		}
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, wrongArity(name)
	}
	return cmd, nil
}

func wrongArity(name string) error {
	return fmt.Errorf("%w: wrong number of arguments for '%s' command", ErrInvalidCommand, name)
}

// Unknown is any command this server does not recognize.
type Unknown struct {
	name string
}

// NewUnknown returns an Unknown command called name.
func NewUnknown(name string) *Unknown {
	return &Unknown{name: strings.ToLower(name)}
}

// Name returns the command name as sent by the client, lower-cased.
func (u *Unknown) Name() string { return u.name }

// ErrorMessage returns the client-facing text of a decoding error, without
// the package prefix: "wrong number of arguments for 'get' command".
func ErrorMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrInvalidCommand, ErrEndOfStream} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return strings.TrimPrefix(msg, "command: ")
}
