package command

import (
	"errors"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

// Ping checks the connection. With a message, the server echoes it back.
//
//	PING [message]
type Ping struct {
	Msg []byte
}

// NewPing returns a PING command; msg may be nil.
func NewPing(msg []byte) *Ping {
	return &Ping{Msg: msg}
}

// Name returns "ping".
func (p *Ping) Name() string { return "ping" }

func parsePing(p *Parse) (*Ping, error) {
	msg, err := p.NextBytes()
	if errors.Is(err, ErrEndOfStream) {
		return &Ping{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Ping{Msg: msg}, nil
}

// IntoFrame encodes the command as it is sent by a client.
func (p *Ping) IntoFrame() frame.Array {
	arr := frame.NewArray(2)
	arr.PushBulk([]byte("ping"))
	if p.Msg != nil {
		arr.PushBulk(p.Msg)
	}
	return arr
}
