package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

// Set stores a value at a key, optionally expiring it.
//
//	SET key value [EX seconds | PX milliseconds]
//
// The server decodes SET but does not execute it.
type Set struct {
	Key    string
	Value  []byte
	Expire time.Duration
}

// NewSet returns a SET command. A zero expire means no expiry.
func NewSet(key string, value []byte, expire time.Duration) *Set {
	return &Set{Key: key, Value: value, Expire: expire}
}

// Name returns "set".
func (s *Set) Name() string { return "set" }

func parseSet(p *Parse) (*Set, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, err
	}
	value, err := p.NextBytes()
	if err != nil {
		return nil, err
	}
	cmd := &Set{Key: key, Value: value}

	opt, err := p.NextString()
	if errors.Is(err, ErrEndOfStream) {
		return cmd, nil
	}
	if err != nil {
		return nil, err
	}

	var unit time.Duration
	switch strings.ToUpper(opt) {
	case "EX":
		unit = time.Second
	case "PX":
		unit = time.Millisecond
	default:
		return nil, errSyntax()
	}

	n, err := p.NextInt()
	if errors.Is(err, ErrEndOfStream) {
		return nil, errSyntax()
	}
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > int64(math.MaxInt64/unit) {
		return nil, fmt.Errorf("%w: invalid expire time in 'set' command", ErrInvalidCommand)
	}
	cmd.Expire = time.Duration(n) * unit
	return cmd, nil
}

func errSyntax() error {
	return fmt.Errorf("%w: syntax error", ErrInvalidCommand)
}

// IntoFrame encodes the command as it is sent by a client. Expiry is sent
// in milliseconds, rounded up so that a sub-millisecond expiry stays valid.
func (s *Set) IntoFrame() frame.Array {
	arr := frame.NewArray(5)
	arr.PushBulk([]byte("set"))
	arr.PushBulk([]byte(s.Key))
	arr.PushBulk(s.Value)
	if s.Expire > 0 {
		arr.PushBulk([]byte("px"))
		ms := s.Expire.Milliseconds()
		if s.Expire%time.Millisecond != 0 {
			ms++
		}
		arr.PushBulk([]byte(strconv.FormatInt(ms, 10)))
	}
	return arr
}
