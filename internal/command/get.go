package command

import "github.com/yndnr/respkv/internal/protocol/frame"

// Get fetches the value stored at a key.
//
//	GET key
type Get struct {
	Key string
}

// NewGet returns a GET command for key.
func NewGet(key string) *Get {
	return &Get{Key: key}
}

// Name returns "get".
func (g *Get) Name() string { return "get" }

func parseGet(p *Parse) (*Get, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, err
	}
	return &Get{Key: key}, nil
}

// IntoFrame encodes the command as it is sent by a client.
func (g *Get) IntoFrame() frame.Array {
	arr := frame.NewArray(2)
	arr.PushBulk([]byte("get"))
	arr.PushBulk([]byte(g.Key))
	return arr
}
