package output

import (
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

// JSONFormatter formats replies as JSON objects with a type tag.
type JSONFormatter struct{}

// reply is the JSON shape of a frame. Bulk payloads that are not valid
// UTF-8 are emitted in Base64 under "bytes".
type reply struct {
	Type     string  `json:"type"`
	Value    any     `json:"value,omitempty"`
	Bytes    []byte  `json:"bytes,omitempty"`
	Elements []reply `json:"elements,omitempty"`
}

// Format formats f as indented JSON.
func (JSONFormatter) Format(w io.Writer, f frame.Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toReply(f))
}

func toReply(f frame.Frame) reply {
	switch v := f.(type) {
	case frame.Simple:
		return reply{Type: "simple", Value: string(v)}
	case frame.Error:
		return reply{Type: "error", Value: string(v)}
	case frame.Integer:
		return reply{Type: "integer", Value: int64(v)}
	case frame.Bulk:
		if !utf8.Valid(v) {
			return reply{Type: "bulk", Bytes: []byte(v)}
		}
		return reply{Type: "bulk", Value: string(v)}
	case frame.Null:
		return reply{Type: "null"}
	case frame.Array:
		elems := make([]reply, len(v))
		for i, e := range v {
			elems[i] = toReply(e)
		}
		return reply{Type: "array", Elements: elems}
	default:
		return reply{Type: "unknown"}
	}
}
