package frame

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// lineBreaks turns CR and LF into spaces; a simple or error string is a
// single line on the wire.
var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Encoder writes frames to a buffered writer. It never flushes; callers
// decide when a frame is complete on the wire.
type Encoder struct {
	w       *bufio.Writer
	scratch [24]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w *bufio.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes f. Arrays are written as a header followed by each element;
// elements must not be arrays themselves.
func (e *Encoder) Encode(f Frame) error {
	arr, ok := f.(Array)
	if !ok {
		return e.encodeValue(f)
	}
	if err := e.w.WriteByte('*'); err != nil {
		return err
	}
	if err := e.writeDecimal(uint64(len(arr))); err != nil {
		return err
	}
	for _, elem := range arr {
		if err := e.encodeValue(elem); err != nil {
			return err
		}
	}
	return nil
}

// encodeValue writes any non-array frame. A nested array is a programming
// error and panics.
func (e *Encoder) encodeValue(f Frame) error {
	switch v := f.(type) {
	case Simple:
		return e.writeText('+', string(v))
	case Error:
		return e.writeText('-', string(v))
	case Integer:
		if err := e.w.WriteByte(':'); err != nil {
			return err
		}
		if _, err := e.w.Write(strconv.AppendInt(e.scratch[:0], int64(v), 10)); err != nil {
			return err
		}
		_, err := e.w.Write(crlf)
		return err
	case Bulk:
		if err := e.w.WriteByte('$'); err != nil {
			return err
		}
		if err := e.writeDecimal(uint64(len(v))); err != nil {
			return err
		}
		if _, err := e.w.Write(v); err != nil {
			return err
		}
		_, err := e.w.Write(crlf)
		return err
	case Null:
		_, err := e.w.WriteString("$-1\r\n")
		return err
	case Array:
		panic("frame: nested arrays cannot be encoded")
	default:
		panic(fmt.Sprintf("frame: unknown frame type %T", f))
	}
}

// writeText writes a simple or error string. CR and LF in s are written as
// spaces so that the text cannot end the line early.
func (e *Encoder) writeText(prefix byte, s string) error {
	if strings.ContainsAny(s, "\r\n") {
		s = lineBreaks.Replace(s)
	}
	if err := e.w.WriteByte(prefix); err != nil {
		return err
	}
	if _, err := e.w.WriteString(s); err != nil {
		return err
	}
	_, err := e.w.Write(crlf)
	return err
}

// writeDecimal writes an unsigned length or count followed by CRLF.
func (e *Encoder) writeDecimal(n uint64) error {
	b := strconv.AppendUint(e.scratch[:0], n, 10)
	b = append(b, crlf...)
	_, err := e.w.Write(b)
	return err
}

// Marshal returns the wire encoding of f.
func Marshal(f Frame) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_ = NewEncoder(w).Encode(f)
	_ = w.Flush()
	return buf.Bytes()
}
