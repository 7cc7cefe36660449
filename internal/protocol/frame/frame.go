package frame

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Frame is a decoded RESP message.
//
// The set of implementations is closed: Simple, Error, Integer, Bulk, Null
// and Array.
type Frame interface {
	// String renders the frame for humans (CLI output, logs).
	String() string

	frame()
}

// Simple is a short status string ("+OK").
type Simple string

// Error is an error reply ("-ERR ...").
type Error string

// Integer is a signed 64-bit integer reply.
type Integer int64

// Bulk is a binary-safe string.
type Bulk []byte

// Null is the null bulk string ("$-1").
type Null struct{}

// Array is an ordered sequence of frames. Commands are arrays of Bulk.
type Array []Frame

func (Simple) frame()  {}
func (Error) frame()   {}
func (Integer) frame() {}
func (Bulk) frame()    {}
func (Null) frame()    {}
func (Array) frame()   {}

// NewArray returns an empty array with room for n elements.
func NewArray(n int) Array {
	return make(Array, 0, n)
}

// PushBulk appends a Bulk element.
func (a *Array) PushBulk(b []byte) {
	*a = append(*a, Bulk(b))
}

// PushInt appends an Integer element.
func (a *Array) PushInt(n int64) {
	*a = append(*a, Integer(n))
}

func (s Simple) String() string { return string(s) }

func (e Error) String() string { return "(error) " + string(e) }

func (n Integer) String() string { return strconv.FormatInt(int64(n), 10) }

// String returns the payload as text when it is valid UTF-8, otherwise a
// quoted Go literal.
func (b Bulk) String() string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strconv.Quote(string(b))
}

func (Null) String() string { return "(nil)" }

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, f := range a {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// Equal reports whether a and b are the same frame. A nil Bulk and an empty
// Bulk are equal.
func Equal(a, b Frame) bool {
	switch x := a.(type) {
	case Simple:
		y, ok := b.(Simple)
		return ok && x == y
	case Error:
		y, ok := b.(Error)
		return ok && x == y
	case Integer:
		y, ok := b.(Integer)
		return ok && x == y
	case Bulk:
		y, ok := b.(Bulk)
		return ok && bytes.Equal(x, y)
	case Null:
		_, ok := b.(Null)
		return ok
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}
