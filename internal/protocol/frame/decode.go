package frame

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

var nullLen = []byte("-1")

// Check reports the size in bytes of the complete frame at the start of buf.
//
// It returns ErrIncomplete when more bytes are needed and an error wrapping
// ErrProtocol when buf can never become a valid frame. Nothing is decoded,
// so Check can be rerun from the start every time buf grows. Streaming
// readers should use a Checker, which does not repeat work across calls.
func Check(buf []byte) (int, error) {
	var c Checker
	return c.Check(buf)
}

// Checker is an incremental Check for a buffer that only grows between
// calls. It remembers the elements it has already validated, so each call
// resumes at the first incomplete one. The zero value is ready to use.
type Checker struct {
	// pos is the end of the last complete element.
	pos int
	// pending holds the unread element counts of the open arrays,
	// innermost last.
	pending []int
	// hint is where the line search of the incomplete element resumes.
	hint int
}

// Check is like the package-level Check. buf must hold the bytes passed to
// the previous call as a prefix. After a complete frame or an error the
// Checker resets itself for the next frame.
func (c *Checker) Check(buf []byte) (int, error) {
	s := &scanner{buf: buf}
	for {
		s.pos = c.pos
		s.lineFrom = c.hint
		s.lineHint = 0

		el, err := scanElement(s)
		if err != nil {
			if IsIncomplete(err) {
				c.hint = s.lineHint
			} else {
				c.Reset()
			}
			return 0, err
		}
		c.hint = 0

		if el.kind == '*' {
			if len(c.pending) >= MaxNestingDepth {
				c.Reset()
				return 0, errNestingTooDeep()
			}
			if el.num > 0 {
				c.pos = s.pos
				c.pending = append(c.pending, int(el.num))
				continue
			}
		}
		c.pos = s.pos

		// Close every array this element completes.
		for len(c.pending) > 0 {
			top := len(c.pending) - 1
			c.pending[top]--
			if c.pending[top] > 0 {
				break
			}
			c.pending = c.pending[:top]
		}
		if len(c.pending) == 0 {
			n := c.pos
			c.Reset()
			return n, nil
		}
	}
}

// Reset discards any progress.
func (c *Checker) Reset() {
	c.pos = 0
	c.pending = c.pending[:0]
	c.hint = 0
}

// element is one scalar value, or the header of an array, as scanned off
// the wire. Slices alias the scanned buffer.
type element struct {
	kind byte
	text []byte // Simple and Error
	data []byte // Bulk payload
	num  int64  // Integer value or array count
	null bool
}

// scanElement validates one element. For arrays only the header is
// consumed. Check and Parse both walk frames with it, so they accept and
// reject exactly the same input.
func scanElement(s *scanner) (element, error) {
	prefix, err := s.getByte()
	if err != nil {
		return element{}, err
	}

	el := element{kind: prefix}
	switch prefix {
	case '+', '-':
		el.text, err = getText(s)
	case ':':
		el.num, err = s.getSignedDecimal()
	case '$':
		var b byte
		if b, err = s.peekByte(); err != nil {
			break
		}
		if b == '-' {
			el.null = true
			err = checkNull(s)
			break
		}
		el.data, err = getBulk(s)
	case '*':
		var n int
		n, err = s.getLength("array length", MaxArrayLen)
		el.num = int64(n)
	default:
		return element{}, fmt.Errorf("%w: invalid frame type byte %q", ErrProtocol, prefix)
	}
	if err != nil {
		return element{}, err
	}
	if s.pos > MaxFrameLen {
		return element{}, errFrameTooLarge(s.pos)
	}
	return el, nil
}

// checkNull consumes the "-1\r\n" of a null bulk string. Any other negative
// length is rejected.
func checkNull(s *scanner) error {
	line, err := s.getLine(MaxHeaderLen)
	if err != nil {
		return err
	}
	if !bytes.Equal(line, nullLen) {
		return fmt.Errorf("%w: invalid bulk length %q", ErrProtocol, line)
	}
	return nil
}

// getBulk reads a bulk length, payload and terminator. A payload that would
// end past MaxFrameLen is refused before it is buffered.
func getBulk(s *scanner) ([]byte, error) {
	n, err := s.getLength("bulk length", MaxBulkLen)
	if err != nil {
		return nil, err
	}
	if end := s.pos + n + len(crlf); end > MaxFrameLen {
		return nil, errFrameTooLarge(end)
	}
	start := s.pos
	if err := s.skip(n); err != nil {
		return nil, err
	}
	if err := s.expectCRLF(); err != nil {
		return nil, err
	}
	return s.buf[start : start+n], nil
}

// getText reads a simple or error string line, which must be valid UTF-8.
func getText(s *scanner) ([]byte, error) {
	line, err := s.getLine(MaxLineLen)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: invalid utf-8 in simple string", ErrProtocol)
	}
	return line, nil
}

func errFrameTooLarge(n int) error {
	return fmt.Errorf("%w: %w: frame of at least %d bytes exceeds limit %d", ErrProtocol, ErrLimitExceeded, n, MaxFrameLen)
}

func errNestingTooDeep() error {
	return fmt.Errorf("%w: %w: arrays nested deeper than %d", ErrProtocol, ErrLimitExceeded, MaxNestingDepth)
}

// Parse decodes the frame at the start of buf and returns it together with
// the number of bytes consumed, which always equals what Check reports for
// the same buf.
func Parse(buf []byte) (Frame, int, error) {
	s := &scanner{buf: buf}
	f, err := parse(s, 0)
	if err != nil {
		return nil, 0, err
	}
	return f, s.pos, nil
}

// parse decodes one frame; depth is the number of enclosing arrays.
func parse(s *scanner, depth int) (Frame, error) {
	el, err := scanElement(s)
	if err != nil {
		return nil, err
	}

	switch el.kind {
	case '+':
		return Simple(el.text), nil
	case '-':
		return Error(el.text), nil
	case ':':
		return Integer(el.num), nil
	case '$':
		if el.null {
			return Null{}, nil
		}
		data := make([]byte, len(el.data))
		copy(data, el.data)
		return Bulk(data), nil
	default: // '*'
		if depth >= MaxNestingDepth {
			return nil, errNestingTooDeep()
		}
		elems := make([]Frame, 0, el.num)
		for i := int64(0); i < el.num; i++ {
			f, err := parse(s, depth+1)
			if err != nil {
				return nil, err
			}
			elems = append(elems, f)
		}
		return Array(elems), nil
	}
}
