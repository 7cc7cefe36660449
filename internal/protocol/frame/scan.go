package frame

import (
	"bytes"
	"fmt"
	"strconv"
)

var crlf = []byte("\r\n")

// scanner is a read cursor over an immutable byte window.
type scanner struct {
	buf []byte
	pos int

	// lineFrom, when past pos, is where the next getLine starts looking for
	// CRLF; the bytes before it are known not to hold one.
	lineFrom int
	// lineHint is set by a getLine that ran out of input to the offset a
	// later search may resume from.
	lineHint int
}

func (s *scanner) remaining() int {
	return len(s.buf) - s.pos
}

func (s *scanner) peekByte() (byte, error) {
	if s.remaining() < 1 {
		return 0, ErrIncomplete
	}
	return s.buf[s.pos], nil
}

func (s *scanner) getByte() (byte, error) {
	if s.remaining() < 1 {
		return 0, ErrIncomplete
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// skip advances the cursor by n bytes.
func (s *scanner) skip(n int) error {
	if s.remaining() < n {
		return ErrIncomplete
	}
	s.pos += n
	return nil
}

// getLine returns the bytes up to the first CRLF and moves past it. A line
// longer than limit fails as soon as limit+2 bytes are buffered without a
// CRLF. The returned slice aliases the buffer.
func (s *scanner) getLine(limit int) ([]byte, error) {
	start := s.pos
	from := max(start, s.lineFrom)
	s.lineFrom = 0

	end := min(len(s.buf), start+limit+len(crlf))
	if from < end {
		if idx := bytes.Index(s.buf[from:end], crlf); idx >= 0 {
			s.pos = from + idx + len(crlf)
			return s.buf[start : from+idx], nil
		}
	}
	if end-start >= limit+len(crlf) {
		return nil, fmt.Errorf("%w: %w: line longer than %d bytes", ErrProtocol, ErrLimitExceeded, limit)
	}
	// The last byte may be the CR of a CRLF split across reads.
	s.lineHint = max(start, end-1)
	return nil, ErrIncomplete
}

// getDecimal reads a line holding an unsigned 64-bit decimal.
func (s *scanner) getDecimal() (uint64, error) {
	line, err := s.getLine(MaxHeaderLen)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid decimal %q: %w", ErrProtocol, line, err)
	}
	return n, nil
}

// getSignedDecimal reads a line holding a signed 64-bit decimal.
func (s *scanner) getSignedDecimal() (int64, error) {
	line, err := s.getLine(MaxHeaderLen)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q: %w", ErrProtocol, line, err)
	}
	return n, nil
}

// getLength reads an unsigned decimal and converts it to an int bounded by
// limit.
func (s *scanner) getLength(what string, limit int) (int, error) {
	n, err := s.getDecimal()
	if err != nil {
		return 0, err
	}
	if n > uint64(maxInt) {
		return 0, fmt.Errorf("%w: %s %d overflows int", ErrProtocol, what, n)
	}
	if n > uint64(limit) {
		return 0, fmt.Errorf("%w: %w: %s %d exceeds limit %d", ErrProtocol, ErrLimitExceeded, what, n, limit)
	}
	return int(n), nil
}

// expectCRLF consumes a CRLF terminator.
func (s *scanner) expectCRLF() error {
	if s.remaining() < len(crlf) {
		return ErrIncomplete
	}
	if !bytes.Equal(s.buf[s.pos:s.pos+len(crlf)], crlf) {
		return fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	s.pos += len(crlf)
	return nil
}

const maxInt = int(^uint(0) >> 1)
