// Package connection adapts a byte stream to the RESP frame codec.
//
// A Connection owns one stream and one receive buffer and is driven by a
// single goroutine; it performs no locking.
package connection

import (
	"bufio"
	"errors"
	"io"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

// DefaultBufferSize is the initial receive buffer capacity.
const DefaultBufferSize = 4 * 1024

// maxConsecutiveEmptyReads bounds zero-byte reads that carry no error.
const maxConsecutiveEmptyReads = 100

// ErrConnectionReset is returned when the peer closes the stream while a
// partial frame is still buffered.
var ErrConnectionReset = errors.New("connection: reset by peer mid-frame")

// Connection reads and writes frames over a byte stream.
type Connection struct {
	rd  io.Reader
	bw  *bufio.Writer
	enc *frame.Encoder

	// buf holds received bytes not yet decoded; buf[len:cap] is free space.
	buf []byte

	// checker remembers how much of the frame at the start of buf has
	// already been validated.
	checker frame.Checker

	// readErr is an error returned by the stream together with data; it is
	// reported once the buffered bytes cannot produce another frame.
	readErr error
}

// New wraps rw. Writes are buffered and flushed once per frame.
func New(rw io.ReadWriter) *Connection {
	return NewSize(rw, DefaultBufferSize)
}

// NewSize is like New with an explicit initial receive buffer capacity.
func NewSize(rw io.ReadWriter, size int) *Connection {
	if size <= 0 {
		size = DefaultBufferSize
	}
	bw := bufio.NewWriter(rw)
	return &Connection{
		rd:  rw,
		bw:  bw,
		enc: frame.NewEncoder(bw),
		buf: make([]byte, 0, size),
	}
}

// ReadFrame returns the next frame from the stream.
//
// It returns io.EOF when the peer closed the stream cleanly between frames,
// and ErrConnectionReset when it closed in the middle of one. Any other
// codec error wraps frame.ErrProtocol and leaves the connection unusable;
// input past a protocol limit also wraps frame.ErrLimitExceeded, so the
// buffer never grows much beyond frame.MaxFrameLen.
func (c *Connection) ReadFrame() (frame.Frame, error) {
	empty := 0
	for {
		f, err := c.parseFrame()
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}

		if c.readErr == nil {
			n, err := c.fill()
			if n > 0 {
				empty = 0
				c.readErr = err
				continue
			}
			if err == nil {
				empty++
				if empty >= maxConsecutiveEmptyReads {
					return nil, io.ErrNoProgress
				}
				continue
			}
			c.readErr = err
		}

		if errors.Is(c.readErr, io.EOF) {
			if len(c.buf) == 0 {
				return nil, io.EOF
			}
			return nil, ErrConnectionReset
		}
		return nil, c.readErr
	}
}

// parseFrame decodes one frame from the buffer, or returns nil if the buffer
// holds only part of one. Each call resumes checking where the last one
// stopped, so a frame arriving in many small reads costs time linear in
// its size.
func (c *Connection) parseFrame() (frame.Frame, error) {
	n, err := c.checker.Check(c.buf)
	if err != nil {
		if frame.IsIncomplete(err) {
			return nil, nil
		}
		return nil, err
	}

	f, _, err := frame.Parse(c.buf[:n])
	if err != nil {
		return nil, err
	}

	// Drop the consumed prefix, keeping any following frames.
	rest := copy(c.buf, c.buf[n:])
	c.buf = c.buf[:rest]
	return f, nil
}

// fill performs one read into the free space of the buffer, growing it first
// when it is full.
func (c *Connection) fill() (int, error) {
	if len(c.buf) == cap(c.buf) {
		grown := make([]byte, len(c.buf), 2*cap(c.buf))
		copy(grown, c.buf)
		c.buf = grown
	}
	n, err := c.rd.Read(c.buf[len(c.buf):cap(c.buf)])
	c.buf = c.buf[:len(c.buf)+n]
	return n, err
}

// WriteFrame encodes f and flushes it to the stream.
//
// A write error leaves the connection unusable; no partial-frame recovery is
// attempted.
func (c *Connection) WriteFrame(f frame.Frame) error {
	if err := c.enc.Encode(f); err != nil {
		return err
	}
	return c.bw.Flush()
}

// Buffered returns the number of received bytes not yet decoded.
func (c *Connection) Buffered() int {
	return len(c.buf)
}
