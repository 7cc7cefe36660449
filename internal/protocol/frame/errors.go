package frame

import "errors"

// Protocol limits to prevent DoS attacks.
const (
	// MaxBulkLen limits the declared size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// MaxArrayLen limits the declared number of elements in an array.
	MaxArrayLen = 1024

	// MaxLineLen limits a simple or error string line (4KB).
	MaxLineLen = 4 * 1024

	// MaxHeaderLen limits integer, length and count lines.
	MaxHeaderLen = 64

	// MaxNestingDepth limits how deeply arrays may nest.
	MaxNestingDepth = 32

	// MaxFrameLen limits the encoded size of one whole frame (4MB).
	MaxFrameLen = 4 << 20
)

var (
	// ErrIncomplete means the buffer does not yet hold a whole frame.
	// It is the normal state of a streaming decoder, not a protocol violation.
	ErrIncomplete = errors.New("frame: incomplete")

	// ErrProtocol is wrapped by every malformed-input or conversion error.
	ErrProtocol = errors.New("frame: protocol error")

	// ErrLimitExceeded is returned (alongside ErrProtocol) when input goes
	// past one of the protocol limits above.
	ErrLimitExceeded = errors.New("frame: limit exceeded")
)

// IsIncomplete reports whether err signals that more bytes are needed.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}
