// Package frame implements the RESP2 frame model and its byte-level codec.
//
// A frame is one of Simple, Error, Integer, Bulk, Null or Array. Decoding is
// split in two passes over the same buffer:
//
//   - Check: probes whether a complete frame is buffered and reports its size,
//     without allocating decoded values. It returns ErrIncomplete while the
//     frame is still arriving.
//   - Parse: re-walks the same grammar and materializes the Frame, consuming
//     exactly the bytes Check reported.
//
// Both passes are side-effect free. A streaming reader that calls Check each
// time more bytes arrive uses a Checker, which resumes at the first
// incomplete element instead of starting over (see
// internal/protocol/connection).
//
// Lines, bulk lengths, array counts, nesting depth and whole-frame size are
// bounded; input past a bound fails with ErrLimitExceeded instead of waiting
// for more bytes.
//
// Wire format:
//
//	+<text>\r\n                 simple string
//	-<text>\r\n                 error string
//	:<int>\r\n                  integer
//	$<len>\r\n<len bytes>\r\n   bulk string
//	$-1\r\n                     null
//	*<count>\r\n<count frames>  array
package frame
