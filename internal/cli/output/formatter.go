package output

import (
	"fmt"
	"io"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

// Format represents the output format.
type Format string

const (
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
)

// Formatter writes one reply frame.
type Formatter interface {
	Format(w io.Writer, f frame.Frame) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatRaw, "":
		return &RawFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want raw or json)", format)
	}
}

// RawFormatter prints replies the way redis-cli does: "(nil)" for null,
// "(error) ..." for errors, quoted text for binary bulk strings.
type RawFormatter struct{}

// Format writes the display form of f followed by a newline.
func (RawFormatter) Format(w io.Writer, f frame.Frame) error {
	_, err := fmt.Fprintln(w, f.String())
	return err
}
