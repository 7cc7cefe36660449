package command

import (
	"errors"
	"testing"

	"github.com/yndnr/respkv/internal/protocol/frame"
)

func TestNewParse_RequiresArray(t *testing.T) {
	inputs := []frame.Frame{
		frame.Bulk("GET"),
		frame.Simple("OK"),
		frame.Null{},
		frame.Integer(1),
	}
	for _, f := range inputs {
		if _, err := NewParse(f); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("NewParse(%#v) error = %v, want ErrInvalidCommand", f, err)
		}
	}
}

func TestParse_NextString(t *testing.T) {
	p, err := NewParse(frame.Array{
		frame.Bulk("get"),
		frame.Simple("key"),
		frame.Bulk([]byte{0xff, 0xfe}),
		frame.Integer(3),
	})
	if err != nil {
		t.Fatalf("NewParse() error = %v", err)
	}

	if s, err := p.NextString(); err != nil || s != "get" {
		t.Errorf("NextString() = %q, %v; want get", s, err)
	}
	if s, err := p.NextString(); err != nil || s != "key" {
		t.Errorf("NextString() = %q, %v; want key", s, err)
	}
	if _, err := p.NextString(); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("NextString() on invalid utf-8 error = %v, want ErrInvalidCommand", err)
	}
	if _, err := p.NextString(); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("NextString() on integer error = %v, want ErrInvalidCommand", err)
	}
	if _, err := p.NextString(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("NextString() at end error = %v, want ErrEndOfStream", err)
	}
}

func TestParse_NextBytes(t *testing.T) {
	p, _ := NewParse(frame.Array{frame.Bulk([]byte{0x00, 0xff}), frame.Simple("s"), frame.Null{}})

	b, err := p.NextBytes()
	if err != nil || string(b) != "\x00\xff" {
		t.Errorf("NextBytes() = %q, %v", b, err)
	}
	b, err = p.NextBytes()
	if err != nil || string(b) != "s" {
		t.Errorf("NextBytes() = %q, %v", b, err)
	}
	if _, err := p.NextBytes(); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("NextBytes() on null error = %v, want ErrInvalidCommand", err)
	}
}

func TestParse_NextInt(t *testing.T) {
	tests := []struct {
		name    string
		frame   frame.Frame
		want    int64
		wantErr bool
	}{
		{name: "integer", frame: frame.Integer(-4), want: -4},
		{name: "bulk decimal", frame: frame.Bulk("120"), want: 120},
		{name: "simple decimal", frame: frame.Simple("7"), want: 7},
		{name: "bulk text", frame: frame.Bulk("ten"), wantErr: true},
		{name: "null", frame: frame.Null{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewParse(frame.Array{tt.frame})
			got, err := p.NextInt()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommand) {
					t.Errorf("NextInt() error = %v, want ErrInvalidCommand", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NextInt() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NextInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParse_Finish(t *testing.T) {
	p, _ := NewParse(frame.Array{frame.Bulk("a"), frame.Bulk("b")})

	if _, err := p.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := p.Finish(); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Finish() with elements left error = %v, want ErrInvalidCommand", err)
	}
	if _, err := p.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Errorf("Finish() error = %v, want nil", err)
	}
}
