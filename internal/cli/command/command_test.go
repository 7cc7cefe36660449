package command

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/protocol/connection"
	"github.com/yndnr/respkv/internal/protocol/frame"
)

// fakeServer answers each request array with reply(request).
type fakeServer struct {
	ln       net.Listener
	reply    func(frame.Array) frame.Frame
	requests chan frame.Array
}

func newFakeServer(t *testing.T, reply func(frame.Array) frame.Frame) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	s := &fakeServer{ln: ln, reply: reply, requests: make(chan frame.Array, 10)}
	go s.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *fakeServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		go func() {
			defer c.Close()
			conn := connection.New(c)
			for {
				f, err := conn.ReadFrame()
				if err != nil {
					return
				}
				req, _ := f.(frame.Array)
				s.requests <- req
				if err := conn.WriteFrame(s.reply(req)); err != nil {
					return
				}
			}
		}()
	}
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

// storeReply behaves like a server seeded with ping -> pong.
func storeReply(req frame.Array) frame.Frame {
	name := strings.ToLower(string(req[0].(frame.Bulk)))
	switch {
	case name == "get" && string(req[1].(frame.Bulk)) == "ping":
		return frame.Bulk("pong")
	case name == "get":
		return frame.Null{}
	case name == "ping" && len(req) == 2:
		return req[1]
	case name == "ping":
		return frame.Simple("PONG")
	}
	return frame.Error("ERR unknown command '" + name + "'")
}

// runApp runs the CLI with args and returns stdout and the error.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"respkv-cli"}, args...))
	return out.String(), err
}

// ============================================================
// Commands
// ============================================================

func TestGet(t *testing.T) {
	srv := newFakeServer(t, storeReply)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"hit", []string{"get", "ping"}, "pong\n"},
		{"miss", []string{"get", "missing"}, "(nil)\n"},
		{"json", []string{"-o", "json", "get", "ping"}, "{\n  \"type\": \"bulk\",\n  \"value\": \"pong\"\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--server", srv.addr()}, tt.args...)
			out, err := runApp(t, args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestGet_SendsCommandArray(t *testing.T) {
	srv := newFakeServer(t, storeReply)

	if _, err := runApp(t, "-s", srv.addr(), "get", "ping"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	req := <-srv.requests
	want := frame.Array{frame.Bulk("get"), frame.Bulk("ping")}
	if !frame.Equal(req, want) {
		t.Errorf("request = %#v, want %#v", req, want)
	}
}

func TestPing(t *testing.T) {
	srv := newFakeServer(t, storeReply)

	out, err := runApp(t, "-s", srv.addr(), "ping")
	if err != nil || out != "PONG\n" {
		t.Errorf("ping = (%q, %v), want PONG", out, err)
	}

	out, err = runApp(t, "-s", srv.addr(), "ping", "hello")
	if err != nil || out != "hello\n" {
		t.Errorf("ping hello = (%q, %v), want hello", out, err)
	}
}

func TestUsageErrors(t *testing.T) {
	srv := newFakeServer(t, storeReply)

	tests := []struct {
		name string
		args []string
	}{
		{"get without key", []string{"get"}},
		{"get two keys", []string{"get", "a", "b"}},
		{"ping two messages", []string{"ping", "a", "b"}},
		{"bad output", []string{"-o", "table", "ping"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, append([]string{"-s", srv.addr()}, tt.args...)...)
			var exit cli.ExitCoder
			if !errors.As(err, &exit) || exit.ExitCode() != 2 {
				t.Errorf("Run() error = %v, want exit code 2", err)
			}
		})
	}
}

func TestConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = runApp(t, "-s", addr, "-t", "500ms", "ping")
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Errorf("Run() error = %v, want exit code 1", err)
	}
}

// ============================================================
// Client
// ============================================================

func TestClient_Timeout(t *testing.T) {
	// Accepts but never replies.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err == nil {
			defer c.Close()
			time.Sleep(2 * time.Second)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client, err := Dial(ctx, ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	start := time.Now()
	if _, err := client.Do(ctx, frame.Array{frame.Bulk("ping")}); err == nil {
		t.Fatal("Do() error = nil, want timeout")
	}
	if time.Since(start) > time.Second {
		t.Error("Do() did not honor the context deadline")
	}
}

func TestApp_Flags(t *testing.T) {
	app := App()
	if app.Name != "respkv-cli" {
		t.Errorf("Name = %q", app.Name)
	}
	names := map[string]bool{}
	for _, c := range app.Commands {
		names[c.Name] = true
	}
	if !names["get"] || !names["ping"] {
		t.Errorf("commands = %v, want get and ping", names)
	}
}
