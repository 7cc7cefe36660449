package redisserver

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/yndnr/respkv/internal/command"
	"github.com/yndnr/respkv/internal/protocol/frame"
	"github.com/yndnr/respkv/internal/storage"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// CommandHandler executes decoded commands against a store and produces
// the reply frame. It never fails: every outcome, including store errors,
// is a frame for the client.
type CommandHandler struct {
	store   storage.Store
	metrics *metric.Registry
	logger  logger.Logger
}

// NewCommandHandler creates a new CommandHandler. metrics may be nil.
func NewCommandHandler(store storage.Store, metrics *metric.Registry, log logger.Logger) *CommandHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CommandHandler{
		store:   store,
		metrics: metrics,
		logger:  log,
	}
}

// Handle runs cmd and returns the reply.
func (h *CommandHandler) Handle(ctx context.Context, cmd command.Command) frame.Frame {
	start := time.Now()
	reply := h.dispatch(ctx, cmd)

	if h.metrics != nil {
		name := cmd.Name()
		if _, ok := cmd.(*command.Unknown); ok {
			name = "unknown"
		}
		h.metrics.RecordCommand(name, resultLabel(reply), time.Since(start).Seconds())
	}
	return reply
}

func (h *CommandHandler) dispatch(ctx context.Context, cmd command.Command) frame.Frame {
	switch c := cmd.(type) {
	case *command.Get:
		return h.handleGet(ctx, c)
	case *command.Ping:
		return handlePing(c)
	case *command.Set:
		return frame.Error("ERR command 'set' is not implemented")
	default:
		return errorReply("ERR unknown command '" + logger.TruncatePayload(cmd.Name()) + "'")
	}
}

func (h *CommandHandler) handleGet(ctx context.Context, c *command.Get) frame.Frame {
	value, err := h.store.Get(ctx, c.Key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return frame.Null{}
		}
		logger.L(ctx).Error("store get failed", "key", c.Key, "error", err)
		return errorReply("ERR storage: " + err.Error())
	}
	return frame.Bulk(value)
}

func handlePing(c *command.Ping) frame.Frame {
	if c.Msg != nil {
		return frame.Bulk(c.Msg)
	}
	return frame.Simple("PONG")
}

// maxErrorReplyLen keeps error replies far below a client's line limit.
const maxErrorReplyLen = 512

// errorReply builds an error frame from text that may carry client input.
// Control characters become spaces and long text is cut on a rune
// boundary, so the reply is always one valid line.
func errorReply(msg string) frame.Frame {
	msg = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, msg)
	if len(msg) > maxErrorReplyLen {
		cut := maxErrorReplyLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return frame.Error(msg)
}

func resultLabel(reply frame.Frame) string {
	switch reply.(type) {
	case frame.Error:
		return metric.ResultError
	case frame.Null:
		return metric.ResultNil
	default:
		return metric.ResultOK
	}
}
