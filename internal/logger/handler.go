package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// ANSI color codes for level tags.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// textHandler is a slog.Handler producing single-line human-readable output,
// optionally colorized when writing to a terminal.
type textHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	useColor bool
}

func newTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *textHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &textHandler{
		opts:     opts,
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes a log record.
func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	buf = fmt.Appendf(buf, "[%s] [%s] %s",
		r.Time.Format("2006-01-02 15:04:05"), h.levelTag(r.Level), r.Message)

	for _, a := range h.attrs {
		buf = appendAttr(buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

// WithAttrs returns a handler whose output includes the given attributes.
func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

// WithGroup is accepted but groups are flattened in text output.
func (h *textHandler) WithGroup(string) slog.Handler {
	return h
}

func appendAttr(buf []byte, a slog.Attr) []byte {
	return fmt.Appendf(buf, " %s=%v", a.Key, a.Value.Any())
}

func (h *textHandler) levelTag(l slog.Level) string {
	var tag, color string
	switch {
	case l >= slog.LevelError:
		tag, color = "ERROR", colorRed
	case l >= slog.LevelWarn:
		tag, color = "WARN", colorYellow
	case l >= slog.LevelInfo:
		tag, color = "INFO", colorGreen
	default:
		tag, color = "DEBUG", colorGray
	}
	if !h.useColor {
		return tag
	}
	return color + tag + colorReset
}
