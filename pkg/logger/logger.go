// Package logger provides a colored slog handler for terminal output.
package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ANSI escape codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// storageMarkers are substrings of info messages that announce a storage
// write. Those lines render green so they stand out in long runs.
var storageMarkers = []string{"persist", "upsert", "snapshot", "saved"}

// ColorHandler wraps a text handler and colors each line by severity:
// errors red, warnings yellow, storage writes green, everything else
// uncolored.
type ColorHandler struct {
	inner slog.Handler
	w     io.Writer
	buf   *bytes.Buffer
	mu    *sync.Mutex
}

// NewColorHandler creates a handler writing colored text records to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	buf := &bytes.Buffer{}
	return &ColorHandler{
		inner: slog.NewTextHandler(buf, opts),
		w:     w,
		buf:   buf,
		mu:    &sync.Mutex{},
	}
}

// NewDefaultLogger returns a logger writing colored output to stderr at the
// given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler. The record is rendered by the inner text
// handler, then written out as one colored line.
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	line := strings.TrimSuffix(h.buf.String(), "\n")
	if color := recordColor(r); color != "" {
		line = color + line + colorReset
	}
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

// WithAttrs implements slog.Handler. Clones share the buffer and its lock.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{inner: h.inner.WithAttrs(attrs), w: h.w, buf: h.buf, mu: h.mu}
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{inner: h.inner.WithGroup(name), w: h.w, buf: h.buf, mu: h.mu}
}

func recordColor(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	case r.Level >= slog.LevelInfo && isStorageMessage(r.Message):
		return colorGreen
	default:
		return ""
	}
}

func isStorageMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range storageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
