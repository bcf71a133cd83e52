package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
)

// MaxValueLength is the longest string value the handler will emit.
// Longer values are truncated and suffixed with Ellipsis. 512 runes is
// enough for any reasonable URL while keeping a hostile page from
// flooding the log stream.
const MaxValueLength = 512

// Ellipsis marks a truncated value.
const Ellipsis = "…"

// CleanHandler wraps an slog.Handler to neutralize page-derived text.
// It intercepts log records and rewrites string attribute values that
// contain control characters or exceed MaxValueLength before passing
// them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Callers cannot forget to sanitize; every attribute passes through
type CleanHandler struct {
	// handler is the underlying slog handler that receives cleaned records.
	handler slog.Handler
}

// NewCleanHandler creates a new CleanHandler wrapping the given handler.
// All string attributes will be cleaned before being passed to the
// underlying handler. If handler is nil, the returned CleanHandler will
// use slog.Default().Handler().
func NewCleanHandler(handler slog.Handler) *CleanHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CleanHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CleanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle cleans the record's attributes and passes it to the underlying handler.
func (h *CleanHandler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, CleanValue(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(h.cleanAttr(a))
		return true
	})

	return h.handler.Handle(ctx, cleaned)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are cleaned before being added.
func (h *CleanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleanedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleanedAttrs[i] = h.cleanAttr(a)
	}
	return &CleanHandler{handler: h.handler.WithAttrs(cleanedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *CleanHandler) WithGroup(name string) slog.Handler {
	return &CleanHandler{handler: h.handler.WithGroup(name)}
}

// cleanAttr cleans a single attribute, recursively handling groups.
func (h *CleanHandler) cleanAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		cleanedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			cleanedAttrs[i] = h.cleanAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleanedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, CleanValue(a.Value.String()))
	}

	return a
}

// CleanValue neutralizes one string for log output: control characters
// become the Unicode replacement character, and values beyond
// MaxValueLength are truncated. Clean input is returned unchanged
// without allocating.
func CleanValue(s string) string {
	dirty := false
	length := 0
	for _, r := range s {
		length++
		if unicode.IsControl(r) {
			dirty = true
		}
	}
	if !dirty && length <= MaxValueLength {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	written := 0
	for _, r := range s {
		if written == MaxValueLength {
			b.WriteString(Ellipsis)
			break
		}
		if unicode.IsControl(r) {
			r = unicode.ReplacementChar
		}
		b.WriteRune(r)
		written++
	}
	return b.String()
}

// NewLogger creates a new slog.Logger with clean handling and text output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Info
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewCleanHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a new slog.Logger with clean handling that
// outputs JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewCleanHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
