package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// StackHandler is a slog handler that extracts the stack trace carried by a
// cockroachdb/errors error and attaches it to the record.
type StackHandler struct {
	handler slog.Handler
}

// WrapByStackHandler wraps a slog handler so that records logged with
// ErrAttr gain a stacktrace attribute.
func WrapByStackHandler(handler slog.Handler) slog.Handler {
	return &StackHandler{handler: handler}
}

func (h *StackHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}

func (h *StackHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			if err, ok := attr.Value.Any().(error); ok {
				stacktrace = extractStacktrace(err)
			}
			return false
		}
		return true
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	return h.handler.Handle(ctx, r)
}

func (h *StackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StackHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *StackHandler) WithGroup(g string) slog.Handler {
	return &StackHandler{handler: h.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
