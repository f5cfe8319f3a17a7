package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes engine events to an slog.Logger. Useful in development
// to watch traffic on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level, errors at Warn level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("client_id", event.ClientID),
		slog.String("category", event.Category.String()),
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.Address != "" {
		attrs = append(attrs,
			slog.String("address", event.Address),
			slog.Int("args", event.ArgCount),
		)
	}
	if event.PacketSize > 0 {
		attrs = append(attrs, slog.Int("bytes", event.PacketSize))
	}
	if event.Multicast {
		attrs = append(attrs, slog.Bool("multicast", true))
	}
	if event.Category == CategoryTick {
		attrs = append(attrs,
			slog.Int("due", event.Due),
			slog.Int("sent", event.Sent),
		)
	}

	level := slog.LevelDebug
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
		level = slog.LevelWarn
	}

	a.logger.LogAttrs(context.Background(), level, "osc", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
