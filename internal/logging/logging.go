// Package logging configures the process-wide structured logger. No
// logging library appears anywhere in the retrieval pack, so this is the
// one ambient concern built directly on the standard library's log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Trace sits one step below slog.LevelDebug, mirroring the RUST_LOG style
// "trace" level the CLI accepts in the RUST_LOG environment variable.
const Trace = slog.Level(-8)

// ParseLevel accepts the RUST_LOG-style names error/warn/info/debug/trace,
// case-insensitively.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return Trace, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a text-handler slog.Logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == Trace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	})
	return slog.New(handler)
}
