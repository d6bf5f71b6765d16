package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the application logger. Records go to w and, when
// journal is set, also to the systemd journal.
func newLogger(w io.Writer, level string, journal bool) *slog.Logger {
	lvl := parseLogLevel(level)
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	if !journal {
		return slog.New(textHandler)
	}

	journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
		ReplaceGroup: toJournalKey,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		logger := slog.New(textHandler)
		logger.Warn("Failed to open systemd journal, logging to stdout only", "error", err)
		return logger
	}

	return slog.New(slogmulti.Fanout(
		textHandler,
		&leveledHandler{Handler: journalHandler, level: lvl},
	))
}

// leveledHandler drops records below level before they reach Handler.
type leveledHandler struct {
	slog.Handler
	level slog.Level
}

func (h *leveledHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level && h.Handler.Enabled(ctx, l)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

// toJournalKey maps an attribute key to a valid journal field name.
func toJournalKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(key))
}
