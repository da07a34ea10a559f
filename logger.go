package artistpath

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/malbiruk/artistpath/model"
)

// Logger wraps slog.Logger with engine-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// WithArtist adds an artist id field to the logger.
func (l *Logger) WithArtist(id model.ArtistID) *Logger {
	return &Logger{Logger: l.Logger.With("artist", id.String())}
}

// LogOpen logs store startup.
func (l *Logger) LogOpen(ctx context.Context, dir string, artists int, metaBytes, fwdBytes, revBytes int64) {
	l.InfoContext(ctx, "store opened",
		"dir", dir,
		"artists", artists,
		"metadata_bytes", metaBytes,
		"forward_bytes", fwdBytes,
		"reverse_bytes", revBytes,
	)
}

// LogFindPath logs a completed point-to-point search. Negative results are
// debug-level; only hard failures are errors.
func (l *Logger) LogFindPath(ctx context.Context, algorithm model.Algorithm, from, to model.ArtistID, stats model.Stats, err error) {
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, ErrUnknownArtist) || errors.Is(err, ErrInvalidArgument) {
			level = slog.LevelDebug
		}
		l.Log(ctx, level, "find path failed",
			"algorithm", algorithm.String(),
			"from", from.String(),
			"to", to.String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "find path completed",
		"algorithm", algorithm.String(),
		"from", from.String(),
		"to", to.String(),
		"visited", stats.ArtistsVisited,
		"edges", stats.EdgesConsidered,
		"duration_ms", stats.DurationMillis,
	)
}

// LogExplore logs a completed exploration.
func (l *Logger) LogExplore(ctx context.Context, dir model.Direction, center model.ArtistID, stats model.Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "explore failed",
			"direction", dir.String(),
			"center", center.String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "explore completed",
		"direction", dir.String(),
		"center", center.String(),
		"visited", stats.ArtistsVisited,
		"duration_ms", stats.DurationMillis,
	)
}

// LogIndexBuilt logs name index construction.
func (l *Logger) LogIndexBuilt(ctx context.Context, names int, took time.Duration) {
	l.InfoContext(ctx, "name index built",
		"names", names,
		"duration_ms", took.Milliseconds(),
	)
}
