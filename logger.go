package verimatch

import (
	"context"
	"log/slog"
	"os"

	"github.com/verimatch/verimatch/model"
)

// Logger wraps slog.Logger with verimatch-specific context.
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
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithUser adds a user field to the logger.
func (l *Logger) WithUser(userID string) *Logger {
	return &Logger{Logger: l.Logger.With("user", userID)}
}

// WithModality adds a modality field to the logger.
func (l *Logger) WithModality(m model.Modality) *Logger {
	return &Logger{Logger: l.Logger.With("modality", string(m))}
}

// LogEnroll logs an enrollment operation.
func (l *Logger) LogEnroll(ctx context.Context, userID string, m model.Modality, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "enroll failed",
			"user", userID,
			"modality", string(m),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "enroll completed",
			"user", userID,
			"modality", string(m),
			"samples", samples,
		)
	}
}

// LogVerify logs a verification operation.
func (l *Logger) LogVerify(ctx context.Context, userID string, score model.ModalityScore, err error) {
	if err != nil {
		l.ErrorContext(ctx, "verify failed",
			"user", userID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "verify completed",
			"user", userID,
			"modality", string(score.Modality),
			"score", score.Score,
			"accepted", score.Accepted,
		)
	}
}

// LogFuse logs a fusion operation.
func (l *Logger) LogFuse(ctx context.Context, modalities int, fused float64, authenticated bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fusion failed",
			"modalities", modalities,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fusion completed",
			"modalities", modalities,
			"fused_score", fused,
			"authenticated", authenticated,
		)
	}
}

// LogOptimize logs a feature optimization run.
func (l *Logger) LogOptimize(ctx context.Context, method string, inDim, outDim int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "optimization failed",
			"method", method,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "optimization completed",
			"method", method,
			"input_dim", inDim,
			"output_dim", outDim,
		)
	}
}

// LogTrain logs a classifier training run.
func (l *Logger) LogTrain(ctx context.Context, kind string, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"kind", kind,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "training completed",
			"kind", kind,
			"samples", samples,
		)
	}
}
