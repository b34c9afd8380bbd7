package logger

import (
	"errors"
	"os"
	"syscall"

	"pneuma/internal/application/port/output"

	"go.uber.org/zap"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewFromZap wraps an existing zap logger. Close only syncs it.
func NewFromZap(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{sugar: l.Sugar()}
}

func NewNop() *LoggerAdapter {
	return NewFromZap(zap.NewNop())
}

func (l *LoggerAdapter) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{
		sugar: l.sugar.With(key, value),
		file:  l.file,
	}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	return &LoggerAdapter{
		sugar: l.sugar.With(args...),
		file:  l.file,
	}
}

func (l *LoggerAdapter) Named(name string) output.LoggerPort {
	return &LoggerAdapter{
		sugar: l.sugar.Named(name),
		file:  l.file,
	}
}

func (l *LoggerAdapter) Close() error {
	err := l.sugar.Sync()
	// stderr on a terminal refuses fsync.
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		err = nil
	}
	if l.file != nil {
		if cerr := l.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		l.file = nil
	}
	return err
}
