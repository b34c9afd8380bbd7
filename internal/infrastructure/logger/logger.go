package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// JSON switches stderr output from console to JSON encoding.
	JSON bool
	// Dir, when set, additionally writes JSON lines to <Dir>/<timestamp>_<Name>.log.
	Dir  string
	Name string
}

func DefaultConfig() Config {
	return Config{
		Level: "info",
		Name:  "pneuma",
	}
}

// New builds the zap logger behind LoggerAdapter.
func New(cfg Config) (*LoggerAdapter, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var stderrEnc zapcore.Encoder
	if cfg.JSON {
		stderrEnc = zapcore.NewJSONEncoder(encCfg)
	} else {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		stderrEnc = zapcore.NewConsoleEncoder(consoleCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stderrEnc, zapcore.Lock(os.Stderr), level),
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(cfg.Name))
		f, err := os.Create(filepath.Join(cfg.Dir, filename))
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	l := zap.New(zapcore.NewTee(cores...))
	if cfg.Name != "" {
		l = l.Named(cfg.Name)
	}

	return &LoggerAdapter{
		sugar: l.Sugar(),
		file:  file,
	}, nil
}

// sanitize makes a run name safe for the file system.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
