package automation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"pneuma/internal/application/port/output"
	"pneuma/internal/domain/entity"

	"go.uber.org/zap/zapcore"
)

// Console is the logging surface backed by the bridge's log primitive.
type Console struct {
	bridge output.BridgePort
}

func NewConsole(bridge output.BridgePort) *Console {
	return &Console{bridge: bridge}
}

func (c *Console) Log(args ...any) {
	c.Write(entity.LogLevelInfo, args...)
}

func (c *Console) Warn(args ...any) {
	c.Write(entity.LogLevelWarn, args...)
}

func (c *Console) Error(args ...any) {
	c.Write(entity.LogLevelError, args...)
}

// Debug has no level of its own on the bridge and goes out as info.
func (c *Console) Debug(args ...any) {
	c.Write(entity.LogLevelInfo, args...)
}

// Write stringifies every argument and joins them with single spaces.
func (c *Console) Write(level entity.LogLevel, args ...any) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = Stringify(arg)
	}
	c.bridge.Log(level, strings.Join(parts, " "))
}

// Stringify renders v the way a script console prints a single argument.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return formatNumber(float64(t))
	case float64:
		return formatNumber(t)
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}

	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Core returns a zap core that forwards entries to the bridge log primitive.
func (c *Console) Core(enab zapcore.LevelEnabler) zapcore.Core {
	return &consoleCore{LevelEnabler: enab, console: c}
}

type consoleCore struct {
	zapcore.LevelEnabler
	console *Console
	fields  []zapcore.Field
}

func (cc *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(cc.fields)+len(fields))
	merged = append(merged, cc.fields...)
	merged = append(merged, fields...)
	return &consoleCore{LevelEnabler: cc.LevelEnabler, console: cc.console, fields: merged}
}

func (cc *consoleCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if cc.Enabled(ent.Level) {
		return ce.AddCore(ent, cc)
	}
	return ce
}

func (cc *consoleCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range cc.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	var sb strings.Builder
	if ent.LoggerName != "" {
		sb.WriteString(ent.LoggerName)
		sb.WriteString(": ")
	}
	sb.WriteString(ent.Message)

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(Stringify(enc.Fields[k]))
	}

	cc.console.bridge.Log(bridgeLevel(ent.Level), sb.String())
	return nil
}

func (cc *consoleCore) Sync() error {
	return nil
}

func bridgeLevel(l zapcore.Level) entity.LogLevel {
	switch {
	case l >= zapcore.ErrorLevel:
		return entity.LogLevelError
	case l == zapcore.WarnLevel:
		return entity.LogLevelWarn
	default:
		return entity.LogLevelInfo
	}
}
