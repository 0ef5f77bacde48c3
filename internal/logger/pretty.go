// internal/logger/pretty.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// keptFields are the only fields the pretty console prints.
var keptFields = map[string]bool{
	"signature": true,
	"mint":      true,
	"kind":      true,
	"amount":    true,
	"error":     true,
	"owner":     true,
}

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// CreatePrettyLogger creates a logger with user-friendly console output on stderr.
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	return newPrettyLogger(debug, zapcore.Lock(os.Stderr), nil), nil
}

// CreateCLILogger writes pretty lines to stderr and, when file is not nil,
// full JSON entries to file.
func CreateCLILogger(debug bool, file io.Writer) *zap.Logger {
	return newPrettyLogger(debug, zapcore.Lock(os.Stderr), file)
}

func newPrettyLogger(debug bool, console zapcore.WriteSyncer, file io.Writer) *zap.Logger {
	level := levelFor(debug)
	cores := []zapcore.Core{
		&FieldFilterCore{core: zapcore.NewCore(zapcore.NewConsoleEncoder(prettyEncoderConfig()), console, level)},
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(file), level))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// CreateTUILoggerWithBuffer creates a logger that never touches the terminal:
// entries go to buffer and, optionally, to file as JSON.
func CreateTUILoggerWithBuffer(debug bool, buffer *LogBuffer, file io.Writer) (*zap.Logger, error) {
	if buffer == nil {
		return nil, fmt.Errorf("buffer is required for TUI logger")
	}
	level := levelFor(debug)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(buffer), level),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(file), level))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// FormatMessage turns well-known log lines into short user-facing text.
func FormatMessage(msg string, fields map[string]interface{}) string {
	switch {
	case strings.Contains(msg, "Transaction submitted"):
		return fmt.Sprintf("📤 %s sent: %s", field(fields, "kind"), shortenSignature(field(fields, "signature")))
	case strings.Contains(msg, "Transaction confirmed"):
		return fmt.Sprintf("✅ %s confirmed: %s", field(fields, "kind"), shortenSignature(field(fields, "signature")))
	case strings.Contains(msg, "Token created"):
		return fmt.Sprintf("🪙 Token created: %s", shortenAddress(field(fields, "mint")))
	case strings.Contains(msg, "Wallet declined to sign"):
		return "✋ Signing declined"
	case strings.Contains(msg, "Confirmation timed out"):
		return fmt.Sprintf("⏳ Not confirmed in time: %s", shortenSignature(field(fields, "signature")))
	case strings.Contains(msg, "Airdrop confirmed"):
		return fmt.Sprintf("💧 Airdrop confirmed: %s SOL", field(fields, "amount"))
	default:
		return msg
	}
}

func field(fields map[string]interface{}, key string) string {
	if v, ok := fields[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func shortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

func shortenSignature(sig string) string {
	if len(sig) > 16 {
		return sig[:8] + "..." + sig[len(sig)-8:]
	}
	return sig
}

// FieldFilterCore wraps a zapcore.Core and drops every field not in keptFields.
type FieldFilterCore struct {
	core zapcore.Core
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &FieldFilterCore{core: c.core.With(filterFields(fields))}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.core.Write(entry, filterFields(fields))
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}

func filterFields(fields []zapcore.Field) []zapcore.Field {
	var kept []zapcore.Field
	for _, f := range fields {
		if keptFields[f.Key] {
			kept = append(kept, f)
		}
	}
	return kept
}
