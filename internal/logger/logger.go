// internal/logger/logger.go
//
// zap loggers for the two binaries.
//
// Context
// -------
// cmd/web logs JSON to `<root>/logs/<date>.log` through a lumberjack sink
// that rotates at 50 MB and prunes after two weeks.  On a terminal the same
// events are echoed in colour.  cmd/sitectl only needs stderr, which is
// what Console gives it.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
//	log.Infow("site resolved", "slug", slug)
//
// Both constructors call zap.ReplaceGlobals, so packages log via zap.S()
// or zap.L() without having a logger passed in.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// atom is the level shared by every logger built here.  SetLevel moves it.
var atom = zap.NewAtomicLevel()

// New builds the server logger.  level is debug, info, warn, or error;
// anything else means info.  tee adds the coloured stdout core.
func New(rootDir, level string, tee bool) (*zap.SugaredLogger, error) {
	dir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, time.Now().Format(time.DateOnly)+".log"),
		MaxSize:    50,
		MaxBackups: 7,
		MaxAge:     14,
		Compress:   true,
	}

	atom.SetLevel(ParseLevel(level))
	encCfg := encoderConfig()

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(sink), atom),
	}
	if tee {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(os.Stdout),
			atom,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(zapcore.AddSync(sink))).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", tee, "level", atom.String())
	return z, nil
}

// Console returns a stderr-only console logger and installs it globally.
func Console(level string) *zap.SugaredLogger {
	atom.SetLevel(ParseLevel(level))
	z := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stderr),
		atom,
	)).Sugar()
	zap.ReplaceGlobals(z.Desugar())
	return z
}

// SetLevel changes the level of loggers already built.  It reports whether
// the level changed.
func SetLevel(level string) bool {
	lvl := ParseLevel(level)
	if atom.Level() == lvl {
		return false
	}
	atom.SetLevel(lvl)
	return true
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}
