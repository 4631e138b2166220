package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesDailyJSONFile(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	root := t.TempDir()
	log, err := New(root, "warn", false)
	if err != nil {
		t.Fatal(err)
	}
	log.Infow("hidden")
	log.Warnw("shown", "slug", "acme")
	_ = log.Sync()

	path := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+".log")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") || strings.Contains(out, "logger online") {
		t.Fatalf("info lines leaked at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"slug":"acme"`) {
		t.Fatalf("missing warn line: %s", out)
	}
	if zap.L().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("global logger should be the warn-level one")
	}
}

func TestSetLevelAppliesToBuiltLogger(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	Console("error")
	if zap.L().Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn enabled at error level")
	}
	if !SetLevel("debug") {
		t.Fatal("SetLevel should report a change")
	}
	if !zap.L().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug not enabled after SetLevel")
	}
	if SetLevel("debug") {
		t.Fatal("same level should report no change")
	}
}
