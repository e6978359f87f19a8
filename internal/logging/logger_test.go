package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("EVMOBF_LOG_LEVEL", "debug")
	t.Setenv("EVMOBF_LOG_PREFIX", "test")
	t.Setenv("EVMOBF_LOG_TO_FILE", "")

	s := FromEnv()
	if s.Level != log.DebugLevel || s.Prefix != "test" || s.ToFile {
		t.Errorf("FromEnv() = %+v", s)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("EVMOBF_LOG_LEVEL", "nonsense")
	t.Setenv("EVMOBF_LOG_PREFIX", "")
	t.Setenv("EVMOBF_LOG_TO_FILE", "1")

	s := FromEnv()
	if s.Level != log.WarnLevel || s.Prefix != "evmobf" || !s.ToFile {
		t.Errorf("FromEnv() = %+v", s)
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, Settings{Level: log.InfoLevel, Prefix: "evmobf"})
	lg.Debug("hidden")
	lg.Info("obfuscated", "sites", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, "obfuscated") || !strings.Contains(out, "sites=2") || !strings.Contains(out, "evmobf") {
		t.Errorf("unexpected log output %q", out)
	}
	if err := lg.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLatestFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := LatestFile(dir); err == nil {
		t.Error("LatestFile() expected error in empty dir")
	}
	for _, name := range []string{"evmobf-20260101-120000.log", "evmobf-20260102-080000.log", "other.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := LatestFile(dir)
	if err != nil {
		t.Fatalf("LatestFile() error = %v", err)
	}
	if filepath.Base(got) != "evmobf-20260102-080000.log" {
		t.Errorf("LatestFile() = %s", got)
	}
}
