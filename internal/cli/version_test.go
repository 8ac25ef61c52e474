package cli

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/whiskeyjimb/espim/internal/meta"
)

func TestVersionCommand(t *testing.T) {
	output, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(output, meta.AppName) || !strings.Contains(output, meta.Version) {
		t.Errorf("expected app name and version, got: %s", output)
	}
}

func TestVerboseFlagRaisesLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	if _, err := runRoot(t, "-vv", "version"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("expected debug level for -vv, got %s", got)
	}

	if _, err := runRoot(t, "version"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Errorf("expected warn level by default, got %s", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runRoot(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}
