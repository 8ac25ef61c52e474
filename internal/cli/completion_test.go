package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/whiskeyjimb/espim/internal/config"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateState(t)
	root := NewRootCommand(config.DefaultConfig())

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestCompletionCommand_Bash(t *testing.T) {
	output, err := runRoot(t, "completion", "bash")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(output, "bash") && !strings.Contains(output, "complete") {
		t.Errorf("expected bash completion script, got: %s", output[:min(200, len(output))])
	}
}

func TestCompletionCommand_Zsh(t *testing.T) {
	output, err := runRoot(t, "completion", "zsh")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(output) == 0 {
		t.Error("expected non-empty zsh completion output")
	}
}

func TestCompletionCommand_Fish(t *testing.T) {
	output, err := runRoot(t, "completion", "fish")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(output) == 0 {
		t.Error("expected non-empty fish completion output")
	}
}

func TestCompletionCommand_InvalidShell(t *testing.T) {
	if _, err := runRoot(t, "completion", "invalid"); err == nil {
		t.Error("expected error for invalid shell")
	}
}

func TestCompletionCommand_NoArgs(t *testing.T) {
	if _, err := runRoot(t, "completion"); err == nil {
		t.Error("expected error when no shell specified")
	}
}

func TestOutputFlagCompletion(t *testing.T) {
	output, err := runRoot(t, "__complete", "list", "--output", "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"table", "json", "yaml"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q among --output completions: %s", want, output)
		}
	}
}
