package plugin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer prints the prompt and approves only a literal "y".
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm reads one line from In.
func (c PromptConfirmer) Confirm(prompt string) (bool, error) {
	_, _ = fmt.Fprintln(c.Out, prompt)

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}

// AssumeYes approves without asking.
type AssumeYes struct{}

// Confirm always returns true.
func (AssumeYes) Confirm(string) (bool, error) {
	return true, nil
}
