// Package prompt wraps the interactive terminal prompts used by the CLI.
package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/erikgeiser/promptkit"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/erikgeiser/promptkit/selection"
	"golang.org/x/term"

	"github.com/Paintersrp/mdw/internal/document"
)

// IsInteractive reports whether stdin is a terminal a prompt can read from.
// Test binaries never count as interactive.
func IsInteractive() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	return !strings.HasSuffix(filepath.Base(os.Args[0]), ".test")
}

// Confirm asks a yes/no question, defaulting to no. Aborting the prompt
// returns document.ErrCancelled.
func Confirm(question string) (bool, error) {
	input := confirmation.New(question, confirmation.No)

	ok, err := input.RunPrompt()
	if err != nil {
		return false, cancelled(err)
	}
	return ok, nil
}

// Select lets the user pick one of choices.
func Select(question string, choices []string) (string, error) {
	sel := selection.New(question, choices)
	sel.Filter = nil

	choice, err := sel.RunPrompt()
	if err != nil {
		return "", cancelled(err)
	}
	return choice, nil
}

func cancelled(err error) error {
	if errors.Is(err, promptkit.ErrAborted) {
		return document.ErrCancelled
	}
	return err
}
