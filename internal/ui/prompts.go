package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the user interrupts a prompt.
var ErrCancelled = errors.New("cancelled")

// IsInteractive reports whether f is a terminal a prompt can be shown on.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AskConfirm prompts for yes/no confirmation
func AskConfirm(prompt string, defaultYes bool) (bool, error) {
	def := "n"
	if defaultYes {
		def = "y"
	}

	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
		Default:   def,
	}

	_, err := p.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, ErrCancelled
	default:
		return false, err
	}
}

// AskSelect prompts for single selection
func AskSelect(prompt string, choices []string) (int, string, error) {
	if len(choices) == 0 {
		return -1, "", fmt.Errorf("nothing to select")
	}

	s := promptui.Select{
		Label: prompt,
		Items: choices,
	}

	idx, value, err := s.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return -1, "", ErrCancelled
		}
		return -1, "", err
	}
	return idx, value, nil
}
