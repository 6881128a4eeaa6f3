package prompts

import (
	"os"

	"github.com/charmbracelet/huh"
)

// PromptConfirm asks a yes/no question.
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	confirm := defaultValue

	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()

	return confirm, err
}

// Interactive reports whether stdin is a terminal, so a prompt can be
// answered.
func Interactive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
