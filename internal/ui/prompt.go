package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin is a terminal that can drive menus
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsInterrupt reports whether err is the user pressing Ctrl-C in a prompt
func IsInterrupt(err error) bool {
	return errors.Is(err, terminal.InterruptErr)
}

// AskQuery prompts for the natural-language request
func AskQuery() (string, error) {
	var query string
	prompt := &survey.Input{
		Message: "Describe what you want to do:",
	}

	if err := survey.AskOne(prompt, &query, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return query, nil
}

// ShowMenu asks the user to pick one of options and returns its index
func ShowMenu(message string, options []string) (int, error) {
	var selected int
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return -1, err
	}

	return selected, nil
}

// Confirm asks a yes/no question
func Confirm(message string, def bool) (bool, error) {
	answer := def
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}

	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}

	return answer, nil
}

// AskInput prompts for a value, offering def as the default
func AskInput(message, def string, required bool) (string, error) {
	var value string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}

	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if err := survey.AskOne(prompt, &value, opts...); err != nil {
		return "", err
	}

	return value, nil
}

// AskSecret prompts for a hidden value. An empty answer keeps current.
func AskSecret(message, current string) (string, error) {
	var value string
	if current != "" {
		message += " (leave blank to keep the current one)"
	}
	prompt := &survey.Password{
		Message: message,
	}

	if err := survey.AskOne(prompt, &value); err != nil {
		return "", err
	}

	if value == "" {
		return current, nil
	}
	return value, nil
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowSection prints a bold heading
func ShowSection(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", title)
	fmt.Println()
}
