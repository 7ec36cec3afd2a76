package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"

	"github.com/adelmans/zev/internal/executor"
	"github.com/adelmans/zev/internal/llm"
)

const cancelOption = "Cancel"

// NoCommandsMessage is shown when a response carries no commands to pick from
const NoCommandsMessage = "No commands available"

// Selector presents model suggestions and acts on the one the user picks.
// The function fields are the terminal collaborators, replaceable in tests.
type Selector struct {
	Out         io.Writer
	Interactive bool

	Menu    func(message string, options []string) (int, error)
	Confirm func(message string, def bool) (bool, error)
	Copy    func(text string) error
	Run     func(ctx context.Context, command string) error
}

// NewSelector returns a Selector wired to the real terminal and clipboard
func NewSelector() *Selector {
	return &Selector{
		Out:         os.Stdout,
		Interactive: IsInteractive(),
		Menu:        ShowMenu,
		Confirm:     Confirm,
		Copy:        clipboard.WriteAll,
		Run:         executor.Execute,
	}
}

// SelectOption lets the user pick one of resp's commands and handles it.
// Cancel and Ctrl-C both end the selection without error.
func (s *Selector) SelectOption(ctx context.Context, resp *llm.OptionsResponse) error {
	if resp == nil || len(resp.Commands) == 0 {
		fmt.Fprintln(s.Out, NoCommandsMessage)
		return nil
	}

	if !s.Interactive {
		s.listCommands(resp.Commands)
		return nil
	}

	labels := make([]string, 0, len(resp.Commands)+1)
	for _, c := range resp.Commands {
		labels = append(labels, commandLabel(c))
	}
	labels = append(labels, cancelOption)

	idx, err := s.Menu("Select command:", labels)
	if err != nil {
		if IsInterrupt(err) {
			return nil
		}
		return fmt.Errorf("failed to get selection: %w", err)
	}
	if idx < 0 || idx >= len(resp.Commands) {
		return nil
	}

	return s.HandleSelected(ctx, resp.Commands[idx])
}

// HandleSelected warns about dangerous commands, then copies the command to
// the clipboard. If the clipboard is unavailable it offers to run it instead.
func (s *Selector) HandleSelected(ctx context.Context, c llm.Command) error {
	if c.IsDangerous {
		note := c.DangerNote()
		if note == "" {
			note = "This command can cause irreversible changes."
		}
		color.New(color.FgRed, color.Bold).Fprintf(s.Out, "Warning: %s\n", note)
	}

	err := s.Copy(c.Command)
	if err == nil {
		color.New(color.FgGreen).Fprintln(s.Out, "✓ Copied to clipboard")
		return nil
	}
	color.New(color.FgRed).Fprintf(s.Out, "Could not copy to clipboard: %v\n", err)

	color.New(color.FgCyan, color.Bold).Fprintf(s.Out, "\n  %s\n\n", c.Command)

	run, err := s.Confirm("Would you like to run this command now?", false)
	if err != nil {
		if IsInterrupt(err) {
			return nil
		}
		return fmt.Errorf("failed to get confirmation: %w", err)
	}
	if !run {
		return nil
	}
	return s.Run(ctx, c.Command)
}

func (s *Selector) listCommands(commands []llm.Command) {
	for i, c := range commands {
		fmt.Fprintf(s.Out, "%d. %s\n", i+1, commandLabel(c))
		if c.IsDangerous && c.DangerNote() != "" {
			fmt.Fprintf(s.Out, "   Warning: %s\n", c.DangerNote())
		}
	}
}

func commandLabel(c llm.Command) string {
	label := c.Command
	if c.ShortExplanation != "" {
		label += " - " + c.ShortExplanation
	}
	if c.IsDangerous {
		return color.RedString(label)
	}
	return label
}
