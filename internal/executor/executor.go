package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// Execute runs a shell command attached to the terminal. Debug output goes to
// the logger carried by ctx, if any.
func Execute(ctx context.Context, command string) error {
	return Run(ctx, command, os.Stdin, os.Stdout, os.Stderr)
}

// Run runs a shell command with the given stdio
func Run(ctx context.Context, command string, stdin io.Reader, stdout, stderr io.Writer) error {
	log := zerolog.Ctx(ctx)

	shell, args := Shell(runtime.GOOS, os.Getenv)
	log.Debug().Str("shell", shell).Str("command", command).Msg("executing command")

	cmd := exec.CommandContext(ctx, shell, append(args, command)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Debug().Int("exit_code", exitErr.ExitCode()).Msg("command failed")
		} else {
			log.Debug().Err(err).Msg("command failed")
		}
		return fmt.Errorf("command failed: %w", err)
	}

	log.Debug().Msg("command completed successfully")
	return nil
}

// Shell returns the interpreter and the flag that precedes the command
func Shell(goos string, getenv func(string) string) (string, []string) {
	if goos == "windows" {
		shell := getenv("COMSPEC")
		if shell == "" {
			shell = "cmd"
		}
		return shell, []string{"/C"}
	}
	shell := getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return shell, []string{"-c"}
}
