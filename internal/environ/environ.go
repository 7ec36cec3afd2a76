// Package environ describes the machine a command will run on, so the model
// can tailor its suggestions to the user's OS and shell.
package environ

import (
	"os"
	"strings"
)

// Context returns the environment description for the current process
func Context() string {
	return Describe(Platform(), os.Getenv)
}

// Describe renders "OS: <platform>" followed by ", SHELL: <path>" when SHELL,
// or on Windows COMSPEC, is set.
func Describe(platform string, getenv func(string) string) string {
	var b strings.Builder
	b.WriteString("OS: ")
	b.WriteString(platform)

	shell := getenv("SHELL")
	if shell == "" {
		shell = getenv("COMSPEC")
	}
	if shell != "" {
		b.WriteString(", SHELL: ")
		b.WriteString(shell)
	}
	return b.String()
}
