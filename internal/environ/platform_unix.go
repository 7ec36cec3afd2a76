//go:build unix

package environ

import (
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// Platform returns "<kernel>-<release>-<machine>", e.g. Linux-6.8.0-x86_64
func Platform() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return fallbackPlatform()
	}
	parts := []string{unix.ByteSliceToString(u.Sysname[:]), unix.ByteSliceToString(u.Release[:]), unix.ByteSliceToString(u.Machine[:])}
	if parts[0] == "" {
		return fallbackPlatform()
	}
	return strings.Join(nonEmpty(parts), "-")
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fallbackPlatform() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}
