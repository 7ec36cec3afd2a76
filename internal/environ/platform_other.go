//go:build !unix

package environ

import "runtime"

// Platform returns "<os>-<arch>", e.g. windows-amd64
func Platform() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}
