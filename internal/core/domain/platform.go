package domain

import (
	"os"
	"runtime"
	"strconv"
)

// Platform describes the host the build runs on.
type Platform struct {
	OS            string
	Arch          string
	PathSeparator rune
	Is64Bit       bool
}

// HostPlatform returns the Platform of the running process.
func HostPlatform() Platform {
	return Platform{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		PathSeparator: os.PathSeparator,
		Is64Bit:       strconv.IntSize == 64,
	}
}

// IsWindows reports whether the platform is Windows.
func (p Platform) IsWindows() bool { return p.OS == "windows" }

// IsDarwin reports whether the platform is macOS.
func (p Platform) IsDarwin() bool { return p.OS == "darwin" }

// Path returns a path Value normalized for this platform.
func (p Platform) Path(path string) Value {
	return Path(path, p.PathSeparator)
}

// Normalize converts path to forward slashes for this platform.
func (p Platform) Normalize(path string) string {
	return NormalizePath(path, p.PathSeparator)
}
