package platform

import (
	"runtime"
	"strings"
)

// OS is an installer operating system identifier, as reported by the
// installer's "os" value.
type OS string

// Installer OS identifiers.
const (
	Windows OS = "win"
	X11     OS = "x11"
	Mac     OS = "mac"
)

// Current returns the identifier for the running system. Every non-Windows,
// non-macOS system reports X11.
func Current() OS {
	return fromGOOS(runtime.GOOS)
}

func fromGOOS(goos string) OS {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return Mac
	default:
		return X11
	}
}

// ParseOS normalizes an identifier. Go-style names ("windows", "linux",
// "darwin") are accepted as aliases; unknown values are kept verbatim so the
// hook can treat them as "other".
func ParseOS(s string) OS {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "win", "windows":
		return Windows
	case "x11", "linux":
		return X11
	case "mac", "darwin", "macos":
		return Mac
	default:
		return OS(v)
	}
}

// IsWindows reports whether o is the Windows identifier.
func (o OS) IsWindows() bool { return o == Windows }

func (o OS) String() string { return string(o) }
