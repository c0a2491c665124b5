package hook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qpmx-labs/qpmx-setup/internal/branding"
	"github.com/qpmx-labs/qpmx-setup/internal/platform"
)

// TargetDirVar is the placeholder the host substitutes with the chosen
// installation directory.
const TargetDirVar = "@" + KeyTargetDir + "@"

// ErrUnknownVariant is returned by ParseVariant.
var ErrUnknownVariant = errors.New("unknown hook variant")

// Variant selects between the two registration styles for non-Windows
// systems.
type Variant int

const (
	// VariantLink creates an elevated CreateLink operation on x11 only.
	VariantLink Variant = iota
	// VariantExec runs an elevated "ln -s" on every non-Windows system, but
	// only for all-users installs.
	VariantExec
)

func (v Variant) String() string {
	switch v {
	case VariantLink:
		return "link"
	case VariantExec:
		return "exec"
	default:
		return "unknown"
	}
}

// ParseVariant parses "link" or "exec". The empty string selects VariantLink.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "link":
		return VariantLink, nil
	case "exec":
		return VariantExec, nil
	default:
		return 0, fmt.Errorf("%w %q (expected \"link\" or \"exec\")", ErrUnknownVariant, s)
	}
}

// SystemLinkPath is the system-wide link created on Unix-like systems.
func SystemLinkPath() string {
	return "/usr/bin/" + branding.ToolName()
}

// InstalledBinary is the executable inside the target directory, still in
// placeholder form.
func InstalledBinary() string {
	return TargetDirVar + "/" + branding.ToolName()
}

// Plan returns the operations to register for ctx. It returns at most one
// operation and never touches the system.
func Plan(ctx Context, v Variant) []Operation {
	if ctx.OS.IsWindows() {
		args := []string{"cmd", "/c", "xset", "path", "%PATH%;" + TargetDirVar}
		if ctx.AllUsers {
			return []Operation{{Name: OpExecute, Args: append(args, "/M"), Elevated: true}}
		}
		return []Operation{{Name: OpExecute, Args: args}}
	}

	switch v {
	case VariantExec:
		if !ctx.AllUsers {
			return nil
		}
		return []Operation{{
			Name:     OpExecute,
			Args:     []string{"ln", "-s", InstalledBinary(), SystemLinkPath()},
			Elevated: true,
		}}
	default:
		if ctx.OS != platform.X11 {
			return nil
		}
		return []Operation{{
			Name:     OpCreateLink,
			Args:     []string{SystemLinkPath(), InstalledBinary()},
			Elevated: true,
		}}
	}
}
