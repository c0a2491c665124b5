package hook

import "github.com/qpmx-labs/qpmx-setup/internal/platform"

// Installer value keys read from the host.
const (
	KeyOS        = "os"
	KeyAllUsers  = "allUsers"
	KeyTargetDir = "TargetDir"
)

// Values is the read side of the host installer: a key-value lookup that
// returns "" for unset keys.
type Values interface {
	Value(key string) string
}

// Context carries everything Plan needs to decide.
type Context struct {
	OS        platform.OS
	AllUsers  bool
	TargetDir string
}

// ContextFrom reads a Context from installer values. The OS identifier is
// kept verbatim and the all-users flag is only set by the exact string
// "true".
func ContextFrom(v Values) Context {
	return Context{
		OS:        platform.OS(v.Value(KeyOS)),
		AllUsers:  v.Value(KeyAllUsers) == "true",
		TargetDir: v.Value(KeyTargetDir),
	}
}

// Vars returns the placeholder substitutions the context provides.
func (c Context) Vars() map[string]string {
	return map[string]string{
		KeyTargetDir: c.TargetDir,
	}
}

// MapValues adapts a plain map to Values.
type MapValues map[string]string

// Value implements Values.
func (m MapValues) Value(key string) string { return m[key] }
