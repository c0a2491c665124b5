package qbs

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

//go:embed templates/qpmx.qbs
var qpmxModuleTemplate string

// Module directory names below a profile's modules directory.
const (
	QpmxModuleDir   = "qpmx"
	GlobalModuleDir = "qpmx/global"
	DepsModuleDir   = "qpmx-deps"
	moduleFile      = "module.qbs"
)

// WriteQpmxModule writes <modRoot>/qpmx/module.qbs for version. An existing
// module with the same version is left alone; the return value reports
// whether the file was written.
func WriteQpmxModule(modRoot string, version *semver.Version) (bool, error) {
	dir := filepath.Join(modRoot, QpmxModuleDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("creating qpmx module dir in %s: %w", modRoot, err)
	}

	path := filepath.Join(dir, moduleFile)
	if existing, err := ReadModuleVersion(path); err == nil && existing.Equal(version) {
		return false, nil
	}

	content := strings.ReplaceAll(qpmxModuleTemplate, "%{version}", version.String())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// WriteGlobalModule writes <modRoot>/qpmx/global/module.qbs pointing at
// cacheDir, plus an empty marker file named after kitID. When the marker
// already exists nothing is written; when another kit's module is present
// the directory is recreated.
func WriteGlobalModule(modRoot, kitID, cacheDir string, version *semver.Version) (bool, error) {
	if kitID == "" || strings.ContainsAny(kitID, `/\`) {
		return false, fmt.Errorf("invalid kit id %q", kitID)
	}

	dir := filepath.Join(modRoot, filepath.FromSlash(GlobalModuleDir))
	marker := filepath.Join(dir, kitID)
	if _, err := os.Stat(marker); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking kit marker: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("removing old qpmx.global module: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("creating qpmx.global module dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("import qbs\n\n")
	b.WriteString("Module {\n")
	fmt.Fprintf(&b, "\tversion: %q\n", version.String())
	fmt.Fprintf(&b, "\treadonly property string cacheDir: %q\n", filepath.ToSlash(cacheDir))
	b.WriteString("}\n")

	path := filepath.Join(dir, moduleFile)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return true, fmt.Errorf("writing kit marker: %w", err)
	}
	return true, nil
}

// RemoveModules deletes the qpmx and qpmx-deps module directories of a
// profile, used when regenerating from scratch.
func RemoveModules(modRoot string) error {
	for _, name := range []string{QpmxModuleDir, DepsModuleDir} {
		if err := os.RemoveAll(filepath.Join(modRoot, name)); err != nil {
			return fmt.Errorf("removing %s module: %w", name, err)
		}
	}
	return nil
}

// EncodePackage turns a package name into a qbs-safe identity: the name is
// percent-encoded like encodeURIComponent, dots become "%2E", and every "%"
// is then replaced by ".".
func EncodePackage(name string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '.':
			b.WriteString("%2E")
		case isUnreserved(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return strings.ReplaceAll(b.String(), "%", ".")
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_!~*'()", c) >= 0
}

// ModuleName returns the qbs module name of a package dependency,
// "<identity>@<version>" with every dot replaced by an underscore.
func ModuleName(pkg, version string) string {
	return strings.ReplaceAll(EncodePackage(pkg)+"@"+version, ".", "_")
}
