package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// ErrLinkExists is returned when the link path is occupied by something that
// does not already point at the requested target.
var ErrLinkExists = errors.New("link path already exists")

// CreateSymlink creates link pointing to target, creating the link's parent
// directory if needed. An existing link to the same target is accepted.
// On Windows, if native symlinks are unavailable (developer mode disabled),
// the target file is copied into place instead.
func CreateSymlink(target, link string) error {
	if current, err := ReadSymlinkTarget(link); err == nil {
		if current == target {
			return nil
		}
		return fmt.Errorf("%s -> %s: %w", link, current, ErrLinkExists)
	}
	if _, err := os.Lstat(link); err == nil {
		return fmt.Errorf("%s: %w", link, ErrLinkExists)
	}

	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return fmt.Errorf("creating link directory: %w", err)
	}

	err := os.Symlink(target, link)
	if err == nil || runtime.GOOS != "windows" {
		return err
	}

	if err := copyExecutable(target, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}
	return nil
}

// RemoveSymlink removes link if it is a symlink to target. It is not an
// error if link does not exist.
func RemoveSymlink(target, link string) error {
	current, err := ReadSymlinkTarget(link)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if current != target {
		return fmt.Errorf("%s points to %s, not %s", link, current, target)
	}
	return os.Remove(link)
}

// ReadSymlinkTarget returns the target of a symlink.
func ReadSymlinkTarget(path string) (string, error) {
	return os.Readlink(path)
}

// IsSymlinkSupported returns true if the current platform supports native symlinks.
// On Windows this attempts a test symlink to check developer mode.
func IsSymlinkSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}

	tmpDir := os.TempDir()
	link := filepath.Join(tmpDir, ".qpmx-symlink-test")
	defer os.Remove(link)

	return os.Symlink(tmpDir, link) == nil
}

func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0755)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
