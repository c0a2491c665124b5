package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeTarget(t *testing.T, dir string) string {
	t.Helper()
	target := filepath.Join(dir, "qpmx")
	if err := os.WriteFile(target, []byte("binary"), 0755); err != nil {
		t.Fatal(err)
	}
	return target
}

func TestCreateSymlink(t *testing.T) {
	tmp := t.TempDir()
	target := writeTarget(t, tmp)

	link := filepath.Join(tmp, "usr", "bin", "qpmx")
	if err := CreateSymlink(target, link); err != nil {
		t.Fatalf("CreateSymlink failed: %v", err)
	}

	data, err := os.ReadFile(link)
	if err != nil {
		t.Fatalf("reading link: %v", err)
	}
	if string(data) != "binary" {
		t.Errorf("link content = %q, want %q", string(data), "binary")
	}
}

func TestCreateSymlinkIdempotent(t *testing.T) {
	if !IsSymlinkSupported() {
		t.Skip("native symlinks unavailable")
	}
	tmp := t.TempDir()
	target := writeTarget(t, tmp)
	link := filepath.Join(tmp, "link")

	if err := CreateSymlink(target, link); err != nil {
		t.Fatal(err)
	}
	if err := CreateSymlink(target, link); err != nil {
		t.Errorf("second CreateSymlink = %v, want nil", err)
	}
}

func TestCreateSymlinkOccupied(t *testing.T) {
	tmp := t.TempDir()
	target := writeTarget(t, tmp)
	link := filepath.Join(tmp, "occupied")
	if err := os.WriteFile(link, []byte("other"), 0644); err != nil {
		t.Fatal(err)
	}

	err := CreateSymlink(target, link)
	if !errors.Is(err, ErrLinkExists) {
		t.Errorf("CreateSymlink over a file = %v, want ErrLinkExists", err)
	}
}

func TestCreateSymlinkOtherTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires native symlinks")
	}
	tmp := t.TempDir()
	target := writeTarget(t, tmp)
	link := filepath.Join(tmp, "link")
	if err := os.Symlink(filepath.Join(tmp, "elsewhere"), link); err != nil {
		t.Fatal(err)
	}

	if err := CreateSymlink(target, link); !errors.Is(err, ErrLinkExists) {
		t.Errorf("CreateSymlink = %v, want ErrLinkExists", err)
	}
}

func TestRemoveSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires native symlinks")
	}
	tmp := t.TempDir()
	target := writeTarget(t, tmp)
	link := filepath.Join(tmp, "link")
	if err := CreateSymlink(target, link); err != nil {
		t.Fatal(err)
	}

	if err := RemoveSymlink(target, link); err != nil {
		t.Fatalf("RemoveSymlink failed: %v", err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Error("link still exists after RemoveSymlink")
	}
	if err := RemoveSymlink(target, link); err != nil {
		t.Errorf("RemoveSymlink on missing link = %v, want nil", err)
	}
}

func TestRemoveSymlinkWrongTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires native symlinks")
	}
	tmp := t.TempDir()
	target := writeTarget(t, tmp)
	link := filepath.Join(tmp, "link")
	if err := os.Symlink(filepath.Join(tmp, "elsewhere"), link); err != nil {
		t.Fatal(err)
	}

	if err := RemoveSymlink(target, link); err == nil {
		t.Error("expected error removing a link to a different target")
	}
	if _, err := os.Lstat(link); err != nil {
		t.Error("foreign link was removed")
	}
}

func TestIsSymlinkSupported(t *testing.T) {
	if runtime.GOOS != "windows" && !IsSymlinkSupported() {
		t.Error("IsSymlinkSupported returned false on Unix")
	}
}
