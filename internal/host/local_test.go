package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/qpmx-labs/qpmx-setup/internal/hook"
	"github.com/qpmx-labs/qpmx-setup/internal/platform"
)

type execCall struct {
	name string
	args []string
}

type linkCall struct {
	target, link string
}

func newTestLocal(t *testing.T, ctx hook.Context, elevated bool) (*Local, *[]execCall, *[]linkCall) {
	t.Helper()
	var execs []execCall
	var links []linkCall
	l := NewLocal(ctx, log.New(&bytes.Buffer{}))
	l.Elevated = func() bool { return elevated }
	l.execCommand = func(_ context.Context, name string, args []string, _, _ io.Writer) error {
		execs = append(execs, execCall{name: name, args: args})
		return nil
	}
	l.createLink = func(target, link string) error {
		links = append(links, linkCall{target: target, link: link})
		return nil
	}
	return l, &execs, &links
}

func TestLocalCreateLink(t *testing.T) {
	target := t.TempDir()
	ctx := hook.Context{OS: platform.X11, TargetDir: target}
	l, execs, links := newTestLocal(t, ctx, true)

	if _, err := hook.Run(l, ctx, hook.VariantLink); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := l.Apply(context.Background()); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if len(*execs) != 0 {
		t.Errorf("unexpected exec calls: %v", *execs)
	}
	want := []linkCall{{target: target + "/qpmx", link: "/usr/bin/qpmx"}}
	if !reflect.DeepEqual(*links, want) {
		t.Errorf("links = %v, want %v", *links, want)
	}
	if len(l.Pending()) != 0 {
		t.Error("queue not cleared by Apply")
	}
}

func TestLocalExecuteWindowsUser(t *testing.T) {
	target := t.TempDir()
	ctx := hook.Context{OS: platform.Windows, TargetDir: target}
	l, execs, _ := newTestLocal(t, ctx, false)

	if _, err := hook.Run(l, ctx, hook.VariantLink); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := l.Apply(context.Background()); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	want := []execCall{{name: "cmd", args: []string{"/c", "xset", "path", "%PATH%;" + target}}}
	if !reflect.DeepEqual(*execs, want) {
		t.Errorf("execs = %v, want %v", *execs, want)
	}
}

func TestLocalRejectsElevatedWithoutPrivileges(t *testing.T) {
	target := t.TempDir()
	ctx := hook.Context{OS: platform.X11, AllUsers: true, TargetDir: target}
	l, _, _ := newTestLocal(t, ctx, false)

	_, err := hook.Run(l, ctx, hook.VariantExec)
	if !errors.Is(err, ErrNotElevated) {
		t.Errorf("Run() = %v, want ErrNotElevated", err)
	}
	if len(l.Pending()) != 0 {
		t.Error("rejected operation was queued")
	}
}

func TestLocalMissingTargetDir(t *testing.T) {
	ctx := hook.Context{OS: platform.X11, TargetDir: filepath.Join(t.TempDir(), "absent")}
	l, _, _ := newTestLocal(t, ctx, true)
	if err := l.CreateOperations(); err == nil {
		t.Error("expected error for missing target dir")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	l, _, _ = newTestLocal(t, hook.Context{TargetDir: file}, true)
	if err := l.CreateOperations(); err == nil {
		t.Error("expected error for file target")
	}

	l, _, _ = newTestLocal(t, hook.Context{}, true)
	if err := l.CreateOperations(); err == nil {
		t.Error("expected error for empty target")
	}
}

func TestLocalUnsupportedOperation(t *testing.T) {
	l, _, _ := newTestLocal(t, hook.Context{}, true)
	if err := l.AddOperation("Copy", "a", "b"); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("AddOperation(Copy) = %v, want ErrUnsupportedOperation", err)
	}
	if err := l.AddOperation(hook.OpExecute); err == nil {
		t.Error("Execute without command accepted")
	}
	if err := l.AddOperation(hook.OpCreateLink, "only-one"); err == nil {
		t.Error("CreateLink with one argument accepted")
	}
}

func TestLocalApplyStopsOnFailure(t *testing.T) {
	l, execs, _ := newTestLocal(t, hook.Context{}, true)
	l.execCommand = func(_ context.Context, name string, args []string, _, _ io.Writer) error {
		*execs = append(*execs, execCall{name: name, args: args})
		return errors.New("exit 1")
	}
	_ = l.AddOperation(hook.OpExecute, "first")
	_ = l.AddOperation(hook.OpExecute, "second")

	if err := l.Apply(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(*execs) != 1 {
		t.Errorf("ran %d commands after failure, want 1", len(*execs))
	}
}

func TestLocalApplyRealSymlink(t *testing.T) {
	if !platform.IsSymlinkSupported() {
		t.Skip("native symlinks unavailable")
	}
	target := t.TempDir()
	bin := filepath.Join(target, "qpmx")
	if err := os.WriteFile(bin, []byte("bin"), 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(t.TempDir(), "bin", "qpmx")

	l := NewLocal(hook.Context{TargetDir: target}, log.New(&bytes.Buffer{}))
	l.Elevated = func() bool { return true }
	if err := l.AddElevatedOperation(hook.OpCreateLink, link, "@TargetDir@/qpmx"); err != nil {
		t.Fatal(err)
	}
	if err := l.Apply(context.Background()); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	got, err := os.Readlink(link)
	if err != nil {
		t.Fatal(err)
	}
	if got != target+"/qpmx" {
		t.Errorf("link target = %q, want %q", got, target+"/qpmx")
	}
}

func TestLocalCreateOperationsMarksExecutable(t *testing.T) {
	if filepath.Separator == '\\' {
		t.Skip("permission bits are not tracked on Windows")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "qpmx")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLocal(hook.Context{OS: platform.X11, TargetDir: dir}, nil)
	if err := l.CreateOperations(); err != nil {
		t.Fatalf("CreateOperations() error: %v", err)
	}
	info, err := os.Stat(bin)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}
