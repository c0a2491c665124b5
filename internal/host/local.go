package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/qpmx-labs/qpmx-setup/internal/branding"
	"github.com/qpmx-labs/qpmx-setup/internal/hook"
	"github.com/qpmx-labs/qpmx-setup/internal/platform"
)

var (
	// ErrNotElevated is returned when an elevated operation is registered by
	// a process without administrative privileges.
	ErrNotElevated = errors.New("operation requires elevated privileges")
	// ErrUnsupportedOperation is returned for operation names Local cannot
	// perform.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Local is a hook.Component for the machine the CLI runs on. Operations are
// validated when registered and performed by Apply.
type Local struct {
	ctx    hook.Context
	queue  []hook.Operation
	logger *log.Logger

	// Elevated reports whether the process may perform elevated operations.
	Elevated func() bool
	// Stdout and Stderr receive the output of executed commands; defaults
	// to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	execCommand func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
	createLink  func(target, link string) error
}

// NewLocal returns a Local host for ctx.
func NewLocal(ctx hook.Context, logger *log.Logger) *Local {
	if logger == nil {
		logger = log.Default()
	}
	return &Local{
		ctx:         ctx,
		logger:      logger,
		Elevated:    platform.IsElevated,
		execCommand: runCommand,
		createLink:  platform.CreateSymlink,
	}
}

// CreateOperations implements hook.Component. The default steps check that
// the target directory exists and mark an installed qpmx executable as
// executable.
func (l *Local) CreateOperations() error {
	if l.ctx.TargetDir == "" {
		return errors.New("target directory is not set")
	}
	info, err := os.Stat(l.ctx.TargetDir)
	if err != nil {
		return fmt.Errorf("checking target directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target %s is not a directory", l.ctx.TargetDir)
	}

	bin := filepath.Join(l.ctx.TargetDir, branding.ToolName())
	if _, err := os.Stat(bin); err == nil {
		if err := platform.Chmod(bin, 0755); err != nil {
			return fmt.Errorf("making %s executable: %w", bin, err)
		}
	}
	return nil
}

// AddOperation implements hook.Component.
func (l *Local) AddOperation(name string, args ...string) error {
	return l.enqueue(hook.Operation{Name: name, Args: args})
}

// AddElevatedOperation implements hook.Component.
func (l *Local) AddElevatedOperation(name string, args ...string) error {
	return l.enqueue(hook.Operation{Name: name, Args: args, Elevated: true})
}

func (l *Local) enqueue(op hook.Operation) error {
	switch op.Name {
	case hook.OpExecute:
		if len(op.Args) == 0 {
			return fmt.Errorf("%s: no command given", op.Name)
		}
	case hook.OpCreateLink:
		if len(op.Args) != 2 {
			return fmt.Errorf("%s: want 2 arguments, got %d", op.Name, len(op.Args))
		}
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedOperation, op.Name)
	}
	if op.Elevated && !l.Elevated() {
		return fmt.Errorf("%s: %w (re-run as administrator or root)", op.Name, ErrNotElevated)
	}
	l.queue = append(l.queue, hook.Expand(op, l.ctx.Vars()))
	return nil
}

// Pending returns the queued, placeholder-expanded operations.
func (l *Local) Pending() []hook.Operation {
	return append([]hook.Operation(nil), l.queue...)
}

// Apply performs the queued operations in order and clears the queue. It
// stops at the first failure.
func (l *Local) Apply(ctx context.Context) error {
	queue := l.queue
	l.queue = nil
	for _, op := range queue {
		l.logger.Info("performing operation", "op", op.String())
		if err := l.perform(ctx, op); err != nil {
			return fmt.Errorf("performing %s: %w", op.Name, err)
		}
	}
	return nil
}

func (l *Local) perform(ctx context.Context, op hook.Operation) error {
	switch op.Name {
	case hook.OpExecute:
		return l.execCommand(ctx, op.Args[0], op.Args[1:], l.stdout(), l.stderr())
	case hook.OpCreateLink:
		return l.createLink(op.Args[1], op.Args[0])
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedOperation, op.Name)
	}
}

func (l *Local) stdout() io.Writer {
	if l.Stdout == nil {
		return os.Stdout
	}
	return l.Stdout
}

func (l *Local) stderr() io.Writer {
	if l.Stderr == nil {
		return os.Stderr
	}
	return l.Stderr
}

func runCommand(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d", name, exitErr.ExitCode())
		}
		return fmt.Errorf("executing %s: %w", name, err)
	}
	return nil
}
