package hook

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Component is the write side of the host installer component.
type Component interface {
	// CreateOperations registers the component's default operations.
	CreateOperations() error
	AddOperation(name string, args ...string) error
	AddElevatedOperation(name string, args ...string) error
}

// Register adds ops to c in order, stopping at the first failure.
func Register(c Component, ops []Operation) error {
	for _, op := range ops {
		var err error
		if op.Elevated {
			err = c.AddElevatedOperation(op.Name, op.Args...)
		} else {
			err = c.AddOperation(op.Name, op.Args...)
		}
		if err != nil {
			return fmt.Errorf("registering %s operation: %w", op.Name, err)
		}
	}
	return nil
}

// Run creates the component's default operations, then plans and registers
// the hook operations. A panic raised by the host is returned as an error.
func Run(c Component, ctx Context, v Variant) (ops []Operation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("installer hook panicked: %v", r)
		}
	}()

	if err := c.CreateOperations(); err != nil {
		return nil, fmt.Errorf("creating default operations: %w", err)
	}
	ops = Plan(ctx, v)
	if err := Register(c, ops); err != nil {
		return ops, err
	}
	return ops, nil
}

// CreateOperations is the hook entry point. Failures are logged and never
// propagated, so the surrounding installation always continues.
func CreateOperations(c Component, ctx Context, v Variant, logger *log.Logger) {
	ops, err := Run(c, ctx, v)
	if err != nil {
		logger.Error("installer hook failed", "os", ctx.OS, "allUsers", ctx.AllUsers, "err", err)
		return
	}
	if len(ops) == 0 {
		logger.Debug("no operation required", "os", ctx.OS, "allUsers", ctx.AllUsers, "variant", v)
		return
	}
	for _, op := range ops {
		logger.Debug("registered operation", "op", op.String())
	}
}
