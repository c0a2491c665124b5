package host

import "github.com/qpmx-labs/qpmx-setup/internal/hook"

// Recorder is a hook.Component that only records what was registered.
type Recorder struct {
	Ops             []hook.Operation
	DefaultsCreated bool
}

// CreateOperations implements hook.Component.
func (r *Recorder) CreateOperations() error {
	r.DefaultsCreated = true
	return nil
}

// AddOperation implements hook.Component.
func (r *Recorder) AddOperation(name string, args ...string) error {
	r.add(name, args, false)
	return nil
}

// AddElevatedOperation implements hook.Component.
func (r *Recorder) AddElevatedOperation(name string, args ...string) error {
	r.add(name, args, true)
	return nil
}

func (r *Recorder) add(name string, args []string, elevated bool) {
	r.Ops = append(r.Ops, hook.Operation{
		Name:     name,
		Args:     append([]string(nil), args...),
		Elevated: elevated,
	})
}
