// Package hook decides which post-install operation makes the qpmx
// executable reachable from the command line, and registers it with the
// installer component that hosts the hook.
//
// Deciding and registering are kept apart: Plan is a pure function of an
// explicit Context, while Register and CreateOperations talk to the host.
// Registration failures never abort an installation; CreateOperations logs
// them and returns.
package hook
