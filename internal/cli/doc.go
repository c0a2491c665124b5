// Package cli defines the Cobra command tree for qpmx-setup. Each file
// registers one top-level command with the root command. Commands delegate
// to internal packages for the work and only handle flags, output and the
// best-effort error policy of the installer hook.
package cli
