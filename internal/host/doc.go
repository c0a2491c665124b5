// Package host provides hook.Component implementations: Recorder collects
// registered operations without side effects, and Local queues them and
// later applies them to the current machine.
package host
