// Package qbs holds the qbs build-system integration: the base argument list
// qbs passes to every qpmx invocation, the per-profile init steps, discovery
// of profiles and qmake inside a qbs settings tree, and generation of the
// qpmx and qpmx.global qbs modules.
package qbs
