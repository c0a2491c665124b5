// Package manifest loads installer value files: YAML documents that stand in
// for a live installer and carry the os, allUsers and TargetDir values the
// hook reads. Files are validated against an embedded JSON schema before
// they are decoded.
package manifest
