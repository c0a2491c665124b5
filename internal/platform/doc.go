// Package platform maps the host operating system onto the installer's OS
// identifiers and provides the filesystem and privilege primitives the
// installer hook needs: symlink creation, permission bits, and elevation
// detection. On Windows, symlinks fall back to copying the target when
// developer mode is unavailable.
package platform
