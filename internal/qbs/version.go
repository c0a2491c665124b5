package qbs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrVersionNotFound is returned when a module file has no version property.
var ErrVersionNotFound = errors.New("version property not found")

var moduleVersionRe = regexp.MustCompile(`version: "((?:\d|\.)*)"`)

// ParseVersion parses the output of "qbs --version". Only the first
// whitespace-separated field is considered.
func ParseVersion(output string) (*semver.Version, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty qbs version output")
	}
	v, err := semver.NewVersion(strings.TrimPrefix(fields[0], "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing qbs version %q: %w", fields[0], err)
	}
	return v, nil
}

// DetectVersion runs "<qbsPath> --version" and parses its output.
func DetectVersion(ctx context.Context, qbsPath string) (*semver.Version, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, qbsPath, "--version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("running qbs subprocess: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("running qbs subprocess: %w", err)
	}
	return ParseVersion(stdout.String())
}

// ReadModuleVersion returns the `version: "x.y.z"` property of a qbs module file.
func ReadModuleVersion(path string) (*semver.Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := moduleVersionRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		v, err := semver.NewVersion(m[1])
		if err != nil {
			return nil, fmt.Errorf("parsing module version %q in %s: %w", m[1], path, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w in %s", ErrVersionNotFound, path)
}
