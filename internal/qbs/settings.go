package qbs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

var (
	// ErrSettingsNotFound is returned when the versioned qbs settings
	// directory does not exist.
	ErrSettingsNotFound = errors.New("qbs settings directory not found")
	// ErrBinPathNotFound is returned when a profile's core.qbs carries no
	// binPath property.
	ErrBinPathNotFound = errors.New("binPath property not found in core.qbs")
	// ErrQmakeNotFound is returned when binPath holds no qmake executable.
	ErrQmakeNotFound = errors.New("qmake not found")
)

var binPathRe = regexp.MustCompile(`property path binPath: "([^"]*)"`)

// DefaultSettingsDir returns the Qt Creator settings directory that holds
// the qbs profiles.
func DefaultSettingsDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config directory: %w", err)
	}
	return filepath.Join(dir, "QtProject", "qtcreator"), nil
}

// ProfileDir returns <settingsDir>/qbs/<version> if it exists.
func ProfileDir(settingsDir, version string) (string, error) {
	dir := filepath.Join(settingsDir, "qbs", version)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s (specify it explicitly via --settings-dir)", ErrSettingsNotFound, dir)
	}
	return dir, nil
}

// FindProfiles lists the profile names under <profileDir>/profiles, sorted.
// A missing profiles directory yields no profiles.
func FindProfiles(profileDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(profileDir, "profiles"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading qbs profiles: %w", err)
	}

	var profiles []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			profiles = append(profiles, e.Name())
		}
	}
	sort.Strings(profiles)
	return profiles, nil
}

// ModulesDir returns the qbs modules directory of a profile.
func ModulesDir(profileDir, profile string) string {
	return filepath.Join(profileDir, "profiles", profile, "modules")
}

// FindQmake extracts the Qt binPath from the profile's Qt.core module and
// returns the qmake executable inside it.
func FindQmake(profileDir, profile string) (string, error) {
	coreFile := filepath.Join(ModulesDir(profileDir, profile), "Qt", "core", "core.qbs")
	f, err := os.Open(coreFile)
	if err != nil {
		return "", fmt.Errorf("opening Qt.core qbs module for profile %s: %w", profile, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := binPathRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		qmake, ok := findExecutable(m[1], "qmake")
		if !ok {
			return "", fmt.Errorf("%w in %s for profile %s", ErrQmakeNotFound, m[1], profile)
		}
		return qmake, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", coreFile, err)
	}
	return "", fmt.Errorf("%w: %s", ErrBinPathNotFound, coreFile)
}

func findExecutable(dir, name string) (string, bool) {
	candidates := []string{name}
	if runtime.GOOS == "windows" {
		candidates = []string{name + ".exe", name + ".bat", name}
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if runtime.GOOS == "windows" || info.Mode().Perm()&0111 != 0 {
			return path, true
		}
	}
	return "", false
}
