//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // QPMX_HOME, holds config.yaml
	TargetDir   string // installation directory containing the qpmx executable
	SettingsDir string // Qt Creator settings root with qbs profiles
	ModulesDir  string // qbs modules directory for generated modules
}

// setupTestEnv creates isolated temp directories and sets environment
// variables so config lookups stay inside the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:     t.TempDir(),
		TargetDir:   t.TempDir(),
		SettingsDir: t.TempDir(),
		ModulesDir:  t.TempDir(),
	}
	t.Setenv("QPMX_HOME", env.HomeDir)

	writeFile(t, filepath.Join(env.TargetDir, "qpmx"), "#!/bin/sh\n")
	return env
}

// setupQbsSettings creates <settings>/qbs/<version>/profiles/<p> for each
// profile, with a Qt.core module whose binPath holds a qmake stub.
func setupQbsSettings(t *testing.T, settingsDir, version string, profiles ...string) string {
	t.Helper()

	binDir := filepath.Join(settingsDir, "qt", "bin")
	writeFile(t, filepath.Join(binDir, "qmake"), "#!/bin/sh\n")

	profileDir := filepath.Join(settingsDir, "qbs", version)
	for _, p := range profiles {
		writeFile(t, filepath.Join(profileDir, "profiles", p, "modules", "Qt", "core", "core.qbs"),
			"import qbs\n\nModule {\n    property path binPath: \""+filepath.ToSlash(binDir)+"\"\n}\n")
	}
	return profileDir
}

// writeValues writes an installer values file and returns its path.
func writeValues(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "installer.yaml")
	writeFile(t, path, content)
	return path
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
