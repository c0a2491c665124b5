package qbs

// InitOptions configures a qbs init run.
type InitOptions struct {
	QbsPath     string
	SettingsDir string
	// QbsVersion selects <SettingsDir>/qbs/<QbsVersion>. When empty the
	// version is detected by running qbs.
	QbsVersion string
	// Profiles to initialize. When empty every profile found in the
	// settings tree is used.
	Profiles []string

	// Renew re-runs every step from scratch (install --renew,
	// compile --recompile, generate --recreate).
	Renew  bool
	Stderr bool
	Clean  bool
}

// InitSteps returns the qpmx sub-invocations for one profile, in order:
// install, compile and qbs generate.
func InitSteps(opts InitOptions, profile, qmake string) [][]string {
	install := []string{"install"}
	if opts.Renew {
		install = append(install, "--renew")
	}

	compile := []string{"compile", "--qmake", qmake}
	if opts.Renew {
		compile = append(compile, "--recompile")
	}
	if opts.Stderr {
		compile = append(compile, "--stderr")
	}
	if opts.Clean {
		compile = append(compile, "--clean")
	}

	generate := []string{
		"qbs", "generate",
		"--path", opts.QbsPath,
		"--settings-dir", opts.SettingsDir,
		"--profile", profile,
		"--qbs-version", opts.QbsVersion,
	}
	if opts.Renew {
		generate = append(generate, "--recreate")
	}

	return [][]string{install, compile, generate}
}
