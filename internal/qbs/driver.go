package qbs

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
)

// Runner invokes qpmx with the given arguments.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// ExecRunner runs the qpmx binary as a subprocess.
type ExecRunner struct {
	Binary string
	// Dir is the working directory of the subprocess; empty means the
	// current directory.
	Dir string
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s %v: %w", r.Binary, args, err)
	}
	return nil
}

// BaseOptions are the flags prepended by BaseArgs to every invocation.
type BaseOptions struct {
	Dir    string
	Level  LogLevel
	Colors bool
}

// Driver runs the qbs init sequence.
type Driver struct {
	Runner Runner
	Base   BaseOptions
	Logger *log.Logger

	// DetectVersion defaults to the package-level DetectVersion.
	DetectVersion func(ctx context.Context, qbsPath string) (*semver.Version, error)
}

// Args returns the full argument list for one step.
func (d *Driver) Args(step []string) []string {
	args := append([]string(nil), step...)
	return BaseArgs(args, d.Base.Dir, d.Base.Level, d.Base.Colors)
}

// Resolve fills in the qbs version and the profile list when opts leaves
// them empty, and returns the versioned profile directory.
func (d *Driver) Resolve(ctx context.Context, opts *InitOptions) (string, error) {
	if opts.QbsVersion == "" {
		detect := d.DetectVersion
		if detect == nil {
			detect = DetectVersion
		}
		v, err := detect(ctx, opts.QbsPath)
		if err != nil {
			return "", err
		}
		opts.QbsVersion = v.Original()
		d.logger().Debug("detected qbs version", "version", opts.QbsVersion)
	}

	profileDir, err := ProfileDir(opts.SettingsDir, opts.QbsVersion)
	if err != nil {
		return "", err
	}
	d.logger().Debug("using qbs settings path", "path", profileDir)

	if len(opts.Profiles) == 0 {
		profiles, err := FindProfiles(profileDir)
		if err != nil {
			return "", err
		}
		opts.Profiles = profiles
	}
	return profileDir, nil
}

// Init runs install, compile and qbs generate for every profile, stopping
// at the first failing step.
func (d *Driver) Init(ctx context.Context, opts InitOptions) error {
	profileDir, err := d.Resolve(ctx, &opts)
	if err != nil {
		return err
	}
	if len(opts.Profiles) == 0 {
		return fmt.Errorf("no qbs profiles found in %s", profileDir)
	}

	logger := d.logger()
	logger.Debug("running for qbs profiles", "profiles", opts.Profiles)
	for _, profile := range opts.Profiles {
		logger.Info("running qbs init", "profile", profile)

		qmake, err := FindQmake(profileDir, profile)
		if err != nil {
			return err
		}
		logger.Debug("detected qmake", "profile", profile, "qmake", qmake)

		for _, step := range InitSteps(opts, profile, qmake) {
			if err := d.Runner.Run(ctx, d.Args(step)); err != nil {
				return fmt.Errorf("qbs init for profile %s: %s step: %w", profile, step[0], err)
			}
			logger.Debug("step completed", "profile", profile, "step", step[0])
		}
	}
	logger.Debug("completed qpmx qbs initialization")
	return nil
}

func (d *Driver) logger() *log.Logger {
	if d.Logger == nil {
		return log.Default()
	}
	return d.Logger
}
