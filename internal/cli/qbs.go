package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/qpmx-labs/qpmx-setup/internal/branding"
	"github.com/qpmx-labs/qpmx-setup/internal/config"
	"github.com/qpmx-labs/qpmx-setup/internal/qbs"
	"github.com/spf13/cobra"
)

var (
	qbsDir      string
	qbsLogLevel string
	qbsJSON     bool

	qbsInitOpts   qbs.InitOptions
	qbsQpmxBinary string
	qbsDryRun     bool

	qbsModulesDir string
	qbsKit        string
	qbsCacheDir   string
	qbsRecreate   bool
)

func init() {
	qbsCmd.PersistentFlags().StringVar(&qbsDir, "dir", ".", "Project directory passed to every qpmx invocation")
	qbsCmd.PersistentFlags().StringVar(&qbsLogLevel, "log-level", "", "Log level of qpmx invocations: quiet, warn-only, normal or verbose")

	qbsArgsCmd.Flags().BoolVar(&qbsJSON, "json", false, "Print the arguments as a JSON array")

	qbsInitCmd.Flags().StringVar(&qbsInitOpts.QbsPath, "path", "", "Path to the qbs executable (default: qbs.path or qbs)")
	qbsInitCmd.Flags().StringVarP(&qbsInitOpts.SettingsDir, "settings-dir", "s", "", "Qt Creator settings directory holding the qbs profiles")
	qbsInitCmd.Flags().StringVar(&qbsInitOpts.QbsVersion, "qbs-version", "", "qbs version of the settings tree (default: detected)")
	qbsInitCmd.Flags().StringSliceVarP(&qbsInitOpts.Profiles, "profile", "p", nil, "Profile to initialize (repeatable, default: all)")
	qbsInitCmd.Flags().BoolVarP(&qbsInitOpts.Renew, "renew", "r", false, "Reinstall, recompile and regenerate everything")
	qbsInitCmd.Flags().BoolVarP(&qbsInitOpts.Stderr, "stderr", "e", false, "Forward compiler stderr")
	qbsInitCmd.Flags().BoolVarP(&qbsInitOpts.Clean, "clean", "c", false, "Compile packages in a clean cache")
	qbsInitCmd.Flags().StringVar(&qbsQpmxBinary, "qpmx", "", "qpmx executable to run (default: qpmx.path or qpmx)")
	qbsInitCmd.Flags().BoolVar(&qbsDryRun, "dry-run", false, "Print the invocations instead of running them")

	qbsProfilesCmd.Flags().StringVarP(&qbsInitOpts.SettingsDir, "settings-dir", "s", "", "Qt Creator settings directory holding the qbs profiles")
	qbsProfilesCmd.Flags().StringVar(&qbsInitOpts.QbsVersion, "qbs-version", "", "qbs version of the settings tree (default: detected)")
	qbsProfilesCmd.Flags().StringVar(&qbsInitOpts.QbsPath, "path", "", "Path to the qbs executable (default: qbs.path or qbs)")

	qbsPrepareCmd.Flags().StringVar(&qbsModulesDir, "modules", "", "qbs modules directory to write into")
	qbsPrepareCmd.Flags().StringVar(&qbsKit, "kit", "src", "Kit identifier recorded in the global module")
	qbsPrepareCmd.Flags().StringVar(&qbsCacheDir, "cache", "", "qpmx build cache directory")
	qbsPrepareCmd.Flags().BoolVarP(&qbsRecreate, "recreate", "r", false, "Remove existing qpmx modules first")
	_ = qbsPrepareCmd.MarkFlagRequired("modules")

	qbsCmd.AddCommand(qbsArgsCmd)
	qbsCmd.AddCommand(qbsInitCmd)
	qbsCmd.AddCommand(qbsProfilesCmd)
	qbsCmd.AddCommand(qbsPrepareCmd)
	qbsCmd.AddCommand(qbsModuleNameCmd)
	rootCmd.AddCommand(qbsCmd)
}

var qbsCmd = &cobra.Command{
	Use:   "qbs",
	Short: "qbs build integration helpers",
}

var qbsArgsCmd = &cobra.Command{
	Use:   "args [arg...]",
	Short: "Print the base arguments for a qpmx invocation from qbs",
	Long: `Print the base arguments qbs passes to every qpmx invocation: the project
directory, the log level and the color switch. Given arguments are kept in
front of the base arguments.

Example:
  qpmx-setup qbs args --dir /src/app --log-level warn-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := baseOptions(cmd)
		if err != nil {
			return err
		}
		tokens := qbs.BaseArgs(args, base.Dir, base.Level, base.Colors)

		out := cmd.OutOrStdout()
		if qbsJSON {
			data, err := json.Marshal(tokens)
			if err != nil {
				return fmt.Errorf("marshaling arguments: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		for _, t := range tokens {
			fmt.Fprintln(out, t)
		}
		return nil
	},
}

var qbsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Install, compile and generate qpmx modules for qbs profiles",
	Long: `Run qpmx install, compile and qbs generate once per qbs profile.

The qmake of each profile is read from its Qt.core module. Without
--profile every profile of the settings tree is initialized.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := baseOptions(cmd)
		if err != nil {
			return err
		}
		opts, err := initOptions()
		if err != nil {
			return err
		}

		var runner qbs.Runner
		if qbsDryRun {
			runner = &printRunner{out: cmd.OutOrStdout(), binary: qpmxBinary()}
		} else {
			runner = &qbs.ExecRunner{
				Binary: qpmxBinary(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			}
		}

		driver := &qbs.Driver{Runner: runner, Base: base, Logger: logger}
		if err := driver.Init(cmd.Context(), opts); err != nil {
			return err
		}
		if !qbsDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("qbs initialization completed"))
		}
		return nil
	},
}

var qbsProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the qbs profiles of the settings tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := initOptions()
		if err != nil {
			return err
		}
		opts.Profiles = nil

		driver := &qbs.Driver{Logger: logger}
		profileDir, err := driver.Resolve(cmd.Context(), &opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(opts.Profiles) == 0 {
			fmt.Fprintf(out, "No qbs profiles in %s\n", profileDir)
			return nil
		}
		for _, p := range opts.Profiles {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

var qbsPrepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Write the qpmx and qpmx.global qbs modules",
	Long: `Write the qpmx and qpmx.global modules into a qbs modules directory.

Modules that already carry the current version are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if qbsRecreate {
			if err := qbs.RemoveModules(qbsModulesDir); err != nil {
				return err
			}
		}

		version := moduleVersion()
		out := cmd.OutOrStdout()

		written, err := qbs.WriteQpmxModule(qbsModulesDir, version)
		if err != nil {
			return err
		}
		reportModule(out, filepath.Join(qbsModulesDir, qbs.QpmxModuleDir), written)

		cacheDir := qbsCacheDir
		if cacheDir == "" {
			cacheDir = filepath.Join(config.Dir(), "cache")
		}
		written, err = qbs.WriteGlobalModule(qbsModulesDir, qbsKit, cacheDir, version)
		if err != nil {
			return err
		}
		reportModule(out, filepath.Join(qbsModulesDir, qbs.GlobalModuleDir), written)
		return nil
	},
}

var qbsModuleNameCmd = &cobra.Command{
	Use:   "module-name <package> [version]",
	Short: "Print the qbs module name of a qpmx package",
	Long: `Print the qbs-safe identity of a package. With a version, print the
dependency module name "<identity>@<version>" with dots replaced.

Example:
  qpmx-setup qbs module-name de.skycoder42.qtmvvm 1.1.0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), qbs.EncodePackage(args[0]))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), qbs.ModuleName(args[0], args[1]))
		return nil
	},
}

func reportModule(w io.Writer, dir string, written bool) {
	if written {
		fmt.Fprintf(w, "%s %s\n", color.GreenString("wrote"), dir)
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.New(color.Faint).Sprint("up to date"), dir)
}

// baseOptions collects the base argument settings. The log level comes
// from --log-level, then the global verbosity flags, then config.
func baseOptions(cmd *cobra.Command) (qbs.BaseOptions, error) {
	opts := qbs.BaseOptions{Dir: qbsDir, Colors: colorsEnabled()}

	var err error
	switch level, ok := flagLogLevel(); {
	case cmd.Flags().Changed("log-level"):
		opts.Level, err = qbs.ParseLogLevel(qbsLogLevel)
	case ok:
		opts.Level = level
	default:
		opts.Level, err = qbs.ParseLogLevel(config.Get(config.KeyLogLevel))
	}
	if err != nil {
		return opts, err
	}
	return opts, nil
}

func initOptions() (qbs.InitOptions, error) {
	opts := qbsInitOpts
	opts.Profiles = append([]string(nil), qbsInitOpts.Profiles...)
	if opts.QbsPath == "" {
		opts.QbsPath = config.Get(config.KeyQbsPath)
	}
	if opts.QbsPath == "" {
		opts.QbsPath = "qbs"
	}
	if opts.SettingsDir == "" {
		opts.SettingsDir = config.Get(config.KeyQbsSettingsDir)
	}
	if opts.SettingsDir == "" {
		dir, err := qbs.DefaultSettingsDir()
		if err != nil {
			return opts, err
		}
		opts.SettingsDir = dir
	}
	return opts, nil
}

func qpmxBinary() string {
	if qbsQpmxBinary != "" {
		return qbsQpmxBinary
	}
	if p := config.Get(config.KeyQpmxPath); p != "" {
		return p
	}
	return branding.ToolName()
}

// printRunner prints each invocation instead of running it.
type printRunner struct {
	out    io.Writer
	binary string
}

func (r *printRunner) Run(_ context.Context, args []string) error {
	fmt.Fprintf(r.out, "%s %s\n", r.binary, strings.Join(args, " "))
	return nil
}
