package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/qpmx-labs/qpmx-setup/internal/branding"
	"github.com/qpmx-labs/qpmx-setup/internal/config"
	"github.com/qpmx-labs/qpmx-setup/internal/hook"
	"github.com/qpmx-labs/qpmx-setup/internal/platform"
	"github.com/spf13/cobra"
)

type checkStatus int

const (
	statusOK checkStatus = iota
	statusWarn
	statusFail
)

type checkResult struct {
	Name           string
	Status         checkStatus
	Message        string
	Recommendation string
}

// doctorEnv is the system view the checks run against.
type doctorEnv struct {
	OS        platform.OS
	TargetDir string
	LinkPath  string
	Getenv    func(string) string
	Stat      func(string) (os.FileInfo, error)
	Readlink  func(string) (string, error)
}

var doctorTargetDir string

func init() {
	doctorCmd.Flags().StringVar(&doctorTargetDir, "target-dir", "", "Installation directory of qpmx (default: target_dir)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that qpmx is reachable from the command line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := doctorEnv{
			OS:        platform.Current(),
			TargetDir: config.Get(config.KeyTargetDir),
			LinkPath:  hook.SystemLinkPath(),
			Getenv:    os.Getenv,
			Stat:      os.Stat,
			Readlink:  platform.ReadSymlinkTarget,
		}
		if cmd.Flags().Changed("target-dir") {
			env.TargetDir = doctorTargetDir
		}

		out := cmd.OutOrStdout()
		failed := false
		for _, r := range runChecks(env) {
			printCheck(out, r)
			if r.Status == statusFail {
				failed = true
			}
		}
		if failed {
			fmt.Fprintln(out, color.RedString("Some checks failed."))
			return errors.New("doctor found problems")
		}
		fmt.Fprintln(out, color.GreenString("All checks passed."))
		return nil
	},
}

func runChecks(env doctorEnv) []checkResult {
	if env.TargetDir == "" {
		return []checkResult{{
			Name:           "Target directory",
			Status:         statusFail,
			Message:        "no target directory configured",
			Recommendation: "Pass --target-dir or run: " + branding.CLIName() + " config set target_dir <dir>",
		}}
	}

	results := []checkResult{checkBinary(env)}
	if env.OS.IsWindows() {
		results = append(results, checkPath(env))
	} else {
		results = append(results, checkLink(env))
	}
	return results
}

func installedBinaryPath(env doctorEnv) string {
	name := branding.ToolName()
	if env.OS.IsWindows() {
		name += ".exe"
	}
	return filepath.Join(env.TargetDir, name)
}

func checkBinary(env doctorEnv) checkResult {
	r := checkResult{Name: "Executable"}
	bin := installedBinaryPath(env)
	info, err := env.Stat(bin)
	switch {
	case err != nil:
		r.Status = statusFail
		r.Message = fmt.Sprintf("%s not found", bin)
		r.Recommendation = "Reinstall " + branding.ToolName() + " or correct the target directory."
	case info.IsDir():
		r.Status = statusFail
		r.Message = fmt.Sprintf("%s is a directory", bin)
	default:
		r.Status = statusOK
		r.Message = bin
	}
	return r
}

func checkPath(env doctorEnv) checkResult {
	r := checkResult{Name: "PATH"}
	want := filepath.Clean(env.TargetDir)
	if pathListContains(env.Getenv("PATH"), want, runtime.GOOS == "windows") {
		r.Status = statusOK
		r.Message = fmt.Sprintf("%s is on PATH", want)
		return r
	}
	r.Status = statusFail
	r.Message = fmt.Sprintf("%s is not on PATH", want)
	r.Recommendation = "Run: " + branding.CLIName() + " hook apply --target-dir " + want
	return r
}

// pathListContains reports whether dir is an entry of the PATH-style list.
// Case is folded only for case-insensitive filesystems.
func pathListContains(list, dir string, foldCase bool) bool {
	for _, entry := range filepath.SplitList(list) {
		if entry == "" {
			continue
		}
		entry = filepath.Clean(entry)
		if entry == dir || (foldCase && strings.EqualFold(entry, dir)) {
			return true
		}
	}
	return false
}

func checkLink(env doctorEnv) checkResult {
	r := checkResult{Name: "Link"}
	bin := installedBinaryPath(env)
	target, err := env.Readlink(env.LinkPath)
	switch {
	case err != nil:
		r.Status = statusWarn
		r.Message = fmt.Sprintf("%s is not a link", env.LinkPath)
		r.Recommendation = "Run with elevated privileges: " + branding.CLIName() + " hook apply --all-users --target-dir " + env.TargetDir
	case filepath.Clean(target) != filepath.Clean(bin):
		r.Status = statusFail
		r.Message = fmt.Sprintf("%s points to %s, expected %s", env.LinkPath, target, bin)
	default:
		r.Status = statusOK
		r.Message = fmt.Sprintf("%s -> %s", env.LinkPath, target)
	}
	return r
}

func printCheck(w io.Writer, r checkResult) {
	var label string
	switch r.Status {
	case statusOK:
		label = color.GreenString("[OK]  ")
	case statusWarn:
		label = color.YellowString("[WARN]")
	case statusFail:
		label = color.RedString("[FAIL]")
	}
	fmt.Fprintf(w, "%s %-18s %s\n", label, r.Name, r.Message)
	if r.Recommendation != "" {
		fmt.Fprintf(w, "       %s\n", r.Recommendation)
	}
}
