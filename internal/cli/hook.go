package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/qpmx-labs/qpmx-setup/internal/config"
	"github.com/qpmx-labs/qpmx-setup/internal/hook"
	"github.com/qpmx-labs/qpmx-setup/internal/host"
	"github.com/qpmx-labs/qpmx-setup/internal/manifest"
	"github.com/qpmx-labs/qpmx-setup/internal/platform"
	"github.com/spf13/cobra"
)

var (
	hookOS        string
	hookAllUsers  bool
	hookTargetDir string
	hookVariant   string
	hookValues    string
	hookJSON      bool
	hookStrict    bool
)

func init() {
	for _, c := range []*cobra.Command{hookPlanCmd, hookApplyCmd} {
		c.Flags().StringVar(&hookOS, "os", "", "Installer OS identifier: win, x11 or mac (default: this system)")
		c.Flags().BoolVar(&hookAllUsers, "all-users", false, "Install for all users of the machine")
		c.Flags().StringVar(&hookTargetDir, "target-dir", "", "Installation directory of qpmx")
		c.Flags().StringVar(&hookVariant, "variant", "", "Non-Windows registration style: link or exec")
		c.Flags().StringVar(&hookValues, "values", "", "Read installer values from a YAML file")
	}
	hookPlanCmd.Flags().BoolVar(&hookJSON, "json", false, "Print the operations as JSON")
	hookApplyCmd.Flags().BoolVar(&hookStrict, "strict", false, "Fail instead of logging when an operation cannot be performed")

	hookRemoveCmd.Flags().StringVar(&hookTargetDir, "target-dir", "", "Installation directory of qpmx")

	hookCmd.AddCommand(hookPlanCmd)
	hookCmd.AddCommand(hookApplyCmd)
	hookCmd.AddCommand(hookRemoveCmd)
	hookCmd.AddCommand(hookValidateCmd)
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Register qpmx in the command search path",
	Long: `Decide and perform the post-install operation that makes qpmx reachable:

  Windows          append the target directory to PATH (system-wide with --all-users)
  x11 (link)       link /usr/bin/qpmx to the installed executable
  non-Windows (exec, --all-users only)
                   run "ln -s" to create the same link`,
}

var hookPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the operations the installer hook would register",
	Long: `Show the operations the installer hook would register, without side effects.

Example:
  qpmx-setup hook plan --os win --all-users
  qpmx-setup hook plan --values installer.yaml --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, variant, err := resolveHookContext(cmd)
		if err != nil {
			return err
		}

		rec := &host.Recorder{}
		if _, err := hook.Run(rec, ctx, variant); err != nil {
			return err
		}

		if hookJSON {
			return printOperationsJSON(cmd.OutOrStdout(), rec.Ops, ctx)
		}
		printOperations(cmd.OutOrStdout(), rec.Ops, ctx, variant)
		return nil
	},
}

var hookApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Register and perform the installer hook operations on this machine",
	Long: `Register and perform the installer hook operations on this machine.

Failures are logged and the command still succeeds, like a hook inside an
installer. Use --strict to make failures fatal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, variant, err := resolveHookContext(cmd)
		if err != nil {
			return err
		}
		if ctx.TargetDir == "" {
			return errors.New("target directory is required (use --target-dir or set target_dir)")
		}

		local := host.NewLocal(ctx, logger)
		local.Stdout = cmd.OutOrStdout()
		local.Stderr = cmd.ErrOrStderr()

		_, err = hook.Run(local, ctx, variant)
		if err == nil {
			err = applyLocal(cmd, local)
		}
		if err == nil || hookStrict {
			return err
		}
		logger.Error("installer hook failed", "os", ctx.OS, "allUsers", ctx.AllUsers, "err", err)
		fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("Installer hook not applied; the installation itself is unaffected."))
		return nil
	},
}

var hookRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the system link created by the installer hook",
	Long: `Remove /usr/bin/qpmx if it links to the executable in the target directory.
A missing link is not an error. PATH entries on Windows are left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if platform.Current().IsWindows() {
			return errors.New("removing PATH entries is not supported; edit the environment variables instead")
		}
		targetDir := config.Get(config.KeyTargetDir)
		if cmd.Flags().Changed("target-dir") {
			targetDir = hookTargetDir
		}
		if targetDir == "" {
			return errors.New("target directory is required (use --target-dir or set target_dir)")
		}

		bin := strings.ReplaceAll(hook.InstalledBinary(), hook.TargetDirVar, targetDir)
		if err := platform.RemoveSymlink(bin, hook.SystemLinkPath()); err != nil {
			return fmt.Errorf("removing %s: %w", hook.SystemLinkPath(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("removed"), hook.SystemLinkPath())
		return nil
	},
}

var hookValidateCmd = &cobra.Command{
	Use:   "validate <values-file>",
	Short: "Check an installer values file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := manifest.ValidateFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if result.Valid {
			fmt.Fprintf(out, "%s %s\n", color.GreenString("valid"), args[0])
			return nil
		}
		for _, issue := range result.Issues {
			path := issue.Path
			if path == "" {
				path = "/"
			}
			fmt.Fprintf(out, "%s %s: %s\n", color.RedString("invalid"), path, issue.Message)
		}
		return fmt.Errorf("%s: %d schema violation(s)", args[0], len(result.Issues))
	},
}

func applyLocal(cmd *cobra.Command, local *host.Local) error {
	pending := local.Pending()
	if err := local.Apply(cmd.Context()); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintln(out, "No operation required.")
		return nil
	}
	for _, op := range pending {
		fmt.Fprintf(out, "%s %s\n", color.GreenString("done"), formatOperation(op))
	}
	return nil
}

// resolveHookContext builds the hook context from, in increasing priority:
// the current system and config, the --values file, and explicit flags.
func resolveHookContext(cmd *cobra.Command) (hook.Context, hook.Variant, error) {
	ctx := hook.Context{
		OS:        platform.Current(),
		TargetDir: config.Get(config.KeyTargetDir),
	}
	variantName := config.Get(config.KeyVariant)

	if hookValues != "" {
		inst, err := manifest.Load(hookValues)
		if err != nil {
			return ctx, 0, err
		}
		fromFile := hook.ContextFrom(inst)
		if inst.Value(hook.KeyOS) != "" {
			ctx.OS = fromFile.OS
		}
		ctx.AllUsers = fromFile.AllUsers
		if fromFile.TargetDir != "" {
			ctx.TargetDir = fromFile.TargetDir
		}
		if inst.Variant() != "" {
			variantName = inst.Variant()
		}
	}

	flags := cmd.Flags()
	if flags.Changed("os") {
		ctx.OS = platform.ParseOS(hookOS)
	}
	if flags.Changed("all-users") {
		ctx.AllUsers = hookAllUsers
	}
	if flags.Changed("target-dir") {
		ctx.TargetDir = hookTargetDir
	}
	if flags.Changed("variant") {
		variantName = hookVariant
	}

	variant, err := hook.ParseVariant(variantName)
	if err != nil {
		return ctx, 0, err
	}
	return ctx, variant, nil
}

func formatOperation(op hook.Operation) string {
	var b strings.Builder
	if op.Elevated {
		b.WriteString(color.YellowString("[elevated] "))
	}
	b.WriteString(op.Name)
	for _, a := range op.Args {
		b.WriteByte(' ')
		if strings.ContainsAny(a, " \t") {
			b.WriteString(strconv.Quote(a))
		} else {
			b.WriteString(a)
		}
	}
	return b.String()
}

func printOperations(w io.Writer, ops []hook.Operation, ctx hook.Context, variant hook.Variant) {
	if len(ops) == 0 {
		fmt.Fprintf(w, "No operation required (os: %s, all users: %t, variant: %s).\n", ctx.OS, ctx.AllUsers, variant)
		return
	}
	for _, op := range ops {
		fmt.Fprintln(w, formatOperation(op))
		if ctx.TargetDir != "" {
			fmt.Fprintf(w, "  => %s\n", formatOperation(hook.Expand(op, ctx.Vars())))
		}
	}
}

type jsonOperation struct {
	Name     string   `json:"name"`
	Args     []string `json:"args"`
	Elevated bool     `json:"elevated"`
	Expanded []string `json:"expanded,omitempty"`
}

func printOperationsJSON(w io.Writer, ops []hook.Operation, ctx hook.Context) error {
	out := make([]jsonOperation, 0, len(ops))
	for _, op := range ops {
		j := jsonOperation{Name: op.Name, Args: op.Args, Elevated: op.Elevated}
		if ctx.TargetDir != "" {
			j.Expanded = hook.Expand(op, ctx.Vars()).Args
		}
		out = append(out, j)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling operations: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
