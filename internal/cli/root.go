package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/qpmx-labs/qpmx-setup/internal/branding"
	"github.com/qpmx-labs/qpmx-setup/internal/config"
	"github.com/qpmx-labs/qpmx-setup/internal/logging"
	"github.com/qpmx-labs/qpmx-setup/internal/qbs"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagVerbose bool
	flagQuiet   bool
	flagNoColor bool
	flagConfig  string

	logger = log.Default()
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Limit output to error messages only")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.qpmx/config.yaml)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` makes the ` + branding.ToolName() + ` executable reachable after installation
(PATH registration on Windows, a /usr/bin link elsewhere) and drives the qbs
build integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(flagConfig); err != nil {
			return err
		}
		if !colorsEnabled() {
			color.NoColor = true
		}
		logger = logging.New(cmd.ErrOrStderr(), flagVerbose, flagQuiet)
		return nil
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	}
	return err
}

// colorsEnabled combines --no-color with the colors config key.
func colorsEnabled() bool {
	return !flagNoColor && config.GetBool(config.KeyColors)
}

// flagLogLevel translates the global verbosity flags into the qbs log level.
// ok is false when neither flag was given.
func flagLogLevel() (level qbs.LogLevel, ok bool) {
	switch {
	case flagQuiet && flagVerbose:
		return qbs.LevelWarnOnly, true
	case flagQuiet:
		return qbs.LevelQuiet, true
	case flagVerbose:
		return qbs.LevelVerbose, true
	default:
		return qbs.LevelNormal, false
	}
}
