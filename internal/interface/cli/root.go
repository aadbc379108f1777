package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/db"
)

var (
	dbPath      string
	configPath  string
	debugLog    bool
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, explain(err))
		os.Exit(1)
	}
}

// explain turns errors the user can act on into instructions
func explain(err error) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Sprintf("%v\nYour session has expired. Set a fresh token with PROOFA_TOKEN or in %s.", err, displayConfigPath())
	}
	return err.Error()
}

var rootCmd = &cobra.Command{
	Use:   "proofa",
	Short: "Authorship workspaces in the terminal",
	Long: `proofa - collaborate with the authorship judge, watch your score, certify your work

Open a workspace to send prompts and files to the judge. Every reply carries
an authorship score; once it reaches 80 the workspace can be certified.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return runTUI(cmd, "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", db.DefaultPath(), "Local database path (drafts and workspace cache)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/proofa/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Write debug entries to the log file")
}
