package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/cmd/proofa/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio that lets an
assistant read workspace scores and transcripts and talk to the judge.

Configure in your assistant's MCP config:
  {
    "mcpServers": {
      "proofa": {
        "command": "proofa",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := mcp.Options{
		Backend: a.api,
		Cache:   a.db,
		Mode:    a.cfg.Mode,
		Timeout: a.cfg.RequestTimeout,
		Logger:  a.logger,
	}
	version := rootCmd.Version
	if version == "" {
		version = "dev"
	}
	if err := mcp.StartServer(opts, version); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
