package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/cyclerider/cmd/cyclerider/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server exposing the cycle analysis",
	Long: `Start an MCP (Model Context Protocol) server on stdio so an assistant can
analyze cycling exports, export per-cycle tables and inspect single files.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "cyclerider": {
        "command": "cyclerider",
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
	// stdout carries the protocol
	log.SetOutput(cmd.ErrOrStderr())
	if err := mcp.StartServer(cfg, log); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
