package cmd

import (
	"github.com/spf13/cobra"

	"github.com/optiscan/optiscan/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Optiscan MCP server",
	Long:  `Launch an MCP server that allows AI agents to extract metrics, score files, and retrain the model via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup runs normally; handlers write only to stdio per the protocol.
		return sharedSetup(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, engine, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
