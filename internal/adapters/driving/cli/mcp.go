package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/adapters/driving/mcp"
)

var (
	mcpTransport string
	mcpListen    string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ingest
text, search notes and walk the graph.

By default the server speaks JSON-RPC over stdio. With --transport http
it serves the streamable HTTP transport on --listen instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  atlus mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  atlus mcp serve --transport http --listen localhost:8765

Assistant configuration:
  {
    "mcpServers": {
      "atlus": {
        "command": "/path/to/atlus",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpTransport, "transport", "", "stdio or http (default from mcp.transport)")
	mcpServeCmd.Flags().StringVar(&mcpListen, "listen", "", "HTTP listen address (default from mcp.listen)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	transport := mcpTransport
	if transport == "" {
		transport = mcpDefaults.Transport
	}
	listen := mcpListen
	if listen == "" {
		listen = mcpDefaults.Listen
	}

	ports := &mcp.Ports{
		Graph:     graphService,
		Node:      nodeService,
		Ingestion: ingestService,
		OwnerID:   ownerID,
	}
	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	switch transport {
	case "http":
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", listen)
		return server.RunHTTP(cmd.Context(), listen)
	case "stdio", "":
		return server.Run(cmd.Context())
	default:
		return fmt.Errorf("unknown transport %q: use stdio or http", transport)
	}
}
