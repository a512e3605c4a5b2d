package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"tui"},
	Short:   "Browse graphs and notes in the terminal",
	Long: `Opens an interactive browser over your graphs.

Controls:
  ↑/k, ↓/j - Move
  Enter    - Open / Search
  Tab      - Switch between a note and its related notes
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in browser: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Graph:   graphService,
		Node:    nodeService,
		OwnerID: ownerID,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}
