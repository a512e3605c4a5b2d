package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/core/domain"
	coreservices "github.com/atlus-labs/atlus/internal/core/services"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search notes",
	Long: `Finds notes whose title, summary or source text contains the query,
case-insensitively, across every graph of the owner. Newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", coreservices.DefaultSearchLimit,
		fmt.Sprintf("maximum number of results (at most %d)", coreservices.MaxSearchLimit))
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireNodeService(); err != nil {
		return err
	}

	results, err := nodeService.Search(cmd.Context(), ownerID, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, nodeOutputs(results))
	}
	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.Node) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s\n", i+1, titleStyle.Render(results[i].Title))
		if results[i].Summary != "" {
			cmd.Printf("      %s\n", domain.Truncate(results[i].Summary, 120))
		}
		cmd.Printf("      %s\n", dimStyle.Render(results[i].ID))
	}
	return nil
}
