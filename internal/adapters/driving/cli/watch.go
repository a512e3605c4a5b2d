package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/connectors/filesystem"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/logger"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <graph-id> <dir>",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory tree and ingests every supported file that is
created or saved. Hidden files and directories are ignored. Images are
skipped; use "atlus generate --ocr" for scans.

Runs until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest the files already in the directory first")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(); err != nil {
		return err
	}
	if err := requireGraphService(); err != nil {
		return err
	}

	ctx := cmd.Context()
	graph, err := graphService.GetGraph(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading graph: %w", err)
	}

	connector := filesystem.New(args[1])
	changes, err := connector.Watch(ctx)
	if err != nil {
		return err
	}

	if watchInitial {
		paths, err := connector.Scan()
		if err != nil {
			return err
		}
		for _, path := range paths {
			ingestPath(ctx, cmd, graph.ID, path)
		}
	}

	cmd.Printf("Watching %s for graph %s. Press Ctrl+C to stop.\n", connector.Root(), titleStyle.Render(graph.Name))
	for path := range changes {
		ingestPath(ctx, cmd, graph.ID, path)
	}
	return nil
}

// ingestPath ingests one file and prints the outcome. Failures are
// reported and watching continues.
func ingestPath(ctx context.Context, cmd *cobra.Command, graphID, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("skipping file", "path", path, "err", err)
		return
	}
	result, err := ingestService.Ingest(ctx, domain.IngestRequest{
		GraphID: graphID,
		Files:   []domain.IngestFile{{Name: filepath.Base(path), Content: content}},
	})
	if err != nil {
		cmd.Printf("%s %s: %v\n", failMark, path, err)
		return
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			cmd.Printf("%s %s\n", failMark, e)
		}
		return
	}
	cmd.Printf("%s %s: %d notes, %d links\n", successMark, filepath.Base(path), result.NodesCreated, result.LinksCreated)
}
