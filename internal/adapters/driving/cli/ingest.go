package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// progressInterval is how often a running ingest is polled for progress.
const progressInterval = 500 * time.Millisecond

var (
	ingestJSON         bool
	generateMarkdown   string
	generateOCR        string
	generateSourceFile string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <graph-id> <file>...",
	Short: "Turn documents into notes",
	Long: `Extracts the text of each file, splits it into sections, builds one
note per section, embeds the notes and links them to their nearest
neighbours in the graph.

Supported formats: .pdf, .txt, .md, .markdown, .html, .htm.
A file that fails is reported and does not stop the others.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

var generateCmd = &cobra.Command{
	Use:   "generate <graph-id>",
	Short: "Build a note from markdown or OCR output",
	Long: `Builds a single handwritten-note node from a markdown file, or from
raw OCR text which is first structured into markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex <graph-id>",
	Short: "Re-embed and relink every note of a graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runReindex,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	generateCmd.Flags().StringVar(&generateMarkdown, "markdown", "", "markdown file (- for stdin)")
	generateCmd.Flags().StringVar(&generateOCR, "ocr", "", "OCR text file (- for stdin)")
	generateCmd.Flags().StringVar(&generateSourceFile, "source-file", "", "source file ID to attach the note to")
	generateCmd.MarkFlagsMutuallyExclusive("markdown", "ocr")
	generateCmd.MarkFlagsOneRequired("markdown", "ocr")
	generateCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	reindexCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(); err != nil {
		return err
	}

	req := domain.IngestRequest{GraphID: args[0]}
	for _, path := range args[1:] {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		req.Files = append(req.Files, domain.IngestFile{Name: filepath.Base(path), Content: content})
	}

	var (
		result domain.IngestResult
		err    error
	)
	if isTerminal(cmd.OutOrStdout()) && !ingestJSON {
		result, err = ingestWithProgress(cmd.Context(), cmd, ingestService, req)
	} else {
		result, err = ingestService.Ingest(cmd.Context(), req)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return printIngestResult(cmd, result)
}

// ingestWithProgress runs the ingest while printing the stage of each
// file as it changes.
func ingestWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	svc driving.IngestionService,
	req domain.IngestRequest,
) (domain.IngestResult, error) {
	type outcome struct {
		result domain.IngestResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.Ingest(ctx, req)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case o := <-done:
			if last != "" {
				cmd.Print("\r\033[K")
			}
			return o.result, o.err
		case <-ticker.C:
			line := progressLine(svc.Status(), req.GraphID)
			if line != "" && line != last {
				cmd.Printf("\r\033[K%s", line)
				last = line
			}
		}
	}
}

// progressLine summarises the running requests of graphID, e.g.
// "2/5 done · notes.pdf: EMBEDDING".
func progressLine(statuses []driving.IngestStatus, graphID string) string {
	var (
		total, finished int
		active          []string
	)
	for _, s := range statuses {
		if s.GraphID != graphID {
			continue
		}
		for _, f := range s.Files {
			total++
			if f.Stage.IsTerminal() {
				finished++
				continue
			}
			if f.Stage != domain.StagePending {
				active = append(active, fmt.Sprintf("%s: %s", f.File, f.Stage))
			}
		}
	}
	if total == 0 {
		return ""
	}
	line := fmt.Sprintf("%d/%d done", finished, total)
	if len(active) > 0 {
		line += " · " + strings.Join(active, ", ")
	}
	return line
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(); err != nil {
		return err
	}

	graphID := args[0]
	var (
		result domain.IngestResult
		err    error
	)
	switch {
	case generateMarkdown != "":
		var text string
		if text, err = readInput(cmd, generateMarkdown); err != nil {
			return err
		}
		result, err = ingestService.GenerateFromMarkdown(cmd.Context(), graphID, text, generateSourceFile)
	case generateOCR != "":
		var text string
		if text, err = readInput(cmd, generateOCR); err != nil {
			return err
		}
		result, err = ingestService.GenerateFromOCR(cmd.Context(), graphID, text, generateSourceFile)
	default:
		return errors.New("one of --markdown or --ocr is required")
	}
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}
	return printIngestResult(cmd, result)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(); err != nil {
		return err
	}

	if !ingestJSON {
		cmd.Printf("Reindexing graph %s...\n", args[0])
	}
	result, err := ingestService.Reindex(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	if ingestJSON {
		return printJSON(cmd, result)
	}
	cmd.Printf("%s Reindexed %d notes, %d links\n", resultMark(len(result.Errors) == 0), len(result.NodeIDs), result.LinksCreated)
	for _, e := range result.Errors {
		cmd.Printf("  %s %s\n", failMark, e)
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, result domain.IngestResult) error {
	if ingestJSON {
		return printJSON(cmd, result)
	}
	cmd.Printf("%s %d notes created, %d links\n", resultMark(len(result.Errors) == 0), result.NodesCreated, result.LinksCreated)
	for _, e := range result.Errors {
		cmd.Printf("  %s %s\n", failMark, e)
	}
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// resultMark returns a check mark when ok, otherwise a warning mark.
func resultMark(ok bool) string {
	if ok {
		return successMark
	}
	return warnMark
}
