package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/adapters/driving/mcp"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

var (
	noteTitle        string
	noteMarkdown     string
	noteMarkdownFile string
	noteTags         []string
	noteRaw          bool
	noteJSON         bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Create, read and edit notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <graph-id>",
	Short: "Add a note by hand",
	Long: `Add a note to a graph. The note is embedded and linked like any
generated note. Without --title, the first line of the markdown is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runNoteAdd,
}

var noteShowCmd = &cobra.Command{
	Use:   "show <node-id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteShow,
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <node-id>",
	Short: "Change the title, body or tags of a note",
	Long: `Change the title, body or tags of a note. Only the given flags are
applied. A new title re-embeds the note and refreshes its links.`,
	Args: cobra.ExactArgs(1),
	RunE: runNoteEdit,
}

var relatedCmd = &cobra.Command{
	Use:   "related <node-id>",
	Short: "List the notes linked or similar to a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelated,
}

var backlinksCmd = &cobra.Command{
	Use:   "backlinks <node-id>",
	Short: "List the notes that link to a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacklinks,
}

func init() {
	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
		c.Flags().StringVarP(&noteMarkdown, "markdown", "m", "", "markdown body")
		c.Flags().StringVarP(&noteMarkdownFile, "file", "f", "", "read the markdown body from a file (- for stdin)")
		c.Flags().StringSliceVar(&noteTags, "tag", nil, "tag (repeatable)")
	}
	noteShowCmd.Flags().BoolVar(&noteRaw, "raw", false, "print markdown without rendering")
	noteShowCmd.Flags().BoolVar(&noteJSON, "json", false, "output as JSON")
	relatedCmd.Flags().BoolVar(&noteJSON, "json", false, "output as JSON")
	backlinksCmd.Flags().BoolVar(&noteJSON, "json", false, "output as JSON")

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteShowCmd)
	noteCmd.AddCommand(noteEditCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(backlinksCmd)
}

// nodeOutput is the JSON shape of a note.
type nodeOutput struct {
	ID             string    `json:"id"`
	GraphID        string    `json:"graph_id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary,omitempty"`
	Markdown       string    `json:"markdown,omitempty"`
	SectionTitle   string    `json:"section_title,omitempty"`
	Concepts       []string  `json:"concepts"`
	Tags           []string  `json:"tags"`
	NodeType       string    `json:"node_type"`
	RelatedNodeIDs []string  `json:"related_node_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// relatedOutput is the JSON shape of one related note.
type relatedOutput struct {
	nodeOutput
	Source string `json:"source"`
}

func toNodeOutput(n domain.Node) nodeOutput {
	return nodeOutput{
		ID:             n.ID,
		GraphID:        n.GraphID,
		Title:          n.Title,
		Summary:        n.Summary,
		Markdown:       n.StructuredContent,
		SectionTitle:   n.SectionTitle,
		Concepts:       nonNil(n.Concepts),
		Tags:           nonNil(n.Tags),
		NodeType:       string(n.NodeType),
		RelatedNodeIDs: nonNil(n.RelatedNodeIDs),
		CreatedAt:      n.CreatedAt,
	}
}

func nodeOutputs(nodes []domain.Node) []nodeOutput {
	out := make([]nodeOutput, len(nodes))
	for i, n := range nodes {
		out[i] = toNodeOutput(n)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(); err != nil {
		return err
	}

	markdown, err := readMarkdownFlag(cmd)
	if err != nil {
		return err
	}

	node, err := ingestService.AddNote(cmd.Context(), driving.NoteInput{
		GraphID:  args[0],
		Title:    noteTitle,
		Markdown: markdown,
		Tags:     noteTags,
	})
	if err != nil {
		return fmt.Errorf("adding note: %w", err)
	}

	cmd.Printf("%s Added %s %s\n", successMark, titleStyle.Render(node.Title), dimStyle.Render(node.ID))
	if len(node.RelatedNodeIDs) > 0 {
		cmd.Printf("  linked to %d notes\n", len(node.RelatedNodeIDs))
	}
	return nil
}

func runNoteShow(cmd *cobra.Command, args []string) error {
	if err := requireNodeService(); err != nil {
		return err
	}

	node, err := nodeService.GetNode(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading note: %w", err)
	}

	if noteJSON {
		return printJSON(cmd, toNodeOutput(*node))
	}

	w := cmd.OutOrStdout()
	doc := mcp.NodeMarkdown(node)
	if noteRaw || !isTerminal(w) {
		fmt.Fprintln(w, doc)
	} else {
		fmt.Fprint(w, renderMarkdown(doc, terminalWidth(w)))
	}

	if len(node.Tags) > 0 {
		tags := make([]string, len(node.Tags))
		for i, t := range node.Tags {
			tags[i] = tagStyle.Render("#" + t)
		}
		fmt.Fprintln(w, strings.Join(tags, " "))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%s · %s · %d links", node.ID, node.NodeType, len(node.RelatedNodeIDs))))
	return nil
}

func runNoteEdit(cmd *cobra.Command, args []string) error {
	if err := requireNodeService(); err != nil {
		return err
	}

	var update driving.NodeUpdate
	flags := cmd.Flags()
	if flags.Changed("title") {
		update.Title = &noteTitle
	}
	if flags.Changed("markdown") || flags.Changed("file") {
		markdown, err := readMarkdownFlag(cmd)
		if err != nil {
			return err
		}
		update.Markdown = &markdown
	}
	if flags.Changed("tag") {
		update.Tags = noteTags
		if update.Tags == nil {
			update.Tags = []string{}
		}
	}
	if update.Title == nil && update.Markdown == nil && update.Tags == nil {
		return fmt.Errorf("nothing to change: pass --title, --markdown, --file or --tag")
	}

	node, err := nodeService.UpdateNode(cmd.Context(), args[0], update)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	cmd.Printf("%s Updated %s\n", successMark, titleStyle.Render(node.Title))
	return nil
}

func runRelated(cmd *cobra.Command, args []string) error {
	if err := requireNodeService(); err != nil {
		return err
	}

	related, err := nodeService.Related(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading related notes: %w", err)
	}

	if noteJSON {
		out := make([]relatedOutput, len(related))
		for i, r := range related {
			out[i] = relatedOutput{nodeOutput: toNodeOutput(r.Node), Source: r.Source}
		}
		return printJSON(cmd, out)
	}

	if len(related) == 0 {
		cmd.Println("No related notes.")
		return nil
	}
	for i, r := range related {
		cmd.Printf("  [%d] %s %s\n", i+1, r.Node.Title, dimStyle.Render("("+r.Source+")"))
		cmd.Printf("      %s\n", dimStyle.Render(r.Node.ID))
	}
	return nil
}

func runBacklinks(cmd *cobra.Command, args []string) error {
	if err := requireNodeService(); err != nil {
		return err
	}

	nodes, err := nodeService.Backlinks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading backlinks: %w", err)
	}

	if noteJSON {
		return printJSON(cmd, nodeOutputs(nodes))
	}

	if len(nodes) == 0 {
		cmd.Println("No backlinks.")
		return nil
	}
	for i, n := range nodes {
		cmd.Printf("  [%d] %s\n", i+1, n.Title)
		cmd.Printf("      %s\n", dimStyle.Render(n.ID))
	}
	return nil
}

// readMarkdownFlag returns --markdown, or the contents of --file.
func readMarkdownFlag(cmd *cobra.Command) (string, error) {
	if noteMarkdownFile == "" {
		return noteMarkdown, nil
	}
	return readInput(cmd, noteMarkdownFile)
}
