package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

var (
	graphBadge  string
	graphNoSeed bool
	graphJSON   bool
	graphYes    bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage graphs",
	Long: `Create, list, inspect and delete graphs.

A graph scopes a set of notes, their links and the files they came from.`,
}

var graphCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a graph",
	Long: `Create a graph. New graphs get three welcome notes unless --no-seed
is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraphCreate,
}

var graphListCmd = &cobra.Command{
	Use:   "list",
	Short: "List graphs",
	Args:  cobra.NoArgs,
	RunE:  runGraphList,
}

var graphShowCmd = &cobra.Command{
	Use:   "show <graph-id>",
	Short: "Show the notes and edges of a graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphShow,
}

var graphDeleteCmd = &cobra.Command{
	Use:   "delete <graph-id>",
	Short: "Delete a graph with its notes and vectors",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphDelete,
}

func init() {
	graphCreateCmd.Flags().StringVar(&graphBadge, "badge", string(domain.BadgeNotes), "graph badge (Notes, Textbook or Compare)")
	graphCreateCmd.Flags().BoolVar(&graphNoSeed, "no-seed", false, "skip the welcome notes")
	graphCreateCmd.Flags().BoolVar(&graphJSON, "json", false, "output as JSON")
	graphListCmd.Flags().BoolVar(&graphJSON, "json", false, "output as JSON")
	graphShowCmd.Flags().BoolVar(&graphJSON, "json", false, "output as JSON")
	graphDeleteCmd.Flags().BoolVarP(&graphYes, "yes", "y", false, "delete without asking")

	graphCmd.AddCommand(graphCreateCmd)
	graphCmd.AddCommand(graphListCmd)
	graphCmd.AddCommand(graphShowCmd)
	graphCmd.AddCommand(graphDeleteCmd)
	rootCmd.AddCommand(graphCmd)
}

// graphOutput is the JSON shape of a graph.
type graphOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Badge     string    `json:"badge"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Seeded    bool      `json:"seeded"`
	CreatedAt time.Time `json:"created_at"`
}

// graphViewOutput is the JSON shape of a rendered graph.
type graphViewOutput struct {
	Graph graphOutput        `json:"graph"`
	Nodes []nodeOutput       `json:"nodes"`
	Edges []domain.GraphEdge `json:"edges"`
}

func toGraphOutput(g domain.Graph) graphOutput {
	return graphOutput{
		ID:        g.ID,
		Name:      g.Name,
		Badge:     string(g.Badge),
		OwnerID:   g.OwnerID,
		Seeded:    g.Seeded,
		CreatedAt: g.CreatedAt,
	}
}

func runGraphCreate(cmd *cobra.Command, args []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	graph, err := graphService.CreateGraph(cmd.Context(), driving.CreateGraphInput{
		Name:    args[0],
		Badge:   domain.Badge(graphBadge),
		OwnerID: ownerID,
		Seed:    !graphNoSeed,
	})
	if err != nil {
		return fmt.Errorf("creating graph: %w", err)
	}

	if graphJSON {
		return printJSON(cmd, toGraphOutput(*graph))
	}
	cmd.Printf("%s Created graph %s %s\n", successMark, titleStyle.Render(graph.Name), dimStyle.Render(graph.ID))
	return nil
}

func runGraphList(cmd *cobra.Command, _ []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	graphs, err := graphService.ListGraphs(cmd.Context(), ownerID)
	if err != nil {
		return fmt.Errorf("listing graphs: %w", err)
	}

	if graphJSON {
		out := make([]graphOutput, len(graphs))
		for i, g := range graphs {
			out[i] = toGraphOutput(g)
		}
		return printJSON(cmd, out)
	}

	if len(graphs) == 0 {
		cmd.Println("No graphs yet. Create one with: atlus graph create <name>")
		return nil
	}
	for _, g := range graphs {
		cmd.Printf("  %s  %s %s\n", dimStyle.Render(g.ID), titleStyle.Render(g.Name), tagStyle.Render("["+string(g.Badge)+"]"))
	}
	return nil
}

func runGraphShow(cmd *cobra.Command, args []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	view, err := graphService.View(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading graph: %w", err)
	}

	if graphJSON {
		return printJSON(cmd, graphViewOutput{
			Graph: toGraphOutput(view.Graph),
			Nodes: nodeOutputs(view.Nodes),
			Edges: view.Edges,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render(view.Graph.Name))
	printKV(w, "ID", view.Graph.ID)
	printKV(w, "Badge", view.Graph.Badge)
	printKV(w, "Notes", len(view.Nodes))
	printKV(w, "Edges", len(view.Edges))
	fmt.Fprintln(w)

	titles := make(map[string]string, len(view.Nodes))
	for _, n := range view.Nodes {
		titles[n.ID] = n.Title
	}
	for _, n := range view.Nodes {
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(n.ID), n.Title)
	}
	if len(view.Edges) > 0 {
		fmt.Fprintln(w)
		for _, e := range view.Edges {
			fmt.Fprintf(w, "  %s -> %s %s\n", titles[e.Source], titles[e.Target], dimStyle.Render(string(e.EdgeType)))
		}
	}
	return nil
}

func runGraphDelete(cmd *cobra.Command, args []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	graph, err := graphService.GetGraph(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading graph: %w", err)
	}

	if !graphYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Delete graph %q and all of its notes?", graph.Name))
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := graphService.DeleteGraph(cmd.Context(), graph.ID); err != nil {
		return fmt.Errorf("deleting graph: %w", err)
	}
	cmd.Printf("%s Deleted graph %s\n", successMark, graph.Name)
	return nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
