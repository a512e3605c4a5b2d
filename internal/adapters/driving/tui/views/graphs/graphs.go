// Package graphs provides the graph list view for the TUI.
package graphs

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/messages"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/styles"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// View lists the graphs of one owner.
type View struct {
	styles       *styles.Styles
	graphService driving.GraphService
	ownerID      string

	graphs   []domain.Graph
	selected int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new graphs view.
func NewView(s *styles.Styles, graphService driving.GraphService, ownerID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		graphService: graphService,
		ownerID:      ownerID,
		graphs:       []domain.Graph{},
		width:        80,
		height:       24,
	}
}

// Init loads the graphs.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadGraphs()
}

func (v *View) loadGraphs() tea.Cmd {
	svc, owner := v.graphService, v.ownerID
	return func() tea.Msg {
		if svc == nil {
			return messages.GraphsLoaded{Err: fmt.Errorf("graph service not available")}
		}
		graphs, err := svc.ListGraphs(context.Background(), owner)
		return messages.GraphsLoaded{Graphs: graphs, Err: err}
	}
}

// Update handles messages for the graphs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.GraphsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.graphs = msg.Graphs
		v.err = nil
		if v.selected >= len(v.graphs) {
			v.selected = 0
		}
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.graphs)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(v.graphs) {
			graph := v.graphs[v.selected]
			return v, func() tea.Msg {
				return messages.GraphSelected{Graph: graph}
			}
		}
	case "r":
		v.loading = true
		return v, v.loadGraphs()
	}
	return v, nil
}

// View renders the graphs view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Graphs"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading graphs..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.graphs) == 0:
		b.WriteString(v.styles.Muted.Render("No graphs yet. Create one with: atlus graph create <name>"))
	default:
		for i := range v.graphs {
			b.WriteString(v.renderGraph(i, &v.graphs[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [r] reload  [esc] back  [q] quit"))
	return b.String()
}

// renderGraph formats a row as "> [Badge] name".
func (v *View) renderGraph(index int, graph *domain.Graph) string {
	badge := fmt.Sprintf("[%s]", graph.Badge)
	name := graph.Name
	if name == "" {
		name = graph.ID
	}
	maxName := v.width - len(badge) - 12
	if maxName < 10 {
		maxName = 10
	}
	name = domain.Truncate(name, maxName)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-10s %s", badge, name))
	}
	return "  " + v.styles.Subtitle.Render(fmt.Sprintf("%-10s ", badge)) + v.styles.Normal.Render(name)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Graphs returns the loaded graphs.
func (v *View) Graphs() []domain.Graph {
	return v.graphs
}

// SelectedIndex returns the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}
