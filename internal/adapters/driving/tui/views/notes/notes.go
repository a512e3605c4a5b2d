// Package notes provides the view listing the notes of one graph.
package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/components/list"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/messages"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/styles"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// View lists the notes of the selected graph.
type View struct {
	styles       *styles.Styles
	graphService driving.GraphService

	graph   *domain.Graph
	list    *list.NoteList
	edges   int
	width   int
	height  int
	ready   bool
	err     error
	loading bool
}

// NewView creates a new notes view.
func NewView(s *styles.Styles, graphService driving.GraphService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		graphService: graphService,
		list:         list.NewNoteList("Notes", s),
		width:        80,
		height:       24,
	}
}

// Init initialises the view. Notes load once a graph is set.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetGraph switches to graph and loads its notes.
func (v *View) SetGraph(graph domain.Graph) tea.Cmd {
	v.graph = &graph
	v.list.SetNodes(nil)
	v.edges = 0
	v.err = nil
	v.loading = true
	return v.loadNotes()
}

func (v *View) loadNotes() tea.Cmd {
	svc := v.graphService
	if v.graph == nil {
		return nil
	}
	graphID := v.graph.ID
	return func() tea.Msg {
		if svc == nil {
			return messages.NotesLoaded{GraphID: graphID, Err: fmt.Errorf("graph service not available")}
		}
		gv, err := svc.View(context.Background(), graphID)
		if err != nil {
			return messages.NotesLoaded{GraphID: graphID, Err: err}
		}
		return messages.NotesLoaded{GraphID: graphID, Notes: gv.Nodes, Edges: len(gv.Edges)}
	}
}

// Update handles messages for the notes view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.NotesLoaded:
		v.setNotes(msg)
		return v, nil
	}

	return v, nil
}

// setNotes applies a load result for the current graph, newest first.
// Results for a graph that is no longer shown are dropped.
func (v *View) setNotes(msg messages.NotesLoaded) {
	if v.graph == nil || msg.GraphID != v.graph.ID {
		return
	}
	v.loading = false
	if msg.Err != nil {
		v.err = msg.Err
		return
	}
	v.err = nil
	v.edges = msg.Edges
	notes := append([]domain.Node(nil), msg.Notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	v.list.SetNodes(notes)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if node := v.list.SelectedNode(); node != nil {
			id := node.ID
			return v, func() tea.Msg {
				return messages.NoteSelected{NodeID: id, Back: messages.ViewNotes}
			}
		}
		return v, nil
	case "r":
		if v.graph != nil {
			v.loading = true
		}
		return v, v.loadNotes()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the notes view.
func (v *View) View() string {
	var b strings.Builder

	title := "Notes"
	if v.graph != nil {
		title = v.graph.Name
	}
	b.WriteString(v.styles.Title.Render(title))
	if v.graph != nil && !v.loading && v.err == nil {
		b.WriteString("  ")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s · %d links", v.graph.Badge, v.edges)))
	}
	b.WriteString("\n\n")

	switch {
	case v.graph == nil:
		b.WriteString(v.styles.Muted.Render("No graph selected."))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading notes..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [r] reload  [esc] back  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	listHeight := height - 6
	if listHeight < 4 {
		listHeight = 4
	}
	v.list.SetDimensions(width, listHeight)
}

// Graph returns the graph being shown, or nil.
func (v *View) Graph() *domain.Graph {
	return v.graph
}

// Notes returns the loaded notes in display order.
func (v *View) Notes() []domain.Node {
	items := v.list.Items()
	nodes := make([]domain.Node, len(items))
	for i := range items {
		nodes[i] = items[i].Node
	}
	return nodes
}

// Count returns the number of loaded notes.
func (v *View) Count() int {
	return v.list.Count()
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}
