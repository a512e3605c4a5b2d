package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/messages"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/styles"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/views/graphs"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/views/menu"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/views/note"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/views/notes"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/views/search"
)

// App is the browser's root model. It routes messages to the active view
// and handles navigation between views.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView   *menu.View
	graphsView *graphs.View
	notesView  *notes.View
	searchView *search.View
	noteView   *note.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the browser over ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingGraphService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s),
		graphsView:  graphs.NewView(s, ports.Graph, ports.OwnerID),
		notesView:   notes.NewView(s, ports.Graph),
		searchView:  search.NewView(s, nil, ports.Node, ports.OwnerID),
		noteView:    note.NewView(s, ports.Node),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context searches run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("atlus")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.GraphSelected:
		a.currentView = messages.ViewNotes
		return a, a.notesView.SetGraph(msg.Graph)

	case messages.NoteSelected:
		a.currentView = messages.ViewNote
		return a, a.noteView.Open(msg.NodeID, msg.Back)

	case messages.GraphsLoaded:
		a.graphsView, cmd = a.graphsView.Update(msg)
		return a, cmd

	case messages.NotesLoaded:
		a.notesView, cmd = a.notesView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.NoteLoaded:
		a.noteView, cmd = a.noteView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		case messages.ViewNote:
			a.noteView, cmd = a.noteView.Update(msg)
		case messages.ViewMenu, messages.ViewGraphs, messages.ViewNotes, messages.ViewHelp:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Cursor blinks and the like go to the active view.
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewGraphs:
		a.graphsView, cmd = a.graphsView.Update(msg)
	case messages.ViewNotes:
		a.notesView, cmd = a.notesView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewNote:
		a.noteView, cmd = a.noteView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)

	case messages.ViewGraphs:
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
			return a, nil
		}
		if msg.String() == "q" {
			return a, tea.Quit
		}
		a.graphsView, cmd = a.graphsView.Update(msg)

	case messages.ViewNotes:
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewGraphs
			return a, nil
		}
		if msg.String() == "q" {
			return a, tea.Quit
		}
		a.notesView, cmd = a.notesView.Update(msg)

	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()

	case messages.ViewNote:
		a.noteView, cmd = a.noteView.Update(msg)

	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// switchTo activates view, loading or resetting it as needed. Returning
// from a note keeps the search results and graph list as they were.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	from := a.currentView
	a.currentView = view
	if from == messages.ViewNote {
		return nil
	}
	switch view {
	case messages.ViewGraphs:
		return a.graphsView.Init()
	case messages.ViewSearch:
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewMenu, messages.ViewNotes, messages.ViewNote, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewGraphs:
		return a.graphsView.View()
	case messages.ViewNotes:
		return a.notesView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewNote:
		return a.noteView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ctrl+c      Quit

Graphs and notes:
  j/k, ↑/↓    Move
  enter       Open
  r           Reload

Search:
  (type)      Enter a query
  enter       Search, then open the selected note
  n           New search

Note:
  j/k, PgUp/PgDn  Scroll
  tab         Switch between the note and its related notes
  enter       Open the selected related note

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the browser in the alternate screen.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.graphsView.SetDimensions(width, height)
	a.notesView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.noteView.SetDimensions(width, height)
}
