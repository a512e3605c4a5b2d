// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewGraphs lists the graphs of the owner.
	ViewGraphs
	// ViewNotes lists the notes of one graph.
	ViewNotes
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewNote shows one note with its related notes.
	ViewNote
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewGraphs:
		return "graphs"
	case ViewNotes:
		return "notes"
	case ViewSearch:
		return "search"
	case ViewNote:
		return "note"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// GraphsLoaded carries the graphs of the owner.
type GraphsLoaded struct {
	Graphs []domain.Graph
	Err    error
}

// GraphSelected signals a graph was opened.
type GraphSelected struct {
	Graph domain.Graph
}

// NotesLoaded carries the notes of a graph and its edge count.
type NotesLoaded struct {
	GraphID string
	Notes   []domain.Node
	Edges   int
	Err     error
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.Node
	Err     error
}

// NoteSelected signals a note was opened. Back is the view to return
// to on esc.
type NoteSelected struct {
	NodeID string
	Back   ViewType
}

// NoteLoaded carries a note and its neighbours.
type NoteLoaded struct {
	Note    *domain.Node
	Related []driving.RelatedNode
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
