// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/styles"
	"github.com/atlus-labs/atlus/internal/core/domain"
)

// Item is one row of a NoteList. Source is shown next to the title when
// set, e.g. for related notes.
type Item struct {
	Node   domain.Node
	Source string
}

// Items wraps nodes without a source label.
func Items(nodes []domain.Node) []Item {
	items := make([]Item, len(nodes))
	for i := range nodes {
		items[i] = Item{Node: nodes[i]}
	}
	return items
}

// NoteList displays notes in a navigable list.
type NoteList struct {
	title    string
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewNoteList creates a list with the given header.
func NewNoteList(title string, s *styles.Styles) *NoteList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &NoteList{
		title:  title,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *NoteList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *NoteList) Update(msg tea.Msg) (*NoteList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.items) > 0 {
				l.selected = len(l.items) - 1
			}
		}
	}
	return l, nil
}

// View renders the list.
func (l *NoteList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No notes")
	}

	lines := make([]string, 0, len(l.items)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", l.title, len(l.items))), "")

	// Two lines per row.
	visible := (l.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *NoteList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := item.Node.Title
	if title == "" {
		title = "(Untitled)"
	}
	maxTitle := l.width - 14
	if maxTitle < 10 {
		maxTitle = 10
	}
	title = domain.Truncate(title, maxTitle)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(indicator + title)
	} else {
		titleLine = l.styles.Normal.Render(indicator + title)
	}
	if item.Source != "" {
		titleLine += " " + l.styles.Source(item.Source)
	}

	preview := item.Node.Summary
	if preview == "" {
		preview = item.Node.SectionTitle
	}
	maxPreview := l.width - 6
	if maxPreview < 20 {
		maxPreview = 20
	}
	preview = strings.ReplaceAll(preview, "\n", " ")
	return titleLine + "\n" + l.styles.Muted.Render("    "+domain.Truncate(preview, maxPreview))
}

// SetItems replaces the rows and resets the selection.
func (l *NoteList) SetItems(items []Item) {
	l.items = items
	l.selected = 0
}

// SetNodes replaces the rows with unlabelled nodes.
func (l *NoteList) SetNodes(nodes []domain.Node) {
	l.SetItems(Items(nodes))
}

// Items returns the current rows.
func (l *NoteList) Items() []Item {
	return l.items
}

// Selected returns the index of the selected row.
func (l *NoteList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *NoteList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedNode returns the selected note, or nil when the list is empty.
func (l *NoteList) SelectedNode() *domain.Node {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected].Node
}

// MoveUp moves selection up.
func (l *NoteList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *NoteList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *NoteList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *NoteList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *NoteList) Height() int {
	return l.height
}

// Count returns the number of rows.
func (l *NoteList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *NoteList) IsEmpty() bool {
	return len(l.items) == 0
}
