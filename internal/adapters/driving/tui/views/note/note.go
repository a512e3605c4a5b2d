// Package note provides the view showing one note and its neighbours.
package note

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/components/list"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/messages"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/styles"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// relatedRows is the height given to the related list.
const relatedRows = 8

// View shows a note body with a scrollable pane and its related notes
// below it. Tab moves focus between the two.
type View struct {
	styles      *styles.Styles
	nodeService driving.NodeService

	nodeID       string
	back         messages.ViewType
	note         *domain.Node
	lines        []string
	related      *list.NoteList
	focusRelated bool
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates a new note view.
func NewView(s *styles.Styles, nodeService driving.NodeService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:      s,
		nodeService: nodeService,
		back:        messages.ViewMenu,
		related:     list.NewNoteList("Related", s),
		width:       80,
		height:      24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open loads nodeID. Esc returns to back.
func (v *View) Open(nodeID string, back messages.ViewType) tea.Cmd {
	v.nodeID = nodeID
	v.back = back
	v.note = nil
	v.lines = nil
	v.related.SetItems(nil)
	v.focusRelated = false
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadNote()
}

func (v *View) loadNote() tea.Cmd {
	svc, id := v.nodeService, v.nodeID
	return func() tea.Msg {
		if svc == nil {
			return messages.NoteLoaded{Err: errors.New("node service not available")}
		}
		ctx := context.Background()
		node, err := svc.GetNode(ctx, id)
		if err != nil {
			return messages.NoteLoaded{Err: err}
		}
		related, err := svc.Related(ctx, id)
		if err != nil {
			// The body is still worth showing.
			related = nil
		}
		return messages.NoteLoaded{Note: node, Related: related}
	}
}

// Update handles messages for the note view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.NoteLoaded:
		if msg.Note != nil && msg.Note.ID != v.nodeID {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.note = msg.Note
		items := make([]list.Item, len(msg.Related))
		for i, r := range msg.Related {
			items[i] = list.Item{Node: r.Node, Source: r.Source}
		}
		v.related.SetItems(items)
		v.wrapContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	case "tab":
		if !v.related.IsEmpty() {
			v.focusRelated = !v.focusRelated
		}
		return v, nil
	}

	if v.focusRelated {
		if msg.String() == "enter" {
			if node := v.related.SelectedNode(); node != nil {
				id, back := node.ID, v.back
				return v, func() tea.Msg {
					return messages.NoteSelected{NodeID: id, Back: back}
				}
			}
			return v, nil
		}
		v.related, _ = v.related.Update(msg)
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset -= v.visibleLines()
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	case "pgdown", "ctrl+d":
		v.scrollOffset += v.visibleLines()
		if m := v.maxScrollOffset(); v.scrollOffset > m {
			v.scrollOffset = m
		}
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	}
	return v, nil
}

// body is the markdown shown for the note, falling back to its summary.
func body(n *domain.Node) string {
	if n.StructuredContent != "" {
		return n.StructuredContent
	}
	if n.Summary != "" {
		return n.Summary
	}
	return n.RawText
}

// wrapContent hard-wraps the body to the view width, counting runes.
func (v *View) wrapContent() {
	if v.note == nil {
		v.lines = nil
		return
	}
	width := v.width - 4
	if width < 20 {
		width = 20
	}

	raw := strings.Split(body(v.note), "\n")
	v.lines = make([]string, 0, len(raw))
	for _, line := range raw {
		r := []rune(line)
		for len(r) > width {
			v.lines = append(v.lines, string(r[:width]))
			r = r[width:]
		}
		v.lines = append(v.lines, string(r))
	}
	if m := v.maxScrollOffset(); v.scrollOffset > m {
		v.scrollOffset = m
	}
}

// visibleLines is the body height left after the title, the tag line,
// the related list and the footer.
func (v *View) visibleLines() int {
	reserved := 8
	if !v.related.IsEmpty() {
		reserved += relatedRows + 2
	}
	if n := v.height - reserved; n > 0 {
		return n
	}
	return 1
}

func (v *View) maxScrollOffset() int {
	if m := len(v.lines) - v.visibleLines(); m > 0 {
		return m
	}
	return 0
}

// View renders the note view.
func (v *View) View() string {
	var b strings.Builder

	title := "Note"
	if v.note != nil {
		title = v.note.Title
		if title == "" {
			title = v.note.ID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.note != nil && len(v.note.Tags) > 0 {
		tags := make([]string, len(v.note.Tags))
		for i, t := range v.note.Tags {
			tags[i] = v.styles.Tag.Render("#" + t)
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading note..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.note == nil:
		b.WriteString(v.styles.Muted.Render("No note selected."))
	default:
		v.renderBody(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(v.helpText()))
	return b.String()
}

func (v *View) renderBody(b *strings.Builder) {
	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
	}
	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}
	if len(v.lines) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
			v.scrollOffset+1, min(v.scrollOffset+visible, len(v.lines)), len(v.lines))))
		b.WriteString("\n")
	}

	if v.related.IsEmpty() {
		return
	}
	b.WriteString("\n")
	if v.focusRelated {
		b.WriteString(v.related.View())
	} else {
		b.WriteString(v.styles.Muted.Render(v.related.View()))
	}
}

func (v *View) helpText() string {
	if v.focusRelated {
		return "[j/k] select  [enter] open  [tab] body  [esc] back"
	}
	if !v.related.IsEmpty() {
		return "[j/k/PgUp/PgDn] scroll  [g/G] top/bottom  [tab] related  [esc] back"
	}
	return "[j/k/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.related.SetDimensions(width, relatedRows)
	v.wrapContent()
}

// Note returns the loaded note, or nil.
func (v *View) Note() *domain.Node {
	return v.note
}

// Related returns the neighbours shown under the note.
func (v *View) Related() []list.Item {
	return v.related.Items()
}

// RelatedFocused reports whether key presses go to the related list.
func (v *View) RelatedFocused() bool {
	return v.focusRelated
}

// Back returns the view esc returns to.
func (v *View) Back() messages.ViewType {
	return v.back
}

// ScrollOffset returns the first visible body line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
