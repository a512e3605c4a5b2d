package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/messages"
	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/tuitest"
	"github.com/atlus-labs/atlus/internal/core/domain"
)

var biology = domain.Graph{ID: "g1", Name: "Biology", Badge: domain.BadgeTextbook}

func sampleView() *domain.GraphView {
	now := time.Now()
	return &domain.GraphView{
		Graph: biology,
		Nodes: []domain.Node{
			{ID: "old", GraphID: "g1", Title: "Cells", CreatedAt: now.Add(-time.Hour)},
			{ID: "new", GraphID: "g1", Title: "Mitosis", CreatedAt: now},
		},
		Edges: []domain.GraphEdge{{Source: "new", Target: "old"}},
	}
}

func loaded(t *testing.T) *View {
	t.Helper()
	mock := &tuitest.MockGraphService{
		ViewFunc: func(context.Context, string) (*domain.GraphView, error) {
			return sampleView(), nil
		},
	}
	v := NewView(nil, mock)
	cmd := v.SetGraph(biology)
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil)
	require.NotNil(t, v)
	assert.Nil(t, v.Init())
	assert.Nil(t, v.Graph())
	assert.Contains(t, v.View(), "No graph selected.")
}

func TestView_SetGraph(t *testing.T) {
	var gotID string
	mock := &tuitest.MockGraphService{
		ViewFunc: func(_ context.Context, graphID string) (*domain.GraphView, error) {
			gotID = graphID
			return sampleView(), nil
		},
	}
	v := NewView(nil, mock)

	cmd := v.SetGraph(biology)
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	assert.Contains(t, v.View(), "Loading notes...")

	v, _ = v.Update(cmd())
	assert.Equal(t, "g1", gotID)
	assert.False(t, v.Loading())
	assert.Equal(t, 2, v.Count())
}

func TestView_NewestFirst(t *testing.T) {
	v := loaded(t)
	notes := v.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, "new", notes[0].ID)
	assert.Equal(t, "old", notes[1].ID)
}

func TestView_Render(t *testing.T) {
	v := loaded(t)
	v.SetDimensions(100, 30)

	view := v.View()
	assert.Contains(t, view, "Biology")
	assert.Contains(t, view, "Textbook · 1 links")
	assert.Contains(t, view, "Mitosis")
	assert.Contains(t, view, "Cells")
}

func TestView_LoadError(t *testing.T) {
	mock := &tuitest.MockGraphService{
		ViewFunc: func(context.Context, string) (*domain.GraphView, error) {
			return nil, errors.New("graph not found")
		},
	}
	v := NewView(nil, mock)
	v, _ = v.Update(v.SetGraph(biology)())

	assert.EqualError(t, v.Err(), "graph not found")
	assert.Contains(t, v.View(), "Error: graph not found")
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil)
	v, _ = v.Update(v.SetGraph(biology)())
	assert.Error(t, v.Err())
}

func TestView_StaleResultIgnored(t *testing.T) {
	v := loaded(t)
	v, _ = v.Update(messages.NotesLoaded{GraphID: "other", Notes: []domain.Node{{ID: "x"}}})
	assert.Equal(t, 2, v.Count())
}

func TestView_EnterOpensNote(t *testing.T) {
	v := loaded(t)
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.NoteSelected{NodeID: "old", Back: messages.ViewNotes}, cmd())
}

func TestView_EnterOnEmptyList(t *testing.T) {
	v := NewView(nil, nil)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_Reload(t *testing.T) {
	calls := 0
	mock := &tuitest.MockGraphService{
		ViewFunc: func(context.Context, string) (*domain.GraphView, error) {
			calls++
			return sampleView(), nil
		},
	}
	v := NewView(nil, mock)
	v, _ = v.Update(v.SetGraph(biology)())

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	v, _ = v.Update(cmd())
	assert.Equal(t, 2, calls)
	assert.False(t, v.Loading())
}

func TestView_ReloadWithoutGraph(t *testing.T) {
	v := NewView(nil, nil)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)
	assert.False(t, v.Loading())
}
