package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewGraphs, "graphs"},
		{ViewNotes, "notes"},
		{ViewSearch, "search"},
		{ViewNote, "note"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for v := ViewMenu; v <= ViewHelp; v++ {
		name := v.String()
		assert.False(t, seen[name], "duplicate view name %q", name)
		seen[name] = true
	}
}
