package domain

import "time"

// Badge classifies a graph for display and filtering.
type Badge string

// Available graph badges.
const (
	BadgeNotes    Badge = "Notes"
	BadgeTextbook Badge = "Textbook"
	BadgeCompare  Badge = "Compare"
)

// IsValid returns true if the badge is recognised.
func (b Badge) IsValid() bool {
	switch b {
	case BadgeNotes, BadgeTextbook, BadgeCompare:
		return true
	default:
		return false
	}
}

// Graph is the top-level container scoping a set of nodes, relationships,
// and source files. Its ID doubles as the vector-store namespace.
type Graph struct {
	// ID is the unique identifier for the graph.
	ID string

	// Name is the human-readable name.
	Name string

	// Badge classifies the graph.
	Badge Badge

	// OwnerID identifies the owning user. Empty for single-user installs.
	OwnerID string

	// Seeded is set once the welcome nodes have been created.
	Seeded bool

	// CreatedAt is when the graph was created.
	CreatedAt time.Time

	// UpdatedAt is when the graph was last modified.
	UpdatedAt time.Time
}

// SourceFile records one uploaded file that produced nodes.
type SourceFile struct {
	ID        string
	GraphID   string
	Filename  string
	FileType  FileType
	CreatedAt time.Time
}
