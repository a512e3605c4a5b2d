package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between supported SQL backends.
type Dialect struct {
	// Name is "sqlite" or "postgres".
	Name string

	// Numbered switches ? placeholders to $1, $2, ...
	Numbered bool

	// IdentitySeq means nodes.seq is filled by the database. Without it
	// the next value is computed in the insert, which is only safe when
	// writers are serialised as they are in SQLite.
	IdentitySeq bool
}

// Supported dialects.
var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", Numbered: true, IdentitySeq: true}
)

// nextSeq is the value expression for nodes.seq in an insert.
func (d Dialect) nextSeq() string {
	if d.IdentitySeq {
		return "DEFAULT"
	}
	return "(SELECT COALESCE(MAX(seq), 0) + 1 FROM nodes)"
}

// Rebind rewrites ? placeholders for the dialect. Queries in this
// package never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
