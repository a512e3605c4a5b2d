// Package html extracts readable text from HTML pages. Headings are
// rendered as markdown heading lines so section detection still works.
package html

import (
	"bytes"
	"context"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to plain text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, content, err := extract(raw.Content)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = plaintext.TitleFromURI(raw.URI)
	}

	doc := domain.Document{
		URI:      raw.URI,
		Title:    title,
		Content:  content,
		Metadata: plaintext.CopyMetadata(raw.Metadata),
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "html"

	return &driven.NormaliseResult{Document: doc}, nil
}

// skipped elements contribute no text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true, "svg": true, "template": true,
}

// block elements start a new line.
var block = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "li": true, "tr": true,
	"blockquote": true, "pre": true, "table": true, "section": true, "article": true,
	"ul": true, "ol": true, "header": true, "footer": true, "main": true,
}

var headingLevel = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// extract walks the token stream collecting the page title and body text.
func extract(content []byte) (title, text string, err error) {
	z := xhtml.NewTokenizer(bytes.NewReader(content))

	var (
		lines   []string
		current strings.Builder
		skip    int
		inTitle bool
		titleSB strings.Builder
	)
	newline := func() {
		if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			if z.Err() != io.EOF {
				return "", "", z.Err()
			}
			newline()
			title = strings.Join(strings.Fields(titleSB.String()), " ")
			return title, strings.Join(lines, "\n"), nil

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "title":
				inTitle = true
			case skipped[tag]:
				skip++
			case block[tag]:
				newline()
			case headingLevel[tag] > 0:
				newline()
				current.WriteString(strings.Repeat("#", headingLevel[tag]) + " ")
			}

		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "title":
				inTitle = false
			case skipped[tag]:
				if skip > 0 {
					skip--
				}
			case block[tag], headingLevel[tag] > 0:
				newline()
			}

		case xhtml.TextToken:
			switch {
			case inTitle:
				titleSB.Write(z.Text())
			case skip == 0:
				current.Write(z.Text())
				current.WriteByte(' ')
			}
		}
	}
}
