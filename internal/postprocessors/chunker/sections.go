package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

const (
	// maxHeaderLength is the longest line still considered a section header.
	maxHeaderLength = 200

	// minSectionLength is how much text a chunk must hold before a header
	// may close it. Shorter header-like lines stay inside the open chunk.
	minSectionLength = 300
)

var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:Chapter\s+\d+[.:]?\s*)(.+)$`),
	regexp.MustCompile(`^(\d+\.\d*)\s+(.+)$`),
	regexp.MustCompile(`^(\d+)\s+([A-Z][^.]+)$`),
	regexp.MustCompile(`^([A-Z][A-Za-z\s]+)$`),
	regexp.MustCompile(`^#+\s+(.+)$`),
}

func isLikelyHeader(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxHeaderLength {
		return false
	}
	for _, p := range sectionPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// splitter holds the open chunk while Split scans lines.
type splitter struct {
	maxSize int
	overlap int

	chunks  []domain.Chunk
	section string
	lines   []string
	length  int
}

// Split breaks text into chunks along detected section headers, falling
// back to size-bounded cuts that carry an overlap window of trailing lines
// into the next chunk. Lengths are counted in characters.
//
// Empty or whitespace-only text yields no chunks. Any other text yields at
// least one chunk.
func Split(text string, maxChunkSize, overlap int) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}

	s := &splitter{maxSize: maxChunkSize, overlap: overlap}
	for _, line := range strings.Split(text, "\n") {
		s.feed(line)
	}
	s.flush()

	if len(s.chunks) == 0 {
		return []domain.Chunk{{Text: strings.TrimSpace(text)}}
	}
	return s.chunks
}

func (s *splitter) feed(line string) {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		// Blank lines are kept only inside an open chunk.
		if len(s.lines) > 0 {
			s.lines = append(s.lines, "")
		}
		return
	}

	if isLikelyHeader(stripped) && (len(s.lines) == 0 || s.length > minSectionLength) {
		s.flush()
		s.section = domain.Truncate(stripped, domain.MaxSectionTitleLength)
		s.lines = []string{line}
		s.length = utf8.RuneCountInString(line)
		return
	}

	s.lines = append(s.lines, line)
	s.length += utf8.RuneCountInString(line) + 1

	if s.length >= s.maxSize {
		s.emit()
		s.lines = s.overlapWindow()
		s.length = 0
		for _, l := range s.lines {
			s.length += utf8.RuneCountInString(l) + 1
		}
	}
}

// emit appends the open chunk, if it has content, tagged with the current section.
func (s *splitter) emit() {
	text := strings.TrimSpace(strings.Join(s.lines, "\n"))
	if text == "" {
		return
	}
	s.chunks = append(s.chunks, domain.Chunk{
		Text:         text,
		SectionTitle: s.section,
		Position:     len(s.chunks),
	})
}

// flush emits the open chunk and closes it.
func (s *splitter) flush() {
	if len(s.lines) > 0 {
		s.emit()
	}
	s.lines = nil
	s.length = 0
}

// overlapWindow returns the trailing lines of the open chunk whose
// combined length first reaches the overlap size, in original order.
func (s *splitter) overlapWindow() []string {
	n := 0
	start := len(s.lines)
	for start > 0 {
		start--
		n += utf8.RuneCountInString(s.lines[start]) + 1
		if n >= s.overlap {
			break
		}
	}
	window := make([]string, len(s.lines)-start)
	copy(window, s.lines[start:])
	return window
}
