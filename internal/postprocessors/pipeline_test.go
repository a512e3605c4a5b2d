package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

type stubProcessor struct {
	name  string
	out   []domain.Chunk
	err   error
	seen  []domain.Chunk
	calls int
}

func (s *stubProcessor) Name() string { return s.name }

func (s *stubProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	s.calls++
	s.seen = chunks
	return s.out, s.err
}

func TestPipeline_RunsInOrder(t *testing.T) {
	first := &stubProcessor{name: "first", out: []domain.Chunk{{Text: "a"}, {Text: "b"}}}
	second := &stubProcessor{name: "second", out: []domain.Chunk{{Text: "b"}, {Text: "c"}, {Text: "d"}}}
	p := NewPipeline(first, second)

	chunks, err := p.Process(context.Background(), &domain.Document{Content: "x"})

	require.NoError(t, err)
	assert.Nil(t, first.seen)
	assert.Equal(t, first.out, second.seen)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
	}
}

func TestPipeline_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_ProcessorError(t *testing.T) {
	failing := &stubProcessor{name: "broken", err: errors.New("boom")}
	after := &stubProcessor{name: "after"}

	_, err := NewPipeline(failing, after).Process(context.Background(), &domain.Document{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor broken: boom")
	assert.Zero(t, after.calls)
}

func TestDefaultPipeline(t *testing.T) {
	p := DefaultPipeline(2000, 100)
	assert.Equal(t, 1, p.Len())

	chunks, err := p.Process(context.Background(), &domain.Document{Content: "Chapter 1 Intro\nBody text."})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Chapter 1 Intro", chunks[0].SectionTitle)
}
