package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/adapters/driven/embedding/zero"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/memory"
	vectormemory "github.com/atlus-labs/atlus/internal/adapters/driven/vector/memory"
	"github.com/atlus-labs/atlus/internal/adapters/driven/vector/nop"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	"github.com/atlus-labs/atlus/internal/generators/local"
	"github.com/atlus-labs/atlus/internal/normalisers"
	"github.com/atlus-labs/atlus/internal/normalisers/plaintext"
	"github.com/atlus-labs/atlus/internal/postprocessors"
)

// --- Mock implementations ---

// constEmbedder returns the same unit vector for every text, so every
// pair of nodes scores 1.0.
type constEmbedder struct {
	calls int
}

func (e *constEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (e *constEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (e *constEmbedder) Dimensions() int             { return 3 }
func (e *constEmbedder) ModelName() string           { return "const" }
func (e *constEmbedder) Ping(context.Context) error { return nil }
func (e *constEmbedder) Close() error                { return nil }

// skewEmbedder returns len(texts)+skew vectors whenever a text
// contains the marker, and the right count otherwise.
type skewEmbedder struct {
	constEmbedder
	marker string
	skew   int
}

func (e *skewEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out, _ := e.constEmbedder.EmbedBatch(ctx, texts)
	for _, t := range texts {
		if strings.Contains(t, e.marker) {
			if e.skew < 0 {
				return out[:len(out)+e.skew], nil
			}
			for i := 0; i < e.skew; i++ {
				out = append(out, []float32{1, 0, 0})
			}
			return out, nil
		}
	}
	return out, nil
}

// failingIndex rejects every upsert.
type failingIndex struct {
	nop.Index
}

func (f *failingIndex) Upsert(context.Context, string, []domain.VectorRecord) error {
	return errors.New("qdrant unreachable")
}

// unqueryableIndex stores vectors but fails every neighbour query.
type unqueryableIndex struct {
	*vectormemory.Index
}

func (u *unqueryableIndex) Query(context.Context, string, []float32, domain.QueryOptions) ([]domain.VectorMatch, error) {
	return nil, errors.New("qdrant timeout")
}

// brokenNormaliser fails every PDF.
type brokenNormaliser struct{}

func (brokenNormaliser) SupportedMIMETypes() []string { return []string{"application/pdf"} }
func (brokenNormaliser) Priority() int                { return 90 }
func (brokenNormaliser) Normalise(context.Context, *domain.RawDocument) (*driven.NormaliseResult, error) {
	return nil, errors.New("corrupt xref table")
}

// gateNormaliser blocks until released so a request can be observed mid-flight.
type gateNormaliser struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gateNormaliser) SupportedMIMETypes() []string { return []string{"text/plain"} }
func (g *gateNormaliser) Priority() int                { return 95 }
func (g *gateNormaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	close(g.entered)
	<-g.release
	return plaintext.New().Normalise(ctx, raw)
}

// --- Harness ---

type harness struct {
	store  *memory.Store
	index  driven.VectorIndex
	ingest *IngestionService
	graphs *GraphService
	nodes  *NodeService
	graph  *domain.Graph
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	registry    driven.NormaliserRegistry
	adjacency   domain.AdjacencyMode
	concurrency int
}

func withEmbedder(e driven.EmbeddingService) harnessOption {
	return func(c *harnessConfig) { c.embedder = e }
}

func withIndex(i driven.VectorIndex) harnessOption {
	return func(c *harnessConfig) { c.index = i }
}

func withRegistry(r driven.NormaliserRegistry) harnessOption {
	return func(c *harnessConfig) { c.registry = r }
}

func withAdjacency(m domain.AdjacencyMode) harnessOption {
	return func(c *harnessConfig) { c.adjacency = m }
}

func withConcurrency(n int) harnessOption {
	return func(c *harnessConfig) { c.concurrency = n }
}

// newHarness wires the services over in-memory adapters. The defaults
// are the degraded strategies: zero embeddings and a no-op index.
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{
		embedder:    zero.New(3),
		index:       nop.New(),
		adjacency:   domain.AdjacencyEdges,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		r := normalisers.NewDefaultRegistry()
		r.Register(brokenNormaliser{})
		cfg.registry = r
	}

	store := memory.NewStore()
	linker := NewLinker(cfg.index, store.Adjacency(cfg.adjacency), domain.DefaultLinkerSettings())
	h := &harness{
		store: store,
		index: cfg.index,
		ingest: NewIngestionService(store, cfg.registry, postprocessors.DefaultPipeline(2000, 100),
			local.New(), cfg.embedder, cfg.index, linker, WithConcurrency(cfg.concurrency), WithFileTimeout(time.Minute)),
		graphs: NewGraphService(store, cfg.index),
		nodes:  NewNodeService(store, cfg.embedder, cfg.index, linker),
	}

	graph, err := h.graphs.CreateGraph(context.Background(), driving.CreateGraphInput{Name: "Biology", OwnerID: "owner-1"})
	require.NoError(t, err)
	h.graph = graph
	return h
}

func (h *harness) listNodes(t *testing.T) []domain.Node {
	t.Helper()
	nodes, err := h.store.ListNodes(context.Background(), h.graph.ID)
	require.NoError(t, err)
	return nodes
}

func chapterText() string {
	return "Chapter 1 Overview\n" +
		strings.Repeat("This chapter introduces X and the ideas around it.\n", 8) +
		"\nChapter 2 Details\n" +
		"This chapter covers Y in depth, with worked examples.\n"
}

func textFile(name, content string) domain.IngestFile {
	return domain.IngestFile{Name: name, Content: []byte(content)}
}

// --- Tests ---

func TestIngest_ChapterSections(t *testing.T) {
	h := newHarness(t)

	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: h.graph.ID,
		Files:   []domain.IngestFile{textFile("biology.txt", chapterText())},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.NodesCreated)

	nodes := h.listNodes(t)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Chapter 1 Overview", nodes[0].SectionTitle)
	assert.Equal(t, "Chapter 2 Details", nodes[1].SectionTitle)
	assert.Equal(t, "Chapter 1 Overview", nodes[0].Title)
	assert.Equal(t, result.NodeIDs, []string{nodes[0].ID, nodes[1].ID})

	for _, n := range nodes {
		assert.Equal(t, domain.NodeTypeGenerated, n.NodeType)
		assert.Equal(t, n.ID, n.EmbeddingID)
		assert.Equal(t, n.RawText, n.StructuredContent)
		assert.NotEmpty(t, n.SourceFileID)
	}

	files, err := h.store.ListSourceFiles(context.Background(), h.graph.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "biology.txt", files[0].Filename)
	assert.Equal(t, files[0].ID, nodes[0].SourceFileID)
}

func TestIngest_FailedFileDoesNotStopBatch(t *testing.T) {
	h := newHarness(t)

	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: h.graph.ID,
		Files: []domain.IngestFile{
			textFile("scan.pdf", "%PDF-1.4 garbage"),
			textFile("notes.md", "# Cells\nCells are the unit of life."),
		},
	})
	require.NoError(t, err)
	assert.Positive(t, result.NodesCreated)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "scan.pdf: "), result.Errors[0])
	assert.Contains(t, result.Errors[0], "corrupt xref table")
}

func TestIngest_RejectedFiles(t *testing.T) {
	h := newHarness(t)

	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: h.graph.ID,
		Files: []domain.IngestFile{
			textFile("photo.png", "png"),
			textFile("sheet.xlsx", "xlsx"),
			textFile("blank.txt", "  \n\n "),
			textFile("", "ignored"),
		},
	})
	require.NoError(t, err)
	assert.Zero(t, result.NodesCreated)
	assert.Equal(t, []string{
		"Use OCR flow for images: photo.png",
		"Unsupported format: sheet.xlsx",
		"Empty or unreadable: blank.txt",
	}, result.Errors)
	assert.Empty(t, h.listNodes(t))
}

func TestIngest_Validation(t *testing.T) {
	h := newHarness(t)

	_, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{Files: []domain.IngestFile{textFile("a.txt", "a")}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.ingest.Ingest(context.Background(), domain.IngestRequest{GraphID: h.graph.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: "missing",
		Files:   []domain.IngestFile{textFile("a.txt", "a")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_IdenticalEmbeddingsLinkMutually(t *testing.T) {
	for _, mode := range []domain.AdjacencyMode{domain.AdjacencyEdges, domain.AdjacencyList} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(vectormemory.New()), withAdjacency(mode))

			result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
				GraphID: h.graph.ID,
				Files:   []domain.IngestFile{textFile("biology.txt", chapterText())},
			})
			require.NoError(t, err)
			assert.Empty(t, result.Errors)
			assert.Equal(t, 2, result.LinksCreated)

			nodes := h.listNodes(t)
			require.Len(t, nodes, 2)
			assert.Equal(t, []string{nodes[1].ID}, nodes[0].RelatedNodeIDs)
			assert.Equal(t, []string{nodes[0].ID}, nodes[1].RelatedNodeIDs)

			rels, err := h.store.ListRelationships(context.Background(), h.graph.ID)
			require.NoError(t, err)
			if mode == domain.AdjacencyEdges {
				require.Len(t, rels, 2)
				for _, r := range rels {
					assert.Equal(t, domain.EdgeTypeSimilar, r.EdgeType)
					require.NotNil(t, r.Weight)
					assert.InDelta(t, 1.0, *r.Weight, 1e-6)
				}
			} else {
				assert.Empty(t, rels)
			}
		})
	}
}

func TestIngest_DegradedModeIsRepeatable(t *testing.T) {
	h := newHarness(t)
	req := domain.IngestRequest{
		GraphID: h.graph.ID,
		Files:   []domain.IngestFile{textFile("biology.txt", chapterText())},
	}

	first, err := h.ingest.Ingest(context.Background(), req)
	require.NoError(t, err)
	second, err := h.ingest.Ingest(context.Background(), req)
	require.NoError(t, err)

	for _, r := range []domain.IngestResult{first, second} {
		assert.Equal(t, 2, r.NodesCreated)
		assert.Zero(t, r.LinksCreated)
		assert.Empty(t, r.Errors)
	}
	assert.Len(t, h.listNodes(t), 4)
}

func TestIngest_EmbeddingCountMismatchAbortsOnlyThatFile(t *testing.T) {
	for _, skew := range []int{-1, 1} {
		h := newHarness(t, withEmbedder(&skewEmbedder{marker: "Mismatch", skew: skew}), withIndex(vectormemory.New()))

		result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			GraphID: h.graph.ID,
			Files: []domain.IngestFile{
				textFile("bad.txt", "Mismatch ahead\nthis file trips the embedder."),
				textFile("good.txt", "Plain notes\nnothing unusual here."),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.NodesCreated)
		require.Len(t, result.Errors, 1)
		assert.True(t, strings.HasPrefix(result.Errors[0], "bad.txt: "), result.Errors[0])
		assert.Contains(t, result.Errors[0], domain.ErrEmbeddingCountMismatch.Error())

		nodes := h.listNodes(t)
		require.Len(t, nodes, 1)
		assert.Equal(t, "Plain notes", nodes[0].Title)
	}
}

func TestIngest_UpsertFailureRollsBack(t *testing.T) {
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(&failingIndex{}))

	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: h.graph.ID,
		Files:   []domain.IngestFile{textFile("biology.txt", chapterText())},
	})
	require.NoError(t, err)
	assert.Zero(t, result.NodesCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "biology.txt: qdrant unreachable", result.Errors[0])
	assert.Empty(t, h.listNodes(t))
}

func TestIngest_LinkFailureRollsBack(t *testing.T) {
	index := &unqueryableIndex{Index: vectormemory.New()}
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(index))

	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: h.graph.ID,
		Files:   []domain.IngestFile{textFile("bio.txt", chapterText())},
	})
	require.NoError(t, err)
	assert.Zero(t, result.NodesCreated)
	assert.Empty(t, result.NodeIDs)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "bio.txt: "), result.Errors[0])
	assert.Contains(t, result.Errors[0], "qdrant timeout")

	assert.Empty(t, h.listNodes(t))
	assert.Zero(t, index.Len(h.graph.ID))
	files, err := h.store.ListSourceFiles(context.Background(), h.graph.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
	rels, err := h.store.ListRelationships(context.Background(), h.graph.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestIngest_LinkFailureReportedWithOtherFailures(t *testing.T) {
	index := &unqueryableIndex{Index: vectormemory.New()}
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(index))

	// The first file fails before any vector is written, the second at linking.
	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{
		GraphID: h.graph.ID,
		Files: []domain.IngestFile{
			textFile("scan.pdf", "%PDF-1.4"),
			textFile("bio.txt", chapterText()),
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "scan.pdf: "), result.Errors[0])
	assert.True(t, strings.HasPrefix(result.Errors[1], "bio.txt: "), result.Errors[1])
	assert.Empty(t, h.listNodes(t))
}

func TestIngest_RetryAfterLinkFailureDoesNotDuplicate(t *testing.T) {
	failing := &unqueryableIndex{Index: vectormemory.New()}
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(failing))
	req := domain.IngestRequest{
		GraphID: h.graph.ID,
		Files:   []domain.IngestFile{textFile("bio.txt", chapterText())},
	}

	_, err := h.ingest.Ingest(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, h.listNodes(t))

	// Same store, working index.
	index := vectormemory.New()
	linker := NewLinker(index, h.store.Adjacency(domain.AdjacencyEdges), domain.DefaultLinkerSettings())
	retry := NewIngestionService(h.store, normalisers.NewDefaultRegistry(), postprocessors.DefaultPipeline(2000, 100),
		local.New(), &constEmbedder{}, index, linker)

	result, err := retry.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.NodesCreated)
	assert.Len(t, h.listNodes(t), 2)
}

func TestIngest_ConcurrentKeepsInputOrder(t *testing.T) {
	h := newHarness(t, withConcurrency(4))

	files := []domain.IngestFile{
		textFile("a.txt", "Alpha\nfirst file."),
		textFile("b.exe", "binary"),
		textFile("c.txt", "Gamma\nthird file."),
		textFile("d.jpg", "jpeg"),
		textFile("e.txt", "Epsilon\nfifth file."),
	}
	result, err := h.ingest.Ingest(context.Background(), domain.IngestRequest{GraphID: h.graph.ID, Files: files})
	require.NoError(t, err)
	assert.Equal(t, 3, result.NodesCreated)
	assert.Equal(t, []string{"Unsupported format: b.exe", "Use OCR flow for images: d.jpg"}, result.Errors)

	titles := make([]string, len(result.NodeIDs))
	for i, id := range result.NodeIDs {
		n, err := h.store.GetNode(context.Background(), id)
		require.NoError(t, err)
		titles[i] = n.Title
	}
	assert.Equal(t, []string{"Alpha", "Gamma", "Epsilon"}, titles)
}

func TestIngest_StatusWhileRunning(t *testing.T) {
	gate := &gateNormaliser{entered: make(chan struct{}), release: make(chan struct{})}
	registry := normalisers.NewRegistry()
	registry.Register(gate)
	h := newHarness(t, withRegistry(registry))

	done := make(chan domain.IngestResult)
	go func() {
		result, _ := h.ingest.Ingest(context.Background(), domain.IngestRequest{
			GraphID: h.graph.ID,
			Files:   []domain.IngestFile{textFile("slow.txt", "Slow\nbody.")},
		})
		done <- result
	}()

	<-gate.entered
	status := h.ingest.Status()
	require.Len(t, status, 1)
	assert.Equal(t, h.graph.ID, status[0].GraphID)
	assert.NotEmpty(t, status[0].RequestID)
	assert.Equal(t, []domain.FileStatus{{File: "slow.txt", Stage: domain.StageExtracting}}, status[0].Files)

	close(gate.release)
	result := <-done
	assert.Equal(t, 1, result.NodesCreated)
	assert.Empty(t, h.ingest.Status())
}

func TestGenerateFromChunks(t *testing.T) {
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(vectormemory.New()))

	result, err := h.ingest.GenerateFromChunks(context.Background(), h.graph.ID, []driving.ChunkInput{
		{Text: "Mitosis splits a cell.", SectionTitle: "Mitosis"},
		{Text: "   "},
		{Text: "Meiosis halves chromosomes.", SourceFileID: "file-1"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.NodesCreated)
	assert.Equal(t, 2, result.LinksCreated)

	nodes := h.listNodes(t)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Mitosis", nodes[0].Title)
	assert.Equal(t, "Meiosis halves chromosomes.", nodes[1].Title)
	assert.Equal(t, "file-1", nodes[1].SourceFileID)
}

func TestGenerateFromMarkdown(t *testing.T) {
	h := newHarness(t)
	markdown := "# Lecture 3\n" + strings.Repeat("x", 7000)

	result, err := h.ingest.GenerateFromMarkdown(context.Background(), h.graph.ID, markdown, "ocr-1")
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.NodeIDs, 1)

	node, err := h.store.GetNode(context.Background(), result.NodeIDs[0])
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeHandwritten, node.NodeType)
	assert.Equal(t, "# Lecture 3", node.Title)
	assert.Equal(t, markdown, node.RawText)
	assert.Equal(t, "ocr-1", node.SourceFileID)

	_, err = h.ingest.GenerateFromMarkdown(context.Background(), h.graph.ID, " \n", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateFromOCR(t *testing.T) {
	h := newHarness(t)

	result, err := h.ingest.GenerateFromOCR(context.Background(), h.graph.ID, "  Photosynthesis\nlight to sugar  ", "")
	require.NoError(t, err)
	require.Len(t, result.NodeIDs, 1)

	node, err := h.store.GetNode(context.Background(), result.NodeIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", node.Title)
	assert.Equal(t, "Photosynthesis\nlight to sugar", node.RawText)
}

func TestAddNote(t *testing.T) {
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(vectormemory.New()))

	first, err := h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Title: "Enzymes", Markdown: "Catalysts.", Tags: []string{"bio"}})
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeNote, first.NodeType)
	assert.Equal(t, []string{"bio"}, first.Tags)
	assert.Equal(t, "Catalysts.", first.StructuredContent)
	assert.Empty(t, first.RelatedNodeIDs)

	second, err := h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Markdown: "## Proteins\nFolded chains."})
	require.NoError(t, err)
	assert.Equal(t, "Proteins", second.Title)
	assert.Equal(t, []string{first.ID}, second.RelatedNodeIDs)

	_, err = h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReindex(t *testing.T) {
	index := vectormemory.New()
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(index))

	_, err := h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Title: "One"})
	require.NoError(t, err)
	_, err = h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Title: "Two"})
	require.NoError(t, err)
	require.NoError(t, index.DeleteNamespace(context.Background(), h.graph.ID))

	result, err := h.ingest.Reindex(context.Background(), h.graph.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Zero(t, result.NodesCreated)
	assert.Len(t, result.NodeIDs, 2)
	assert.Equal(t, 2, result.LinksCreated)
	assert.Equal(t, 2, index.Len(h.graph.ID))

	again, err := h.ingest.Reindex(context.Background(), h.graph.ID)
	require.NoError(t, err)
	assert.Equal(t, result.LinksCreated, again.LinksCreated)

	rels, err := h.store.ListRelationships(context.Background(), h.graph.ID)
	require.NoError(t, err)
	assert.Len(t, rels, 2)
}

func TestReindex_RecordsEmbeddingIDOfSeedNotes(t *testing.T) {
	index := vectormemory.New()
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(index))
	ctx := context.Background()

	created, err := h.graphs.EnsureSeedNodes(ctx, h.graph.ID)
	require.NoError(t, err)
	require.Equal(t, 3, created)
	for _, n := range h.listNodes(t) {
		require.Empty(t, n.EmbeddingID)
	}

	result, err := h.ingest.Reindex(ctx, h.graph.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.NodeIDs, 3)
	assert.Equal(t, 3, index.Len(h.graph.ID))

	nodes := h.listNodes(t)
	require.Len(t, nodes, 3)
	for _, n := range nodes {
		assert.Equal(t, n.ID, n.EmbeddingID)
	}
}
