package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	"github.com/atlus-labs/atlus/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// Generation input caps.
const (
	maxGenerationText  = 8000
	maxMarkdownText    = 6000
	reindexBatchSize   = 100
	defaultNodeTitle   = "Untitled"
	handwrittenTitle   = "Handwritten note"
	chunksOutcomeLabel = "chunks"
	markdownLabel      = "markdown"
)

// IngestionService turns uploaded files into linked nodes.
type IngestionService struct {
	store       driven.Store
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	generator   driven.NodeGenerator
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	linker      *Linker

	concurrency int
	fileTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	running map[string]*requestProgress
}

// IngestOption configures an IngestionService.
type IngestOption func(*IngestionService)

// WithConcurrency processes up to n files of a request in parallel.
func WithConcurrency(n int) IngestOption {
	return func(s *IngestionService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFileTimeout bounds the processing time of each file.
// Zero disables the limit.
func WithFileTimeout(d time.Duration) IngestOption {
	return func(s *IngestionService) {
		if d >= 0 {
			s.fileTimeout = d
		}
	}
}

// NewIngestionService creates the ingestion orchestrator. The generator,
// embedder and index are the strategies chosen at startup; degraded
// implementations are passed when a capability is not configured.
func NewIngestionService(
	store driven.Store,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	generator driven.NodeGenerator,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	linker *Linker,
	opts ...IngestOption,
) *IngestionService {
	s := &IngestionService{
		store:       store,
		normalisers: normalisers,
		pipeline:    pipeline,
		generator:   generator,
		embedder:    embedder,
		index:       index,
		linker:      linker,
		concurrency: 1,
		now:         time.Now,
		running:     make(map[string]*requestProgress),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes every file of the request and folds the per-file
// outcomes into one result. Only request validation and an unknown
// graph return an error.
func (s *IngestionService) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	if err := req.Validate(); err != nil {
		return domain.IngestResult{}, err
	}
	if err := s.requireGraph(ctx, req.GraphID); err != nil {
		return domain.IngestResult{}, err
	}

	progress := s.track(req)
	defer s.untrack(progress.requestID)

	log := logger.With("component", "ingest", "request", progress.requestID, "graph", req.GraphID)
	log.Info("ingest started", "files", len(req.Files), "generator", s.generator.Mode(), "embedder", s.embedder.ModelName())

	outcomes := make([]domain.FileOutcome, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, file := range req.Files {
		g.Go(func() error {
			outcomes[i] = s.ingestFile(gctx, req.GraphID, file, func(stage domain.FileStage) {
				progress.set(i, stage)
			})
			return nil
		})
	}
	_ = g.Wait()

	result := domain.FoldOutcomes(outcomes)
	log.Info("ingest complete", "nodes", result.NodesCreated, "links", result.LinksCreated, "errors", len(result.Errors))
	return result, nil
}

// ingestFile runs one file through the pipeline. It never panics on bad
// input and reports every failure in the outcome.
func (s *IngestionService) ingestFile(ctx context.Context, graphID string, file domain.IngestFile, setStage func(domain.FileStage)) domain.FileOutcome {
	outcome := domain.FileOutcome{File: file.Name}
	if strings.TrimSpace(file.Name) == "" {
		outcome.Skipped = true
		return outcome
	}

	fail := func(err *domain.FileError) domain.FileOutcome {
		setStage(domain.StageFailed)
		outcome.Stage = domain.StageFailed
		outcome.Err = err
		logger.Warn("file failed", "file", file.Name, "stage", err.Stage, "err", err)
		return outcome
	}

	fileType, ok := domain.FileTypeFor(file.Name)
	if !ok {
		return fail(domain.UnsupportedFormatError(file.Name))
	}
	if fileType == domain.FileTypeImage {
		return fail(domain.ImageInputError(file.Name))
	}

	if s.fileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fileTimeout)
		defer cancel()
	}

	setStage(domain.StageExtracting)
	normalised, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:      file.Name,
		MIMEType: fileType.MIMEType(),
		Content:  file.Content,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) && !errors.Is(err, domain.ErrUnsupportedInput) {
			err = fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		return fail(domain.NewFileError(file.Name, domain.StageExtracting, err))
	}
	doc := normalised.Document
	if strings.TrimSpace(doc.Content) == "" {
		return fail(domain.EmptyTextError(file.Name))
	}

	source := &domain.SourceFile{
		ID:        uuid.NewString(),
		GraphID:   graphID,
		Filename:  file.Name,
		FileType:  fileType,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveSourceFile(ctx, source); err != nil {
		return fail(domain.NewFileError(file.Name, domain.StageExtracting, fmt.Errorf("save source file: %w", err)))
	}
	// A failed file leaves no source file behind.
	fail = func(err *domain.FileError) domain.FileOutcome {
		if rbErr := s.store.DeleteSourceFile(context.WithoutCancel(ctx), source.ID); rbErr != nil {
			logger.Error("rollback failed", "file", file.Name, "source_file", source.ID, "err", rbErr)
		}
		setStage(domain.StageFailed)
		outcome.Stage = domain.StageFailed
		outcome.Err = err
		logger.Warn("file failed", "file", file.Name, "stage", err.Stage, "err", err)
		return outcome
	}
	doc.ID = source.ID
	doc.URI = file.Name

	setStage(domain.StageChunking)
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return fail(domain.NewFileError(file.Name, domain.StageChunking, err))
	}

	setStage(domain.StageGenerating)
	payloads := make([]domain.NodePayload, 0, len(chunks))
	for _, c := range chunks {
		p, err := s.chunkPayload(ctx, c.Text, c.SectionTitle, source.ID)
		if err != nil {
			return fail(domain.NewFileError(file.Name, domain.StageGenerating, err))
		}
		payloads = append(payloads, p)
	}

	built, stage, err := s.buildNodes(ctx, graphID, payloads, setStage)
	if err != nil {
		return fail(domain.NewFileError(file.Name, stage, err))
	}

	setStage(domain.StageDone)
	outcome.Stage = domain.StageDone
	outcome.NodeIDs = built.nodeIDs
	outcome.LinksCreated = built.links
	logger.Debug("file done", "file", file.Name, "chunks", len(chunks), "nodes", len(built.nodeIDs), "links", built.links)
	return outcome
}

// chunkPayload generates the payload of one chunk of a document.
func (s *IngestionService) chunkPayload(ctx context.Context, text, sectionTitle, sourceRef string) (domain.NodePayload, error) {
	content, err := s.generator.Generate(ctx, domain.Truncate(text, maxGenerationText), sectionTitle)
	if err != nil {
		return domain.NodePayload{}, err
	}
	content.Title = firstNonEmpty(content.Title, sectionTitle, defaultNodeTitle)
	return domain.NodePayload{
		NodeContent:     normaliseContent(content),
		SectionTitle:    sectionTitle,
		RawText:         domain.Truncate(text, domain.MaxRawTextLength),
		SourceReference: sourceRef,
		NodeType:        domain.NodeTypeGenerated,
	}, nil
}

// builtNodes is the output of buildNodes.
type builtNodes struct {
	nodeIDs []string
	links   int
}

// buildNodes embeds, persists, indexes and links one batch of payloads.
// Every node of the batch is indexed before any is linked, so nodes of
// the same batch can link to each other. On failure it returns the
// stage that failed.
func (s *IngestionService) buildNodes(ctx context.Context, graphID string, payloads []domain.NodePayload, setStage func(domain.FileStage)) (builtNodes, domain.FileStage, error) {
	if len(payloads) == 0 {
		return builtNodes{nodeIDs: []string{}}, domain.StageDone, nil
	}

	setStage(domain.StageEmbedding)
	texts := make([]string, len(payloads))
	for i, p := range payloads {
		texts[i] = p.EmbeddingText()
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return builtNodes{}, domain.StageEmbedding, err
	}
	if err := domain.CheckEmbeddingCount(len(texts), vectors); err != nil {
		return builtNodes{}, domain.StageEmbedding, err
	}

	setStage(domain.StagePersisting)
	now := s.now()
	nodes := make([]domain.Node, len(payloads))
	records := make([]domain.VectorRecord, len(payloads))
	ids := make([]string, len(payloads))
	for i, p := range payloads {
		id := uuid.NewString()
		ids[i] = id
		nodes[i] = nodeFromPayload(id, graphID, p, now)
		records[i] = domain.VectorRecord{ID: id, Vector: vectors[i], Metadata: p.VectorMetadata(graphID, id)}
	}

	if err := s.store.SaveNodes(ctx, nodes); err != nil {
		return builtNodes{}, domain.StagePersisting, fmt.Errorf("save nodes: %w", err)
	}
	if err := s.index.Upsert(ctx, graphID, records); err != nil {
		s.rollbackNodes(ctx, graphID, ids)
		return builtNodes{}, domain.StagePersisting, err
	}

	setStage(domain.StageLinking)
	links := 0
	for i, id := range ids {
		linked, err := s.linker.Link(ctx, graphID, id, vectors[i])
		if err != nil {
			s.rollbackNodes(ctx, graphID, ids)
			return builtNodes{}, domain.StageLinking, err
		}
		links += len(linked)
	}
	return builtNodes{nodeIDs: ids, links: links}, domain.StageDone, nil
}

// rollbackNodes undoes a partially built batch: the vectors, the nodes
// and every relationship touching them. It runs even when ctx is done.
func (s *IngestionService) rollbackNodes(ctx context.Context, graphID string, ids []string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.index.Delete(ctx, graphID, ids); err != nil {
		logger.Error("rollback of vectors failed", "graph", graphID, "nodes", len(ids), "err", err)
	}
	if err := s.store.DeleteNodes(ctx, ids); err != nil {
		logger.Error("rollback of nodes failed", "graph", graphID, "nodes", len(ids), "err", err)
	}
}

// GenerateFromChunks creates one node per pre-chunked span of text.
// Blank spans are ignored.
func (s *IngestionService) GenerateFromChunks(ctx context.Context, graphID string, chunks []driving.ChunkInput) (domain.IngestResult, error) {
	if err := s.requireGraph(ctx, graphID); err != nil {
		return domain.IngestResult{}, err
	}

	outcome := domain.FileOutcome{File: chunksOutcomeLabel}
	payloads := make([]domain.NodePayload, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		p, err := s.chunkPayload(ctx, c.Text, c.SectionTitle, c.SourceFileID)
		if err != nil {
			outcome.Err = domain.NewFileError(chunksOutcomeLabel, domain.StageGenerating, err)
			return domain.FoldOutcomes([]domain.FileOutcome{outcome}), nil
		}
		payloads = append(payloads, p)
	}

	return domain.FoldOutcomes([]domain.FileOutcome{s.batchOutcome(ctx, chunksOutcomeLabel, graphID, payloads)}), nil
}

// GenerateFromMarkdown creates a single handwritten node from markdown.
// Generation sees the first 6000 characters; the node keeps all of it.
func (s *IngestionService) GenerateFromMarkdown(ctx context.Context, graphID, markdown, sourceFileID string) (domain.IngestResult, error) {
	if strings.TrimSpace(markdown) == "" {
		return domain.IngestResult{}, &domain.ValidationError{Field: "markdown", Reason: "required"}
	}
	if err := s.requireGraph(ctx, graphID); err != nil {
		return domain.IngestResult{}, err
	}

	content, err := s.generator.Generate(ctx, domain.Truncate(markdown, maxMarkdownText), "")
	if err != nil {
		outcome := domain.FileOutcome{
			File: markdownLabel,
			Err:  domain.NewFileError(markdownLabel, domain.StageGenerating, err),
		}
		return domain.FoldOutcomes([]domain.FileOutcome{outcome}), nil
	}
	content.Title = firstNonEmpty(content.Title, handwrittenTitle)

	payload := domain.NodePayload{
		NodeContent:     normaliseContent(content),
		RawText:         markdown,
		SourceReference: sourceFileID,
		NodeType:        domain.NodeTypeHandwritten,
	}
	return domain.FoldOutcomes([]domain.FileOutcome{s.batchOutcome(ctx, markdownLabel, graphID, []domain.NodePayload{payload})}), nil
}

// GenerateFromOCR structures OCR text as markdown and creates one node from it.
func (s *IngestionService) GenerateFromOCR(ctx context.Context, graphID, ocrText, sourceFileID string) (domain.IngestResult, error) {
	if strings.TrimSpace(ocrText) == "" {
		return domain.IngestResult{}, &domain.ValidationError{Field: "ocr_text", Reason: "required"}
	}
	if err := s.requireGraph(ctx, graphID); err != nil {
		return domain.IngestResult{}, err
	}

	markdown, err := s.generator.StructureMarkdown(ctx, ocrText)
	if err != nil || strings.TrimSpace(markdown) == "" {
		if err == nil {
			err = fmt.Errorf("%w: empty markdown", domain.ErrGeneration)
		}
		outcome := domain.FileOutcome{
			File: markdownLabel,
			Err:  domain.NewFileError(markdownLabel, domain.StageGenerating, err),
		}
		return domain.FoldOutcomes([]domain.FileOutcome{outcome}), nil
	}
	return s.GenerateFromMarkdown(ctx, graphID, markdown, sourceFileID)
}

// AddNote creates a user-authored note, indexes it and links it.
func (s *IngestionService) AddNote(ctx context.Context, input driving.NoteInput) (*domain.Node, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" && strings.TrimSpace(input.Markdown) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "a title or markdown body is required"}
	}
	if err := s.requireGraph(ctx, input.GraphID); err != nil {
		return nil, err
	}

	summary := firstLine(input.Markdown)
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	payload := domain.NodePayload{
		NodeContent: domain.NodeContent{
			Title:         firstNonEmpty(title, domain.Truncate(summary, 200), defaultNodeTitle),
			Summary:       domain.Truncate(summary, 300),
			Concepts:      []string{},
			RelatedTopics: []string{},
		},
		RawText:  input.Markdown,
		NodeType: domain.NodeTypeNote,
		Tags:     tags,
	}

	built, _, err := s.buildNodes(ctx, input.GraphID, []domain.NodePayload{payload}, func(domain.FileStage) {})
	if err != nil {
		return nil, err
	}
	return s.store.GetNode(ctx, built.nodeIDs[0])
}

// Reindex re-embeds every node of a graph from the relational store,
// upserts the vectors and recomputes similarity links. The result
// lists the reindexed nodes; NodesCreated stays zero.
func (s *IngestionService) Reindex(ctx context.Context, graphID string) (domain.IngestResult, error) {
	if err := s.requireGraph(ctx, graphID); err != nil {
		return domain.IngestResult{}, err
	}
	nodes, err := s.store.ListNodes(ctx, graphID)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("list nodes: %w", err)
	}

	result := domain.IngestResult{NodeIDs: []string{}, Errors: []string{}}
	vectors := make([][]float32, 0, len(nodes))
	for start := 0; start < len(nodes); start += reindexBatchSize {
		batch := nodes[start:min(start+reindexBatchSize, len(nodes))]
		texts := make([]string, len(batch))
		for i, n := range batch {
			texts[i] = payloadOf(n).EmbeddingText()
		}
		embedded, err := s.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			err = domain.CheckEmbeddingCount(len(texts), embedded)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("reindex: %v", err))
			return result, nil
		}

		records := make([]domain.VectorRecord, len(batch))
		for i, n := range batch {
			records[i] = domain.VectorRecord{ID: n.ID, Vector: embedded[i], Metadata: payloadOf(n).VectorMetadata(graphID, n.ID)}
		}
		if err := s.index.Upsert(ctx, graphID, records); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("reindex: %v", err))
			return result, nil
		}
		if err := s.markEmbedded(ctx, batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("reindex: %v", err))
			return result, nil
		}
		vectors = append(vectors, embedded...)
	}

	for i, n := range nodes {
		linked, err := s.linker.Link(ctx, graphID, n.ID, vectors[i])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", n.ID, err))
			continue
		}
		result.NodeIDs = append(result.NodeIDs, n.ID)
		result.LinksCreated += len(linked)
	}
	logger.Info("reindex complete", "graph", graphID, "nodes", len(result.NodeIDs), "links", result.LinksCreated)
	return result, nil
}

// markEmbedded records embedding_id on nodes of batch that were stored
// without one, such as seed notes.
func (s *IngestionService) markEmbedded(ctx context.Context, batch []domain.Node) error {
	var missing []domain.Node
	for i := range batch {
		if batch[i].EmbeddingID == "" {
			n := batch[i]
			n.EmbeddingID = n.ID
			n.UpdatedAt = s.now()
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := s.store.SaveNodes(ctx, missing); err != nil {
		return fmt.Errorf("save embedding ids: %w", err)
	}
	return nil
}

// Status returns the progress of running requests, oldest first.
func (s *IngestionService) Status() []driving.IngestStatus {
	s.mu.Lock()
	progress := make([]*requestProgress, 0, len(s.running))
	for _, p := range s.running {
		progress = append(progress, p)
	}
	s.mu.Unlock()

	sort.Slice(progress, func(i, j int) bool {
		return progress[i].started.Before(progress[j].started)
	})
	out := make([]driving.IngestStatus, len(progress))
	for i, p := range progress {
		out[i] = p.snapshot()
	}
	return out
}

// batchOutcome runs buildNodes for a non-file batch and wraps the result.
func (s *IngestionService) batchOutcome(ctx context.Context, label, graphID string, payloads []domain.NodePayload) domain.FileOutcome {
	built, stage, err := s.buildNodes(ctx, graphID, payloads, func(domain.FileStage) {})
	if err != nil {
		return domain.FileOutcome{File: label, Stage: domain.StageFailed, Err: domain.NewFileError(label, stage, err)}
	}
	return domain.FileOutcome{File: label, Stage: domain.StageDone, NodeIDs: built.nodeIDs, LinksCreated: built.links}
}

func (s *IngestionService) requireGraph(ctx context.Context, graphID string) error {
	_, err := requireGraph(ctx, s.store, graphID)
	return err
}

func (s *IngestionService) track(req domain.IngestRequest) *requestProgress {
	p := &requestProgress{
		requestID: uuid.NewString(),
		graphID:   req.GraphID,
		started:   s.now(),
		files:     make([]domain.FileStatus, len(req.Files)),
	}
	for i, f := range req.Files {
		p.files[i] = domain.FileStatus{File: f.Name, Stage: domain.StagePending}
	}
	s.mu.Lock()
	s.running[p.requestID] = p
	s.mu.Unlock()
	return p
}

func (s *IngestionService) untrack(requestID string) {
	s.mu.Lock()
	delete(s.running, requestID)
	s.mu.Unlock()
}

// requestProgress holds the per-file stages of one running request.
type requestProgress struct {
	requestID string
	graphID   string
	started   time.Time

	mu    sync.Mutex
	files []domain.FileStatus
}

func (p *requestProgress) set(i int, stage domain.FileStage) {
	p.mu.Lock()
	p.files[i].Stage = stage
	p.mu.Unlock()
}

func (p *requestProgress) snapshot() driving.IngestStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	files := make([]domain.FileStatus, len(p.files))
	copy(files, p.files)
	return driving.IngestStatus{RequestID: p.requestID, GraphID: p.graphID, Files: files}
}

// nodeFromPayload builds the persisted node for a payload.
func nodeFromPayload(id, graphID string, p domain.NodePayload, now time.Time) domain.Node {
	tags := p.Tags
	if tags == nil {
		tags = p.Concepts
	}
	return domain.Node{
		ID:                id,
		GraphID:           graphID,
		SourceFileID:      p.SourceReference,
		Title:             domain.Truncate(p.Title, domain.MaxTitleLength),
		Summary:           p.Summary,
		RawText:           p.RawText,
		StructuredContent: p.RawText,
		SectionTitle:      domain.Truncate(p.SectionTitle, domain.MaxSectionTitleLength),
		Concepts:          append([]string{}, p.Concepts...),
		RelatedTopics:     append([]string{}, p.RelatedTopics...),
		Tags:              append([]string{}, tags...),
		NodeType:          p.NodeType,
		EmbeddingID:       id,
		RelatedNodeIDs:    []string{},
		Metadata: map[string]any{
			"source_reference": p.SourceReference,
			"tags":             append([]string{}, tags...),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// payloadOf rebuilds the embedding-relevant fields of a stored node.
func payloadOf(n domain.Node) domain.NodePayload {
	return domain.NodePayload{
		NodeContent: domain.NodeContent{
			Title:    n.Title,
			Summary:  n.Summary,
			Concepts: n.Concepts,
		},
		SectionTitle:    n.SectionTitle,
		SourceReference: n.SourceFileID,
		NodeType:        n.NodeType,
	}
}

func normaliseContent(c domain.NodeContent) domain.NodeContent {
	if c.Concepts == nil {
		c.Concepts = []string{}
	}
	if c.RelatedTopics == nil {
		c.RelatedTopics = []string{}
	}
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#")); line != "" {
			return line
		}
	}
	return ""
}
