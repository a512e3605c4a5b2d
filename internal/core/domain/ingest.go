package domain

import (
	"path/filepath"
	"strings"
)

// FileType is the ingestion category of an uploaded file.
type FileType string

// Available file types.
const (
	FileTypePDF      FileType = "pdf"
	FileTypeText     FileType = "text"
	FileTypeMarkdown FileType = "markdown"
	FileTypeHTML     FileType = "html"
	FileTypeImage    FileType = "image"
)

var extensionTypes = map[string]FileType{
	"pdf":      FileTypePDF,
	"txt":      FileTypeText,
	"md":       FileTypeMarkdown,
	"markdown": FileTypeMarkdown,
	"html":     FileTypeHTML,
	"htm":      FileTypeHTML,
	"jpg":      FileTypeImage,
	"jpeg":     FileTypeImage,
	"png":      FileTypeImage,
}

// FileTypeFor classifies a filename by its extension.
// The boolean is false when the extension is not on the allow-list.
func FileTypeFor(filename string) (FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	ft, ok := extensionTypes[ext]
	return ft, ok
}

// MIMEType returns the content type used to select a normaliser.
func (t FileType) MIMEType() string {
	switch t {
	case FileTypePDF:
		return "application/pdf"
	case FileTypeMarkdown:
		return "text/markdown"
	case FileTypeHTML:
		return "text/html"
	case FileTypeImage:
		return "image/*"
	default:
		return "text/plain"
	}
}

// FileStage is a step of the per-file ingestion state machine.
type FileStage string

// Ingestion stages, in order.
const (
	StagePending    FileStage = "PENDING"
	StageExtracting FileStage = "EXTRACTING"
	StageChunking   FileStage = "CHUNKING"
	StageGenerating FileStage = "GENERATING"
	StageEmbedding  FileStage = "EMBEDDING"
	StagePersisting FileStage = "PERSISTING"
	StageLinking    FileStage = "LINKING"
	StageDone       FileStage = "DONE"
	StageFailed     FileStage = "FAILED"
)

// IsTerminal returns true once a file has finished, successfully or not.
func (s FileStage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// IngestFile is one uploaded file.
type IngestFile struct {
	// Name is the original filename; its extension selects the file type.
	Name string

	// Content is the raw file bytes.
	Content []byte
}

// IngestRequest asks for a set of files to be turned into nodes of a graph.
type IngestRequest struct {
	GraphID string
	Files   []IngestFile
}

// Validate checks the request-level fields. Per-file problems are not
// validation errors; they are reported in the result.
func (r IngestRequest) Validate() error {
	if strings.TrimSpace(r.GraphID) == "" {
		return &ValidationError{Field: "graph_id", Reason: "required"}
	}
	if len(r.Files) == 0 {
		return &ValidationError{Field: "files", Reason: "at least one file is required"}
	}
	return nil
}

// FileOutcome is the result of processing one file.
// Exactly one of Err or the counts is meaningful.
type FileOutcome struct {
	File         string
	Stage        FileStage
	NodeIDs      []string
	LinksCreated int

	// Skipped is set for entries without a filename, which are ignored silently.
	Skipped bool

	Err *FileError
}

// Succeeded reports whether the file produced nodes without error.
func (o FileOutcome) Succeeded() bool {
	return o.Err == nil && !o.Skipped
}

// IngestResult aggregates the outcome of an ingestion request.
// Callers must inspect Errors; a nil error from Ingest does not mean
// every file succeeded.
type IngestResult struct {
	NodesCreated int      `json:"nodes_created"`
	LinksCreated int      `json:"links_created"`
	NodeIDs      []string `json:"node_ids"`
	Errors       []string `json:"errors"`
}

// FoldOutcomes aggregates per-file outcomes in input order.
func FoldOutcomes(outcomes []FileOutcome) IngestResult {
	result := IngestResult{NodeIDs: []string{}, Errors: []string{}}
	for _, o := range outcomes {
		result = result.add(o)
	}
	return result
}

func (r IngestResult) add(o FileOutcome) IngestResult {
	if o.Skipped {
		return r
	}
	if o.Err != nil {
		r.Errors = append(r.Errors, o.Err.Error())
		return r
	}
	r.NodesCreated += len(o.NodeIDs)
	r.LinksCreated += o.LinksCreated
	r.NodeIDs = append(r.NodeIDs, o.NodeIDs...)
	return r
}

// Merge combines two results, keeping r's entries first.
func (r IngestResult) Merge(other IngestResult) IngestResult {
	return IngestResult{
		NodesCreated: r.NodesCreated + other.NodesCreated,
		LinksCreated: r.LinksCreated + other.LinksCreated,
		NodeIDs:      append(append([]string{}, r.NodeIDs...), other.NodeIDs...),
		Errors:       append(append([]string{}, r.Errors...), other.Errors...),
	}
}

// FileStatus is the live progress of one file within a running request.
type FileStatus struct {
	File  string
	Stage FileStage
}
