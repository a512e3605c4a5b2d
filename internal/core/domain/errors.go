package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a request is missing required fields.
	// Validation failures abort an ingestion before any file is touched.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedInput indicates a file type the pipeline will not ingest.
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrExtraction indicates text could not be extracted from a file.
	ErrExtraction = errors.New("extraction failed")

	// ErrGeneration indicates node content could not be generated,
	// either because the capability failed or its response was malformed.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingCountMismatch indicates a batch embedding call returned
	// a different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrVectorStore indicates a configured vector store could not be reached
	// or rejected a request.
	ErrVectorStore = errors.New("vector store error")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Node generation falls back to the local generator.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Embeddings fall back to zero vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	// Upserts become no-ops and queries return nothing.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError describes a request-level validation failure.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation as the sentinel for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FileError is a failure isolated to one file of an ingestion request.
// Its message is the human-readable string reported to callers.
type FileError struct {
	// File is the original filename.
	File string

	// Stage is the pipeline stage that failed.
	Stage FileStage

	// Err is the underlying cause.
	Err error

	message string
}

// NewFileError wraps a failure of file at the given stage.
// The reported message is "<file>: <cause>".
func NewFileError(file string, stage FileStage, err error) *FileError {
	return &FileError{File: file, Stage: stage, Err: err}
}

// UnsupportedFormatError reports a file whose extension is not ingestible.
func UnsupportedFormatError(file string) *FileError {
	return &FileError{
		File:    file,
		Stage:   StagePending,
		Err:     ErrUnsupportedInput,
		message: "Unsupported format: " + file,
	}
}

// ImageInputError reports an image file, which must go through the OCR flow.
func ImageInputError(file string) *FileError {
	return &FileError{
		File:    file,
		Stage:   StagePending,
		Err:     ErrUnsupportedInput,
		message: "Use OCR flow for images: " + file,
	}
}

// EmptyTextError reports a file that yielded no usable text.
func EmptyTextError(file string) *FileError {
	return &FileError{
		File:    file,
		Stage:   StageExtracting,
		Err:     ErrExtraction,
		message: "Empty or unreadable: " + file,
	}
}

// Error renders the message reported in IngestResult.Errors.
func (e *FileError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *FileError) Unwrap() error {
	return e.Err
}
