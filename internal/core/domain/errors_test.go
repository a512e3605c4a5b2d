package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrValidation", ErrValidation},
		{"ErrUnsupportedInput", ErrUnsupportedInput},
		{"ErrExtraction", ErrExtraction},
		{"ErrGeneration", ErrGeneration},
		{"ErrEmbeddingCountMismatch", ErrEmbeddingCountMismatch},
		{"ErrVectorStore", ErrVectorStore},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationError_IsErrValidation(t *testing.T) {
	err := fmt.Errorf("ingest: %w", &ValidationError{Field: "graph_id", Reason: "required"})

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "graph_id: required")

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "graph_id", ve.Field)
}

func TestFileError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *FileError
		want string
		is   error
	}{
		{"unsupported", UnsupportedFormatError("notes.docx"), "Unsupported format: notes.docx", ErrUnsupportedInput},
		{"image", ImageInputError("scan.png"), "Use OCR flow for images: scan.png", ErrUnsupportedInput},
		{"empty", EmptyTextError("blank.txt"), "Empty or unreadable: blank.txt", ErrExtraction},
		{
			"wrapped cause",
			NewFileError("book.pdf", StageExtracting, fmt.Errorf("%w: pdftotext failed", ErrExtraction)),
			"book.pdf: extraction failed: pdftotext failed",
			ErrExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.is))
		})
	}
}
