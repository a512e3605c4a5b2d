package domain

// RawDocument is an uploaded file's bytes before text extraction.
type RawDocument struct {
	// URI is the original location or filename.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata carries caller-supplied key-value pairs.
	Metadata map[string]any
}

// Document is the extracted text of a file, ready for chunking.
type Document struct {
	// ID is the source file the text came from.
	ID string

	// URI is the original location or filename.
	URI string

	// Title is a best-effort title taken from the content.
	Title string

	// Content is the full extracted text.
	Content string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any
}
