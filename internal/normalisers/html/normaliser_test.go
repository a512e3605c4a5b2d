package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Photosynthesis &amp; Light</title>
<style>p{color:red}</style></head>
<body><script>var x = 1;</script>
<h1>Overview</h1><p>Plants   convert <b>light</b> into energy.</p>
<h2>Stages</h2><ul><li>Light reactions</li><li>Calvin cycle</li></ul>
</body></html>`

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "photo.html",
		MIMEType: "text/html",
		Content:  []byte(page),
	})

	require.NoError(t, err)
	doc := result.Document
	assert.Equal(t, "Photosynthesis & Light", doc.Title)
	assert.Equal(t, "# Overview\nPlants convert light into energy.\n## Stages\nLight reactions\nCalvin cycle", doc.Content)
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestNormalise_TitleFallback(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/pages/lab_report.html",
		Content: []byte("<p>No title tag</p>"),
	})

	require.NoError(t, err)
	assert.Equal(t, "lab report", result.Document.Title)
	assert.Equal(t, "No title tag", result.Document.Content)
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
