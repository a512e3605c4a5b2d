// Package llm generates node content by asking a chat model for JSON.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Ensure Generator implements the interfaces.
var (
	_ driven.NodeGenerator    = (*Generator)(nil)
	_ driven.PromptStoreAware = (*Generator)(nil)
)

const (
	maxInput          = 8000
	maxOCRInput       = 12000
	defaultTemp       = 0.3
	markdownTemp      = 0.2
	codeFence         = "```"
	sectionLinePrefix = "Section: "
)

// DefaultNodePrompt is used when no PromptStore override exists.
const DefaultNodePrompt = `You are a knowledge graph assistant. Given a chunk of textbook or note content, output a JSON object with:
- "title": short descriptive title (string)
- "summary": 2-4 sentence summary (string)
- "concepts": list of key concepts/terms (list of strings)
- "related_topics": list of topic phrases that might link to other nodes (list of strings, for linking)

Output only valid JSON, no markdown code fence.`

// DefaultMarkdownPrompt is used when no PromptStore override exists.
const DefaultMarkdownPrompt = `You are an assistant that turns raw OCR text from handwritten notes into clean, structured Markdown.
Use: headings (##), bullet points (-), numbered lists, **bold** for terms, and clear paragraph breaks.
If you see equations, use inline math in $...$ or block $$...$$ where appropriate.
Output only the Markdown, no explanation.`

// Generator is the enriched NodeGenerator.
type Generator struct {
	llm         driven.LLMService
	temperature float64
	promptStore driven.PromptStore
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		if t >= 0 {
			g.temperature = t
		}
	}
}

// New creates a generator backed by the given LLM service.
func New(llm driven.LLMService, opts ...Option) *Generator {
	g := &Generator{llm: llm, temperature: defaultTemp}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mode returns "llm".
func (g *Generator) Mode() string {
	return "llm"
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.promptStore = store
}

// Generate sends the text, prefixed with its section title when present,
// and parses the reply as node JSON. Any failure is ErrGeneration.
func (g *Generator) Generate(ctx context.Context, text, sectionTitle string) (domain.NodeContent, error) {
	user := domain.Truncate(text, maxInput)
	if sectionTitle != "" {
		user = sectionLinePrefix + sectionTitle + "\n\n" + user
	}

	reply, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: g.loadPrompt(driven.PromptNodeGeneration, DefaultNodePrompt)},
		{Role: "user", Content: user},
	}, driven.ChatOptions{Temperature: g.temperature, JSON: true})
	if err != nil {
		return domain.NodeContent{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	return ParseContent(reply)
}

// StructureMarkdown asks the model to rewrite OCR text as markdown.
func (g *Generator) StructureMarkdown(ctx context.Context, ocrText string) (string, error) {
	reply, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: g.loadPrompt(driven.PromptMarkdownStructure, DefaultMarkdownPrompt)},
		{Role: "user", Content: domain.Truncate(ocrText, maxOCRInput)},
	}, driven.ChatOptions{Temperature: markdownTemp})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return strings.TrimSpace(reply), nil
}

// ParseContent decodes a model reply into node content. A surrounding
// code fence (with or without a language tag) is removed first. The
// reply must be a single object with only the known keys and a non-blank
// title or summary.
func ParseContent(reply string) (domain.NodeContent, error) {
	dec := json.NewDecoder(strings.NewReader(StripFence(reply)))
	dec.DisallowUnknownFields()

	var content domain.NodeContent
	if err := dec.Decode(&content); err != nil {
		return domain.NodeContent{}, fmt.Errorf("%w: decode reply: %w", domain.ErrGeneration, err)
	}
	if dec.More() {
		return domain.NodeContent{}, fmt.Errorf("%w: trailing data after reply object", domain.ErrGeneration)
	}
	if strings.TrimSpace(content.Title) == "" && strings.TrimSpace(content.Summary) == "" {
		return domain.NodeContent{}, fmt.Errorf("%w: reply has neither title nor summary", domain.ErrGeneration)
	}
	if content.Concepts == nil {
		content.Concepts = []string{}
	}
	if content.RelatedTopics == nil {
		content.RelatedTopics = []string{}
	}
	return content, nil
}

// StripFence removes a leading ``` line and everything from the last ```.
func StripFence(reply string) string {
	raw := strings.TrimSpace(reply)
	if !strings.HasPrefix(raw, codeFence) {
		return raw
	}
	if i := strings.Index(raw, "\n"); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.LastIndex(raw, codeFence); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

func (g *Generator) loadPrompt(name, fallback string) string {
	if g.promptStore == nil {
		return fallback
	}
	prompt, err := g.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
