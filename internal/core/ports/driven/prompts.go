package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations return the built-in default when no override exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptNodeGeneration is the system prompt for turning text into node JSON.
	// It has no format placeholders.
	PromptNodeGeneration = "node_generation"

	// PromptMarkdownStructure is the system prompt for cleaning OCR text
	// into markdown. It has no format placeholders.
	PromptMarkdownStructure = "markdown_structure"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
