// Package file keeps user settings on disk under ~/.atlus.
//
// ConfigStore reads and writes config.toml with flattened dot keys.
// PromptStore serves the generation prompts, preferring user overrides
// in prompts/*.txt over the built-in text.
package file
