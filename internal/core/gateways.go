// ABOUTME: Capability interfaces for the external embedding and LLM services
// ABOUTME: Both are optional; absence degrades rather than blocks
package core

// Embedder maps a text to a fixed-dimension vector via an external model.
// A nil Embedder means the capability is absent; semantic search then
// degrades to substring search and content operations skip the refresh.
type Embedder interface {
	GenerateEmbedding(text string) ([]float64, error)
}

// LLM is the abstract text-generation capability used by summarization
type LLM interface {
	Complete(systemPrompt, userPrompt string, temperature float32) (string, error)
}
