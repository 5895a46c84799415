package llm

import "context"

// ExtractRequest carries one document through the extraction pipeline.
type ExtractRequest struct {
	DocumentText string
	RequestID    string
}

// Generator obtains a candidate structured response from the external
// generative model. The return value is raw, untyped text: nothing downstream
// may assume structure until BindExtractionResult has run.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
}
