package llm

import (
	"encoding/json"
	"strings"
)

// BuildExtractionPrompt compiles the single instruction string sent to the
// model. Deterministic given (documentText, schema): Go marshals map keys in
// sorted order. Embedding the schema textually is the first line of defense
// against fabricated structure; the validator is the second, independent one.
//
// Callers must reject empty document text before reaching this function.
func BuildExtractionPrompt(documentText string, schema map[string]any) string {
	var b strings.Builder

	b.WriteString("You are an expert Project Manager AI.\n")
	b.WriteString("Analyze the following text and extract all actionable tasks.\n\n")

	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("1. Output MUST be a single JSON document strictly matching this JSON Schema:\n")
	b.WriteString(mustJSON(schema))
	b.WriteString("\n\n")
	b.WriteString("2. If a value is not found in the text, use null. Never fabricate a value.\n")
	b.WriteString("3. All dates must be absolute, in YYYY-MM-DD format. Resolve relative expressions like 'next Friday' against the document date, or use null.\n")
	b.WriteString("4. For 'source_evidence', quote the exact sentence from the text that justifies the task.\n")
	b.WriteString("5. Be concise.\n\n")

	b.WriteString("TEXT TO ANALYZE:\n")
	b.WriteString(documentText)

	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
