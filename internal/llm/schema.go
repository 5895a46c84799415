package llm

import (
	"github.com/taskintel/taskintel/constants"
)

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The same rendering is embedded in the prompt as a steering
// instruction and used locally to validate the response, so prompt and
// validator can never constrain different shapes. Field descriptions double
// as soft prompts for the model.
func BuildExtractionJSONSchema() map[string]any {
	task := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "A concise, action-oriented summary of the task (e.g., 'Update API Schema').",
			},
			"description": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Detailed context, requirements, or acceptance criteria found in the text.",
			},
			"status": map[string]any{
				"type":        "string",
				"enum":        constants.StatusStrings(),
				"description": "Current workflow state. Options: 'pending', 'in-progress', 'completed'.",
			},
			"priority": map[string]any{
				"type":        "string",
				"enum":        constants.PriorityStrings(),
				"description": "Urgency level inferred from the text. Options: 'high', 'medium', 'low'.",
			},
			"owner": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Name of the person responsible for this task.",
			},
			"deadline": map[string]any{
				"type":        []string{"string", "null"},
				"pattern":     `^\d{4}-\d{2}-\d{2}$`,
				"description": "The due date in strictly YYYY-MM-DD format. If vague (e.g., 'next Friday'), convert to a concrete date; if none is found, use null.",
			},
			"source_evidence": map[string]any{
				"type":        []string{"string", "null"},
				"description": "The specific text snippet or quote from the document that justifies this task.",
			},
			// Assigned by the system at ingest; any value the model emits here is discarded.
			"created_at": map[string]any{
				"type":        "string",
				"description": "Timestamp when this task was ingested. Do not populate.",
			},
		},
		"required": []string{"title"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"project_name": map[string]any{
				"type":        []string{"string", "null"},
				"description": "The name of the project inferred from the document header or context.",
			},
			"meeting_date": map[string]any{
				"type":        []string{"string", "null"},
				"pattern":     `^\d{4}-\d{2}-\d{2}$`,
				"description": "The date of the meeting/document in YYYY-MM-DD format.",
			},
			"summary": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "A high-level executive summary (2-3 sentences) of the entire document.",
			},
			"tasks": map[string]any{
				"type":        "array",
				"items":       task,
				"description": "A list of all action items identified in the text, in document order.",
			},
		},
		"required": []string{"summary", "tasks"},
	}
}
