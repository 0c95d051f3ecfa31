package tutor

import "github.com/mindsync-ai/mindsync/internal/llm"

// AnalysisSchema defines the JSON schema for unfamiliar-word analysis.
var AnalysisSchema = &llm.Schema{
	Name:        "vocabulary-analysis",
	Description: "Words from a document the reader is unlikely to know, with definitions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"unfamiliarWords": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"word": map[string]any{
							"type":        "string",
							"description": "The word exactly as it appears in the document",
						},
						"definition": map[string]any{
							"type":        "string",
							"description": "Plain-language definition (one sentence)",
						},
						"example": map[string]any{
							"type":        "string",
							"description": "A short example sentence using the word",
						},
					},
					"required":             []any{"word", "definition", "example"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"unfamiliarWords"},
		"additionalProperties": false,
	},
}

// QuizSchema defines the JSON schema for quiz generation.
var QuizSchema = &llm.Schema{
	Name:        "document-quiz",
	Description: "Multiple-choice comprehension and vocabulary questions about a document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly four answer options",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The correct option, copied exactly from options",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the answer",
						},
					},
					"required":             []any{"question", "options", "correctAnswer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// ChatSchema defines the JSON schema for a chat reply.
var ChatSchema = &llm.Schema{
	Name:        "chat-reply",
	Description: "An answer to the reader's question about the document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{
				"type":        "string",
				"description": "The answer, grounded in the document",
			},
		},
		"required":             []any{"response"},
		"additionalProperties": false,
	},
}
