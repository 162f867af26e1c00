package quizzify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
)

// questionSetSchema is the shape the model is asked to produce.
const questionSetSchema = `{
	"type": "array",
	"minItems": 5,
	"maxItems": 5,
	"items": {
		"type": "object",
		"properties": {
			"question": {"type": "string", "minLength": 1},
			"options": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 4,
				"maxItems": 4,
				"uniqueItems": true
			},
			"answer": {"type": "string"}
		},
		"required": ["question", "options", "answer"]
	}
}`

var compiledSchema = mustCompileSchema(questionSetSchema)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("quizzify: invalid question set schema: %v", err))
	}
	return schema
}

// ParseQuestions turns raw model output into a validated QuestionSet.
// It is all-or-nothing: one bad question rejects the whole response.
func ParseQuestions(raw string) (QuestionSet, error) {
	cleaned := stripCodeFences(raw)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, &ParseError{Kind: Malformed, Reason: "response is not valid JSON", Err: err}
	}

	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(decoded))
	if err != nil {
		return nil, &ParseError{Kind: SchemaViolation, Reason: "schema validation failed", Err: err}
	}
	if !result.Valid() {
		messages := lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string {
			return e.String()
		})
		return nil, &ParseError{Kind: SchemaViolation, Reason: strings.Join(messages, "; ")}
	}

	var questions QuestionSet
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, &ParseError{Kind: Malformed, Reason: "failed to decode questions", Err: err}
	}

	// The typed decode matches keys case-insensitively, so the schema pass
	// alone does not bind what ends up in questions.
	if err := questions.Validate(); err != nil {
		return nil, &ParseError{Kind: SchemaViolation, Reason: err.Error()}
	}

	VerboseLog("parsed %d questions from %d bytes of model output", len(questions), len(raw))
	return questions, nil
}

// stripCodeFences removes markdown fence markers wherever they appear.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
