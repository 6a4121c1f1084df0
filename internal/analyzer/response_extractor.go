package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"

	"go-social-analyzer/pkg/models"
)

// ParseFailurePrefix leads the suggestions of a result that could not be parsed.
const ParseFailurePrefix = "解析失败，原始回复："

// Fence patterns, tried in order: a ```json block, then any bare ``` block.
var (
	jsonFence = regexp.MustCompile("(?s)```json\n(.*?)\n```")
	bareFence = regexp.MustCompile("(?s)```(.*?)```")
)

// ResponseExtractor pulls the JSON analysis out of a model reply.
type ResponseExtractor struct{}

// NewResponseExtractor creates a response extractor
func NewResponseExtractor() *ResponseExtractor {
	return &ResponseExtractor{}
}

// Extract returns the decoded JSON object found in raw. When no object can
// be decoded it returns a degraded result that keeps the reply text visible.
func (e *ResponseExtractor) Extract(raw string) models.AnalysisResult {
	candidate := StripFence(raw)

	result, err := decodeObject(candidate)
	if err != nil {
		return degradedResult(candidate)
	}
	return result
}

// StripFence returns the inner text of the first fenced block, or raw
// unchanged. Only the first pattern that matches is consulted; an empty
// match keeps raw.
func StripFence(raw string) string {
	for _, re := range []*regexp.Regexp{jsonFence, bareFence} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if m[1] != "" {
			return m[1]
		}
		return raw
	}
	return raw
}

var errTrailingData = errors.New("trailing data after JSON object")

// decodeObject accepts exactly one JSON object. Numbers stay json.Number so
// the provider's values pass through unchanged.
func decodeObject(text string) (models.AnalysisResult, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var result models.AnalysisResult
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("JSON value is not an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return result, nil
}

func degradedResult(text string) models.AnalysisResult {
	return models.AnalysisResult{
		"personality":      text,
		"chat_suggestions": []any{ParseFailurePrefix, text},
		"action_guide":     []any{},
	}
}
