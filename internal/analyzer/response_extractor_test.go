package analyzer

import (
	"encoding/json"
	"testing"
)

func TestExtract_JSONFence(t *testing.T) {
	result := NewResponseExtractor().Extract("```json\n{\"risks\":[]}\n```")

	if len(result) != 1 {
		t.Fatalf("Expected exactly one key, got %v", result)
	}
	risks, ok := result["risks"].([]any)
	if !ok || len(risks) != 0 {
		t.Errorf("Expected empty risks array, got %#v", result["risks"])
	}
}

func TestExtract_BareFence(t *testing.T) {
	raw := "分析如下：\n```\n{\"personality\": \"温和\"}\n```\n希望有帮助"
	result := NewResponseExtractor().Extract(raw)
	if result["personality"] != "温和" {
		t.Errorf("Expected bare fence content to parse, got %v", result)
	}
}

func TestExtract_JSONFenceWinsOverEarlierBareFence(t *testing.T) {
	raw := "```\nnot json\n```\n```json\n{\"a\": 1}\n```"
	result := NewResponseExtractor().Extract(raw)
	if _, ok := result["a"]; !ok {
		t.Errorf("Expected json fence to be preferred, got %v", result)
	}
}

func TestExtract_UnfencedJSON(t *testing.T) {
	result := NewResponseExtractor().Extract(`  {"personality": {"traits": ["a"]}, "score": 12345678901234567890}  `)
	n, ok := result["score"].(json.Number)
	if !ok || n.String() != "12345678901234567890" {
		t.Errorf("Expected number preserved verbatim, got %#v", result["score"])
	}
}

func TestExtract_NotJSONDegrades(t *testing.T) {
	result := NewResponseExtractor().Extract("not json at all")

	if result["personality"] != "not json at all" {
		t.Errorf("Expected raw text as personality, got %v", result["personality"])
	}
	suggestions, ok := result["chat_suggestions"].([]any)
	if !ok || len(suggestions) != 2 || suggestions[0] != ParseFailurePrefix || suggestions[1] != "not json at all" {
		t.Errorf("Unexpected chat_suggestions: %#v", result["chat_suggestions"])
	}
	guide, ok := result["action_guide"].([]any)
	if !ok || len(guide) != 0 {
		t.Errorf("Expected empty action_guide, got %#v", result["action_guide"])
	}
}

func TestExtract_DegradedKeepsFenceContent(t *testing.T) {
	result := NewResponseExtractor().Extract("```json\n{broken\n```")
	if result["personality"] != "{broken" {
		t.Errorf("Expected fence content in degraded result, got %v", result["personality"])
	}
}

func TestExtract_EmptyJSONFenceKeepsRawText(t *testing.T) {
	raw := "```json\n\n```"
	result := NewResponseExtractor().Extract(raw)
	if result["personality"] != raw {
		t.Errorf("Expected raw reply in degraded result, got %q", result["personality"])
	}
}

func TestExtract_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `"text"`, `null`, `{"a":1} trailing`, ``} {
		result := NewResponseExtractor().Extract(raw)
		if result["personality"] != raw {
			t.Errorf("Expected %q to degrade, got %v", raw, result)
		}
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```{}```", "{}"},
		{"plain", "plain"},
		{"``````", "``````"},
		{"```json\n\n```", "```json\n\n```"},
		{"```json\n\n```\n```{}```", "```json\n\n```\n```{}```"},
	}
	for _, tt := range tests {
		if got := StripFence(tt.raw); got != tt.want {
			t.Errorf("StripFence(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
