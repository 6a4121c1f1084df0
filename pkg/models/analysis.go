package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AnalysisResult is the provider-defined analysis document. Its schema is not
// guaranteed, so it is kept as an opaque JSON object and every key is optional.
// Two shapes are seen in practice: the canonical one (persona, talks, plan,
// risks) and the legacy one (personality, chat_suggestions, action_guide).
type AnalysisResult map[string]any

// Meta is the operational half of the envelope.
type Meta struct {
	IsMock  bool   `json:"isMock"`
	Warning string `json:"warning,omitempty"`
}

// ResponseEnvelope is the only body returned by a successful analysis.
type ResponseEnvelope struct {
	Analysis AnalysisResult `json:"analysis"`
	Meta     Meta           `json:"meta"`
}

// DefaultSuggestionTone labels chat suggestions that arrive as bare strings.
const DefaultSuggestionTone = "话术建议"

// InterestTag is an interest with the model's confidence.
type InterestTag struct {
	Tag        string
	Confidence float64
}

// ChatSuggestion is one suggested message and its tone.
type ChatSuggestion struct {
	Tone string
	Text string
}

// ActionStep is one dated entry of the action plan.
type ActionStep struct {
	Day     int
	Message string
}

// AnalysisSummary is the typed view of the fields a renderer reads.
type AnalysisSummary struct {
	Traits          []string
	SocialStyle     string
	HumorStyle      string
	Interests       []InterestTag
	ChatSuggestions []ChatSuggestion
	ActionSteps     []ActionStep
	Risks           []string
}

// Summarize resolves canonical and legacy keys in a fixed order: legacy
// "personality" before "persona", "chat_suggestions" before "talks",
// "action_guide" before "plan.steps". The receiver is not modified.
func (r AnalysisResult) Summarize() AnalysisSummary {
	var s AnalysisSummary

	personas := []map[string]any{asObject(r["personality"]), asObject(r["persona"])}

	for _, p := range personas {
		if items, ok := asArray(p["traits"]); ok {
			s.Traits = stringsOf(items)
			break
		}
	}
	for _, p := range personas {
		style := asObject(p["style"])
		if s.SocialStyle == "" {
			s.SocialStyle, _ = style["social"].(string)
		}
		if s.HumorStyle == "" {
			s.HumorStyle, _ = style["humor"].(string)
		}
	}
	for _, p := range personas {
		if items, ok := asArray(p["interests"]); ok {
			for _, item := range items {
				obj := asObject(item)
				tag, _ := obj["tag"].(string)
				if tag == "" {
					continue
				}
				s.Interests = append(s.Interests, InterestTag{Tag: tag, Confidence: asFloat(obj["confidence"])})
			}
			break
		}
	}

	talks, ok := asArray(r["chat_suggestions"])
	if !ok {
		talks, _ = asArray(r["talks"])
	}
	for _, item := range talks {
		if text, ok := item.(string); ok {
			s.ChatSuggestions = append(s.ChatSuggestions, ChatSuggestion{Tone: DefaultSuggestionTone, Text: text})
			continue
		}
		obj := asObject(item)
		tone, _ := obj["tone"].(string)
		text, _ := obj["text"].(string)
		s.ChatSuggestions = append(s.ChatSuggestions, ChatSuggestion{Tone: tone, Text: text})
	}

	steps, ok := asArray(r["action_guide"])
	if !ok {
		steps, _ = asArray(asObject(r["plan"])["steps"])
	}
	for i, item := range steps {
		if msg, ok := item.(string); ok {
			s.ActionSteps = append(s.ActionSteps, ActionStep{Day: i + 1, Message: msg})
			continue
		}
		obj := asObject(item)
		msg, _ := obj["message"].(string)
		s.ActionSteps = append(s.ActionSteps, ActionStep{Day: int(asFloat(obj["day"])), Message: msg})
	}

	if items, ok := asArray(r["risks"]); ok {
		s.Risks = stringsOf(items)
	}
	return s
}

func asObject(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case AnalysisResult:
		return m
	}
	return nil
}

func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case []string:
		out := make([]any, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, true
	}
	return nil, false
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func stringsOf(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
