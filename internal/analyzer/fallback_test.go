package analyzer

import (
	"reflect"
	"testing"

	"go-social-analyzer/pkg/models"
)

func TestGenerate_TagsFromFirstFiveStems(t *testing.T) {
	images := []models.UploadedImage{
		{Filename: "beach.jpg"}, {Filename: "run.morning.png"}, {Filename: "dir/food.webp"},
		{Filename: ".hidden"}, {Filename: "noext"}, {Filename: "sixth.jpg"},
	}
	result := NewFallbackResultGenerator().Generate(images, "喜欢跑步")

	meta := result["meta"].(map[string]any)
	want := []any{"beach", "run.morning", "food", ".hidden", "noext"}
	if !reflect.DeepEqual(meta["tags"], want) {
		t.Errorf("Expected tags %v, got %v", want, meta["tags"])
	}
	if meta["notes"] != "喜欢跑步" {
		t.Errorf("Expected notes echoed, got %v", meta["notes"])
	}
	if meta["source"] != "mock" {
		t.Errorf("Expected mock source, got %v", meta["source"])
	}
}

func TestGenerate_FixedPayload(t *testing.T) {
	s := NewFallbackResultGenerator().Generate(uploads(6, "image/png"), "喜欢跑步").Summarize()

	var tags []string
	for _, i := range s.Interests {
		tags = append(tags, i.Tag)
	}
	if !reflect.DeepEqual(tags, []string{"跑步", "美食"}) {
		t.Errorf("Expected fixed interest tags, got %v", tags)
	}
	if !reflect.DeepEqual(s.Traits, []string{"理性", "爱运动"}) {
		t.Errorf("Unexpected traits %v", s.Traits)
	}
	if len(s.ChatSuggestions) != 2 || len(s.ActionSteps) != 3 || len(s.Risks) != 2 {
		t.Errorf("Unexpected payload sizes: %+v", s)
	}
	if s.ActionSteps[2].Day != 7 {
		t.Errorf("Expected last step on day 7, got %d", s.ActionSteps[2].Day)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	g := NewFallbackResultGenerator()
	images := uploads(6, "image/jpeg")

	first := g.Generate(images, "notes")
	second := g.Generate(images, "notes")
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical results for identical input")
	}

	first["risks"] = []any{"changed"}
	third := g.Generate(images, "notes")
	if reflect.DeepEqual(first["risks"], third["risks"]) {
		t.Error("Expected each call to return an independent value")
	}
}

func TestGenerate_EmptyBatch(t *testing.T) {
	result := NewFallbackResultGenerator().Generate(nil, "")
	tags := result["meta"].(map[string]any)["tags"].([]any)
	if len(tags) != 0 {
		t.Errorf("Expected no tags, got %v", tags)
	}
}
