package analyzer

import (
	"path"
	"strings"

	"go-social-analyzer/pkg/models"
)

const fallbackTagLimit = 5

// FallbackResultGenerator builds the fixed demonstration result.
type FallbackResultGenerator struct{}

// NewFallbackResultGenerator creates a fallback generator
func NewFallbackResultGenerator() *FallbackResultGenerator {
	return &FallbackResultGenerator{}
}

// Generate returns a fresh copy of the demonstration result. Only meta.tags
// (filename stems of the first five images) and meta.notes depend on the input.
func (g *FallbackResultGenerator) Generate(images []models.UploadedImage, notes string) models.AnalysisResult {
	n := len(images)
	if n > fallbackTagLimit {
		n = fallbackTagLimit
	}
	tags := make([]any, 0, n)
	for _, img := range images[:n] {
		tags = append(tags, filenameStem(img.Filename))
	}

	return models.AnalysisResult{
		"persona": map[string]any{
			"traits": []any{"理性", "爱运动"},
			"interests": []any{
				map[string]any{"tag": "跑步", "confidence": 0.82},
				map[string]any{"tag": "美食", "confidence": 0.76},
			},
			"style": map[string]any{"social": "偏内向", "humor": "中等"},
		},
		"plan": map[string]any{
			"days": 10,
			"steps": []any{
				map[string]any{"day": 1, "message": "轻松问候+共同点话题"},
				map[string]any{"day": 3, "message": "围绕其兴趣的轻话题延展"},
				map[string]any{"day": 7, "message": "提议轻量线下活动（咖啡/慢跑）"},
			},
		},
		"talks": []any{
			map[string]any{"tone": "自然", "text": "嗨，最近看到你分享的跑步路线，感觉好专业！"},
			map[string]any{"tone": "活泼", "text": "你上次的美食打卡看起来太诱人了，在哪家？"},
		},
		"risks": []any{"避免过度询问隐私", "尊重节奏与边界"},
		"meta": map[string]any{
			"cost_ms": 1200,
			"source":  "mock",
			"tags":    tags,
			"notes":   notes,
		},
	}
}

// filenameStem drops directory and extension; dotfiles keep their full name.
func filenameStem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	ext := path.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
