package analyzer

import "go-social-analyzer/pkg/models"

// PromptAssembler turns a validated request into a provider prompt.
type PromptAssembler interface {
	Build(req models.AnalysisRequest) models.Prompt
}

// ResultExtractor turns raw provider text into an analysis result.
type ResultExtractor interface {
	Extract(raw string) models.AnalysisResult
}

// FallbackGenerator produces the substitute result used when no live answer is available.
type FallbackGenerator interface {
	Generate(images []models.UploadedImage, notes string) models.AnalysisResult
}
