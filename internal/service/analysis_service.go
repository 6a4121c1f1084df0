package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-social-analyzer/internal/analyzer"
	"go-social-analyzer/internal/logger"
	"go-social-analyzer/internal/observer"
	"go-social-analyzer/internal/provider"
	"go-social-analyzer/pkg/models"

	"github.com/sirupsen/logrus"
)

const (
	// MockWarning is shown when mock mode bypassed the provider.
	MockWarning = "已切换至演示数据。"
	// ModelUnavailableWarning asks the operator to check the model ID and its activation.
	ModelUnavailableWarning = "API调用失败：模型 ID 错误或未开通。请检查 .env 中的 ARK_MODEL_ID，并确保在火山引擎控制台已开通该模型。"
)

// modelUnavailableMarkers identify provider failures caused by the configured model.
var modelUnavailableMarkers = []string{"ModelNotOpen", "NotFound"}

// BatchValidator rejects unacceptable uploads before any work is done.
type BatchValidator interface {
	Validate(images []models.UploadedImage) error
}

// AnalysisService runs the full analysis pipeline for one request.
type AnalysisService interface {
	// Analyze returns a validation error for a rejected batch. Every other
	// outcome, including provider failure, yields an envelope.
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.ResponseEnvelope, error)
}

// analysisService implements AnalysisService
type analysisService struct {
	validator BatchValidator
	prompts   analyzer.PromptAssembler
	client    provider.Client
	extractor analyzer.ResultExtractor
	fallback  analyzer.FallbackGenerator
	events    observer.Subject
	mockMode  bool
}

// NewAnalysisService creates a new analysis service. events may be nil.
func NewAnalysisService(
	validator BatchValidator,
	prompts analyzer.PromptAssembler,
	client provider.Client,
	extractor analyzer.ResultExtractor,
	fallback analyzer.FallbackGenerator,
	events observer.Subject,
	mockMode bool,
) AnalysisService {
	return &analysisService{
		validator: validator,
		prompts:   prompts,
		client:    client,
		extractor: extractor,
		fallback:  fallback,
		events:    events,
		mockMode:  mockMode,
	}
}

// Analyze moves the request through validate, build prompt, call provider,
// then either extract the live answer or substitute the fallback result.
func (s *analysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.ResponseEnvelope, error) {
	start := time.Now()
	requestID := logger.RequestIDFromContext(ctx)
	s.publish(ctx, observer.AnalysisEvent{
		EventType:  observer.AnalysisStarted,
		RequestID:  requestID,
		ImageCount: len(req.Images),
	})

	if err := s.validator.Validate(req.Images); err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisRejected,
			RequestID:      requestID,
			ImageCount:     len(req.Images),
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	prompt := s.prompts.Build(req)

	var outcome models.ProviderOutcome
	if s.mockMode {
		outcome = models.MockOutcome()
	} else {
		outcome = s.client.Analyze(ctx, prompt)
	}

	var envelope *models.ResponseEnvelope
	if outcome.OK {
		envelope = &models.ResponseEnvelope{
			Analysis: s.extractor.Extract(outcome.Text),
			Meta:     models.Meta{IsMock: false},
		}
	} else {
		if !outcome.Mock {
			s.publish(ctx, observer.AnalysisEvent{
				EventType:    observer.ProviderFailed,
				RequestID:    requestID,
				ImageCount:   len(req.Images),
				ErrorMessage: outcome.Reason,
			})
		}
		envelope = &models.ResponseEnvelope{
			Analysis: s.fallback.Generate(req.Images, req.Notes),
			Meta:     models.Meta{IsMock: true, Warning: FallbackWarning(outcome)},
		}
	}

	summary := envelope.Analysis.Summarize()
	logger.WithFields(logrus.Fields{
		"request_id":       requestID,
		"images":           len(req.Images),
		"prompt_images":    prompt.ImageCount(),
		"is_mock":          envelope.Meta.IsMock,
		"traits":           len(summary.Traits),
		"chat_suggestions": len(summary.ChatSuggestions),
		"action_steps":     len(summary.ActionSteps),
		"risks":            len(summary.Risks),
	}).Debug("Analysis envelope assembled")

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		RequestID:      requestID,
		ImageCount:     len(req.Images),
		ProcessingTime: time.Since(start),
		IsMock:         envelope.Meta.IsMock,
	})
	return envelope, nil
}

// FallbackWarning explains to the operator why the fallback result was used.
func FallbackWarning(outcome models.ProviderOutcome) string {
	if outcome.Mock {
		return MockWarning
	}
	for _, marker := range modelUnavailableMarkers {
		if strings.Contains(outcome.Reason, marker) {
			return ModelUnavailableWarning
		}
	}
	return fmt.Sprintf("API调用失败 (%s)，已切换至演示数据。请检查 API Key 或 Model 状态。", outcome.Reason)
}

func (s *analysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
