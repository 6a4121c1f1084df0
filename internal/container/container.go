package container

import (
	"fmt"
	"net/http"

	"go-social-analyzer/internal/analyzer"
	"go-social-analyzer/internal/config"
	"go-social-analyzer/internal/logger"
	"go-social-analyzer/internal/observer"
	"go-social-analyzer/internal/provider"
	"go-social-analyzer/internal/service"
	"go-social-analyzer/internal/transport"
	"go-social-analyzer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	providerClient  provider.Client
	events          *observer.EventPublisher
	metrics         *observer.MetricsObserver
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	validator := validation.NewBatchValidatorWithOptions(
		cfg.MinImages,
		cfg.MaxImages,
		cfg.MaxFileSize,
		validation.DefaultAllowedTypes,
	)
	prompts := analyzer.NewPromptBuilder(analyzer.DefaultPromptOptions().WithMaxImages(cfg.PromptImageLimit))
	providerClient := provider.NewResponsesClient(cfg, nil)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	analysisService := service.NewAnalysisService(
		validator,
		prompts,
		providerClient,
		analyzer.NewResponseExtractor(),
		analyzer.NewFallbackResultGenerator(),
		events,
		cfg.MockMode,
	)
	handler := transport.NewHandler(analysisService, metrics, cfg)

	return &Container{
		config:          cfg,
		providerClient:  providerClient,
		events:          events,
		metrics:         metrics,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// AnalysisService returns the analysis pipeline
func (c *Container) AnalysisService() service.AnalysisService {
	return c.analysisService
}

// Close waits for in-flight event notifications to drain.
func (c *Container) Close() {
	c.events.Wait()
}
