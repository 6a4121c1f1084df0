package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-social-analyzer/internal/config"
	"go-social-analyzer/internal/logger"
	"go-social-analyzer/pkg/models"

	"github.com/sirupsen/logrus"
)

// Client sends one prompt to the generative model and classifies the result.
// Implementations never return errors; every failure is a ProviderOutcome.
type Client interface {
	Analyze(ctx context.Context, prompt models.Prompt) models.ProviderOutcome
}

// ResponsesClient talks to an OpenAI-Responses-compatible endpoint (Volcengine Ark).
type ResponsesClient struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetries int
	mock       bool
	backoff    func(attempt int) time.Duration
}

// NewHTTPClient returns the transport used for provider calls. The overall
// deadline comes from the request context, so the client itself has none.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("too many redirects (limit: 3)")
			}
			return nil
		},
	}
}

// NewResponsesClient creates a provider client from the immutable configuration.
// A nil httpClient selects NewHTTPClient.
func NewResponsesClient(cfg *config.Config, httpClient *http.Client) *ResponsesClient {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &ResponsesClient{
		client:     httpClient,
		endpoint:   cfg.ResponsesURL(),
		apiKey:     cfg.APIKey,
		model:      cfg.ModelID,
		timeout:    cfg.ProviderTimeout,
		maxRetries: cfg.ProviderMaxRetries,
		mock:       cfg.MockMode,
		backoff:    linearBackoff,
	}
}

// Analyze issues the request. In mock mode it returns immediately without I/O.
// Retries, when enabled, cover transport failures and gateway statuses only.
func (c *ResponsesClient) Analyze(ctx context.Context, prompt models.Prompt) models.ProviderOutcome {
	if c.mock {
		return models.MockOutcome()
	}

	body, err := json.Marshal(newResponsesRequest(c.model, prompt))
	if err != nil {
		return models.Failure(fmt.Sprintf("encode provider request: %v", err))
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	log := logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"model":    c.model,
		"images":   prompt.ImageCount(),
	})
	log.Info("Calling provider")

	var (
		status int
		raw    []byte
	)
	for attempt := 0; ; attempt++ {
		status, raw, err = c.post(ctx, body)

		retryable := (err != nil && ctx.Err() == nil) || (err == nil && isRetryableStatus(status))
		if !retryable || attempt >= c.maxRetries {
			break
		}

		wait := c.backoff(attempt)
		log.WithFields(logrus.Fields{
			"attempt":     attempt + 1,
			"max_retries": c.maxRetries,
			"status":      status,
			"sleep":       wait.String(),
		}).WithError(err).Warn("Provider request retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
	}

	log = log.WithFields(logrus.Fields{
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if err != nil {
		reason := c.describeTransportError(parent, err)
		log.WithError(err).Error("Provider request failed")
		return models.Failure(reason)
	}

	outcome := interpretResponse(status, raw)
	if outcome.OK {
		log.Info("Provider request succeeded")
	} else {
		log.WithField("reason", outcome.Reason).Warn("Provider returned no usable content")
	}
	return outcome
}

func (c *ResponsesClient) post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("invalid provider URL: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read provider response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// describeTransportError names the deadline that actually expired: the
// caller's request deadline or the per-call provider timeout.
func (c *ResponsesClient) describeTransportError(parent context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		if errors.Is(parent.Err(), context.DeadlineExceeded) {
			return "request deadline exceeded before the provider responded"
		}
		return fmt.Sprintf("provider request timed out after %s", c.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return "provider request canceled"
	}
	return fmt.Sprintf("provider request failed: %v", err)
}
