package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go-social-analyzer/pkg/validation"
)

const (
	// DefaultModelID is the placeholder endpoint used when ARK_MODEL_ID is unset.
	DefaultModelID = "ep-20260111165056-bcb5j"
	// DefaultProviderBaseURL is the Volcengine Ark v3 API root.
	DefaultProviderBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	// MaxPromptImageLimit is the most images one prompt may embed.
	MaxPromptImageLimit = 5
	// DefaultMultipartMemory is how much of an upload is buffered in RAM
	// before parts spill to temporary files.
	DefaultMultipartMemory = 32 << 20

	bodyOverhead = 1 << 20
)

// Config is loaded once at startup and passed by pointer to every component.
// Nothing mutates it after LoadFromEnv returns.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	MaxMultipartMemory int64
	CORSAllowOrigins   []string

	// Provider
	APIKey             string
	ModelID            string
	ProviderBaseURL    string
	ProviderTimeout    time.Duration
	ProviderMaxRetries int
	MockMode           bool

	// ProviderAllowedHosts restricts ARK_BASE_URL when non-empty.
	ProviderAllowedHosts []string

	// Batch limits
	MinImages        int
	MaxImages        int
	MaxFileSize      int64
	PromptImageLimit int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// ResponsesURL is the full provider endpoint for a multi-modal analysis call.
func (c *Config) ResponsesURL() string {
	return strings.TrimRight(c.ProviderBaseURL, "/") + "/responses"
}

// BodyLimitFor sizes the request body limit so that a batch one image over
// the ceiling, every file at the size cap, still reaches batch validation.
func BodyLimitFor(maxImages int, maxFileSize int64) int64 {
	return int64(maxImages+1)*maxFileSize + bodyOverhead
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "3000",
		RequestTimeout:     2 * time.Minute,
		MaxRequestBodySize: BodyLimitFor(30, 10*1024*1024),
		MaxMultipartMemory: DefaultMultipartMemory,
		CORSAllowOrigins:   []string{"*"},
		ModelID:            DefaultModelID,
		ProviderBaseURL:    DefaultProviderBaseURL,
		ProviderTimeout:    90 * time.Second,
		ProviderMaxRetries: 0,
		MinImages:          5,
		MaxImages:          30,
		MaxFileSize:        10 * 1024 * 1024,
		PromptImageLimit:   5,
	}
}

func LoadFromEnv() (*Config, error) {
	d := Default()
	maxImages := int(parseIntOrDefault("MAX_IMAGES", int64(d.MaxImages)))
	maxFileSize := parseIntOrDefault("MAX_FILE_SIZE", d.MaxFileSize)

	cfg := &Config{
		Host:                 getEnvOrDefault("HOST", d.Host),
		Port:                 getEnvOrDefault("PORT", d.Port),
		RequestTimeout:       parseDurationOrDefault("REQUEST_TIMEOUT", d.RequestTimeout),
		MaxRequestBodySize:   parseIntOrDefault("MAX_REQUEST_BODY_SIZE", BodyLimitFor(maxImages, maxFileSize)),
		MaxMultipartMemory:   parseIntOrDefault("MAX_MULTIPART_MEMORY", d.MaxMultipartMemory),
		CORSAllowOrigins:     parseListOrDefault("CORS_ALLOW_ORIGINS", d.CORSAllowOrigins),
		APIKey:               strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ModelID:              getEnvOrDefault("ARK_MODEL_ID", d.ModelID),
		ProviderBaseURL:      getEnvOrDefault("ARK_BASE_URL", d.ProviderBaseURL),
		ProviderAllowedHosts: parseListOrDefault("ARK_ALLOWED_HOSTS", nil),
		ProviderTimeout:      parseDurationOrDefault("PROVIDER_TIMEOUT", d.ProviderTimeout),
		ProviderMaxRetries:   int(parseIntOrDefault("PROVIDER_MAX_RETRIES", int64(d.ProviderMaxRetries))),
		MockMode:             os.Getenv("USE_MOCK") == "1",
		MinImages:            int(parseIntOrDefault("MIN_IMAGES", int64(d.MinImages))),
		MaxImages:            maxImages,
		MaxFileSize:          maxFileSize,
		PromptImageLimit:     int(parseIntOrDefault("PROMPT_IMAGE_LIMIT", int64(d.PromptImageLimit))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxMultipartMemory <= 0 {
		return fmt.Errorf("MAX_MULTIPART_MEMORY must be > 0 (got %d)", c.MaxMultipartMemory)
	}
	if c.RequestTimeout <= 0 || c.ProviderTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, provider=%s)",
			c.RequestTimeout, c.ProviderTimeout)
	}
	if c.ProviderMaxRetries < 0 || c.ProviderMaxRetries > 5 {
		return fmt.Errorf("PROVIDER_MAX_RETRIES must be within 0..5 (got %d)", c.ProviderMaxRetries)
	}
	if c.MinImages < 1 || c.MaxImages < c.MinImages {
		return fmt.Errorf("image limits must satisfy 1 <= MIN_IMAGES <= MAX_IMAGES (got %d..%d)",
			c.MinImages, c.MaxImages)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0 (got %d)", c.MaxFileSize)
	}
	if c.PromptImageLimit < 1 || c.PromptImageLimit > MaxPromptImageLimit {
		return fmt.Errorf("PROMPT_IMAGE_LIMIT must be within 1..%d (got %d)", MaxPromptImageLimit, c.PromptImageLimit)
	}
	endpoints := validation.NewEndpointValidatorWithOptions([]string{"http", "https"}, c.ProviderAllowedHosts)
	if err := endpoints.Validate(c.ProviderBaseURL); err != nil {
		return fmt.Errorf("invalid ARK_BASE_URL: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
