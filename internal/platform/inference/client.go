package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

const DefaultSystemPrompt = "You are an AI sports content recommendation expert. Analyze user behavior and recommend videos that will maximize engagement."

type Config struct {
	BaseURL         string        `yaml:"base_url" env:"OPENAI_BASE_URL"`
	APIKey          string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model           string        `yaml:"model" env:"OPENAI_MODEL" validate:"required"`
	SystemPrompt    string        `yaml:"system_prompt" env:"OPENAI_SYSTEM_PROMPT"`
	MaxTokens       int           `yaml:"max_tokens" env:"OPENAI_MAX_TOKENS" validate:"gt=0"`
	Temperature     float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE" validate:"gte=0,lte=2"`
	Timeout         time.Duration `yaml:"timeout" env:"OPENAI_TIMEOUT" validate:"gt=0"`
	RatePerSecond   float64       `yaml:"rate_per_second" env:"OPENAI_RATE_PER_SECOND" validate:"gte=0"`
	Burst           int           `yaml:"burst" env:"OPENAI_BURST" validate:"gte=0"`
	BreakerFailures uint32        `yaml:"breaker_failures" env:"OPENAI_BREAKER_FAILURES"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"OPENAI_BREAKER_COOLDOWN"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://api.openai.com/v1",
		Model:           "gpt-4.1",
		SystemPrompt:    DefaultSystemPrompt,
		MaxTokens:       500,
		Temperature:     0.7,
		Timeout:         20 * time.Second,
		RatePerSecond:   5,
		Burst:           10,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Client sends one prompt and returns the first completion's text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Observer receives one call per completion attempt. status is "ok" or the failure reason.
type Observer func(status string, elapsed time.Duration)

type OpenAIClient struct {
	cfg      Config
	api      *openai.Client
	breaker  *gobreaker.CircuitBreaker[string]
	limiter  *rate.Limiter
	log      *logger.Logger
	observer Observer
}

func New(cfg Config, log *logger.Logger, observer Observer) (*OpenAIClient, error) {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return NewWithHTTPClient(cfg, log, observer, &http.Client{Transport: tr})
}

// NewWithHTTPClient is intended for tests; it lets callers point the client at a fake server.
func NewWithHTTPClient(cfg Config, log *logger.Logger, observer Observer, httpClient *http.Client) (*OpenAIClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("inference: base_url required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("inference: model required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	clientLog := log.With("service", "InferenceClient", "model", cfg.Model)

	oaCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	oaCfg.BaseURL = baseURL
	if httpClient != nil {
		oaCfg.HTTPClient = httpClient
	}

	c := &OpenAIClient{
		cfg:      cfg,
		api:      openai.NewClientWithConfig(oaCfg),
		log:      clientLog,
		observer: observer,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	if cfg.BreakerFailures > 0 {
		cooldown := cfg.BreakerCooldown
		if cooldown <= 0 {
			cooldown = 30 * time.Second
		}
		failures := cfg.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "inference",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				clientLog.Warn("Inference breaker state changed", "from", from.String(), "to", to.String())
			},
		})
	}
	return c, nil
}

// Complete never blocks longer than the configured timeout and never returns an error
// that does not wrap ErrUnavailable.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (out string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = "", unavailable("panic", fmt.Errorf("%v", r))
		}
		c.observe(err, time.Since(start))
	}()

	if c.limiter != nil && !c.limiter.Allow() {
		return "", unavailable("rate_limited", nil)
	}
	if c.breaker == nil {
		return c.complete(ctx, prompt)
	}
	out, err = c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", unavailable("breaker_open", err)
	}
	return out, err
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", classify(callCtx, err)
	}
	if len(resp.Choices) == 0 {
		return "", unavailable("no_choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return unavailable("timeout", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return unavailable(fmt.Sprintf("status_%d", apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return unavailable(fmt.Sprintf("status_%d", reqErr.HTTPStatusCode), err)
	}
	return unavailable("transport", err)
}

func (c *OpenAIClient) observe(err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = reason(err)
		c.log.Warn("Inference call failed", "error", err, "elapsed_ms", elapsed.Milliseconds())
	}
	if c.observer != nil {
		c.observer(status, elapsed)
	}
}

// reason extracts the short label after the sentinel for metrics.
func reason(err error) string {
	msg := strings.TrimPrefix(err.Error(), ErrUnavailable.Error()+": ")
	if i := strings.Index(msg, ":"); i > 0 {
		msg = msg[:i]
	}
	return msg
}
