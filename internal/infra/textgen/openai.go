// Package textgen provides the chat-completion backed TextGenerator.
package textgen

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/fx"
)

const (
	defaultModel     = openai.GPT4
	defaultMaxTokens = 200
	defaultTimeout   = 10 * time.Second
)

// ErrEmptyCompletion is returned when the model answers without any text.
var ErrEmptyCompletion = errors.New("completion returned no text")

// chatClient is the slice of the go-openai client we use.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type openAIGenerator struct {
	client    chatClient
	model     string
	maxTokens int
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[string]
	logger    *slog.Logger
}

// Params holds dependencies for the text generator, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New returns the OpenAI generator, or one that always reports
// ErrTextGenerationUnavailable when no API key is configured.
func New(params Params) service.TextGenerator {
	cfg := params.Config.TextGen
	if cfg == nil || cfg.APIKey == "" {
		params.Logger.Info("Text generation not configured, generated text disabled")

		return unavailable{}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return NewGenerator(openai.NewClientWithConfig(clientCfg), cfg, params.Logger)
}

// NewGenerator wraps a chat client with defaults, a timeout and a circuit breaker.
func NewGenerator(client chatClient, cfg *config.TextGenConfig, logger *slog.Logger) service.TextGenerator {
	g := &openAIGenerator{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}

	failures := cfg.Breaker.ConsecutiveFailures
	if failures == 0 {
		failures = 3
	}
	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "textgen",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isRequestError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[TextGen] Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return g
}

// isRequestError is a 4xx other than rate limiting: our prompt was at fault,
// not the backend.
func isRequestError(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
		apiErr.HTTPStatusCode != http.StatusTooManyRequests
}

func (g *openAIGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	text, err := g.breaker.Execute(func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens: maxTokens,
		})
		if err != nil {
			return "", errors.WithStack(err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.WithStack(ErrEmptyCompletion)
		}

		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return "", errors.WithStack(ErrEmptyCompletion)
		}

		return text, nil
	})
	if err != nil {
		g.logger.WarnContext(ctx, "[TextGen] Completion failed", slog.Any("error", err))

		return "", errors.Wrap(err, "text completion")
	}

	return text, nil
}

type unavailable struct{}

func (unavailable) Complete(context.Context, string, int) (string, error) {
	return "", errors.WithStack(service.ErrTextGenerationUnavailable)
}

// Module provides the text generation FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
