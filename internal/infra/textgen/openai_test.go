package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *openAIGenerator {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = server.URL + "/v1"

	gen := NewGenerator(openai.NewClientWithConfig(clientCfg), &config.TextGenConfig{
		Timeout: time.Second,
		Breaker: config.BreakerConfig{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2},
	}, discardLogger())

	return gen.(*openAIGenerator)
}

func TestGenerator_Complete(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, openai.GPT4, req.Model)
		assert.Equal(t, 120, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "describe a case", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  A sturdy case.  "},"finish_reason":"stop"}]}`)
	})

	text, err := gen.Complete(context.Background(), "describe a case", 120)
	require.NoError(t, err)
	assert.Equal(t, "A sturdy case.", text)
}

func TestGenerator_EmptyChoices(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	})

	_, err := gen.Complete(context.Background(), "x", 0)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerator_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	gen := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	})

	for range 4 {
		_, err := gen.Complete(context.Background(), "x", 0)
		assert.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, gen.breaker.State())
	// go-openai does not retry, so only the calls before the trip reach the server.
	assert.Equal(t, int32(2), calls.Load())

	_, err := gen.Complete(context.Background(), "x", 0)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestGenerator_BadRequestDoesNotTrip(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad prompt","type":"invalid_request_error"}}`)
	})

	for range 4 {
		_, err := gen.Complete(context.Background(), "x", 0)
		assert.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, gen.breaker.State())
}

func TestGenerator_Timeout(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		fmt.Fprint(w, "{}")
	})
	gen.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := gen.Complete(context.Background(), "x", 0)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNew_Unconfigured(t *testing.T) {
	gen := New(Params{Config: &config.Config{}, Logger: discardLogger()})

	_, err := gen.Complete(context.Background(), "x", 0)
	assert.ErrorIs(t, err, service.ErrTextGenerationUnavailable)
}
