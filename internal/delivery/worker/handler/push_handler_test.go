package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/constants"
	"storefront/internal/domain/entity"
	mockUsecase "storefront/internal/mocks/usecase"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPushHandler(t *testing.T, provider string) (*PushHandler, *mockUsecase.MockEventUsecase) {
	eventUC := mockUsecase.NewMockEventUsecase(t)
	cfg := &config.Config{Events: &config.EventsConfig{Provider: provider}}
	cfg.Env.Env = "production"

	processor := NewEventProcessor(EventProcessorParams{EventUC: eventUC, Logger: newDiscardLogger()})
	h := NewPushHandler(PushHandlerParams{Config: cfg, Logger: newDiscardLogger(), Processor: processor})

	return h, eventUC
}

func pushBody(t *testing.T, data []byte, attrs map[string]string) string {
	t.Helper()

	var msg PubSubMessage
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.Attributes = attrs
	msg.Message.MessageID = "m-1"
	msg.Subscription = "projects/p/subscriptions/s"

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return string(body)
}

func envelopeJSON(t *testing.T, eventID uuid.UUID, eventType string) []byte {
	t.Helper()

	data, err := json.Marshal(envelope{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: uuid.New(),
		Payload:     json.RawMessage(`{"orderId":"` + uuid.NewString() + `"}`),
		RequestID:   "req-from-envelope",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	return data
}

func doPush(h *PushHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.HandlePush(e.NewContext(req, rec))

	return rec
}

func TestPushHandler_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		handlerErr error
		wantStatus int
	}{
		{name: "handled", wantStatus: http.StatusOK},
		{name: "retryable failure asks for redelivery", handlerErr: usecase.NewRetryableError(errors.New("db down")), wantStatus: http.StatusServiceUnavailable},
		{name: "permanent failure is acknowledged", handlerErr: errors.New("bad payload"), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, eventUC := newTestPushHandler(t, constants.PubSubProviderLocal)
			eventID := uuid.New()

			eventUC.On("HandleEvent", mock.Anything, mock.MatchedBy(func(e *usecase.IncomingEvent) bool {
				return e.EventID == eventID && e.EventType == entity.EventOrderCreated
			})).Return(tt.handlerErr).Once()

			rec := doPush(h, pushBody(t, envelopeJSON(t, eventID, entity.EventOrderCreated), nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPushHandler_RequestIDPrecedence(t *testing.T) {
	h, eventUC := newTestPushHandler(t, constants.PubSubProviderLocal)

	var got string
	eventUC.On("HandleEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			got = args.Get(1).(*usecase.IncomingEvent).RequestID
		}).
		Return(nil).Once()

	rec := doPush(h, pushBody(t, envelopeJSON(t, uuid.New(), entity.EventOrderCreated), map[string]string{"request_id": "req-from-attrs"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-from-attrs", got)
}

func TestPushHandler_MalformedMessages(t *testing.T) {
	h, _ := newTestPushHandler(t, constants.PubSubProviderLocal)

	t.Run("not json", func(t *testing.T) {
		rec := doPush(h, "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("data not base64", func(t *testing.T) {
		rec := doPush(h, `{"message":{"data":"%%%"}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("envelope missing type", func(t *testing.T) {
		rec := doPush(h, pushBody(t, []byte(`{"eventId":"`+uuid.NewString()+`"}`), nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPushHandler_VerifiesGoogleToken(t *testing.T) {
	h, _ := newTestPushHandler(t, constants.PubSubProviderGoogle)
	require.True(t, h.verifyPushAuth)

	h.validate = func(*http.Request) error { return errors.New("bad token") }

	rec := doPush(h, pushBody(t, envelopeJSON(t, uuid.New(), entity.EventOrderCreated), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractRequestID_FallsBack(t *testing.T) {
	env := &envelope{}
	id := extractRequestID(context.Background(), nil, env)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	env.RequestID = "from-envelope"
	assert.Equal(t, "from-envelope", extractRequestID(context.Background(), map[string]string{}, env))
}
