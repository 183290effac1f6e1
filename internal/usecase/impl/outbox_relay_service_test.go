package impl

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/errors"
	mockSvc "storefront/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedOutbox(t *testing.T, store *memStore, eventTypes ...string) []uuid.UUID {
	t.Helper()

	ids := make([]uuid.UUID, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		event, err := entity.NewOutboxEvent(uuid.New(), eventType, map[string]string{"k": "v"}, "req-1", time.Now())
		require.NoError(t, err)
		require.NoError(t, store.OutboxRepo().Add(context.Background(), event))
		ids = append(ids, event.ID)
	}

	return ids
}

func byID(id uuid.UUID) any {
	return mock.MatchedBy(func(e *entity.OutboxEvent) bool { return e.ID == id })
}

func TestOutboxRelayService_RelayBatch(t *testing.T) {
	store := newMemStore()
	publisher := mockSvc.NewMockEventPublisher(t)
	relay := NewOutboxRelayService(OutboxRelayServiceParams{TxManager: store, Publisher: publisher, Logger: discardLogger()})

	ids := seedOutbox(t, store, entity.EventOrderCreated, entity.EventOrderStatusChanged, entity.EventOrderCancelled)
	for _, id := range ids {
		publisher.On("Publish", mock.Anything, byID(id)).Return(nil).Once()
	}

	published, err := relay.RelayBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, published)

	// Everything is marked, so the next batch is empty.
	published, err = relay.RelayBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestOutboxRelayService_RelayBatch_RespectsLimit(t *testing.T) {
	store := newMemStore()
	publisher := mockSvc.NewMockEventPublisher(t)
	relay := NewOutboxRelayService(OutboxRelayServiceParams{TxManager: store, Publisher: publisher, Logger: discardLogger()})

	seedOutbox(t, store, entity.EventOrderCreated, entity.EventOrderCreated, entity.EventOrderCreated)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Times(3)

	published, err := relay.RelayBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	published, err = relay.RelayBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, published)
}

func TestOutboxRelayService_RelayBatch_StopsAtFirstFailure(t *testing.T) {
	store := newMemStore()
	publisher := mockSvc.NewMockEventPublisher(t)
	relay := NewOutboxRelayService(OutboxRelayServiceParams{TxManager: store, Publisher: publisher, Logger: discardLogger()})

	ids := seedOutbox(t, store, entity.EventOrderCreated, entity.EventCheckoutRejected, entity.EventOrderCancelled)
	publisher.On("Publish", mock.Anything, byID(ids[0])).Return(nil).Once()
	publisher.On("Publish", mock.Anything, byID(ids[1])).Return(errors.New("broker unavailable")).Once()

	published, err := relay.RelayBatch(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, 1, published)

	// The failed event leads the next batch, ahead of the one never tried.
	var order []uuid.UUID
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, args.Get(1).(*entity.OutboxEvent).ID)
	}).Return(nil).Twice()

	published, err = relay.RelayBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	assert.Equal(t, ids[1:], order)
}
