package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}

	allowed := map[OrderStatus]map[OrderStatus]bool{
		OrderStatusPending:    {OrderStatusProcessing: true, OrderStatusCancelled: true},
		OrderStatusProcessing: {OrderStatusShipped: true, OrderStatusCancelled: true},
		OrderStatusShipped:    {OrderStatusDelivered: true},
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, allowed[from][to], from.CanTransitionTo(to))
			})
		}
	}
}

func TestOrderStatus_NothingReturnsToPending(t *testing.T) {
	for _, from := range []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		assert.False(t, from.CanTransitionTo(OrderStatusPending), from)
	}
}

func TestOrderStatus_IsCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.IsCancellable())
	assert.True(t, OrderStatusProcessing.IsCancellable())
	assert.False(t, OrderStatusShipped.IsCancellable())
	assert.False(t, OrderStatusDelivered.IsCancellable())
	assert.False(t, OrderStatusCancelled.IsCancellable())
}

func TestOrder_TransitionTo(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("cancel sets cancelledAt", func(t *testing.T) {
		order := &Order{Status: OrderStatusPending}
		require.NoError(t, order.TransitionTo(OrderStatusCancelled, now))
		assert.Equal(t, OrderStatusCancelled, order.Status)
		require.NotNil(t, order.CancelledAt)
		assert.Equal(t, now, *order.CancelledAt)
	})

	t.Run("ship then deliver", func(t *testing.T) {
		order := &Order{Status: OrderStatusProcessing}
		require.NoError(t, order.TransitionTo(OrderStatusShipped, now))
		require.NoError(t, order.TransitionTo(OrderStatusDelivered, now.Add(time.Hour)))
		require.NotNil(t, order.ShippedAt)
		require.NotNil(t, order.DeliveredAt)
		assert.Equal(t, now.Add(time.Hour), *order.DeliveredAt)
	})

	t.Run("shipped cannot be cancelled", func(t *testing.T) {
		order := &Order{Status: OrderStatusShipped}
		err := order.TransitionTo(OrderStatusCancelled, now)
		require.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, OrderStatusShipped, order.Status)
		assert.Nil(t, order.CancelledAt)
	})
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("199.99"), Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("0.01"), Quantity: 3},
	}

	assert.True(t, decimal.RequireFromString("400.01").Equal(ComputeTotal(items)))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(40001), ToMinorUnits(decimal.RequireFromString("400.01")))
	assert.Equal(t, int64(100), ToMinorUnits(decimal.NewFromInt(1)))
	assert.True(t, decimal.RequireFromString("400.01").Equal(FromMinorUnits(40001)))
}

func TestUser_Roles(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	assert.Equal(t, []string{"user", "admin"}, admin.Roles().ToStrings())
	assert.True(t, admin.IsAdmin())

	user := &User{Role: RoleUser}
	assert.Equal(t, []string{"user"}, user.Roles().ToStrings())
	assert.False(t, user.IsAdmin())
}
