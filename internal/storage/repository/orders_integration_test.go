package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

func TestStorage_CreateOrder(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	aliceUID := uuid.New().String()
	factory.CreateUser(t, aliceUID, "alice", "alice@example.com", "hashedpassword", "user", 0)

	gotID, err := storage.CreateOrder(context.Background(), models.Order{
		OrderID:   "order_123",
		SessionID: "session_abc",
		UserUID:   aliceUID,
		Amount:    499,
	})
	require.NoError(t, err)
	assert.NotZero(t, gotID)
	NewTestVerification(storage).VerifyOrderStatus(t, "order_123", models.PaymentStatusPending)

	// order_id уникален.
	_, err = storage.CreateOrder(context.Background(), models.Order{
		OrderID:   "order_123",
		SessionID: "session_def",
		UserUID:   aliceUID,
		Amount:    499,
	})
	require.Error(t, err)
}

func TestStorage_UpdateOrderFromWebhook(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	aliceUID := uuid.New().String()
	factory.CreateUser(t, aliceUID, "alice", "alice@example.com", "hashedpassword", "user", 0)
	factory.CreateOrder(t, "order_123", "session_abc", aliceUID, 499,
		models.PaymentStatusPending, time.Now().UTC())

	t.Run("updates status and transaction id", func(t *testing.T) {
		got, err := storage.UpdateOrderFromWebhook(context.Background(), "order_123",
			models.PaymentStatusPaid, "txn_777")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, "txn_777", got.TransactionID)
		assert.Equal(t, aliceUID, got.UserUID)
		assert.Equal(t, 499, got.Amount)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := storage.UpdateOrderFromWebhook(context.Background(), "order_missing",
			models.PaymentStatusPaid, "txn_778")
		require.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestStorage_ListOrdersByUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	aliceUID := uuid.New().String()
	bobUID := uuid.New().String()
	factory.CreateUser(t, aliceUID, "alice", "alice@example.com", "hashedpassword", "user", 0)
	factory.CreateUser(t, bobUID, "bob", "bob@example.com", "hashedpassword", "user", 0)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	factory.CreateOrder(t, "order_old", "session_1", aliceUID, 499, models.PaymentStatusPaid, base)
	factory.CreateOrder(t, "order_new", "session_2", aliceUID, 499, models.PaymentStatusPending, base.Add(time.Hour))
	factory.CreateOrder(t, "order_bob", "session_3", bobUID, 499, models.PaymentStatusPaid, base)

	got, err := storage.ListOrdersByUser(context.Background(), aliceUID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Новые заказы первыми.
	assert.Equal(t, "order_new", got[0].OrderID)
	assert.Equal(t, "order_old", got[1].OrderID)

	empty, err := storage.ListOrdersByUser(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_ActivateSubscription(t *testing.T) {
	t.Run("activates free user for one month from now", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		verification := NewTestVerification(storage)

		aliceUID := uuid.New().String()
		factory.CreateUser(t, aliceUID, "alice", "alice@example.com", "hashedpassword", "user", 0)

		require.NoError(t, storage.ActivateSubscription(context.Background(), aliceUID))

		expiry := verification.VerifySubscription(t, aliceUID, "active")
		require.NotNil(t, expiry)
		// Ожидание считаем часами БД, календарная арифметика месяцев
		// на границах месяца отличается от AddDate.
		var expected time.Time
		require.NoError(t, storage.DB.QueryRow(
			"SELECT now() + INTERVAL '1 month'").Scan(&expected))
		assert.WithinDuration(t, expected, *expiry, time.Minute)
	})

	t.Run("extends active subscription from its current expiry", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		verification := NewTestVerification(storage)

		currentExpiry := time.Now().UTC().AddDate(0, 0, 10)
		aliceUID := uuid.New().String()
		factory.CreateUserWithSubscription(t, aliceUID, "alice", "alice@example.com",
			"active", currentExpiry, 0)

		require.NoError(t, storage.ActivateSubscription(context.Background(), aliceUID))

		expiry := verification.VerifySubscription(t, aliceUID, "active")
		require.NotNil(t, expiry)
		// Продление идёт от прежней даты истечения, не от текущего момента.
		var expected time.Time
		require.NoError(t, storage.DB.QueryRow(
			"SELECT $1::timestamptz + INTERVAL '1 month'", currentExpiry).Scan(&expected))
		assert.WithinDuration(t, expected, *expiry, time.Minute)
	})

	t.Run("expired subscription restarts from now", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		verification := NewTestVerification(storage)

		aliceUID := uuid.New().String()
		factory.CreateUserWithSubscription(t, aliceUID, "alice", "alice@example.com",
			"free", time.Now().UTC().AddDate(0, -2, 0), 0)

		require.NoError(t, storage.ActivateSubscription(context.Background(), aliceUID))

		expiry := verification.VerifySubscription(t, aliceUID, "active")
		require.NotNil(t, expiry)
		var expected time.Time
		require.NoError(t, storage.DB.QueryRow(
			"SELECT now() + INTERVAL '1 month'").Scan(&expected))
		assert.WithinDuration(t, expected, *expiry, time.Minute)
	})

	t.Run("unknown user", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		err := storage.ActivateSubscription(context.Background(), uuid.New().String())
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
