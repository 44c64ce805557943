package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	return s
}

func TestEventMarshalJSON_NullFieldsWhenAbsent(t *testing.T) {
	event := Event{
		Status:    "denied",
		Reason:    "NO_SESSION",
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "denied", decoded["status"])
	assert.Equal(t, "NO_SESSION", decoded["reason"])
	assert.Nil(t, decoded["appRole"])
	assert.Nil(t, decoded["email"])
	assert.Equal(t, "2025-03-01T12:00:00Z", decoded["timestamp"])
}

func TestEventMarshalJSON_PopulatedFields(t *testing.T) {
	event := Event{
		Status:    "granted",
		Reason:    "OK",
		AppRole:   "admin",
		Email:     "admin@example.com",
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "admin", decoded["appRole"])
	assert.Equal(t, "admin@example.com", decoded["email"])
}

func TestServiceEmitAndFlush(t *testing.T) {
	s := newTestStore(t)
	svc := NewService(s, true, 10)

	svc.Emit(Event{Status: "denied", Reason: "NO_SESSION", Path: "/admin"})
	svc.Emit(Event{Status: "granted", Reason: "OK", AppRole: "admin", Email: "a@b.c", Path: "/admin"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	events, _, err := s.ListAccessEvents(store.NewPaginationParams(1, 10, ""))
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Timestamps default to emission time.
	for _, event := range events {
		assert.False(t, event.Timestamp.IsZero())
	}
}

func TestServiceDisabledDropsEvents(t *testing.T) {
	s := newTestStore(t)
	svc := NewService(s, false, 10)

	svc.Emit(Event{Status: "denied", Reason: "NO_SESSION"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	events, _, err := s.ListAccessEvents(store.NewPaginationParams(1, 10, ""))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestServiceCleanupOldEvents(t *testing.T) {
	s := newTestStore(t)
	svc := NewService(s, true, 10)

	svc.Emit(Event{
		Status:    "denied",
		Reason:    "NO_SESSION",
		Timestamp: time.Now().AddDate(0, 0, -120),
	})
	svc.Emit(Event{Status: "granted", Reason: "OK"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	deleted, err := svc.CleanupOldEvents(90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, _, err := s.ListAccessEvents(store.NewPaginationParams(1, 10, ""))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
