package services

import (
	"testing"
	"time"

	"github.com/mrolandas/burburiuok/internal/cache"
	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())

	return s
}

func newTestConceptService(t *testing.T) (*ConceptService, cache.Cache[[]models.Concept]) {
	t.Helper()

	c := cache.NewMemoryCache[[]models.Concept]()
	svc := NewConceptService(newTestStore(t), c, time.Minute, metrics.NewNoopMetrics())
	return svc, c
}
