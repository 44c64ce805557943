package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/store"
)

// MinQueryLength is the shortest query the search surface accepts. Shorter
// queries match too much to be useful and are rejected up front.
const MinQueryLength = 3

var ErrQueryTooShort = errors.New("search query too short")

// SearchService matches published concepts by title and summary.
type SearchService struct {
	store       *store.Store
	resultLimit int
	recorder    metrics.Recorder
}

func NewSearchService(s *store.Store, resultLimit int, recorder metrics.Recorder) *SearchService {
	return &SearchService{store: s, resultLimit: resultLimit, recorder: recorder}
}

// Search returns published concepts matching query. Queries shorter than
// MinQueryLength (after trimming) return ErrQueryTooShort.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.Concept, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		s.recorder.RecordSearch("rejected")
		return nil, ErrQueryTooShort
	}

	concepts, err := s.store.SearchConcepts(query, s.resultLimit)
	if err != nil {
		s.recorder.RecordSearch("error")
		s.recorder.RecordDatabaseQueryError("search_concepts")
		return nil, fmt.Errorf("search concepts: %w", err)
	}

	if len(concepts) == 0 {
		s.recorder.RecordSearch("empty")
	} else {
		s.recorder.RecordSearch("hit")
	}
	return concepts, nil
}
