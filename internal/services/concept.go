package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrolandas/burburiuok/internal/cache"
	"github.com/mrolandas/burburiuok/internal/metrics"
	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrConceptNotFound = errors.New("concept not found")

const publishedConceptsKey = "concepts:published"

// ConceptInput carries the editable fields of a concept.
type ConceptInput struct {
	Slug      string
	Title     string
	Summary   string
	Body      string
	Published bool
}

// ConceptService manages curriculum entries. Reads of the published set go
// through a cache; every mutation snapshots a version and invalidates the
// cache.
type ConceptService struct {
	store    *store.Store
	cache    cache.Cache[[]models.Concept]
	cacheTTL time.Duration
	recorder metrics.Recorder
}

func NewConceptService(
	s *store.Store,
	c cache.Cache[[]models.Concept],
	cacheTTL time.Duration,
	recorder metrics.Recorder,
) *ConceptService {
	return &ConceptService{
		store:    s,
		cache:    c,
		cacheTTL: cacheTTL,
		recorder: recorder,
	}
}

// PublishedConcepts returns the publicly visible concepts in display order,
// cache-aside.
func (s *ConceptService) PublishedConcepts(ctx context.Context) ([]models.Concept, error) {
	return cache.GetWithFetch(ctx, s.cache, publishedConceptsKey, s.cacheTTL,
		func(ctx context.Context, _ string) ([]models.Concept, error) {
			concepts, err := s.store.ListConcepts(true)
			if err != nil {
				s.recorder.RecordDatabaseQueryError("list_published_concepts")
				return nil, err
			}
			s.recorder.SetPublishedConceptsCount(len(concepts))
			return concepts, nil
		})
}

// AllConcepts returns every concept including drafts, for the admin surface.
func (s *ConceptService) AllConcepts(ctx context.Context) ([]models.Concept, error) {
	return s.store.ListConcepts(false)
}

// ConceptBySlug returns one published concept by its slug.
func (s *ConceptService) ConceptBySlug(ctx context.Context, slug string) (*models.Concept, error) {
	concept, err := s.store.ConceptBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConceptNotFound
		}
		return nil, fmt.Errorf("look up concept: %w", err)
	}
	if !concept.Published {
		return nil, ErrConceptNotFound
	}
	return concept, nil
}

// ConceptByID returns any concept by ID, for the admin surface.
func (s *ConceptService) ConceptByID(ctx context.Context, id string) (*models.Concept, error) {
	concept, err := s.store.ConceptByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConceptNotFound
		}
		return nil, fmt.Errorf("look up concept: %w", err)
	}
	return concept, nil
}

// Create adds a concept at the end of the display order and snapshots its
// first version.
func (s *ConceptService) Create(ctx context.Context, input ConceptInput, editedBy string) (*models.Concept, error) {
	existing, err := s.store.ListConcepts(false)
	if err != nil {
		s.recorder.RecordConceptMutation("create", false)
		return nil, fmt.Errorf("list concepts: %w", err)
	}

	concept := &models.Concept{
		ID:        uuid.NewString(),
		Slug:      input.Slug,
		Title:     input.Title,
		Summary:   input.Summary,
		Body:      input.Body,
		Position:  len(existing),
		Published: input.Published,
	}

	if err := s.store.CreateConcept(concept); err != nil {
		s.recorder.RecordConceptMutation("create", false)
		return nil, fmt.Errorf("create concept: %w", err)
	}

	s.snapshot(concept, editedBy)
	s.invalidate(ctx)
	s.recorder.RecordConceptMutation("create", true)
	return concept, nil
}

// Update rewrites a concept's editable fields and snapshots the new state.
func (s *ConceptService) Update(ctx context.Context, id string, input ConceptInput, editedBy string) (*models.Concept, error) {
	concept, err := s.ConceptByID(ctx, id)
	if err != nil {
		s.recorder.RecordConceptMutation("update", false)
		return nil, err
	}

	concept.Slug = input.Slug
	concept.Title = input.Title
	concept.Summary = input.Summary
	concept.Body = input.Body
	concept.Published = input.Published

	if err := s.store.UpdateConcept(concept); err != nil {
		s.recorder.RecordConceptMutation("update", false)
		return nil, fmt.Errorf("update concept: %w", err)
	}

	s.snapshot(concept, editedBy)
	s.invalidate(ctx)
	s.recorder.RecordConceptMutation("update", true)
	return concept, nil
}

// Delete removes a concept. Its version history is kept.
func (s *ConceptService) Delete(ctx context.Context, id string) error {
	if _, err := s.ConceptByID(ctx, id); err != nil {
		s.recorder.RecordConceptMutation("delete", false)
		return err
	}

	if err := s.store.DeleteConcept(id); err != nil {
		s.recorder.RecordConceptMutation("delete", false)
		return fmt.Errorf("delete concept: %w", err)
	}

	s.invalidate(ctx)
	s.recorder.RecordConceptMutation("delete", true)
	return nil
}

// Reorder rewrites display positions to match ids, all or nothing.
func (s *ConceptService) Reorder(ctx context.Context, ids []string) error {
	if err := s.store.ReorderConcepts(ids); err != nil {
		s.recorder.RecordConceptMutation("reorder", false)
		if errors.Is(err, store.ErrConceptNotFound) {
			return ErrConceptNotFound
		}
		return fmt.Errorf("reorder concepts: %w", err)
	}

	s.invalidate(ctx)
	s.recorder.RecordConceptMutation("reorder", true)
	return nil
}

// Versions returns a concept's edit history, newest first.
func (s *ConceptService) Versions(ctx context.Context, conceptID string) ([]models.ConceptVersion, error) {
	return s.store.VersionsByConceptID(conceptID)
}

// snapshot records the current state of a concept as an immutable version.
// Snapshot failures are logged, not returned: the primary write succeeded.
func (s *ConceptService) snapshot(concept *models.Concept, editedBy string) {
	revision, err := s.store.NextRevision(concept.ID)
	if err != nil {
		log.Printf("next revision for concept %s: %v", concept.ID, err)
		return
	}

	version := &models.ConceptVersion{
		ID:        uuid.NewString(),
		ConceptID: concept.ID,
		Revision:  revision,
		Title:     concept.Title,
		Summary:   concept.Summary,
		Body:      concept.Body,
		EditedBy:  editedBy,
	}
	if err := s.store.CreateConceptVersion(version); err != nil {
		log.Printf("snapshot concept %s: %v", concept.ID, err)
	}
}

func (s *ConceptService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, publishedConceptsKey); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("invalidate published concepts cache: %v", err)
	}
}
