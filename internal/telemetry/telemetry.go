// Package telemetry delivers access guard decisions to the store as an
// asynchronous batch writer. Emission never blocks the request path: events
// are dropped when the buffer is full.
package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/store"
)

const (
	batchSize     = 100
	flushInterval = 1 * time.Second
)

// Event is one guard decision as emitted to telemetry. AppRole and Email are
// empty when the resolution never reached the corresponding data; both render
// as JSON null on the wire.
type Event struct {
	Status    string
	Reason    string
	AppRole   string
	Email     string
	Path      string
	Timestamp time.Time
}

// MarshalJSON renders absent appRole/email as null rather than empty strings.
func (e Event) MarshalJSON() ([]byte, error) {
	type wire struct {
		Status    string  `json:"status"`
		Reason    string  `json:"reason"`
		AppRole   *string `json:"appRole"`
		Email     *string `json:"email"`
		Timestamp string  `json:"timestamp"`
	}

	w := wire{
		Status:    e.Status,
		Reason:    e.Reason,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
	}
	if e.AppRole != "" {
		w.AppRole = &e.AppRole
	}
	if e.Email != "" {
		w.Email = &e.Email
	}
	return json.Marshal(w)
}

// Sink receives guard decisions. The production implementation is Service;
// tests substitute a recording fake.
type Sink interface {
	Emit(event Event)
}

// Service is the store-backed Sink. Events are buffered on a channel and
// flushed in batches by a background worker.
type Service struct {
	store   *store.Store
	enabled bool

	eventChan chan Event

	batchBuffer []*models.AccessEvent
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	wg         sync.WaitGroup
	shutdownCh chan struct{}
}

var _ Sink = (*Service)(nil)

// NewService creates the telemetry service. When disabled, Emit is a no-op.
func NewService(s *store.Store, enabled bool, bufferSize int) *Service {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	service := &Service{
		store:       s,
		enabled:     enabled,
		eventChan:   make(chan Event, bufferSize),
		batchBuffer: make([]*models.AccessEvent, 0, batchSize),
		batchTicker: time.NewTicker(flushInterval),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.wg.Add(1)
		go service.worker()
		log.Printf("Telemetry service started with buffer size %d", bufferSize)
	} else {
		log.Println("Telemetry service is disabled")
	}

	return service
}

// Emit queues one guard decision for delivery. Timestamp defaults to the time
// of emission when the caller did not supply one. Never blocks: events are
// dropped when the buffer is full.
func (s *Service) Emit(event Event) {
	if !s.enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case s.eventChan <- event:
	default:
		log.Printf("Telemetry buffer full, dropping event (reason=%s)", event.Reason)
	}
}

// worker is the background goroutine that processes events
func (s *Service) worker() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.eventChan:
			s.addToBatch(event)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain anything still queued, then flush.
			for {
				select {
				case event := <-s.eventChan:
					s.addToBatch(event)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

func (s *Service) addToBatch(event Event) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, &models.AccessEvent{
		Status:    event.Status,
		Reason:    event.Reason,
		AppRole:   event.AppRole,
		Email:     event.Email,
		Path:      event.Path,
		Timestamp: event.Timestamp,
	})

	if len(s.batchBuffer) >= batchSize {
		s.flushBatchUnsafe()
	}
}

func (s *Service) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe writes the buffered events; caller must hold batchMutex.
func (s *Service) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	if err := s.store.InsertAccessEvents(s.batchBuffer); err != nil {
		log.Printf("Failed to persist %d access events: %v", len(s.batchBuffer), err)
	}

	s.batchBuffer = s.batchBuffer[:0]
}

// CleanupOldEvents deletes events older than the retention window.
func (s *Service) CleanupOldEvents(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.store.DeleteAccessEventsBefore(cutoff)
}

// Shutdown stops the worker and flushes remaining events, bounded by ctx.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	close(s.shutdownCh)
	s.batchTicker.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
