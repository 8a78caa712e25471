package shortener

import (
	"context"
	"fmt"
	"time"

	"github.com/tinifier/tinifier/internal/analytics"
	"go.uber.org/zap"
)

// Service composes the encoder, the entry model and a Store into the four
// logical operations. Analytics publishing is best-effort: a failed publish
// is logged and never fails the operation itself.
type Service struct {
	store          Store
	strategy       CodeStrategy
	strategyName   string
	author         string
	publishCreated analytics.Publish[analytics.EntryCreatedEvent]
	publishViewed  analytics.Publish[analytics.EntryViewedEvent]
	logger         *zap.Logger
}

// NewService creates the operation layer. author is the resolved identity
// stamped on entries created through Add.
func NewService(
	store Store,
	strategy CodeStrategy,
	strategyName string,
	author string,
	publishCreated analytics.Publish[analytics.EntryCreatedEvent],
	publishViewed analytics.Publish[analytics.EntryViewedEvent],
	logger *zap.Logger,
) *Service {
	return &Service{
		store:          store,
		strategy:       strategy,
		strategyName:   strategyName,
		author:         author,
		publishCreated: publishCreated,
		publishViewed:  publishViewed,
		logger:         logger,
	}
}

// Add shortens longURL and stores the resulting entry. When the generated
// code is already occupied it returns ErrCollision — a recoverable error,
// not a process abort — and stores nothing.
func (s *Service) Add(ctx context.Context, longURL string) (*Entry, error) {
	code := s.strategy.Code(longURL)

	occupied, err := s.store.Contains(ctx, code)
	if err != nil {
		return nil, err
	}

	if occupied {
		return nil, fmt.Errorf("code %q: %w", code, ErrCollision)
	}

	stored, err := s.store.Insert(ctx, code, NewEntry(longURL, code, s.author))
	if err != nil {
		return nil, err
	}

	s.publishEntryCreated(stored)

	return stored, nil
}

// AddEntry stores a pre-built entry, bypassing the collision check of Add.
// The short code is recomputed from the entry's long URL — any code already
// set on the input is ignored — and the creation time is stamped fresh.
func (s *Service) AddEntry(ctx context.Context, e Entry) (*Entry, error) {
	e.ShortURL = s.strategy.Code(e.LongURL)
	e.CreatedAt = time.Now()

	stored, err := s.store.Insert(ctx, e.ShortURL, e)
	if err != nil {
		return nil, err
	}

	s.publishEntryCreated(stored)

	return stored, nil
}

// Edit merges the request into the entry stored under code and writes the
// result back. A request that names an author reauthors the entry through
// Associate; otherwise Merge applies and authorship is untouched. Returns
// ErrNotFound when the code is absent.
func (s *Service) Edit(ctx context.Context, code string, req UpdateRequest) (*Entry, error) {
	current, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	updated := current.Merge(req)
	if req.Author != "" {
		updated = current.Associate(req)
	}

	// The store exposes no in-place update; replace the record.
	if _, err := s.store.Remove(ctx, code); err != nil {
		return nil, err
	}

	stored, err := s.store.Insert(ctx, code, updated)
	if err != nil {
		// Put the original back so a failed write-back cannot delete
		// the mapping being edited.
		if _, restoreErr := s.store.Insert(ctx, code, *current); restoreErr != nil {
			s.logger.Error("failed to restore entry after write-back failure",
				zap.String("code", code),
				zap.Error(restoreErr),
			)
		}

		return nil, fmt.Errorf("write back edited entry: %w", err)
	}

	return stored, nil
}

// Get resolves a short code to its entry, or ErrNotFound.
func (s *Service) Get(ctx context.Context, code string) (*Entry, error) {
	e, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.publishViewed(&analytics.EntryViewedEvent{
		Code:     code,
		ViewedAt: time.Now(),
	}); err != nil {
		s.logger.Error("failed to publish entry viewed event",
			zap.String("code", code),
			zap.Error(err),
		)
	}

	return e, nil
}

// Remove deletes the entry stored under code and returns it, or ErrNotFound.
func (s *Service) Remove(ctx context.Context, code string) (*Entry, error) {
	return s.store.Remove(ctx, code)
}

func (s *Service) publishEntryCreated(e *Entry) {
	err := s.publishCreated(&analytics.EntryCreatedEvent{
		Code:      e.ShortURL,
		LongURL:   e.LongURL,
		Author:    e.Author,
		Strategy:  s.strategyName,
		CreatedAt: e.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to publish entry created event",
			zap.String("code", e.ShortURL),
			zap.Error(err),
		)
	}
}
