package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tva-service/internal/domain/violation"
	"tva-service/internal/utils"
)

// ViolationStore is the keyed violation collection. Create assigns the
// record's ID and timestamp; List is newest first when the store can
// order, unordered otherwise.
type ViolationStore interface {
	Create(ctx context.Context, rec *violation.Record) error
	List(ctx context.Context, numberPlate string, limit, offset int) ([]violation.Record, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status violation.Status) error
}

// ViolationService covers retrieval and the review workflow over
// persisted violations.
type ViolationService struct {
	store ViolationStore
	log   zerolog.Logger
}

func NewViolationService(store ViolationStore, log zerolog.Logger) *ViolationService {
	return &ViolationService{store: store, log: log}
}

// List returns violations newest first, optionally filtered by plate.
func (s *ViolationService) List(ctx context.Context, plateQuery string, limit, offset int) ([]violation.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.List(ctx, utils.NormalizePlate(plateQuery), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}
	return records, nil
}

// Review moves a violation to a new review state.
func (s *ViolationService) Review(ctx context.Context, idStr string, status violation.Status) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("%w: invalid violation id", ErrInvalidInput)
	}
	if !violation.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: violation %s", ErrNotFound, idStr)
		}
		return fmt.Errorf("failed to update violation status: %w", err)
	}

	s.log.Info().
		Str("violation_id", idStr).
		Str("status", string(status)).
		Msg("violation reviewed")
	return nil
}
