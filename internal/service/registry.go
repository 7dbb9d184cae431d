package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tva-service/internal/domain/violation"
	"tva-service/internal/utils"
)

// plate prefix length used for the fuzzy fallback match
const platePrefixLen = 4

// OwnerStore is the keyed owner collection backing the registry.
// Find methods return (nil, nil) for an empty result.
type OwnerStore interface {
	Upsert(ctx context.Context, owner violation.Owner) error
	FindByPlate(ctx context.Context, plate string) (*violation.Owner, error)
	FindFirstByPlatePrefix(ctx context.Context, prefix string) (*violation.Owner, error)
}

// VehicleRegistry resolves registered owners from plate numbers, exact
// first, then by a 4-character prefix scan. OCR from the vision model
// is unreliable on trailing characters, so the prefix fallback
// recovers plausible matches. Only the first prefix hit is returned;
// there is no ranking. Known limitation: a prefix hit can notify the
// wrong owner when two registrations share a prefix.
type VehicleRegistry struct {
	store OwnerStore
	log   zerolog.Logger
}

func NewVehicleRegistry(store OwnerStore, log zerolog.Logger) *VehicleRegistry {
	return &VehicleRegistry{store: store, log: log}
}

// Register validates and upserts an owner under the canonical plate.
func (r *VehicleRegistry) Register(ctx context.Context, name, plate, email string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	normalized := utils.NormalizePlate(plate)
	if normalized == "" {
		return fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}

	owner := violation.Owner{
		Name:  name,
		Plate: normalized,
		Email: email,
	}
	if err := r.store.Upsert(ctx, owner); err != nil {
		return fmt.Errorf("failed to register owner: %w", err)
	}

	r.log.Info().Str("plate", normalized).Msg("registered vehicle owner")
	return nil
}

// LookupOwner resolves a plate to its registered owner. Returns
// ErrNotFound when neither the exact plate nor its 4-character prefix
// matches anything; any other error is a failed lookup and may warrant
// a retry, which ErrNotFound does not.
func (r *VehicleRegistry) LookupOwner(ctx context.Context, plate string) (*violation.Owner, error) {
	normalized := utils.NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: no plate to look up", ErrNotFound)
	}

	owner, err := r.store.FindByPlate(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("owner lookup failed: %w", err)
	}
	if owner != nil {
		return owner, nil
	}

	if len(normalized) < platePrefixLen {
		return nil, fmt.Errorf("%w: no owner for plate %s", ErrNotFound, normalized)
	}

	prefix := normalized[:platePrefixLen]
	owner, err = r.store.FindFirstByPlatePrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("owner prefix lookup failed: %w", err)
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: no owner for plate %s", ErrNotFound, normalized)
	}

	r.log.Debug().
		Str("plate", normalized).
		Str("prefix", prefix).
		Str("matched_plate", owner.Plate).
		Msg("resolved owner via prefix match")
	return owner, nil
}
