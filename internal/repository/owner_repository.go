package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tva-service/internal/domain/violation"
)

type OwnerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

type VehicleOwner struct {
	Plate     string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (VehicleOwner) TableName() string { return "vehicle_owners" }

// Upsert registers an owner, replacing any existing registration for
// the same canonical plate.
func (r *OwnerRepository) Upsert(ctx context.Context, owner violation.Owner) error {
	row := VehicleOwner{
		Plate: owner.Plate,
		Name:  owner.Name,
		Email: owner.Email,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plate"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
		}).
		Create(&row).Error
}

// FindByPlate looks up an owner by exact canonical plate. Returns
// (nil, nil) when no owner is registered under that plate.
func (r *OwnerRepository) FindByPlate(ctx context.Context, plate string) (*violation.Owner, error) {
	var row VehicleOwner
	err := r.db.WithContext(ctx).Where("plate = ?", plate).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toOwner(row), nil
}

// FindFirstByPlatePrefix scans owners whose plate starts with prefix,
// lexicographic order, and returns the first hit. Returns (nil, nil)
// when the scan is empty.
func (r *OwnerRepository) FindFirstByPlatePrefix(ctx context.Context, prefix string) (*violation.Owner, error) {
	var row VehicleOwner
	err := r.db.WithContext(ctx).
		Where("plate LIKE ?", prefix+"%").
		Order("plate ASC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toOwner(row), nil
}

func toOwner(row VehicleOwner) *violation.Owner {
	return &violation.Owner{
		Name:  row.Name,
		Plate: row.Plate,
		Email: row.Email,
	}
}
