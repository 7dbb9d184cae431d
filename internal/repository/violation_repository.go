package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tva-service/internal/domain/violation"
)

type ViolationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) *ViolationRepository {
	return &ViolationRepository{db: db}
}

type Violation struct {
	ID                uuid.UUID      `gorm:"primaryKey;type:uuid"`
	ImageReference    string         `gorm:"not null"`
	HelmetViolation   bool           `gorm:"not null"`
	TripleRiding      bool           `gorm:"not null"`
	Overloaded        bool           `gorm:"not null"`
	SeatbeltViolation bool           `gorm:"not null"`
	MobileUse         bool           `gorm:"not null"`
	UnderageDriver    bool           `gorm:"not null"`
	NumberPlate       string         `gorm:"not null"`
	VehicleType       string         `gorm:"not null"`
	Summary           string         `gorm:"not null"`
	SeverityScore     int            `gorm:"not null"`
	Status            string         `gorm:"not null"`
	RawResult         datatypes.JSON `gorm:"type:jsonb"`
	Timestamp         time.Time      `gorm:"not null"`
}

func (Violation) TableName() string { return "violations" }

// Create persists a new violation record, assigning its ID and
// creation timestamp. On success the assigned values are written back
// into rec.
func (r *ViolationRepository) Create(ctx context.Context, rec *violation.Record) error {
	row := Violation{
		ID:                uuid.New(),
		ImageReference:    rec.ImageReference,
		HelmetViolation:   rec.HelmetViolation,
		TripleRiding:      rec.TripleRiding,
		Overloaded:        rec.Overloaded,
		SeatbeltViolation: rec.SeatbeltViolation,
		MobileUse:         rec.MobileUse,
		UnderageDriver:    rec.UnderageDriver,
		NumberPlate:       rec.NumberPlate,
		VehicleType:       string(rec.VehicleType),
		Summary:           rec.Summary,
		SeverityScore:     rec.SeverityScore,
		Status:            string(violation.StatusPending),
		RawResult:         rec.RawResult,
		Timestamp:         time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}

	rec.ID = row.ID
	rec.Status = violation.StatusPending
	rec.Timestamp = row.Timestamp
	return nil
}

// List returns violation records newest first. If the ordered query
// fails it falls back to an unordered scan rather than erroring, since
// callers prefer an unsorted listing over none.
func (r *ViolationRepository) List(ctx context.Context, numberPlate string, limit, offset int) ([]violation.Record, error) {
	buildQuery := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&Violation{})
		if numberPlate != "" {
			query = query.Where("number_plate = ?", numberPlate)
		}
		if limit > 0 {
			query = query.Limit(limit)
		}
		if offset > 0 {
			query = query.Offset(offset)
		}
		return query
	}

	var rows []Violation
	if err := buildQuery().Order("timestamp DESC").Find(&rows).Error; err != nil {
		rows = rows[:0]
		if err := buildQuery().Find(&rows).Error; err != nil {
			return nil, err
		}
	}

	records := make([]violation.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

// UpdateStatus moves a record to a new review state. Returns
// gorm.ErrRecordNotFound if no record has the given ID.
func (r *ViolationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status violation.Status) error {
	res := r.db.WithContext(ctx).
		Model(&Violation{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func toRecord(row Violation) violation.Record {
	return violation.Record{
		ID:             row.ID,
		ImageReference: row.ImageReference,
		Assessment: violation.Assessment{
			HelmetViolation:   row.HelmetViolation,
			TripleRiding:      row.TripleRiding,
			Overloaded:        row.Overloaded,
			SeatbeltViolation: row.SeatbeltViolation,
			MobileUse:         row.MobileUse,
			UnderageDriver:    row.UnderageDriver,
			NumberPlate:       row.NumberPlate,
			VehicleType:       violation.ParseVehicleType(row.VehicleType),
			Summary:           row.Summary,
		},
		SeverityScore: row.SeverityScore,
		Status:        violation.Status(row.Status),
		Timestamp:     row.Timestamp,
		RawResult:     row.RawResult,
	}
}
