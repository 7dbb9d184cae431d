package violation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VehicleType is the coarse vehicle classification returned by the
// vision model.
type VehicleType string

const (
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleScooter    VehicleType = "scooter"
	VehicleCar        VehicleType = "car"
	VehicleAuto       VehicleType = "auto"
	VehicleUnknown    VehicleType = "unknown"
)

// ParseVehicleType maps a raw model output string onto the enum,
// falling back to VehicleUnknown for anything unrecognized.
func ParseVehicleType(s string) VehicleType {
	switch VehicleType(s) {
	case VehicleMotorcycle, VehicleScooter, VehicleCar, VehicleAuto:
		return VehicleType(s)
	default:
		return VehicleUnknown
	}
}

// Status is the review state of a persisted violation record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusDismissed Status = "dismissed"
)

// ValidStatus reports whether s is one of the known review states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusDismissed:
		return true
	}
	return false
}

// Assessment is the validated structured result of vision inference on
// a single image. All flags are always present after validation;
// malformed model output is coerced rather than rejected.
type Assessment struct {
	HelmetViolation   bool        `json:"helmet_violation"`
	TripleRiding      bool        `json:"triple_riding"`
	Overloaded        bool        `json:"overloaded"`
	SeatbeltViolation bool        `json:"seatbelt_violation"`
	MobileUse         bool        `json:"mobile_use"`
	UnderageDriver    bool        `json:"underage_driver"`
	NumberPlate       string      `json:"number_plate"`
	VehicleType       VehicleType `json:"vehicle_type"`
	Summary           string      `json:"summary"`
}

// Severity counts the triggered violation flags. Range 0..6,
// recomputed on every call.
func (a Assessment) Severity() int {
	n := 0
	for _, f := range []bool{
		a.HelmetViolation,
		a.TripleRiding,
		a.Overloaded,
		a.SeatbeltViolation,
		a.MobileUse,
		a.UnderageDriver,
	} {
		if f {
			n++
		}
	}
	return n
}

// AssessResult is the tagged outcome of interpreting raw inference
// output: either a clean assessment or a degenerate one carrying the
// failure detail in its summary.
type AssessResult struct {
	Assessment Assessment
	Degenerate bool
	Detail     string
}

// Record is a persisted violation. The ID and Timestamp are assigned
// exactly once by the store; Status starts as pending and is only
// changed by the review workflow.
type Record struct {
	ID             uuid.UUID `json:"id"`
	ImageReference string    `json:"image_reference"`
	Assessment
	SeverityScore int            `json:"severity_score"`
	Status        Status         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	RawResult     datatypes.JSON `json:"raw_result,omitempty"`
}

// Owner is a registered vehicle owner. Plate is stored canonical
// (trimmed, uppercased).
type Owner struct {
	Name  string `json:"name"`
	Plate string `json:"plate"`
	Email string `json:"email"`
}

// EmailStatus reports the outcome of the notification stage.
type EmailStatus string

const (
	EmailSent        EmailStatus = "sent"
	EmailNoRecipient EmailStatus = "no_recipient"
	EmailSendFailed  EmailStatus = "send_failed"
)

// NotificationOutcome pairs the email status with the transport error
// detail when delivery failed.
type NotificationOutcome struct {
	Status EmailStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// PipelineResult is the combined outcome returned for one submitted
// image. Stored=false with a non-nil assessment means persistence
// failed after inference succeeded.
type PipelineResult struct {
	VisionResult Assessment          `json:"vision_result"`
	Severity     int                 `json:"severity"`
	Stored       bool                `json:"stored"`
	RecordID     *uuid.UUID          `json:"record_id,omitempty"`
	EmailStatus  NotificationOutcome `json:"email_status"`
}
