package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"tva-service/internal/domain/violation"
)

// Assessor validates and normalizes raw inference output into an
// Assessment. It never rejects: unparseable output becomes a
// degenerate assessment so that every submitted image still yields a
// persisted record.
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess decodes the model's raw text. Missing or malformed fields are
// coerced to safe defaults; a completely undecodable payload produces
// a degenerate result whose summary carries the decode failure so
// operators can see what went wrong from the stored record.
func (a *Assessor) Assess(rawText string) violation.AssessResult {
	cleaned := stripCodeFence(rawText)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		detail := fmt.Sprintf("failed to parse inference output: %v; raw: %s", err, truncate(rawText, 500))
		return violation.AssessResult{
			Assessment: violation.Assessment{
				VehicleType: violation.VehicleUnknown,
				Summary:     detail,
			},
			Degenerate: true,
			Detail:     detail,
		}
	}

	return violation.AssessResult{
		Assessment: violation.Assessment{
			HelmetViolation:   boolField(fields, "helmet_violation"),
			TripleRiding:      boolField(fields, "triple_riding"),
			Overloaded:        boolField(fields, "overloaded"),
			SeatbeltViolation: boolField(fields, "seatbelt_violation"),
			MobileUse:         boolField(fields, "mobile_use"),
			UnderageDriver:    boolField(fields, "underage_driver"),
			NumberPlate:       stringField(fields, "number_plate"),
			VehicleType:       violation.ParseVehicleType(stringField(fields, "vehicle_type")),
			Summary:           stringField(fields, "summary"),
		},
	}
}

// stripCodeFence tolerates models that wrap the JSON in a markdown
// fence despite the strict-JSON instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func boolField(fields map[string]any, key string) bool {
	v, ok := fields[key].(bool)
	return ok && v
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
