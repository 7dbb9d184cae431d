package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tva-service/internal/domain/violation"
)

func TestAssessValidOutput(t *testing.T) {
	raw := `{
		"helmet_violation": true,
		"triple_riding": true,
		"overloaded": false,
		"seatbelt_violation": false,
		"mobile_use": false,
		"underage_driver": false,
		"number_plate": "DL01AB1234",
		"vehicle_type": "motorcycle",
		"summary": "Two riders without helmets."
	}`

	res := NewAssessor().Assess(raw)

	require.False(t, res.Degenerate)
	assert.True(t, res.Assessment.HelmetViolation)
	assert.True(t, res.Assessment.TripleRiding)
	assert.False(t, res.Assessment.Overloaded)
	assert.Equal(t, "DL01AB1234", res.Assessment.NumberPlate)
	assert.Equal(t, violation.VehicleMotorcycle, res.Assessment.VehicleType)
	assert.Equal(t, 2, res.Assessment.Severity())
}

func TestAssessSeverityCountsTrueFlags(t *testing.T) {
	// every combination of the six flags scores exactly its popcount
	flagNames := []string{
		"helmet_violation", "triple_riding", "overloaded",
		"seatbelt_violation", "mobile_use", "underage_driver",
	}
	assessor := NewAssessor()

	for mask := 0; mask < 1<<6; mask++ {
		fields := map[string]any{
			"number_plate": "KA05MH1234",
			"vehicle_type": "car",
			"summary":      "test",
		}
		want := 0
		for i, name := range flagNames {
			set := mask&(1<<i) != 0
			fields[name] = set
			if set {
				want++
			}
		}
		raw, err := json.Marshal(fields)
		require.NoError(t, err)

		res := assessor.Assess(string(raw))
		require.False(t, res.Degenerate)
		assert.Equal(t, want, res.Assessment.Severity(), "mask %06b", mask)
	}
}

func TestAssessCoercesMissingAndMalformedFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"flags with wrong types", `{"helmet_violation": "yes", "number_plate": 42, "vehicle_type": 7}`},
		{"unknown vehicle type", `{"vehicle_type": "tank"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewAssessor().Assess(tt.raw)

			require.False(t, res.Degenerate)
			assert.Equal(t, 0, res.Assessment.Severity())
			assert.Equal(t, "", res.Assessment.NumberPlate)
			assert.Equal(t, violation.VehicleUnknown, res.Assessment.VehicleType)
		})
	}
}

func TestAssessDegenerateOnUnparseableOutput(t *testing.T) {
	res := NewAssessor().Assess("the model rambled instead of returning JSON")

	require.True(t, res.Degenerate)
	assert.Equal(t, 0, res.Assessment.Severity())
	assert.Equal(t, "", res.Assessment.NumberPlate)
	assert.Equal(t, violation.VehicleUnknown, res.Assessment.VehicleType)
	// the failure detail ends up on the record for operators
	assert.Contains(t, res.Assessment.Summary, "failed to parse inference output")
	assert.Contains(t, res.Assessment.Summary, "the model rambled")
}

func TestAssessToleratesMarkdownFence(t *testing.T) {
	raw := "```json\n{\"helmet_violation\": true, \"vehicle_type\": \"scooter\", \"number_plate\": \"MH12XY0001\", \"summary\": \"No helmet.\"}\n```"

	res := NewAssessor().Assess(raw)

	require.False(t, res.Degenerate)
	assert.True(t, res.Assessment.HelmetViolation)
	assert.Equal(t, violation.VehicleScooter, res.Assessment.VehicleType)
	assert.Equal(t, "MH12XY0001", res.Assessment.NumberPlate)
}

func TestAssessDegenerateSummaryTruncatesLongOutput(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += fmt.Sprintf("chunk-%02d ", i)
	}

	res := NewAssessor().Assess(long)

	require.True(t, res.Degenerate)
	assert.LessOrEqual(t, len(res.Assessment.Summary), 700)
}
