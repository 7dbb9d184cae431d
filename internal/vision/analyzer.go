package vision

import "context"

// Analyzer turns raw image bytes into the model's textual response.
// Implementations must not panic past their boundary; any transport or
// quota problem comes back as an error for the assessor to fold into a
// degenerate assessment.
type Analyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, contentType string) (string, error)
}

// detectionPrompt is the fixed instruction sent with every image. The
// model is asked for strict JSON matching the assessment shape.
const detectionPrompt = `You are an advanced traffic violation detection system. Analyze the attached image.
Return a STRICT JSON with the following fields:

- helmet_violation: boolean
- triple_riding: boolean
- overloaded: boolean
- seatbelt_violation: boolean
- mobile_use: boolean
- underage_driver: boolean
- number_plate: string
- vehicle_type: "motorcycle" | "scooter" | "car" | "auto" | "unknown"
- summary: string (one sentence)

DO NOT return anything except valid JSON.`

// dummyAnalyzer serves when no inference credential is configured: a
// fixed, predictable assessment so the rest of the pipeline stays
// exercisable without a live model.
type dummyAnalyzer struct{}

// NewDummy returns the credential-less fallback analyzer.
func NewDummy() Analyzer {
	return dummyAnalyzer{}
}

const dummyResult = `{
	"helmet_violation": true,
	"triple_riding": false,
	"overloaded": false,
	"seatbelt_violation": false,
	"mobile_use": false,
	"underage_driver": false,
	"number_plate": "TN00DEMO",
	"vehicle_type": "motorcycle",
	"summary": "Detected rider without helmet. Plate TN00DEMO."
}`

func (dummyAnalyzer) Analyze(ctx context.Context, imageBytes []byte, contentType string) (string, error) {
	return dummyResult, nil
}
