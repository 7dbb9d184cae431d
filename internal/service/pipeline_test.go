package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tva-service/internal/domain/violation"
	"tva-service/internal/notify"
)

type fakeAnalyzer struct {
	raw string
	err error
}

func (a fakeAnalyzer) Analyze(ctx context.Context, imageBytes []byte, contentType string) (string, error) {
	return a.raw, a.err
}

// fakeViolationStore honors the store contract: IDs and timestamps are
// assigned on create, listing is newest first.
type fakeViolationStore struct {
	records   []violation.Record
	createErr error
	seq       int
}

func (s *fakeViolationStore) Create(ctx context.Context, rec *violation.Record) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	rec.ID = uuid.New()
	rec.Status = violation.StatusPending
	rec.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Minute)
	s.records = append(s.records, *rec)
	return nil
}

func (s *fakeViolationStore) List(ctx context.Context, numberPlate string, limit, offset int) ([]violation.Record, error) {
	out := make([]violation.Record, 0, len(s.records))
	for _, r := range s.records {
		if numberPlate != "" && r.NumberPlate != numberPlate {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if offset > 0 {
		if offset > len(out) {
			offset = len(out)
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeViolationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status violation.Status) error {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// recordingMailer captures delivery attempts.
type recordingMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (m *recordingMailer) Send(to, subject, textBody, htmlBody string) error {
	m.to = to
	m.subject = subject
	m.body = textBody
	return m.err
}

const goodVisionOutput = `{
	"helmet_violation": true,
	"triple_riding": false,
	"overloaded": false,
	"seatbelt_violation": true,
	"mobile_use": false,
	"underage_driver": false,
	"number_plate": "DL01AB1234",
	"vehicle_type": "motorcycle",
	"summary": "Rider without helmet and no seatbelt."
}`

type pipelineFixture struct {
	pipeline *Pipeline
	store    *fakeViolationStore
	owners   *fakeOwnerStore
	mailer   *recordingMailer
}

func newPipelineFixture(analyzer fakeAnalyzer) *pipelineFixture {
	store := &fakeViolationStore{}
	owners := newFakeOwnerStore()
	mailer := &recordingMailer{}
	registry := NewVehicleRegistry(owners, zerolog.Nop())
	dispatcher := notify.NewDispatcher(mailer, zerolog.Nop())
	return &pipelineFixture{
		pipeline: NewPipeline(analyzer, NewAssessor(), store, registry, dispatcher, time.Second, zerolog.Nop()),
		store:    store,
		owners:   owners,
		mailer:   mailer,
	}
}

func TestProcessImageFullPath(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{raw: goodVisionOutput})
	ctx := context.Background()
	f.owners.owners["DL01AB1234"] = violation.Owner{Name: "Asha", Plate: "DL01AB1234", Email: "asha@example.com"}

	result, err := f.pipeline.ProcessImage(ctx, "https://img.example/1.jpg", []byte("img"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, result.Stored)
	assert.Equal(t, 2, result.Severity)
	assert.Equal(t, violation.EmailSent, result.EmailStatus.Status)
	require.NotNil(t, result.RecordID)

	require.Len(t, f.store.records, 1)
	rec := f.store.records[0]
	assert.Equal(t, violation.StatusPending, rec.Status)
	assert.Equal(t, 2, rec.SeverityScore)
	assert.Equal(t, "https://img.example/1.jpg", rec.ImageReference)

	assert.Equal(t, "asha@example.com", f.mailer.to)
	assert.Equal(t, "Traffic Violation Detected – DL01AB1234", f.mailer.subject)
	assert.Contains(t, f.mailer.body, "Severity score: 2")
}

func TestProcessImageDegenerateOutputStillPersists(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{raw: "not json at all"})

	result, err := f.pipeline.ProcessImage(context.Background(), "img-ref", []byte("img"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, result.Stored)
	assert.Equal(t, 0, result.Severity)
	assert.Equal(t, "", result.VisionResult.NumberPlate)
	assert.Equal(t, violation.EmailNoRecipient, result.EmailStatus.Status)

	require.Len(t, f.store.records, 1)
	assert.Equal(t, 0, f.store.records[0].SeverityScore)
	assert.Contains(t, f.store.records[0].Summary, "failed to parse inference output")
}

func TestProcessImageInferenceTransportFailureAborts(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{err: errors.New("connection refused")})

	_, err := f.pipeline.ProcessImage(context.Background(), "img-ref", []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, ErrInference)
	assert.Empty(t, f.store.records)
}

func TestProcessImagePersistenceFailureReportsStoredFalse(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{raw: goodVisionOutput})
	f.store.createErr = errors.New("store unavailable")

	result, err := f.pipeline.ProcessImage(context.Background(), "img-ref", []byte("img"), "image/jpeg")
	require.NoError(t, err)

	assert.False(t, result.Stored)
	assert.Nil(t, result.RecordID)
	assert.Equal(t, 2, result.Severity)
}

func TestProcessImageMailFailureNeverFailsRequest(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{raw: goodVisionOutput})
	f.owners.owners["DL01AB1234"] = violation.Owner{Name: "Asha", Plate: "DL01AB1234", Email: "asha@example.com"}
	f.mailer.err = errors.New("smtp: connection reset")

	result, err := f.pipeline.ProcessImage(context.Background(), "img-ref", []byte("img"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, result.Stored)
	assert.Equal(t, violation.EmailSendFailed, result.EmailStatus.Status)
	assert.Contains(t, result.EmailStatus.Detail, "connection reset")
	require.Len(t, f.store.records, 1)
}

func TestProcessImageOwnerLookupFailureIsBestEffort(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{raw: goodVisionOutput})
	f.owners.failure = errors.New("store unavailable")

	result, err := f.pipeline.ProcessImage(context.Background(), "img-ref", []byte("img"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, result.Stored)
	assert.Equal(t, violation.EmailNoRecipient, result.EmailStatus.Status)
}

func TestProcessImageWithoutAnalyzerIsConfigurationError(t *testing.T) {
	f := newPipelineFixture(fakeAnalyzer{})
	p := NewPipeline(nil, NewAssessor(), f.store, NewVehicleRegistry(f.owners, zerolog.Nop()),
		notify.NewDispatcher(f.mailer, zerolog.Nop()), time.Second, zerolog.Nop())

	_, err := p.ProcessImage(context.Background(), "img-ref", []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, ErrConfiguration)
}
