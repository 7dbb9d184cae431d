package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"tva-service/internal/domain/violation"
	"tva-service/internal/vision"
)

// images larger than this are rejected at fetch time
const maxImageBytes = 20 * 1024 * 1024

// Notifier dispatches the owner notification for a persisted record.
type Notifier interface {
	Notify(owner *violation.Owner, rec violation.Record) violation.NotificationOutcome
}

// Pipeline sequences one submitted image through inference,
// assessment, persistence, owner resolution and notification.
//
// Everything up to persistence is abortable: a fetch or inference
// transport failure fails the request. From persistence on the
// pipeline always runs to completion and reports partial outcomes
// (stored=false, email_status) instead of erroring, so a mail or
// lookup problem can never invalidate a committed record.
type Pipeline struct {
	analyzer   vision.Analyzer
	assessor   *Assessor
	store      ViolationStore
	registry   *VehicleRegistry
	dispatcher Notifier
	fetcher    *http.Client
	log        zerolog.Logger
}

func NewPipeline(
	analyzer vision.Analyzer,
	assessor *Assessor,
	store ViolationStore,
	registry *VehicleRegistry,
	dispatcher Notifier,
	fetchTimeout time.Duration,
	log zerolog.Logger,
) *Pipeline {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Pipeline{
		analyzer:   analyzer,
		assessor:   assessor,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		fetcher:    &http.Client{Timeout: fetchTimeout},
		log:        log,
	}
}

// FetchImage retrieves the image bytes behind a caller-supplied URL.
// Fetch problems are the caller's: the reference they submitted could
// not be resolved.
func (p *Pipeline) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageFetch, err)
	}

	resp, err := p.fetcher.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: image source returned status %d", ErrImageFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageFetch, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return body, contentType, nil
}

// ProcessImage runs the full pipeline over already-fetched image
// bytes. imageRef identifies the source (URL or upload filename) on
// the persisted record.
func (p *Pipeline) ProcessImage(ctx context.Context, imageRef string, imageBytes []byte, contentType string) (*violation.PipelineResult, error) {
	if p.analyzer == nil {
		return nil, fmt.Errorf("%w: no inference analyzer configured", ErrConfiguration)
	}

	rawText, err := p.analyzer.Analyze(ctx, imageBytes, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	res := p.assessor.Assess(rawText)
	if res.Degenerate {
		p.log.Warn().
			Str("image", imageRef).
			Str("detail", res.Detail).
			Msg("inference output unparseable, recording degenerate assessment")
	}

	rec := violation.Record{
		ImageReference: imageRef,
		Assessment:     res.Assessment,
		SeverityScore:  res.Assessment.Severity(),
		RawResult:      rawResultJSON(rawText),
	}

	stored := true
	if err := p.store.Create(ctx, &rec); err != nil {
		stored = false
		p.log.Error().
			Err(err).
			Str("image", imageRef).
			Msg("failed to persist violation record")
	} else {
		p.log.Info().
			Str("violation_id", rec.ID.String()).
			Str("plate", rec.NumberPlate).
			Int("severity", rec.SeverityScore).
			Msg("persisted violation record")
	}

	owner := p.resolveOwner(ctx, rec.NumberPlate)
	outcome := p.dispatcher.Notify(owner, rec)

	result := &violation.PipelineResult{
		VisionResult: res.Assessment,
		Severity:     rec.SeverityScore,
		Stored:       stored,
		EmailStatus:  outcome,
	}
	if stored {
		result.RecordID = &rec.ID
	}
	return result, nil
}

// resolveOwner is best effort: lookup failures are logged and treated
// as no recipient since the record is already committed.
func (p *Pipeline) resolveOwner(ctx context.Context, plate string) *violation.Owner {
	if plate == "" {
		return nil
	}

	owner, err := p.registry.LookupOwner(ctx, plate)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.log.Warn().Err(err).Str("plate", plate).Msg("owner lookup failed")
		}
		return nil
	}
	return owner
}

// rawResultJSON preserves the model's output on the record: verbatim
// when it is valid JSON, quoted otherwise.
func rawResultJSON(rawText string) datatypes.JSON {
	if json.Valid([]byte(rawText)) {
		return datatypes.JSON(rawText)
	}
	quoted, err := json.Marshal(rawText)
	if err != nil {
		return nil
	}
	return datatypes.JSON(quoted)
}
