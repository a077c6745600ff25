package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/shamzam/internal/audiofile"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
)

// Identification outcomes as counted in metrics. The first three mirror
// domain.OutcomeStatus; the rest are full failures.
const (
	outcomeSourceNotFound    = "source_not_found"
	outcomeSourceRejected    = "source_rejected"
	outcomeRecognitionFailed = "recognition_failed"
)

// SampleSource resolves a filename into audio bytes.
type SampleSource interface {
	Open(name string) (*audiofile.Sample, error)
}

// Recognizer identifies a sample.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, filename string) (domain.RecognitionResult, error)
}

// TrackCreator records a recognized track in the catalog.
type TrackCreator interface {
	Create(ctx context.Context, artist, title string) (*domain.Track, error)
}

// IdentifyService runs the two-step identify-then-store workflow. Neither
// step is retried and a failed store never undoes the recognition.
type IdentifyService struct {
	Source     SampleSource
	Recognizer Recognizer
	Catalog    TrackCreator
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

func NewIdentifyService(src SampleSource, rec Recognizer, cat TrackCreator, log *logger.Logger, m *metrics.Metrics) *IdentifyService {
	return &IdentifyService{
		Source:     src,
		Recognizer: rec,
		Catalog:    cat,
		Logger:     log.WithComponent("identify"),
		Metrics:    m,
	}
}

// stepResult is what each workflow step hands to the next.
type stepResult[T any] struct {
	Value    T
	Err      error
	Duration time.Duration
}

func runStep[T any](fn func() (T, error)) stepResult[T] {
	start := time.Now()
	v, err := fn()
	return stepResult[T]{Value: v, Err: err, Duration: time.Since(start)}
}

// Identify resolves filename, recognizes it and records the result. A
// missing source or failed recognition is returned as an error and the
// catalog is not contacted. Once recognition succeeds the call always
// returns an Outcome; store failures are reported inside it.
func (s *IdentifyService) Identify(ctx context.Context, filename string) (*domain.Outcome, error) {
	id := uuid.New().String()
	log := &logger.Logger{Logger: s.Logger.WithRequest(id).With("file", filename)}

	source := runStep(func() (*audiofile.Sample, error) {
		return s.Source.Open(filename)
	})
	if source.Err != nil {
		if errors.Is(source.Err, domain.ErrMalformedRequest) {
			s.Metrics.ObserveIdentify(outcomeSourceRejected)
		} else {
			s.Metrics.ObserveIdentify(outcomeSourceNotFound)
		}
		log.Info("Audio source unavailable", "error", source.Err)
		return nil, source.Err
	}
	sample := source.Value

	if log.Enabled(ctx, slog.LevelDebug) {
		probe := audiofile.Probe(sample)
		log.Debug("Sample probed",
			"format", probe.Format,
			"size", probe.SizeHuman,
			"tag_artist", probe.Artist,
			"tag_title", probe.Title,
			"has_picture", probe.HasPicture,
			"duration_seconds", probe.Duration)
	}

	recognized := runStep(func() (domain.RecognitionResult, error) {
		return s.Recognizer.Recognize(ctx, sample.Data, sample.Name)
	})
	if recognized.Err != nil {
		s.Metrics.ObserveIdentify(outcomeRecognitionFailed)
		log.Warn("Recognition failed", "duration", recognized.Duration, "error", recognized.Err)
		return nil, asUpstreamFailure(recognized.Err)
	}
	result := recognized.Value
	log = log.WithTrack(result.Artist, result.Title)
	log.Info("Track recognized", "sample", sample.String(), "duration", recognized.Duration)

	stored := runStep(func() (*domain.Track, error) {
		return s.Catalog.Create(ctx, result.Artist, result.Title)
	})

	outcome := &domain.Outcome{ID: id, Recognized: result}
	switch {
	case stored.Err == nil:
		outcome.Status = domain.OutcomeStored
		outcome.Track = stored.Value
		log.Info("Track stored", "duration", stored.Duration)
	case errors.Is(stored.Err, domain.ErrConflict):
		outcome.Status = domain.OutcomeAlreadyCataloged
		log.Info("Track already cataloged")
	case errors.Is(stored.Err, domain.ErrStorageFault):
		outcome.Status = domain.OutcomeNotStored
		outcome.StoreErr = stored.Err
		log.Error("Catalog failed to store track", "error", stored.Err)
	default:
		outcome.Status = domain.OutcomeNotStored
		outcome.StoreErr = stored.Err
		log.Warn("Track recognized but not stored", "error", stored.Err)
	}
	s.Metrics.ObserveIdentify(string(outcome.Status))
	return outcome, nil
}

// asUpstreamFailure makes sure recognizer errors surface as UpstreamFailure
// while keeping any public reason.
func asUpstreamFailure(err error) error {
	if errors.Is(err, domain.ErrUpstreamFailure) {
		return err
	}
	return &domain.Error{
		Kind:   domain.KindUpstreamFailure,
		Op:     "app.identify",
		Reason: domain.ReasonOf(err),
		Err:    err,
	}
}
