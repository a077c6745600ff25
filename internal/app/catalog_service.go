package app

import (
	"context"
	"errors"

	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
)

// TrackStore is the persistence the catalog needs.
type TrackStore interface {
	ListTracks(ctx context.Context) ([]*domain.Track, error)
	CreateTrack(ctx context.Context, artist, title string) (*domain.Track, error)
	DeleteTrack(ctx context.Context, artist, title string) (*domain.Track, error)
}

// CatalogService owns the deduplicated set of tracks.
type CatalogService struct {
	Repo    TrackStore
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

func NewCatalogService(repo TrackStore, log *logger.Logger, m *metrics.Metrics) *CatalogService {
	return &CatalogService{Repo: repo, Logger: log.WithComponent("catalog"), Metrics: m}
}

func (s *CatalogService) List(ctx context.Context) ([]*domain.Track, error) {
	tracks, err := s.Repo.ListTracks(ctx)
	s.Metrics.ObserveCatalogOp("list", err)
	if err != nil {
		s.Logger.Error("Failed to list tracks", "error", err)
		return nil, err
	}
	return tracks, nil
}

// Create stores (artist, title). Blank fields are rejected before the store
// is touched; duplicates come back as KindConflict.
func (s *CatalogService) Create(ctx context.Context, artist, title string) (*domain.Track, error) {
	track, err := s.create(ctx, artist, title)
	s.Metrics.ObserveCatalogOp("create", err)
	return track, err
}

func (s *CatalogService) create(ctx context.Context, artist, title string) (*domain.Track, error) {
	if err := validateKey("app.create_track", artist, title); err != nil {
		return nil, err
	}

	log := s.Logger.WithTrack(artist, title)
	track, err := s.Repo.CreateTrack(ctx, artist, title)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Info("Track already cataloged")
		} else {
			log.Error("Failed to add track", "error", err)
		}
		return nil, err
	}
	log.Info("Track added", "track_id", track.ID)
	return track, nil
}

// Delete removes exactly one track and returns it.
func (s *CatalogService) Delete(ctx context.Context, artist, title string) (*domain.Track, error) {
	track, err := s.delete(ctx, artist, title)
	s.Metrics.ObserveCatalogOp("delete", err)
	return track, err
}

func (s *CatalogService) delete(ctx context.Context, artist, title string) (*domain.Track, error) {
	if err := validateKey("app.delete_track", artist, title); err != nil {
		return nil, err
	}

	log := s.Logger.WithTrack(artist, title)
	track, err := s.Repo.DeleteTrack(ctx, artist, title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info("Track to remove not found")
		} else {
			log.Error("Failed to remove track", "error", err)
		}
		return nil, err
	}
	log.Info("Track removed", "track_id", track.ID)
	return track, nil
}

func validateKey(op, artist, title string) error {
	if artist == "" || title == "" {
		return domain.E(domain.KindMissingField, op, errors.New("artist and title are required"))
	}
	return nil
}
