package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cesargomez89/shamzam/internal/domain"
)

// ListTracks returns every live track in insertion order.
func (db *DB) ListTracks(ctx context.Context) ([]*domain.Track, error) {
	tracks, err := selectTracks(ctx, db.DB, `SELECT id, title, artist FROM tracks ORDER BY id ASC`)
	if err != nil {
		return nil, domain.E(domain.KindStorageFault, "store.list_tracks", err)
	}
	if tracks == nil {
		tracks = []*domain.Track{}
	}
	return tracks, nil
}

// CountTracks returns the number of live tracks.
func (db *DB) CountTracks(ctx context.Context) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tracks`); err != nil {
		return 0, domain.E(domain.KindStorageFault, "store.count_tracks", err)
	}
	return count, nil
}

// CreateTrack inserts (artist, title) unless it already exists, in which case
// it returns a KindConflict error and leaves the table untouched.
func (db *DB) CreateTrack(ctx context.Context, artist, title string) (*domain.Track, error) {
	const op = "store.create_track"

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var created *domain.Track
	err := db.RunInTx(ctx, func(tx dbOps) error {
		if _, err := getTrack(ctx, tx, artist, title); err == nil {
			return domain.E(domain.KindConflict, op, nil)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check for existing track: %w", err)
		}

		result, err := tx.ExecContext(ctx, `INSERT INTO tracks (title, artist) VALUES (?, ?)`, title, artist)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.E(domain.KindConflict, op, err)
			}
			return fmt.Errorf("failed to insert track: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read track id: %w", err)
		}
		created = &domain.Track{ID: id, Title: title, Artist: artist}
		return nil
	})
	if err != nil {
		return nil, asStorageFault(op, err)
	}
	return created, nil
}

// DeleteTrack removes the track keyed by (artist, title) and returns it.
// A missing track yields KindNotFound.
func (db *DB) DeleteTrack(ctx context.Context, artist, title string) (*domain.Track, error) {
	const op = "store.delete_track"

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var removed *domain.Track
	err := db.RunInTx(ctx, func(tx dbOps) error {
		track, err := getTrack(ctx, tx, artist, title)
		if err != nil {
			return wrapLookupErr(op, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, track.ID)
		if err != nil {
			return fmt.Errorf("failed to delete track: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows != 1 {
			return fmt.Errorf("expected to delete 1 track, deleted %d", rows)
		}
		removed = track
		return nil
	})
	if err != nil {
		return nil, asStorageFault(op, err)
	}
	return removed, nil
}

func getTrack(ctx context.Context, q dbOps, artist, title string) (*domain.Track, error) {
	var track domain.Track
	err := q.GetContext(ctx, &track, `SELECT id, title, artist FROM tracks WHERE artist = ? AND title = ?`, artist, title)
	if err != nil {
		return nil, err
	}
	return &track, nil
}

func selectTracks(ctx context.Context, q dbOps, query string, args ...interface{}) ([]*domain.Track, error) {
	var tracks []*domain.Track
	err := q.SelectContext(ctx, &tracks, query, args...)
	return tracks, err
}

func wrapLookupErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.E(domain.KindNotFound, op, nil)
	}
	return domain.E(domain.KindStorageFault, op, err)
}

// asStorageFault keeps domain kinds raised inside a transaction and files
// everything else under KindStorageFault.
func asStorageFault(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.E(domain.KindStorageFault, op, err)
}
