package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cesargomez89/shamzam/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func TestDB_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	track, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u")
	if err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}
	if track.ID == 0 {
		t.Error("Expected track ID to be set")
	}

	second, err := db.CreateTrack(ctx, "Olivia Rodrigo", "drivers license")
	if err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}
	if second.ID <= track.ID {
		t.Errorf("Expected increasing ids, got %d then %d", track.ID, second.ID)
	}

	list, err := db.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(list))
	}
	if list[0].Title != "good 4 u" || list[1].Title != "drivers license" {
		t.Errorf("Expected insertion order, got %q then %q", list[0].Title, list[1].Title)
	}
}

func TestDB_ListEmptyIsNotNil(t *testing.T) {
	db := setupTestDB(t)

	list, err := db.ListTracks(context.Background())
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", list)
	}
}

func TestDB_CreateDuplicateConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u"); err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}

	_, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Expected conflict, got %v", err)
	}

	count, err := db.CountTracks(ctx)
	if err != nil {
		t.Fatalf("CountTracks failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 track after duplicate create, got %d", count)
	}
}

func TestDB_UniquenessIsCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u"); err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}
	if _, err := db.CreateTrack(ctx, "Olivia Rodrigo", "Good 4 U"); err != nil {
		t.Errorf("Expected differently cased title to be a new track, got %v", err)
	}
}

func TestDB_DeleteTrack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u")
	if err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}

	removed, err := db.DeleteTrack(ctx, "Olivia Rodrigo", "good 4 u")
	if err != nil {
		t.Fatalf("DeleteTrack failed: %v", err)
	}
	if removed.ID != created.ID {
		t.Errorf("Expected removed id %d, got %d", created.ID, removed.ID)
	}

	list, _ := db.ListTracks(ctx)
	if len(list) != 0 {
		t.Errorf("Expected empty catalog after delete, got %d tracks", len(list))
	}

	// Ids are never reused
	again, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u")
	if err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}
	if again.ID <= created.ID {
		t.Errorf("Expected new id greater than %d, got %d", created.ID, again.ID)
	}
}

func TestDB_DeleteMissingTrack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u"); err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}

	_, err := db.DeleteTrack(ctx, "Unknown Artist", "Unknown Title")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected not found, got %v", err)
	}

	count, _ := db.CountTracks(ctx)
	if count != 1 {
		t.Errorf("Expected delete of missing track to change nothing, got %d tracks", count)
	}
}

func TestDB_ConcurrentCreateSamePair(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.CreateTrack(ctx, "Olivia Rodrigo", "good 4 u")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("Unexpected errors: %v", others)
	}
	if successes != 1 {
		t.Errorf("Expected exactly 1 successful create, got %d", successes)
	}
	if conflicts != workers-1 {
		t.Errorf("Expected %d conflicts, got %d", workers-1, conflicts)
	}

	count, _ := db.CountTracks(ctx)
	if count != 1 {
		t.Errorf("Expected 1 stored track, got %d", count)
	}
}

func TestDB_RunInTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.RunInTx(ctx, func(tx dbOps) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tracks (title, artist) VALUES (?, ?)`, "t", "a"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	count, _ := db.CountTracks(ctx)
	if count != 0 {
		t.Errorf("Expected rollback to leave 0 tracks, got %d", count)
	}
}

func TestDB_ClosedDatabaseIsStorageFault(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	_ = db.Close()

	_, err = db.ListTracks(context.Background())
	if domain.KindOf(err) != domain.KindStorageFault {
		t.Errorf("Expected storage fault, got %v", err)
	}
	_, err = db.CreateTrack(context.Background(), "a", "t")
	if domain.KindOf(err) != domain.KindStorageFault {
		t.Errorf("Expected storage fault, got %v", err)
	}
}

func TestNewSQLiteDBInMemory(t *testing.T) {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	defer db.Close()

	if _, err := db.CreateTrack(context.Background(), "a", "t"); err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}
	count, _ := db.CountTracks(context.Background())
	if count != 1 {
		t.Errorf("Expected 1 track, got %d", count)
	}
}
