package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/shamzam/internal/app"
	httpapp "github.com/cesargomez89/shamzam/internal/http"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/store"
)

// startCatalog serves a real catalog on a temp database and points
// CATALOG_URL at it.
func startCatalog(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("store.NewSQLiteDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	h := httpapp.NewCatalogHandler(app.NewCatalogService(db, log, nil), db.PingContext, log)
	srv := httptest.NewServer(httpapp.NewCatalogRouter(h, nil))
	t.Cleanup(srv.Close)

	t.Setenv("CATALOG_URL", srv.URL)
	return db
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t)
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}
	for _, sub := range []string{"catalog", "gateway", "serve", "identify", "tracks"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestIdentifyCommand(t *testing.T) {
	db := startCatalog(t)
	t.Setenv("RECOGNITION_PROVIDER", "mock")
	t.Setenv("LOG_LEVEL", "error")

	sample := filepath.Join(t.TempDir(), "good 4 u.wav")
	if err := os.WriteFile(sample, []byte("dummy audio content"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	out, err := runCLI(t, "identify", sample)
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	if !strings.Contains(out, "Mock Artist") || !strings.Contains(out, "Track added to database") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = runCLI(t, "identify", sample)
	if err != nil {
		t.Fatalf("second identify failed: %v", err)
	}
	if !strings.Contains(out, "Track already in database") {
		t.Errorf("expected already cataloged, got: %s", out)
	}

	if n, _ := db.CountTracks(context.Background()); n != 1 {
		t.Errorf("expected one track, got %d", n)
	}
}

func TestIdentifyCommandMissingFile(t *testing.T) {
	startCatalog(t)
	t.Setenv("RECOGNITION_PROVIDER", "mock")

	_, err := runCLI(t, "identify", filepath.Join(t.TempDir(), "missing.wav"))
	if err == nil || !strings.Contains(err.Error(), "File not found") {
		t.Errorf("expected file not found, got %v", err)
	}
}

func TestIdentifyCommandProbe(t *testing.T) {
	sample := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(sample, []byte("RIFF\x24\x00\x00\x00WAVEfmt "), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	out, err := runCLI(t, "identify", "--probe", sample)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !strings.Contains(out, `"format": "wav"`) {
		t.Errorf("unexpected probe output: %s", out)
	}
}

func TestTracksCommands(t *testing.T) {
	db := startCatalog(t)
	if _, err := db.CreateTrack(context.Background(), "Olivia Rodrigo", "good 4 u"); err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}

	out, err := runCLI(t, "tracks", "list")
	if err != nil {
		t.Fatalf("tracks list failed: %v", err)
	}
	if !strings.Contains(out, "Olivia Rodrigo") || !strings.Contains(out, "good 4 u") {
		t.Errorf("unexpected list output: %s", out)
	}

	out, err = runCLI(t, "tracks", "list", "--json")
	if err != nil {
		t.Fatalf("tracks list --json failed: %v", err)
	}
	if !strings.Contains(out, `"artist": "Olivia Rodrigo"`) {
		t.Errorf("unexpected json output: %s", out)
	}

	out, err = runCLI(t, "tracks", "remove", "Olivia Rodrigo", "good 4 u")
	if err != nil {
		t.Fatalf("tracks remove failed: %v", err)
	}
	if !strings.Contains(out, "successfully removed") {
		t.Errorf("unexpected remove output: %s", out)
	}

	if _, err := runCLI(t, "tracks", "remove", "Olivia Rodrigo", "good 4 u"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found on second remove, got %v", err)
	}

	out, err = runCLI(t, "tracks", "list")
	if err != nil {
		t.Fatalf("tracks list failed: %v", err)
	}
	if !strings.Contains(out, "Catalog is empty") {
		t.Errorf("expected empty catalog, got: %s", out)
	}
}

func TestRunServicesShutsDownOnCancel(t *testing.T) {
	closed := false
	svc := &service{
		name:  "test",
		close: func() error { closed = true; return nil },
		srv: &http.Server{
			Addr:    freeAddr(t),
			Handler: http.NotFoundHandler(),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServices(ctx, logger.Discard(), svc) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServices returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServices did not return after cancel")
	}
	if !closed {
		t.Error("expected close hook to run")
	}
}

func TestRunServicesReportsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	svc := &service{name: "busy", srv: &http.Server{Addr: l.Addr().String()}}
	if err := runServices(context.Background(), logger.Discard(), svc); err == nil {
		t.Error("expected an error when the port is taken")
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}
