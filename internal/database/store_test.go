package database

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/model"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func newTestStore(t *testing.T) *DBService {
	t.Helper()
	svc, err := NewDBService(":memory:", testKey())
	if err != nil {
		t.Fatalf("NewDBService(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

// TestNewDBService verifies that migrations apply to an in-memory database.
func TestNewDBService(t *testing.T) {
	newTestStore(t)
}

func TestNewDBServiceRejectsShortKey(t *testing.T) {
	if _, err := NewDBService(":memory:", []byte("short")); err == nil {
		t.Fatal("expected error for short master key")
	}
}

// TestReopenFileDatabase verifies migrations are idempotent across opens.
func TestReopenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yatter.db")
	ctx := context.Background()

	svc, err := NewDBService(path, testKey())
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := svc.SaveAccessToken(ctx, "alice", "tok"); err != nil {
		t.Fatalf("SaveAccessToken failed: %v", err)
	}
	svc.Close()

	svc, err = NewDBService(path, testKey())
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer svc.Close()

	tok, err := svc.GetAccessToken(ctx)
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	if tok == nil || *tok != "tok" {
		t.Errorf("expected token to survive reopen, got %v", tok)
	}
}

func TestAccessTokenLifecycle(t *testing.T) {
	svc := newTestStore(t)
	ctx := context.Background()

	tok, err := svc.GetAccessToken(ctx)
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	if tok != nil {
		t.Fatalf("expected nil token on empty store, got %q", *tok)
	}

	if err := svc.SaveAccessToken(ctx, "shuta", "secret-token"); err != nil {
		t.Fatalf("SaveAccessToken failed: %v", err)
	}
	tok, err = svc.GetAccessToken(ctx)
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	if tok == nil || *tok != "secret-token" {
		t.Fatalf("expected secret-token, got %v", tok)
	}

	username, err := svc.GetUsername(ctx)
	if err != nil {
		t.Fatalf("GetUsername failed: %v", err)
	}
	if username != "shuta" {
		t.Errorf("expected username shuta, got %q", username)
	}

	// Overwrite
	if err := svc.SaveAccessToken(ctx, "shuta", "rotated"); err != nil {
		t.Fatalf("SaveAccessToken overwrite failed: %v", err)
	}
	tok, _ = svc.GetAccessToken(ctx)
	if tok == nil || *tok != "rotated" {
		t.Errorf("expected rotated token, got %v", tok)
	}

	if err := svc.ClearAccessToken(ctx); err != nil {
		t.Fatalf("ClearAccessToken failed: %v", err)
	}
	tok, err = svc.GetAccessToken(ctx)
	if err != nil {
		t.Fatalf("GetAccessToken after clear failed: %v", err)
	}
	if tok != nil {
		t.Errorf("expected nil token after clear, got %q", *tok)
	}
}

// TestTokenIsSealedAtRest verifies the plaintext token never hits the table.
func TestTokenIsSealedAtRest(t *testing.T) {
	svc := newTestStore(t)
	ctx := context.Background()

	if err := svc.SaveAccessToken(ctx, "u", "plain-token-value"); err != nil {
		t.Fatalf("SaveAccessToken failed: %v", err)
	}

	var raw []byte
	if err := svc.db.QueryRow(`SELECT sealed_token FROM credentials`).Scan(&raw); err != nil {
		t.Fatalf("reading raw token failed: %v", err)
	}
	if bytes.Contains(raw, []byte("plain-token-value")) {
		t.Error("expected token to be sealed, found plaintext")
	}
}

func TestWrongKeyCannotOpenToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yatter.db")
	ctx := context.Background()

	svc, err := NewDBService(path, testKey())
	if err != nil {
		t.Fatal(err)
	}
	svc.SaveAccessToken(ctx, "u", "tok")
	svc.Close()

	other := bytes.Repeat([]byte{0x07}, KeySize)
	svc, err = NewDBService(path, other)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if _, err := svc.GetAccessToken(ctx); err == nil {
		t.Error("expected error opening token with a different key")
	}
}

func TestSaveAndLoadTimeline(t *testing.T) {
	svc := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	statuses := []model.Status{
		{
			ID:        "3",
			Account:   model.Account{ID: "10", Username: "884shuta", DisplayName: "Shuta", Avatar: "https://example/a.png"},
			Content:   "newest",
			CreatedAt: created,
			MediaAttachments: []model.Media{
				{ID: "m2", Type: "image", URL: "https://example/2.png", Description: "second"},
				{ID: "m1", Type: "image", URL: "https://example/1.png", Description: "first"},
			},
		},
		{
			ID:      "1",
			Account: model.Account{ID: "11", Username: "bob"},
			Content: "oldest",
		},
	}

	if err := svc.SaveTimeline(ctx, statuses); err != nil {
		t.Fatalf("SaveTimeline failed: %v", err)
	}

	loaded, err := svc.LoadTimeline(ctx, 10)
	if err != nil {
		t.Fatalf("LoadTimeline failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(loaded))
	}
	if loaded[0].ID != "3" || loaded[1].ID != "1" {
		t.Errorf("expected server order [3 1], got [%s %s]", loaded[0].ID, loaded[1].ID)
	}
	if !loaded[0].CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, loaded[0].CreatedAt)
	}
	if !loaded[1].CreatedAt.IsZero() {
		t.Errorf("expected zero created_at, got %v", loaded[1].CreatedAt)
	}

	media := loaded[0].MediaAttachments
	if len(media) != 2 {
		t.Fatalf("expected 2 media, got %d", len(media))
	}
	if media[0].ID != "m2" || media[1].ID != "m1" {
		t.Errorf("expected media order [m2 m1], got [%s %s]", media[0].ID, media[1].ID)
	}
	if len(loaded[1].MediaAttachments) != 0 {
		t.Errorf("expected no media on status 1, got %d", len(loaded[1].MediaAttachments))
	}
}

func TestSaveTimelineReplacesPrevious(t *testing.T) {
	svc := newTestStore(t)
	ctx := context.Background()

	first := []model.Status{{
		ID:               "1",
		Account:          model.Account{Username: "a"},
		MediaAttachments: []model.Media{{ID: "m", URL: "u"}},
	}}
	if err := svc.SaveTimeline(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := []model.Status{{ID: "2", Account: model.Account{Username: "b"}}}
	if err := svc.SaveTimeline(ctx, second); err != nil {
		t.Fatal(err)
	}

	loaded, err := svc.LoadTimeline(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].ID != "2" {
		t.Fatalf("expected only status 2, got %+v", loaded)
	}

	var orphans int
	svc.db.QueryRow(`SELECT COUNT(*) FROM media_attachments`).Scan(&orphans)
	if orphans != 0 {
		t.Errorf("expected media to cascade, found %d rows", orphans)
	}
}

func TestLoadTimelineLimit(t *testing.T) {
	svc := newTestStore(t)
	ctx := context.Background()

	var statuses []model.Status
	for i := 0; i < 5; i++ {
		statuses = append(statuses, model.Status{
			ID:      string(rune('a' + i)),
			Account: model.Account{Username: "u"},
		})
	}
	svc.SaveTimeline(ctx, statuses)

	loaded, err := svc.LoadTimeline(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 || loaded[0].ID != "a" || loaded[2].ID != "c" {
		t.Errorf("expected first three statuses, got %+v", loaded)
	}
}

func TestSyncRuns(t *testing.T) {
	svc := newTestStore(t)
	ctx := context.Background()

	runs := []model.SyncRun{
		{RunID: "r1", StartedAt: 100, FinishedAt: 110, StatusCount: 5},
		{RunID: "r2", StartedAt: 200, FinishedAt: 210, Error: "timeout"},
	}
	for _, r := range runs {
		if err := svc.RecordSyncRun(ctx, r); err != nil {
			t.Fatalf("RecordSyncRun(%s) failed: %v", r.RunID, err)
		}
	}

	latest, err := svc.LatestSyncRuns(ctx, 10)
	if err != nil {
		t.Fatalf("LatestSyncRuns failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(latest))
	}
	if latest[0].RunID != "r2" || latest[0].Error != "timeout" {
		t.Errorf("expected newest failed run first, got %+v", latest[0])
	}
	if latest[1].StatusCount != 5 || latest[1].Error != "" {
		t.Errorf("unexpected older run %+v", latest[1])
	}
}

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer(testKey())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := s.Seal([]byte("token"))
	b, _ := s.Seal([]byte("token"))
	if bytes.Equal(a, b) {
		t.Error("expected distinct nonces per seal")
	}
	plain, err := s.Open(a)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(plain) != "token" {
		t.Errorf("expected token, got %q", plain)
	}

	a[len(a)-1] ^= 0xff
	if _, err := s.Open(a); err == nil {
		t.Error("expected tampered ciphertext to fail")
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "token.key")

	k1, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	k2, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("expected the same key on reload")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}
