package post_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/breadbot/internal/config"
	"github.com/edgard/breadbot/internal/post"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStorage(t *testing.T) *post.Storage {
	t.Helper()

	base := t.TempDir()
	s := post.NewStorage(config.StorageConfig{
		InboundDir:   filepath.Join(base, "uploads"),
		StagedDir:    filepath.Join(base, "processed"),
		PublishedDir: filepath.Join(base, "posted"),
	}, discardLogger())
	if err := s.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	return s
}

func TestSidecarName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		media    string
		expected string
	}{
		{media: "sourdough-1.jpg", expected: "sourdough-1.yaml"},
		{media: "loaf.JPG", expected: "loaf.yaml"},
		{media: "two.dots.png", expected: "two.dots.yaml"},
		{media: "noext", expected: "noext.yaml"},
	}

	for _, tc := range testCases {
		if got := post.SidecarName(tc.media); got != tc.expected {
			t.Errorf("SidecarName(%q) = %q, want %q", tc.media, got, tc.expected)
		}
	}
}

func TestWriteAndReadRecordRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	original := &post.Record{
		Media:            "sourdough-1.jpg",
		Description:      "a golden loaf",
		Caption:          "Fresh from the oven!\n\n#FreshBread",
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
		State:            post.StateReady,
		AnsweredComments: []string{},
	}
	if err := s.WriteRecord(s.StagedDir, original); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.ReadRecord(s.SidecarPath(s.StagedDir, original))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Media != original.Media || loaded.State != post.StateReady {
		t.Errorf("loaded = %+v, want media and state preserved", loaded)
	}
	if loaded.Caption != original.Caption {
		t.Errorf("Caption = %q, want %q", loaded.Caption, original.Caption)
	}
	if !loaded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, original.CreatedAt)
	}
}

func TestListRecordsSkipsUnparseable(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	good := &post.Record{Media: "good.jpg", State: post.StateReady}
	if err := s.WriteRecord(s.StagedDir, good); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.StagedDir, "bad.yaml"), []byte("- not\n- a record\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.StagedDir, "good.jpg"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := s.ListRecords(s.StagedDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Media != "good.jpg" {
		t.Errorf("ListRecords = %+v, want only the parseable record", records)
	}
}

func TestCopyThenRemoveFile(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	src := filepath.Join(s.InboundDir, "loaf.jpg")
	dst := filepath.Join(s.StagedDir, "loaf.jpg")
	content := []byte("jpeg bytes")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(copied) != string(content) {
		t.Errorf("copied content = %q, want identical bytes", copied)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source removed by copy")
	}

	if err := s.RemoveFile(src); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after remove")
	}
}

func TestPromoteMovesMediaAndSidecar(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	r := &post.Record{Media: "loaf.jpg", State: post.StatePosted, PostID: "p1"}
	if err := os.WriteFile(s.MediaPath(s.StagedDir, r), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(s.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	if err := s.Promote(r); err != nil {
		t.Fatal(err)
	}

	for _, gone := range []string{s.MediaPath(s.StagedDir, r), s.SidecarPath(s.StagedDir, r)} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("%s still exists in staged after promote", filepath.Base(gone))
		}
	}
	for _, there := range []string{s.MediaPath(s.PublishedDir, r), s.SidecarPath(s.PublishedDir, r)} {
		if _, err := os.Stat(there); err != nil {
			t.Errorf("%s missing from published after promote: %v", filepath.Base(there), err)
		}
	}
}

func TestPromoteResumesAfterPartialCleanup(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	// Layout after a crash between the two staged deletes: both files already
	// copied to published, staged media removed, staged sidecar left behind.
	r := &post.Record{Media: "loaf.jpg", State: post.StatePosted, PostID: "p1"}
	if err := os.WriteFile(s.MediaPath(s.PublishedDir, r), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(s.PublishedDir, r); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(s.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	if err := s.Promote(r); err != nil {
		t.Fatalf("Promote did not resume from partial cleanup: %v", err)
	}

	if _, err := os.Stat(s.SidecarPath(s.StagedDir, r)); !os.IsNotExist(err) {
		t.Error("stale staged sidecar still present after resumed promote")
	}
	if _, err := os.Stat(s.MediaPath(s.PublishedDir, r)); err != nil {
		t.Errorf("published media missing after resumed promote: %v", err)
	}
}

func TestPromoteResumesAfterInterruptedCopy(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	// Layout after a crash between the two copies: media already in
	// published and deleted from staged, sidecar still only in staged.
	r := &post.Record{Media: "loaf.jpg", State: post.StatePosted, PostID: "p2"}
	if err := os.WriteFile(s.MediaPath(s.PublishedDir, r), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(s.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	if err := s.Promote(r); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ReadRecord(s.SidecarPath(s.PublishedDir, r)); err != nil {
		t.Errorf("sidecar not promoted: %v", err)
	}
	if _, err := os.Stat(s.SidecarPath(s.StagedDir, r)); !os.IsNotExist(err) {
		t.Error("staged sidecar still present after resumed promote")
	}
}

func TestPromoteFailsWhenFileLostFromBothAreas(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	r := &post.Record{Media: "gone.jpg", State: post.StatePosted}
	if err := s.WriteRecord(s.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	if err := s.Promote(r); err == nil {
		t.Fatal("Promote succeeded with media missing from both staged and published")
	}
}

func TestMIMEType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expected string
	}{
		{name: "loaf.png", expected: "image/png"},
		{name: "loaf.gif", expected: "image/gif"},
		{name: "loaf.unknownext", expected: "image/jpeg"},
		{name: "loaf", expected: "image/jpeg"},
	}
	for _, tc := range testCases {
		if got := post.MIMEType(tc.name); got != tc.expected {
			t.Errorf("MIMEType(%q) = %q, want %q", tc.name, got, tc.expected)
		}
	}
}
