package post_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/breadbot/internal/instagram"
	"github.com/edgard/breadbot/internal/post"
)

type fakeAnalyzer struct {
	description string
	err         error
	calls       int
}

func (f *fakeAnalyzer) DescribeImage(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	f.calls++
	return f.description, f.err
}

type fakeCaptioner struct {
	caption string
	err     error
}

func (f *fakeCaptioner) Compose(ctx context.Context, description string) (string, error) {
	return f.caption, f.err
}

type fakePublisher struct {
	result *instagram.PublishResult
	err    error
	calls  int
}

func (f *fakePublisher) PublishPhoto(ctx context.Context, data []byte, mimeType, caption string) (*instagram.PublishResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type managerFixture struct {
	storage   *post.Storage
	analyzer  *fakeAnalyzer
	captioner *fakeCaptioner
	publisher *fakePublisher
	manager   *post.Manager
}

func newManagerFixture(t *testing.T, maxAttempts int) *managerFixture {
	t.Helper()

	f := &managerFixture{
		storage:   newTestStorage(t),
		analyzer:  &fakeAnalyzer{description: "a golden sourdough loaf"},
		captioner: &fakeCaptioner{caption: "Fresh from the oven!\n\n#FreshBread #LocalBakery #ArtisanBakery"},
		publisher: &fakePublisher{result: &instagram.PublishResult{PostID: "post-1", Timestamp: time.Now().UTC()}},
	}
	f.manager = post.NewManager(
		f.storage, f.analyzer, f.captioner, f.publisher,
		post.NewKeyedLock(), maxAttempts, discardLogger(),
	)
	return f
}

// dropInbound writes a media file into the inbound area and returns its path.
func (f *managerFixture) dropInbound(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(f.storage.InboundDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// stageReady plants a ready record with media directly in the staged area.
func (f *managerFixture) stageReady(t *testing.T, name string) *post.Record {
	t.Helper()
	r := &post.Record{
		Media:            name,
		Description:      "a loaf",
		Caption:          "caption",
		CreatedAt:        time.Now().UTC(),
		State:            post.StateReady,
		AnsweredComments: []string{},
	}
	if err := os.WriteFile(f.storage.MediaPath(f.storage.StagedDir, r), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.storage.WriteRecord(f.storage.StagedDir, r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestIngestStagesMediaAndRecord(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)

	content := []byte("jpeg bytes")
	src := f.dropInbound(t, "sourdough-1.jpg", content)

	record, err := f.manager.Ingest(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	if record.State != post.StateReady {
		t.Errorf("State = %q, want ready", record.State)
	}
	if record.Description != f.analyzer.description {
		t.Errorf("Description = %q, want the analyzer output", record.Description)
	}
	if record.Caption != f.captioner.caption {
		t.Errorf("Caption = %q, want the composed caption", record.Caption)
	}
	if record.AnsweredComments == nil {
		t.Error("AnsweredComments not initialized to an empty set")
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("media still in inbound after ingest")
	}
	staged, err := os.ReadFile(f.storage.MediaPath(f.storage.StagedDir, record))
	if err != nil {
		t.Fatalf("staged media missing: %v", err)
	}
	if string(staged) != string(content) {
		t.Error("staged media is not an identical copy")
	}

	loaded, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.StagedDir, record))
	if err != nil {
		t.Fatalf("staged sidecar missing: %v", err)
	}
	if loaded.State != post.StateReady {
		t.Errorf("persisted state = %q, want ready", loaded.State)
	}
}

func TestIngestAnalyzerFailureLeavesNoPartialRecord(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)
	f.analyzer.err = errors.New("vision unavailable")

	src := f.dropInbound(t, "loaf.jpg", []byte("img"))

	if _, err := f.manager.Ingest(context.Background(), src); err == nil {
		t.Fatal("Ingest succeeded despite analyzer failure")
	}

	if _, err := os.Stat(src); err != nil {
		t.Error("inbound media removed despite failed ingest")
	}
	records, err := f.storage.ListRecords(f.storage.StagedDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("staged area has %d records after failed ingest, want 0", len(records))
	}
}

func TestIngestCaptionerFailureLeavesNoPartialRecord(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)
	f.captioner.err = errors.New("generation failed")

	src := f.dropInbound(t, "loaf.jpg", []byte("img"))

	if _, err := f.manager.Ingest(context.Background(), src); err == nil {
		t.Fatal("Ingest succeeded despite captioner failure")
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("inbound media removed despite failed ingest")
	}
}

func TestPublishReadyPromotesToPublishedArea(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)
	r := f.stageReady(t, "loaf.jpg")

	published, err := f.manager.PublishReady(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if published != 1 {
		t.Fatalf("published = %d, want 1", published)
	}

	if _, err := os.Stat(f.storage.MediaPath(f.storage.StagedDir, r)); !os.IsNotExist(err) {
		t.Error("media still in staged after publish")
	}
	loaded, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.PublishedDir, r))
	if err != nil {
		t.Fatalf("published sidecar missing: %v", err)
	}
	if loaded.State != post.StatePosted {
		t.Errorf("State = %q, want posted", loaded.State)
	}
	if loaded.PostID != "post-1" {
		t.Errorf("PostID = %q, want the platform-assigned id", loaded.PostID)
	}
	if loaded.PostedAt.IsZero() {
		t.Error("PostedAt not set")
	}
	if loaded.AnsweredComments == nil || len(loaded.AnsweredComments) != 0 {
		t.Errorf("AnsweredComments = %v, want empty set", loaded.AnsweredComments)
	}
}

func TestPublishReadySecondScanIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)
	f.stageReady(t, "loaf.jpg")

	if _, err := f.manager.PublishReady(context.Background()); err != nil {
		t.Fatal(err)
	}
	published, err := f.manager.PublishReady(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if published != 0 {
		t.Errorf("second scan published %d records, want 0", published)
	}
	if f.publisher.calls != 1 {
		t.Errorf("publisher called %d times, want exactly once", f.publisher.calls)
	}
}

func TestPublishFailureKeepsRecordReadyAndCountsAttempts(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)
	f.publisher.err = errors.New("platform down")
	r := f.stageReady(t, "loaf.jpg")

	for scan := 1; scan <= 2; scan++ {
		published, err := f.manager.PublishReady(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if published != 0 {
			t.Fatalf("scan %d published %d records, want 0", scan, published)
		}

		loaded, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.StagedDir, r))
		if err != nil {
			t.Fatal(err)
		}
		if loaded.State != post.StateReady {
			t.Errorf("scan %d: State = %q, want ready (unbounded retry)", scan, loaded.State)
		}
		if loaded.PublishAttempts != scan {
			t.Errorf("scan %d: PublishAttempts = %d, want %d", scan, loaded.PublishAttempts, scan)
		}
	}
}

func TestPublishAttemptsExhaustedMovesToTerminalError(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 2)
	f.publisher.err = errors.New("platform down")
	r := f.stageReady(t, "loaf.jpg")

	for scan := 0; scan < 3; scan++ {
		if _, err := f.manager.PublishReady(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if f.publisher.calls != 2 {
		t.Errorf("publisher called %d times, want 2 (error state is terminal)", f.publisher.calls)
	}
	loaded, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.PublishedDir, r))
	if err != nil {
		t.Fatalf("error record not archived: %v", err)
	}
	if loaded.State != post.StateError {
		t.Errorf("State = %q, want error", loaded.State)
	}
	if loaded.PublishAttempts != 2 {
		t.Errorf("PublishAttempts = %d, want 2", loaded.PublishAttempts)
	}
}

func TestPublishSkipsRecordWithMissingMedia(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)

	r := &post.Record{Media: "ghost.jpg", State: post.StateReady, Caption: "caption"}
	if err := f.storage.WriteRecord(f.storage.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	published, err := f.manager.PublishReady(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if published != 0 {
		t.Errorf("published = %d, want 0", published)
	}
	if f.publisher.calls != 0 {
		t.Errorf("publisher called %d times for a record without media, want 0", f.publisher.calls)
	}
}

func TestPublishResumesInterruptedPromote(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)

	// A posted record still sitting in staged means a crash interrupted the
	// promote after the publish succeeded.
	r := &post.Record{
		Media:            "loaf.jpg",
		State:            post.StatePosted,
		PostID:           "post-9",
		PostedAt:         time.Now().UTC(),
		AnsweredComments: []string{},
	}
	if err := os.WriteFile(f.storage.MediaPath(f.storage.StagedDir, r), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.storage.WriteRecord(f.storage.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	if _, err := f.manager.PublishReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.publisher.calls != 0 {
		t.Errorf("publisher called %d times while resuming a promote, want 0", f.publisher.calls)
	}
	loaded, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.PublishedDir, r))
	if err != nil {
		t.Fatalf("record not promoted to published area: %v", err)
	}
	if loaded.PostID != "post-9" {
		t.Errorf("PostID = %q, want preserved id", loaded.PostID)
	}
	if _, err := os.Stat(f.storage.SidecarPath(f.storage.StagedDir, r)); !os.IsNotExist(err) {
		t.Error("sidecar still in staged after resumed promote")
	}
}

func TestPublishClearsStagedSidecarLeftByPartialPromote(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)

	// A crash after the staged media was deleted but before the staged
	// sidecar was: both published copies exist, staged holds only the
	// sidecar. One scan must finish the cleanup without re-publishing.
	r := &post.Record{
		Media:            "loaf.jpg",
		State:            post.StatePosted,
		PostID:           "post-7",
		PostedAt:         time.Now().UTC(),
		AnsweredComments: []string{},
	}
	if err := os.WriteFile(f.storage.MediaPath(f.storage.PublishedDir, r), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.storage.WriteRecord(f.storage.PublishedDir, r); err != nil {
		t.Fatal(err)
	}
	if err := f.storage.WriteRecord(f.storage.StagedDir, r); err != nil {
		t.Fatal(err)
	}

	if _, err := f.manager.PublishReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.publisher.calls != 0 {
		t.Errorf("publisher called %d times while finishing a promote, want 0", f.publisher.calls)
	}
	if _, err := os.Stat(f.storage.SidecarPath(f.storage.StagedDir, r)); !os.IsNotExist(err) {
		t.Error("stale staged sidecar survived the scan")
	}
	if _, err := os.Stat(f.storage.MediaPath(f.storage.PublishedDir, r)); err != nil {
		t.Errorf("published media missing after cleanup: %v", err)
	}
	if _, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.PublishedDir, r)); err != nil {
		t.Errorf("published sidecar missing after cleanup: %v", err)
	}

	records, err := f.storage.ListRecords(f.storage.StagedDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("staged area still holds %d records, want 0", len(records))
	}
}

func TestIngestOverwritesLeftoverStagedCopy(t *testing.T) {
	t.Parallel()
	f := newManagerFixture(t, 0)

	// A crash between the staged copy and the sidecar write leaves an
	// orphan media file in staged and the original in inbound. Re-ingest
	// must succeed and replace the orphan.
	content := []byte("fresh jpeg bytes")
	src := f.dropInbound(t, "loaf.jpg", content)
	orphan := filepath.Join(f.storage.StagedDir, "loaf.jpg")
	if err := os.WriteFile(orphan, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	record, err := f.manager.Ingest(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	staged, err := os.ReadFile(f.storage.MediaPath(f.storage.StagedDir, record))
	if err != nil {
		t.Fatal(err)
	}
	if string(staged) != string(content) {
		t.Errorf("staged media = %q, want the fresh inbound copy", staged)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("media still in inbound after re-ingest")
	}
	if _, err := f.storage.ReadRecord(f.storage.SidecarPath(f.storage.StagedDir, record)); err != nil {
		t.Errorf("ready sidecar missing after re-ingest: %v", err)
	}
}
