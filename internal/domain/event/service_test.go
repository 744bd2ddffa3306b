package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rpypty/galleria/internal/domain/storage"
	"github.com/rpypty/galleria/pkg/logger"
)

type fakeRepo struct {
	events map[string]*Event
	photos map[string][]Photo
	codes  map[string]struct{}

	// forceTaken makes the next n IsCodeTaken calls report a collision.
	forceTaken int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events: make(map[string]*Event),
		photos: make(map[string][]Photo),
		codes:  make(map[string]struct{}),
	}
}

func (r *fakeRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) CreateEvent(ctx context.Context, evt *Event) error {
	r.events[evt.ID] = evt
	r.codes[evt.Code] = struct{}{}
	return nil
}

func (r *fakeRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	evt, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return evt, nil
}

func (r *fakeRepo) GetEventByCode(ctx context.Context, code string) (*Event, error) {
	for _, evt := range r.events {
		if evt.Code == code {
			return evt, nil
		}
	}
	return nil, ErrCodeNotFound
}

func (r *fakeRepo) ListEvents(ctx context.Context) ([]Event, error) {
	result := make([]Event, 0, len(r.events))
	for _, evt := range r.events {
		result = append(result, *evt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *fakeRepo) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	if r.forceTaken > 0 {
		r.forceTaken--
		return true, nil
	}
	_, taken := r.codes[code]
	return taken, nil
}

func (r *fakeRepo) ListPhotos(ctx context.Context, eventID string) ([]Photo, error) {
	return append([]Photo(nil), r.photos[eventID]...), nil
}

func (r *fakeRepo) ListPhotosPage(ctx context.Context, eventID string, offset, limit int) ([]Photo, error) {
	photos := r.photos[eventID]
	if offset >= len(photos) {
		return nil, nil
	}
	end := offset + limit
	if end > len(photos) {
		end = len(photos)
	}
	return append([]Photo(nil), photos[offset:end]...), nil
}

func (r *fakeRepo) CountPhotos(ctx context.Context, eventID string) (int64, error) {
	return int64(len(r.photos[eventID])), nil
}

func (r *fakeRepo) CountPhotosByEvent(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(r.photos))
	for eventID, photos := range r.photos {
		counts[eventID] = int64(len(photos))
	}
	return counts, nil
}

func (r *fakeRepo) CreatePhotos(ctx context.Context, photos []Photo) error {
	for _, photo := range photos {
		r.photos[photo.EventID] = append(r.photos[photo.EventID], photo)
	}
	return nil
}

func (r *fakeRepo) DeletePhotosByEvent(ctx context.Context, eventID string) error {
	delete(r.photos, eventID)
	return nil
}

type fakeStore struct {
	folders map[string][]storage.File
	err     error
}

func (s *fakeStore) ListChildren(ctx context.Context, folderID, pageToken string) (storage.ChildPage, error) {
	if s.err != nil {
		return storage.ChildPage{}, s.err
	}
	return storage.ChildPage{Files: s.folders[folderID]}, nil
}

func (s *fakeStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) FileName(ctx context.Context, fileID string) (string, error) {
	return "", errors.New("not implemented")
}

func testLogger() logger.Logger {
	return logger.New(io.Discard, slog.LevelError, "text")
}

func imageFiles(n int) []storage.File {
	files := make([]storage.File, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, storage.File{
			ID:       fmt.Sprintf("file-%d", i),
			Name:     fmt.Sprintf("photo-%d.jpg", i),
			MimeType: "image/jpeg",
		})
	}
	return files
}

func TestCreateEventGeneratesValidCode(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, nil, testLogger())

	evt, err := service.CreateEvent(context.Background(), CreateEventInput{SourceFolderID: "folder-1"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if len(evt.Code) != 6 {
		t.Fatalf("code %q has length %d, want 6", evt.Code, len(evt.Code))
	}
	for _, char := range evt.Code {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", char) {
			t.Fatalf("code %q contains invalid character %q", evt.Code, char)
		}
	}
	if evt.Name != "Event "+evt.Code {
		t.Fatalf("default name = %q, want %q", evt.Name, "Event "+evt.Code)
	}
	if evt.EventType != TypeEvent {
		t.Fatalf("default type = %q, want %q", evt.EventType, TypeEvent)
	}
}

func TestCreateEventRetriesOnCollision(t *testing.T) {
	repo := newFakeRepo()
	repo.forceTaken = 5
	service := NewService(repo, nil, testLogger())

	evt, err := service.CreateEvent(context.Background(), CreateEventInput{SourceFolderID: "folder-1"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if evt.Code == "" {
		t.Fatal("expected a code after collisions")
	}
}

func TestCreateEventCodeSpaceExhausted(t *testing.T) {
	repo := newFakeRepo()
	repo.forceTaken = 1000
	service := NewService(repo, nil, testLogger())

	_, err := service.CreateEvent(context.Background(), CreateEventInput{SourceFolderID: "folder-1"})
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("got %v, want ErrCodeSpaceExhausted", err)
	}
}

func TestCreateEventRequiresFolderID(t *testing.T) {
	service := NewService(newFakeRepo(), nil, testLogger())

	_, err := service.CreateEvent(context.Background(), CreateEventInput{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func createTestEvent(t *testing.T, service *Service, folderID string) *Event {
	t.Helper()
	evt, err := service.CreateEvent(context.Background(), CreateEventInput{SourceFolderID: folderID})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return evt
}

func TestSyncReplacesPhotoSet(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(3)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")

	// Stale rows from an earlier sync must disappear.
	repo.photos[evt.ID] = []Photo{{ID: "stale", EventID: evt.ID, FileID: "old"}}

	count, err := service.Sync(context.Background(), evt.ID)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if count != 3 {
		t.Fatalf("synced %d photos, want 3", count)
	}

	photos := repo.photos[evt.ID]
	if len(photos) != 3 {
		t.Fatalf("stored %d photos, want 3", len(photos))
	}
	for i, photo := range photos {
		wantView := fmt.Sprintf("/api/gallery/image/file-%d", i)
		wantThumb := fmt.Sprintf("/api/gallery/thumbnail/file-%d", i)
		if photo.ViewURL != wantView {
			t.Fatalf("photo %d view url = %q, want %q", i, photo.ViewURL, wantView)
		}
		if photo.ThumbnailURL != wantThumb {
			t.Fatalf("photo %d thumbnail url = %q, want %q", i, photo.ThumbnailURL, wantThumb)
		}
		if photo.Position != i {
			t.Fatalf("photo %d position = %d", i, photo.Position)
		}
	}

	// A second sync is idempotent: same count, no duplicated rows.
	count, err = service.Sync(context.Background(), evt.ID)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if count != 3 || len(repo.photos[evt.ID]) != 3 {
		t.Fatalf("after resync: count=%d stored=%d, want 3/3", count, len(repo.photos[evt.ID]))
	}
}

func TestSyncEmptyFolder(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")

	count, err := service.Sync(context.Background(), evt.ID)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if count != 0 {
		t.Fatalf("synced %d, want 0", count)
	}
}

func TestSyncWithoutStore(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, nil, testLogger())
	evt := createTestEvent(t, service, "folder-1")

	_, err := service.Sync(context.Background(), evt.ID)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("got %v, want ErrStorageUnavailable", err)
	}
}

func TestSyncUnknownEvent(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeStore{}, testLogger())

	_, err := service.Sync(context.Background(), "missing")
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("got %v, want ErrEventNotFound", err)
	}
}

func TestSyncCrawlFailureKeepsOldPhotos(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(2)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")

	if _, err := service.Sync(context.Background(), evt.ID); err != nil {
		t.Fatalf("initial Sync: %v", err)
	}

	store.err = errors.New("upstream down")
	if _, err := service.Sync(context.Background(), evt.ID); err == nil {
		t.Fatal("expected sync error")
	}

	if len(repo.photos[evt.ID]) != 2 {
		t.Fatalf("photo set was touched on crawl failure: %d rows", len(repo.photos[evt.ID]))
	}
}

// trackingRepo records the order of photo writes across goroutines.
type trackingRepo struct {
	*fakeRepo
	mu  sync.Mutex
	ops []string
}

func (r *trackingRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *trackingRepo) DeletePhotosByEvent(ctx context.Context, eventID string) error {
	r.mu.Lock()
	r.ops = append(r.ops, "delete")
	r.mu.Unlock()
	return r.fakeRepo.DeletePhotosByEvent(ctx, eventID)
}

func (r *trackingRepo) CreatePhotos(ctx context.Context, photos []Photo) error {
	r.mu.Lock()
	r.ops = append(r.ops, "insert")
	r.mu.Unlock()
	return r.fakeRepo.CreatePhotos(ctx, photos)
}

// gateStore holds every crawl until the gate channel is closed.
type gateStore struct {
	files []storage.File
	gate  chan struct{}
}

func (s *gateStore) ListChildren(ctx context.Context, folderID, pageToken string) (storage.ChildPage, error) {
	<-s.gate
	return storage.ChildPage{Files: s.files}, nil
}

func (s *gateStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *gateStore) FileName(ctx context.Context, fileID string) (string, error) {
	return "", errors.New("not implemented")
}

func TestSyncSerializesPerEvent(t *testing.T) {
	repo := &trackingRepo{fakeRepo: newFakeRepo()}
	gate := make(chan struct{})
	store := &gateStore{files: imageFiles(2), gate: gate}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")

	var started, done sync.WaitGroup
	started.Add(2)
	done.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer done.Done()
			started.Done()
			if _, err := service.Sync(context.Background(), evt.ID); err != nil {
				t.Errorf("Sync: %v", err)
			}
		}()
	}

	// Both syncs are in flight before the first crawl may proceed.
	started.Wait()
	close(gate)
	done.Wait()

	want := []string{"delete", "insert", "delete", "insert"}
	if len(repo.ops) != len(want) {
		t.Fatalf("recorded ops %v, want %v", repo.ops, want)
	}
	for i, op := range want {
		if repo.ops[i] != op {
			t.Fatalf("ops interleaved: %v, want %v", repo.ops, want)
		}
	}
	if len(repo.photos[evt.ID]) != 2 {
		t.Fatalf("stored %d photos, want exactly one crawl's worth (2)", len(repo.photos[evt.ID]))
	}
}

func TestSyncReleasesLockEntry(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(1)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")

	if _, err := service.Sync(context.Background(), evt.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := service.Sync(context.Background(), "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("got %v, want ErrEventNotFound", err)
	}

	service.mu.Lock()
	remaining := len(service.syncLocks)
	service.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("%d lock entries retained after syncs finished, want 0", remaining)
	}
}

func TestGalleryPagination(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(25)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")
	if _, err := service.Sync(context.Background(), evt.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	gallery, err := service.Gallery(context.Background(), evt.Code, &Page{Number: 0, Size: 20})
	if err != nil {
		t.Fatalf("Gallery page 0: %v", err)
	}
	if len(gallery.Photos) != 20 || gallery.TotalCount != 25 {
		t.Fatalf("page 0: %d photos, total %d; want 20/25", len(gallery.Photos), gallery.TotalCount)
	}

	gallery, err = service.Gallery(context.Background(), evt.Code, &Page{Number: 1, Size: 20})
	if err != nil {
		t.Fatalf("Gallery page 1: %v", err)
	}
	if len(gallery.Photos) != 5 || gallery.TotalCount != 25 {
		t.Fatalf("page 1: %d photos, total %d; want 5/25", len(gallery.Photos), gallery.TotalCount)
	}
}

func TestGalleryUnpaginatedReturnsAll(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(7)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")
	if _, err := service.Sync(context.Background(), evt.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	gallery, err := service.Gallery(context.Background(), evt.Code, nil)
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if len(gallery.Photos) != 7 || gallery.TotalCount != 7 {
		t.Fatalf("got %d photos, total %d; want 7/7", len(gallery.Photos), gallery.TotalCount)
	}
	if gallery.Code != evt.Code {
		t.Fatalf("gallery code = %q, want %q", gallery.Code, evt.Code)
	}
}

func TestGalleryUnknownCode(t *testing.T) {
	service := NewService(newFakeRepo(), nil, testLogger())

	_, err := service.Gallery(context.Background(), "NOPE42", nil)
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("got %v, want ErrCodeNotFound", err)
	}
}

func TestGalleryRejectsBadPagination(t *testing.T) {
	service := NewService(newFakeRepo(), nil, testLogger())

	if _, err := service.Gallery(context.Background(), "ABC123", &Page{Number: -1, Size: 20}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative page: got %v, want ErrInvalidInput", err)
	}
	if _, err := service.Gallery(context.Background(), "ABC123", &Page{Number: 0, Size: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero size: got %v, want ErrInvalidInput", err)
	}
}

func TestDeleteEventRemovesPhotos(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(2)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")
	if _, err := service.Sync(context.Background(), evt.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if err := service.DeleteEvent(context.Background(), evt.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if len(repo.events) != 0 || len(repo.photos[evt.ID]) != 0 {
		t.Fatal("event or photos survived deletion")
	}

	if err := service.DeleteEvent(context.Background(), evt.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("second delete: got %v, want ErrEventNotFound", err)
	}
}

func TestListEventsIncludesPhotoCounts(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{folders: map[string][]storage.File{"folder-1": imageFiles(4)}}
	service := NewService(repo, store, testLogger())
	evt := createTestEvent(t, service, "folder-1")
	if _, err := service.Sync(context.Background(), evt.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	createTestEvent(t, service, "folder-2")

	summaries, err := service.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	counts := map[string]int64{}
	for _, summary := range summaries {
		counts[summary.ID] = summary.PhotoCount
	}
	if counts[evt.ID] != 4 {
		t.Fatalf("photo count = %d, want 4", counts[evt.ID])
	}
}
