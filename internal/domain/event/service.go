package event

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rpypty/galleria/internal/domain/storage"
	"github.com/rpypty/galleria/pkg/logger"
)

const (
	viewURLFormat      = "/api/gallery/image/%s"
	thumbnailURLFormat = "/api/gallery/thumbnail/%s"
)

type Service struct {
	repo  Repository
	store storage.Client
	log   logger.Logger

	mu        sync.Mutex
	syncLocks map[string]*eventLock
}

// eventLock serializes syncs of one event. refs counts the holders and
// waiters so the entry can be dropped once the last one releases it.
type eventLock struct {
	mu   sync.Mutex
	refs int
}

// NewService builds the event service. store may be nil when no storage
// backend is configured; sync then fails with ErrStorageUnavailable.
func NewService(repo Repository, store storage.Client, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		log:       log,
		syncLocks: make(map[string]*eventLock),
	}
}

func (s *Service) CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error) {
	folderID := strings.TrimSpace(input.SourceFolderID)
	if folderID == "" {
		return nil, fmt.Errorf("%w: source folder id is required", ErrInvalidInput)
	}

	code, err := generateUniqueCode(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Event " + code
	}

	evt := Event{
		ID:             uuid.NewString(),
		Code:           code,
		SourceFolderID: folderID,
		EventType:      ParseType(input.EventType),
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
	}
	if err := s.repo.CreateEvent(ctx, &evt); err != nil {
		return nil, err
	}

	s.log.Info("events: created", "event_id", evt.ID, "code", evt.Code)
	return &evt, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// ListEvents returns every event together with its current photo count.
func (s *Service) ListEvents(ctx context.Context) ([]Summary, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountPhotosByEvent(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(events))
	for _, evt := range events {
		summaries = append(summaries, Summary{
			ID:          evt.ID,
			Code:        evt.Code,
			EventType:   evt.EventType,
			Name:        evt.Name,
			Description: evt.Description,
			PhotoCount:  counts[evt.ID],
			CreatedAt:   evt.CreatedAt,
		})
	}
	return summaries, nil
}

// DeleteEvent removes the event and, through the cascade, all its photos.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetEvent(ctx, id); err != nil {
			return err
		}
		if err := tx.DeletePhotosByEvent(ctx, id); err != nil {
			return err
		}
		return tx.DeleteEvent(ctx, id)
	})
}

// Sync replaces the event's photo set with the current contents of its
// source folder. The crawl runs first; the stored set is only touched
// after the crawl fully succeeded, so an upstream failure leaves the
// previous photos intact. Concurrent syncs of the same event are
// serialized.
func (s *Service) Sync(ctx context.Context, eventID string) (int, error) {
	if s.store == nil {
		return 0, ErrStorageUnavailable
	}

	lock := s.acquireSyncLock(eventID)
	defer s.releaseSyncLock(eventID, lock)

	evt, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	files, err := storage.ListImages(ctx, s.store, evt.SourceFolderID)
	if err != nil {
		return 0, fmt.Errorf("crawl folder %s: %w", evt.SourceFolderID, err)
	}

	photos := make([]Photo, 0, len(files))
	for i, file := range files {
		photos = append(photos, Photo{
			ID:           uuid.NewString(),
			EventID:      evt.ID,
			Filename:     file.Name,
			ViewURL:      fmt.Sprintf(viewURLFormat, file.ID),
			ThumbnailURL: fmt.Sprintf(thumbnailURLFormat, file.ID),
			FileID:       file.ID,
			Position:     i,
		})
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.DeletePhotosByEvent(ctx, evt.ID); err != nil {
			return err
		}
		if len(photos) == 0 {
			return nil
		}
		return tx.CreatePhotos(ctx, photos)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("events: synced", "event_id", evt.ID, "photos", len(photos))
	return len(photos), nil
}

// Gallery resolves an event by its share code. A nil page returns the
// full photo set; otherwise the requested zero-indexed page is returned
// with TotalCount still holding the full count.
func (s *Service) Gallery(ctx context.Context, code string, page *Page) (*Gallery, error) {
	if page != nil && (page.Number < 0 || page.Size <= 0) {
		return nil, fmt.Errorf("%w: page must be >= 0 and size > 0", ErrInvalidInput)
	}

	evt, err := s.repo.GetEventByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}

	var photos []Photo
	var total int64
	if page == nil {
		photos, err = s.repo.ListPhotos(ctx, evt.ID)
		if err != nil {
			return nil, err
		}
		total = int64(len(photos))
	} else {
		photos, err = s.repo.ListPhotosPage(ctx, evt.ID, page.Number*page.Size, page.Size)
		if err != nil {
			return nil, err
		}
		total, err = s.repo.CountPhotos(ctx, evt.ID)
		if err != nil {
			return nil, err
		}
	}

	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		views = append(views, PhotoView{
			ID:           photo.ID,
			Filename:     photo.Filename,
			ViewURL:      photo.ViewURL,
			ThumbnailURL: photo.ThumbnailURL,
			FileID:       photo.FileID,
			CreatedAt:    photo.CreatedAt,
		})
	}

	return &Gallery{
		Code:        evt.Code,
		EventType:   evt.EventType,
		Name:        evt.Name,
		Description: evt.Description,
		Photos:      views,
		TotalCount:  total,
	}, nil
}

func (s *Service) acquireSyncLock(eventID string) *eventLock {
	s.mu.Lock()
	lock, ok := s.syncLocks[eventID]
	if !ok {
		lock = &eventLock{}
		s.syncLocks[eventID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

// releaseSyncLock drops the map entry when the last holder leaves, so
// the table does not accumulate a mutex per event id ever synced.
func (s *Service) releaseSyncLock(eventID string, lock *eventLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.syncLocks, eventID)
	}
	s.mu.Unlock()
}
