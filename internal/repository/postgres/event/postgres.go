package event

import (
	"context"
	"errors"

	eventdomain "github.com/rpypty/galleria/internal/domain/event"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(eventdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, evt *eventdomain.Event) error {
	return r.db.WithContext(ctx).Create(evt).Error
}

func (r *PostgresRepository) GetEvent(ctx context.Context, id string) (*eventdomain.Event, error) {
	var evt eventdomain.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&evt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventdomain.ErrEventNotFound
		}
		return nil, err
	}
	return &evt, nil
}

func (r *PostgresRepository) GetEventByCode(ctx context.Context, code string) (*eventdomain.Event, error) {
	var evt eventdomain.Event
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&evt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventdomain.ErrCodeNotFound
		}
		return nil, err
	}
	return &evt, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context) ([]eventdomain.Event, error) {
	var events []eventdomain.Event
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&eventdomain.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eventdomain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&eventdomain.Event{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ListPhotos(ctx context.Context, eventID string) ([]eventdomain.Photo, error) {
	var photos []eventdomain.Photo
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("position asc").
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PostgresRepository) ListPhotosPage(ctx context.Context, eventID string, offset, limit int) ([]eventdomain.Photo, error) {
	var photos []eventdomain.Photo
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("position asc").
		Offset(offset).
		Limit(limit).
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PostgresRepository) CountPhotos(ctx context.Context, eventID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&eventdomain.Photo{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountPhotosByEvent returns the photo count per event id in one
// grouped query, for the admin listing.
func (r *PostgresRepository) CountPhotosByEvent(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		EventID string
		Count   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&eventdomain.Photo{}).
		Select("event_id, COUNT(*) AS count").
		Group("event_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventID] = row.Count
	}
	return counts, nil
}

func (r *PostgresRepository) CreatePhotos(ctx context.Context, photos []eventdomain.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(photos, 100).Error
}

func (r *PostgresRepository) DeletePhotosByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&eventdomain.Photo{}).Error
}
