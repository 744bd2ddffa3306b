package event

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateEvent(ctx context.Context, evt *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetEventByCode(ctx context.Context, code string) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
	IsCodeTaken(ctx context.Context, code string) (bool, error)

	ListPhotos(ctx context.Context, eventID string) ([]Photo, error)
	ListPhotosPage(ctx context.Context, eventID string, offset, limit int) ([]Photo, error)
	CountPhotos(ctx context.Context, eventID string) (int64, error)
	CountPhotosByEvent(ctx context.Context) (map[string]int64, error)
	CreatePhotos(ctx context.Context, photos []Photo) error
	DeletePhotosByEvent(ctx context.Context, eventID string) error
}
