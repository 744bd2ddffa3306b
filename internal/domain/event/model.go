package event

import "time"

type Type string

const (
	TypeWedding Type = "WEDDING"
	TypeSweet16 Type = "SWEET_16"
	TypeEvent   Type = "EVENT"
)

// ParseType maps free-form input to a known event type, defaulting to
// the generic EVENT.
func ParseType(value string) Type {
	switch Type(value) {
	case TypeWedding, TypeSweet16, TypeEvent:
		return Type(value)
	default:
		return TypeEvent
	}
}

type Event struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	Code           string    `gorm:"size:6;not null;uniqueIndex"`
	SourceFolderID string    `gorm:"not null"`
	EventType      Type      `gorm:"type:varchar(16);not null"`
	Name           string    `gorm:"not null"`
	Description    string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

type Photo struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	EventID      string    `gorm:"type:uuid;not null;index"`
	Filename     string    `gorm:"not null"`
	ViewURL      string    `gorm:"not null"`
	ThumbnailURL string    `gorm:"not null"`
	FileID       string    `gorm:"not null;index"`
	Position     int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Event Event `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`
}

type CreateEventInput struct {
	SourceFolderID string
	EventType      string
	Name           string
	Description    string
}

// Summary is the admin-facing listing row, an event plus its photo count.
type Summary struct {
	ID          string
	Code        string
	EventType   Type
	Name        string
	Description string
	PhotoCount  int64
	CreatedAt   time.Time
}

// Page is a zero-indexed pagination request.
type Page struct {
	Number int
	Size   int
}

// Gallery is the guest-facing view of an event resolved by code.
// TotalCount is the full photo count even when Photos holds one page.
type Gallery struct {
	Code        string
	EventType   Type
	Name        string
	Description string
	Photos      []PhotoView
	TotalCount  int64
}

type PhotoView struct {
	ID           string
	Filename     string
	ViewURL      string
	ThumbnailURL string
	FileID       string
	CreatedAt    time.Time
}
