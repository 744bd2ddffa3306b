package media

import "errors"

var (
	ErrUnavailable = errors.New("storage client not configured")
	ErrNoContent   = errors.New("no files could be archived")
)
