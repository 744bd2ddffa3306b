package event

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrCodeNotFound       = errors.New("gallery code not found")
	ErrStorageUnavailable = errors.New("storage client not configured")
	ErrCodeSpaceExhausted = errors.New("code generation attempts exhausted")
	ErrInvalidInput       = errors.New("invalid input")
)
