package storage

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEntryNotFound   = errors.New("history entry not found")
	ErrRequestInFlight = errors.New("another request is in flight for this session")
)
