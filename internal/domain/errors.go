package domain

import "errors"

// Client errors are reported back to the originating connection verbatim.
var (
	ErrRoomIDRequired    = errors.New("Room ID is required")
	ErrMessageRequired   = errors.New("Room ID and message are required")
	ErrRoomNotFound      = errors.New("Room not found")
	ErrEntityIDRequired  = errors.New("Entity ID is required")
	ErrEntityTypeInvalid = errors.New("Entity type must be query or ticket")
	ErrStatusRequired    = errors.New("Status is required")
	ErrEntityNotFound    = errors.New("Entity not found")
	ErrForbidden         = errors.New("Admin privileges required")
	ErrRateLimited       = errors.New("Too many messages, slow down")
)

var clientErrors = []error{
	ErrRoomIDRequired,
	ErrMessageRequired,
	ErrRoomNotFound,
	ErrEntityIDRequired,
	ErrEntityTypeInvalid,
	ErrStatusRequired,
	ErrEntityNotFound,
	ErrForbidden,
	ErrRateLimited,
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the gateway or its storage.
func IsClientError(err error) bool {
	for _, ce := range clientErrors {
		if errors.Is(err, ce) {
			return true
		}
	}
	return false
}
