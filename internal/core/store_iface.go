package core

import (
	"context"
	"errors"

	"github.com/dkeye/Support/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/dkeye/Support/internal/core RoomStore,EntityStore

// ErrNotFound is returned by stores when the requested record is absent.
var ErrNotFound = errors.New("not found")

// RoomStore persists rooms with their participants and transcript.
// Returned rooms are owned by the caller.
type RoomStore interface {
	LoadRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	SaveRoom(ctx context.Context, room *domain.Room) error
}

// EntityStore persists support queries and tickets.
type EntityStore interface {
	LoadEntity(ctx context.Context, id string, typ domain.EntityType) (*domain.Entity, error)
	SaveEntity(ctx context.Context, e *domain.Entity) error
}

type Store interface {
	RoomStore
	EntityStore
}

// CredentialVerifier checks a bearer credential's signature and expiry.
type CredentialVerifier interface {
	Verify(token string) (domain.Claims, error)
}
