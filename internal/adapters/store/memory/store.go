// Package memory is an in-process core.Store for development and tests.
// Rooms and entities are copied on the way in and out.
package memory

import (
	"context"
	"sync"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
)

type entityKey struct {
	typ domain.EntityType
	id  string
}

type Store struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]*domain.Room
	entities map[entityKey]*domain.Entity
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		rooms:    make(map[domain.RoomID]*domain.Room),
		entities: make(map[entityKey]*domain.Entity),
	}
}

func (s *Store) LoadRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) SaveRoom(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *Store) LoadEntity(_ context.Context, id string, typ domain.EntityType) (*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityKey{typ, id}]
	if !ok {
		return nil, core.ErrNotFound
	}
	return e.Clone(), nil
}

func (s *Store) SaveEntity(_ context.Context, e *domain.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entityKey{e.Type, e.ID}] = e.Clone()
	return nil
}
