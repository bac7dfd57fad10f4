// Package usertest provides an in-memory user store for tests.
package usertest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
)

// Store keeps records in memory with the same contract as the Cassandra
// repository: names and ids are unique, updates write truthy fields of existing rows only
// and deletes are idempotent.
type Store struct {
	mu      sync.RWMutex
	records map[uuid.UUID]domain.UserRecord
	names   map[string]uuid.UUID

	// Err, when set, is returned by every operation.
	Err error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		records: make(map[uuid.UUID]domain.UserRecord),
		names:   make(map[string]uuid.UUID),
	}
}

func (s *Store) FindIDByName(_ context.Context, name string) (uuid.UUID, bool, error) {
	if s.Err != nil {
		return uuid.Nil, false, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.names[name]
	return id, ok, nil
}

func (s *Store) ExistsByName(_ context.Context, name string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.names[name]
	return ok, nil
}

func (s *Store) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[id]
	return ok, nil
}

func (s *Store) Insert(_ context.Context, rec *domain.UserRecord) error {
	if s.Err != nil {
		return s.Err
	}
	if rec.Name == "" {
		return domain.NewValidationError("name", "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if _, ok := s.names[rec.Name]; ok {
		return fmt.Errorf("name %q taken: %w", rec.Name, domain.ErrAlreadyExists)
	}
	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("id %s taken: %w", rec.ID, domain.ErrAlreadyExists)
	}

	s.records[rec.ID] = *rec
	s.names[rec.Name] = rec.ID
	return nil
}

func (s *Store) Update(_ context.Context, rec *domain.UserRecord) error {
	if s.Err != nil {
		return s.Err
	}
	if rec.ID == uuid.Nil {
		return domain.ErrIdentity
	}
	if !rec.HasUpdatableFields() {
		return domain.ErrNoColumnsToUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[rec.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", rec.ID, domain.ErrNotFound)
	}
	if rec.Description != "" {
		stored.Description = rec.Description
	}
	if rec.Owner != "" {
		stored.Owner = rec.Owner
	}
	if rec.OwnerEmail != "" {
		stored.OwnerEmail = rec.OwnerEmail
	}
	if rec.Notes != "" {
		stored.Notes = rec.Notes
	}
	if rec.IsDomain {
		stored.IsDomain = true
	}
	if rec.Domain != "" {
		stored.Domain = rec.Domain
	}
	s.records[rec.ID] = stored
	return nil
}

func (s *Store) Delete(_ context.Context, rec *domain.UserRecord) error {
	if s.Err != nil {
		return s.Err
	}
	if rec.ID == uuid.Nil {
		return domain.ErrIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.records[rec.ID]; ok {
		if s.names[stored.Name] == rec.ID {
			delete(s.names, stored.Name)
		}
		delete(s.records, rec.ID)
	}
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*domain.UserRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &rec, nil
}

func (s *Store) ListAll(_ context.Context) (map[string]uuid.UUID, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]uuid.UUID, len(s.records))
	for id, rec := range s.records {
		out[rec.Name] = id
	}
	return out, nil
}

// Snapshot returns a copy of every stored record ordered by name.
func (s *Store) Snapshot() []domain.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
