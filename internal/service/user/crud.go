package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
	"github.com/heartmarshall/user-registry/pkg/ctxutil"
)

// Create validates rec, checks that neither its name nor its id is taken
// and inserts it. On success rec.ID holds the stored id.
func (s *Service) Create(ctx context.Context, rec *domain.UserRecord) error {
	if err := rec.ValidateForCreate(); err != nil {
		return err
	}

	exists, err := s.store.ExistsByName(ctx, rec.Name)
	if err != nil {
		return fmt.Errorf("user.Create: %w", err)
	}
	if exists {
		return fmt.Errorf("user.Create: name %s: %w", rec.Name, domain.ErrAlreadyExists)
	}

	if rec.ID != uuid.Nil {
		exists, err = s.store.ExistsByID(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("user.Create: %w", err)
		}
		if exists {
			return fmt.Errorf("user.Create: id %s: %w", rec.ID, domain.ErrAlreadyExists)
		}
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return fmt.Errorf("user.Create: %w", err)
	}
	if err := s.ResolveID(ctx, rec); err != nil {
		return fmt.Errorf("user.Create: %w", err)
	}

	ctxutil.Logger(ctx, s.log).InfoContext(ctx, "user created",
		slog.String("name", rec.Name),
		slog.String("user_id", rec.ID.String()),
	)

	return nil
}

// Update writes the truthy fields of rec. With nothing to write it fails
// with domain.ErrNoColumnsToUpdate and the store is not touched. A record
// deleted after it was resolved fails with domain.ErrNotFound.
func (s *Service) Update(ctx context.Context, rec *domain.UserRecord) error {
	if err := s.ResolveID(ctx, rec); err != nil {
		return fmt.Errorf("user.Update: %w", err)
	}

	if err := s.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("user.Update: %w", err)
	}

	ctxutil.Logger(ctx, s.log).InfoContext(ctx, "user updated",
		slog.String("name", rec.Name),
		slog.String("user_id", rec.ID.String()),
	)

	return nil
}

// Delete removes the record. Deleting an id that is not stored succeeds.
func (s *Service) Delete(ctx context.Context, rec *domain.UserRecord) error {
	if err := s.ResolveID(ctx, rec); err != nil {
		return fmt.Errorf("user.Delete: %w", err)
	}

	if err := s.store.Delete(ctx, rec); err != nil {
		return fmt.Errorf("user.Delete: %w", err)
	}

	ctxutil.Logger(ctx, s.log).InfoContext(ctx, "user deleted",
		slog.String("name", rec.Name),
		slog.String("user_id", rec.ID.String()),
	)

	return nil
}

// FetchDetails loads the stored fields into rec. It reports found=false and
// leaves rec unchanged when no row has the resolved id.
func (s *Service) FetchDetails(ctx context.Context, rec *domain.UserRecord) (bool, error) {
	if err := s.ResolveID(ctx, rec); err != nil {
		return false, fmt.Errorf("user.FetchDetails: %w", err)
	}

	stored, err := s.store.GetByID(ctx, rec.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("user.FetchDetails: %w", err)
	}

	rec.CopyDetails(*stored)
	return true, nil
}

// ListAll returns name -> id for every stored record. There is no paging.
func (s *Service) ListAll(ctx context.Context) (map[string]uuid.UUID, error) {
	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("user.ListAll: %w", err)
	}
	return users, nil
}
