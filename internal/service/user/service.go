// Package user implements identity resolution and CRUD orchestration for
// user records.
package user

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
)

// userStore defines the persistence operations needed by the user service.
type userStore interface {
	FindIDByName(ctx context.Context, name string) (uuid.UUID, bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	Insert(ctx context.Context, rec *domain.UserRecord) error
	Update(ctx context.Context, rec *domain.UserRecord) error
	Delete(ctx context.Context, rec *domain.UserRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error)
	ListAll(ctx context.Context) (map[string]uuid.UUID, error)
}

// Service implements user record operations. Records are request-scoped:
// the caller owns the *domain.UserRecord and the service fills in its id
// and fields as operations resolve them.
type Service struct {
	log   *slog.Logger
	store userStore
}

// NewService creates a new user service instance.
func NewService(logger *slog.Logger, store userStore) *Service {
	return &Service{
		log:   logger.With("service", "user"),
		store: store,
	}
}
