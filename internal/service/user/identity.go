package user

import (
	"context"
	"fmt"

	"github.com/heartmarshall/user-registry/internal/domain"
)

// ResolveID makes sure rec carries an id. A resolved record is left alone;
// a name-only record is looked up by name; anything else fails with
// domain.ErrIdentity. On a failed lookup the id stays unset.
func (s *Service) ResolveID(ctx context.Context, rec *domain.UserRecord) error {
	switch rec.Identity() {
	case domain.IdentityResolved:
		return nil
	case domain.IdentityUnresolved:
		return fmt.Errorf("user.ResolveID: neither id nor name set: %w", domain.ErrIdentity)
	}

	id, found, err := s.store.FindIDByName(ctx, rec.Name)
	if err != nil {
		return fmt.Errorf("user.ResolveID: %w", err)
	}
	if !found {
		return fmt.Errorf("user.ResolveID: user %s does not exist: %w", rec.Name, domain.ErrIdentity)
	}

	rec.ID = id
	return nil
}
