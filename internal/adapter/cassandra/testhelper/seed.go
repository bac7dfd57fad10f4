package testhelper

import (
	"context"
	"testing"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	"github.com/heartmarshall/user-registry/internal/domain"
)

// UniqueName returns prefix plus a short random suffix, safe as a user name.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// SeedUser writes a record and its name claim directly, bypassing the
// repository. Returns the stored record.
func SeedUser(t *testing.T, p *cassandra.Provider, name string) domain.UserRecord {
	t.Helper()

	rec := domain.UserRecord{
		ID:          uuid.New(),
		Name:        name,
		Description: "seeded by testhelper",
		Owner:       "Tester",
		OwnerEmail:  name + "@example.com",
		IsDomain:    true,
		Domain:      "corp",
	}

	err := p.WithSession(context.Background(), func(ctx context.Context, s cassandra.Session) error {
		if err := s.Exec(ctx,
			`INSERT INTO users_tbl (id, name, description, owner, owner_email, notes, is_domain, domain)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			gocql.UUID(rec.ID), rec.Name, rec.Description, rec.Owner, rec.OwnerEmail, rec.Notes, rec.IsDomain, rec.Domain,
		); err != nil {
			return err
		}
		_, err := s.ExecCAS(ctx, `INSERT INTO users_by_name (name, id) VALUES (?, ?) IF NOT EXISTS`, rec.Name, gocql.UUID(rec.ID))
		return err
	})
	if err != nil {
		t.Fatalf("testhelper: SeedUser %s: %v", name, err)
	}

	return rec
}
