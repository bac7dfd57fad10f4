// Package schema creates and drops the users keyspace.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	"github.com/heartmarshall/user-registry/internal/domain"
)

// ClusterScope runs fn with a session that is not bound to a keyspace.
// *cassandra.Provider implements it.
type ClusterScope interface {
	WithClusterSession(ctx context.Context, fn func(ctx context.Context, s cassandra.Session) error) error
}

// Statements returns the DDL that creates keyspace, tables and indexes, in
// execution order. keyspace must be a valid CQL identifier.
func Statements(keyspace string, replicationFactor int) []string {
	return []string{
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`,
			keyspace, replicationFactor),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.users_tbl (
    id uuid PRIMARY KEY,
    name text,
    description text,
    owner text,
    owner_email text,
    notes text,
    is_domain boolean,
    domain text
) WITH gc_grace_seconds = 864000`, keyspace),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS ON %s.users_tbl (name)`, keyspace),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS ON %s.users_tbl (owner)`, keyspace),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS ON %s.users_tbl (owner_email)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.users_by_name (
    name text PRIMARY KEY,
    id uuid
)`, keyspace),
	}
}

// Bootstrap creates the keyspace and its tables. It is idempotent.
func Bootstrap(ctx context.Context, db ClusterScope, logger *slog.Logger, keyspace string, replicationFactor int) error {
	stmts := Statements(keyspace, replicationFactor)

	return db.WithClusterSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		for _, stmt := range stmts {
			logger.DebugContext(ctx, "running cql", slog.String("cql", stmt))
			if err := s.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("bootstrap %s: %w", keyspace, err)
			}
		}
		logger.InfoContext(ctx, "keyspace ready", slog.String("keyspace", keyspace))
		return nil
	})
}

// Drop removes the keyspace and everything in it.
func Drop(ctx context.Context, db ClusterScope, logger *slog.Logger, keyspace string) error {
	return db.WithClusterSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		if err := s.Exec(ctx, "DROP KEYSPACE IF EXISTS "+keyspace); err != nil {
			return fmt.Errorf("drop %s: %w", keyspace, err)
		}
		logger.InfoContext(ctx, "keyspace dropped", slog.String("keyspace", keyspace))
		return nil
	})
}

// recordInserter is satisfied by the user repository.
type recordInserter interface {
	Insert(ctx context.Context, rec *domain.UserRecord) error
}

// Seed inserts recs through repo. Records whose name or id is already
// stored are skipped, so seeding twice is harmless. It returns how many
// records were inserted.
func Seed(ctx context.Context, repo recordInserter, logger *slog.Logger, recs []domain.UserRecord) (int, error) {
	inserted := 0
	for i := range recs {
		rec := recs[i]
		err := repo.Insert(ctx, &rec)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.InfoContext(ctx, "seed user exists, skipping", slog.String("name", rec.Name))
		case err != nil:
			return inserted, fmt.Errorf("seed %s: %w", rec.Name, err)
		default:
			inserted++
			logger.InfoContext(ctx, "seed user inserted",
				slog.String("name", rec.Name),
				slog.String("user_id", rec.ID.String()),
			)
		}
	}
	return inserted, nil
}

// SeedUsers returns the sample accounts loaded by setup-keyspace -seed.
func SeedUsers() []domain.UserRecord {
	return []domain.UserRecord{
		{
			ID:          uuid.MustParse("f5c54eea-a9e8-4f81-898e-b965675f46b4"),
			Name:        "testUser1",
			Description: "a test account for test user 1",
			Owner:       "Tester 1",
			OwnerEmail:  "test1@my.com",
			Notes:       "no notes1",
			IsDomain:    true,
			Domain:      "wp.fsi",
		},
		{
			ID:          uuid.MustParse("f5d599bb-975f-47d4-ba50-ed965f0d44cb"),
			Name:        "testUser2",
			Description: "a test account for test user 2",
			Owner:       "Tester 2",
			OwnerEmail:  "test2@my.com",
			Notes:       "no notes2",
			IsDomain:    false,
			Domain:      "myMac",
		},
		{
			ID:          uuid.MustParse("5d204d7e-0c08-425d-ac03-cb1fe48c01f8"),
			Name:        "testUser3",
			Description: "a test account for test user 3",
			Owner:       "Tester 3",
			OwnerEmail:  "test3@my.com",
			Notes:       "no notes3",
			IsDomain:    true,
			Domain:      "wp.fsi",
		},
	}
}
