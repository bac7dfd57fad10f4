// Package user implements the user record store on Cassandra.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	"github.com/heartmarshall/user-registry/internal/domain"
)

// Scope runs fn with a live session bound to Keyspace.
// *cassandra.Provider implements it.
type Scope interface {
	WithSession(ctx context.Context, fn func(ctx context.Context, s cassandra.Session) error) error
	Keyspace() string
}

// staleClaimAge is how old a name claim without a users row must be before
// an insert may take it over. Younger claims may belong to an insert still
// in flight.
const staleClaimAge = time.Minute

// Repo provides user record persistence backed by Cassandra.
type Repo struct {
	db  Scope
	q   queries
	log *slog.Logger
	now func() time.Time
}

// New creates a new user repository.
func New(db Scope, logger *slog.Logger) *Repo {
	return &Repo{
		db:  db,
		q:   newQueries(db.Keyspace()),
		log: logger.With("repo", "user"),
		now: time.Now,
	}
}

// FindIDByName returns the id of the first row with the given name.
func (r *Repo) FindIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	st, err := r.q.buildSelectIDByName(&domain.UserRecord{Name: name})
	if err != nil {
		return uuid.Nil, false, err
	}

	var rows []map[string]any
	err = r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		rows, err = s.Select(ctx, st.CQL, st.Args...)
		return err
	})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("user %q: find id: %w", name, err)
	}
	if len(rows) == 0 {
		return uuid.Nil, false, nil
	}
	return rowUUID(rows[0], "id"), true, nil
}

// ExistsByName reports whether any row carries the name.
func (r *Repo) ExistsByName(ctx context.Context, name string) (bool, error) {
	st, err := r.q.buildExistsByName(&domain.UserRecord{Name: name})
	if err != nil {
		return false, err
	}
	return r.exists(ctx, st, "user "+name)
}

// ExistsByID reports whether a row with the id exists.
func (r *Repo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	st, err := r.q.buildExistsByID(&domain.UserRecord{ID: id})
	if err != nil {
		return false, err
	}
	return r.exists(ctx, st, "user "+id.String())
}

func (r *Repo) exists(ctx context.Context, st Statement, what string) (bool, error) {
	var rows []map[string]any
	err := r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		var err error
		rows, err = s.Select(ctx, st.CQL, st.Args...)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%s: exists: %w", what, err)
	}
	return len(rows) > 0, nil
}

// Insert writes a new record. A random id is assigned when rec has none.
// The name is claimed in the users_by_name table first; a lost claim or an
// existing id fails with domain.ErrAlreadyExists. A stale claim whose id
// has no row is taken over.
func (r *Repo) Insert(ctx context.Context, rec *domain.UserRecord) error {
	insert, err := r.q.buildInsert(rec)
	if err != nil {
		return err
	}
	claim, err := r.q.buildClaimName(rec)
	if err != nil {
		return err
	}
	release, err := r.q.buildReleaseName(rec.Name, rec.ID)
	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		claimed, err := s.ExecCAS(ctx, claim.CQL, claim.Args...)
		if err != nil {
			return fmt.Errorf("claim name: %w", err)
		}
		if !claimed {
			claimed, err = r.takeOverStaleClaim(ctx, s, rec)
			if err != nil {
				return fmt.Errorf("claim name: %w", err)
			}
		}
		if !claimed {
			return fmt.Errorf("name %q taken: %w", rec.Name, domain.ErrAlreadyExists)
		}

		applied, err := s.ExecCAS(ctx, insert.CQL, insert.Args...)
		if err == nil && !applied {
			err = fmt.Errorf("id %s taken: %w", rec.ID, domain.ErrAlreadyExists)
		}
		if err != nil {
			if _, relErr := s.ExecCAS(ctx, release.CQL, release.Args...); relErr != nil {
				r.log.WarnContext(ctx, "release name claim failed",
					slog.String("name", rec.Name),
					slog.String("error", relErr.Error()),
				)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("user %s: insert: %w", rec, err)
	}
	return nil
}

// takeOverStaleClaim repoints the claim on rec.Name to rec.ID when the
// claiming id has no users row and the claim is older than staleClaimAge.
func (r *Repo) takeOverStaleClaim(ctx context.Context, s cassandra.Session, rec *domain.UserRecord) (bool, error) {
	sel, err := r.q.buildSelectClaim(rec.Name)
	if err != nil {
		return false, err
	}
	rows, err := s.Select(ctx, sel.CQL, sel.Args...)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}

	holder := rowUUID(rows[0], "id")
	claimedAt := time.UnixMicro(rowInt64(rows[0], "claimed_at"))
	if r.now().Sub(claimedAt) < staleClaimAge {
		return false, nil
	}

	exists, err := r.q.buildExistsByID(&domain.UserRecord{ID: holder})
	if err != nil {
		return false, err
	}
	rows, err = s.Select(ctx, exists.CQL, exists.Args...)
	if err != nil {
		return false, err
	}
	if len(rows) > 0 {
		return false, nil
	}

	take, err := r.q.buildTakeOverName(rec, holder)
	if err != nil {
		return false, err
	}
	applied, err := s.ExecCAS(ctx, take.CQL, take.Args...)
	if err != nil {
		return false, err
	}
	if applied {
		r.log.InfoContext(ctx, "took over stale name claim",
			slog.String("name", rec.Name),
			slog.String("stale_id", holder.String()),
		)
	}
	return applied, nil
}

// Update writes the truthy fields of rec to the row keyed by rec.ID.
// A missing row fails with domain.ErrNotFound and is not recreated.
func (r *Repo) Update(ctx context.Context, rec *domain.UserRecord) error {
	st, err := r.q.buildUpdate(rec)
	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		applied, err := s.ExecCAS(ctx, st.CQL, st.Args...)
		if err == nil && !applied {
			err = domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("user %s: update: %w", rec.ID, err)
	}
	return nil
}

// Delete releases the name claim of the row keyed by rec.ID, then removes
// the row. The claim goes first so a failed delete leaves the row in place
// for a retry. When the row is already gone rec.Name is released instead.
// Deleting an absent id is not an error.
func (r *Repo) Delete(ctx context.Context, rec *domain.UserRecord) error {
	del, err := r.q.buildDelete(rec)
	if err != nil {
		return err
	}
	sel, err := r.q.buildSelectByID(rec)
	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		rows, err := s.Select(ctx, sel.CQL, sel.Args...)
		if err != nil {
			return err
		}

		name := rec.Name
		if len(rows) > 0 {
			name = rowString(rows[0], "name")
		}
		if name != "" {
			release, err := r.q.buildReleaseName(name, rec.ID)
			if err != nil {
				return err
			}
			if _, err := s.ExecCAS(ctx, release.CQL, release.Args...); err != nil {
				return fmt.Errorf("release name: %w", err)
			}
		}

		return s.Exec(ctx, del.CQL, del.Args...)
	})
	if err != nil {
		return fmt.Errorf("user %s: delete: %w", rec.ID, err)
	}
	return nil
}

// GetByID returns the record with the given id or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error) {
	st, err := r.q.buildSelectByID(&domain.UserRecord{ID: id})
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		rows, err = s.Select(ctx, st.CQL, st.Args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("user %s: get: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	rec := toRecord(rows[0])
	return &rec, nil
}

// ListAll returns name -> id for every row.
func (r *Repo) ListAll(ctx context.Context) (map[string]uuid.UUID, error) {
	st, err := r.q.buildSelectAll()
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = r.db.WithSession(ctx, func(ctx context.Context, s cassandra.Session) error {
		rows, err = s.Select(ctx, st.CQL, st.Args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		users[rowString(row, "name")] = rowUUID(row, "id")
	}
	return users, nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func toRecord(row map[string]any) domain.UserRecord {
	isDomain, _ := row["is_domain"].(bool)
	return domain.UserRecord{
		ID:          rowUUID(row, "id"),
		Name:        rowString(row, "name"),
		Description: rowString(row, "description"),
		Owner:       rowString(row, "owner"),
		OwnerEmail:  rowString(row, "owner_email"),
		Notes:       rowString(row, "notes"),
		IsDomain:    isDomain,
		Domain:      rowString(row, "domain"),
	}
}

func rowString(row map[string]any, col string) string {
	s, _ := row[col].(string)
	return s
}

// rowInt64 reads a bigint column such as a WRITETIME selector.
func rowInt64(row map[string]any, col string) int64 {
	n, _ := row[col].(int64)
	return n
}

func rowUUID(row map[string]any, col string) uuid.UUID {
	switch v := row[col].(type) {
	case gocql.UUID:
		return uuid.UUID(v)
	case uuid.UUID:
		return v
	default:
		return uuid.Nil
	}
}
