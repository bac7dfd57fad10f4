package user

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
)

// Table names inside the keyspace.
const (
	UsersTable  = "users_tbl"
	ByNameTable = "users_by_name"
)

// columns is the full column list of the users table, in insert order.
var columns = []string{
	"id", "name", "description", "owner", "owner_email", "notes", "is_domain", "domain",
}

// Statement is a CQL statement with its bound values.
type Statement struct {
	CQL  string
	Args []any
}

// cql builds CQL with "?" bind markers. Squirrel's Eq expands array-typed
// values (UUIDs are [16]byte) into IN lists, so equality predicates are
// written as plain "col = ?" strings.
var cql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// queries builds statements against one keyspace. The keyspace is
// validated as a CQL identifier by the config layer.
type queries struct {
	users  string
	byName string
}

func newQueries(keyspace string) queries {
	return queries{
		users:  keyspace + "." + UsersTable,
		byName: keyspace + "." + ByNameTable,
	}
}

func toStatement(b squirrel.Sqlizer) (Statement, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("build statement: %w", err)
	}
	return Statement{CQL: q, Args: args}, nil
}

func bindID(id uuid.UUID) gocql.UUID {
	return gocql.UUID(id)
}

// buildInsert assigns a random id when rec has none and writes every column.
func (q queries) buildInsert(rec *domain.UserRecord) (Statement, error) {
	if rec.Name == "" {
		return Statement{}, domain.NewValidationError("name", "required")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	return toStatement(cql.Insert(q.users).
		Columns(columns...).
		Values(bindID(rec.ID), rec.Name, rec.Description, rec.Owner, rec.OwnerEmail,
			rec.Notes, rec.IsDomain, rec.Domain).
		Suffix("IF NOT EXISTS"))
}

func (q queries) buildClaimName(rec *domain.UserRecord) (Statement, error) {
	if rec.Name == "" {
		return Statement{}, domain.NewValidationError("name", "required")
	}
	if rec.ID == uuid.Nil {
		return Statement{}, fmt.Errorf("claim name %q: %w", rec.Name, domain.ErrIdentity)
	}

	return toStatement(cql.Insert(q.byName).
		Columns("name", "id").
		Values(rec.Name, bindID(rec.ID)).
		Suffix("IF NOT EXISTS"))
}

// buildReleaseName deletes the claim only while it still points at id.
func (q queries) buildReleaseName(name string, id uuid.UUID) (Statement, error) {
	return toStatement(cql.Delete(q.byName).
		Where("name = ?", name).
		Suffix("IF id = ?", bindID(id)))
}

// buildSelectClaim reads the claim on name with the time it was written.
func (q queries) buildSelectClaim(name string) (Statement, error) {
	return toStatement(cql.Select("id", "WRITETIME(id) AS claimed_at").
		From(q.byName).
		Where("name = ?", name))
}

// buildTakeOverName repoints a claim from staleID to rec.ID.
func (q queries) buildTakeOverName(rec *domain.UserRecord, staleID uuid.UUID) (Statement, error) {
	if rec.ID == uuid.Nil {
		return Statement{}, fmt.Errorf("take over name %q: %w", rec.Name, domain.ErrIdentity)
	}
	return toStatement(cql.Update(q.byName).
		Set("id", bindID(rec.ID)).
		Where("name = ?", rec.Name).
		Suffix("IF id = ?", bindID(staleID)))
}

// buildUpdate sets only truthy fields. Name and id are never written, and
// the row must already exist.
func (q queries) buildUpdate(rec *domain.UserRecord) (Statement, error) {
	if rec.ID == uuid.Nil {
		return Statement{}, fmt.Errorf("update: %w", domain.ErrIdentity)
	}

	b := cql.Update(q.users)
	n := 0
	set := func(col string, v any) {
		b = b.Set(col, v)
		n++
	}

	if rec.Description != "" {
		set("description", rec.Description)
	}
	if rec.Owner != "" {
		set("owner", rec.Owner)
	}
	if rec.OwnerEmail != "" {
		set("owner_email", rec.OwnerEmail)
	}
	if rec.Notes != "" {
		set("notes", rec.Notes)
	}
	if rec.IsDomain {
		set("is_domain", true)
	}
	if rec.Domain != "" {
		set("domain", rec.Domain)
	}

	if n == 0 {
		return Statement{}, fmt.Errorf("update %s: %w", rec.ID, domain.ErrNoColumnsToUpdate)
	}

	return toStatement(b.Where("id = ?", bindID(rec.ID)).Suffix("IF EXISTS"))
}

func (q queries) buildDelete(rec *domain.UserRecord) (Statement, error) {
	if rec.ID == uuid.Nil {
		return Statement{}, fmt.Errorf("delete: %w", domain.ErrIdentity)
	}
	return toStatement(cql.Delete(q.users).Where("id = ?", bindID(rec.ID)))
}

func (q queries) buildSelectByID(rec *domain.UserRecord) (Statement, error) {
	if rec.ID == uuid.Nil {
		return Statement{}, fmt.Errorf("select: %w", domain.ErrIdentity)
	}
	return toStatement(cql.Select(columns...).From(q.users).Where("id = ?", bindID(rec.ID)))
}

func (q queries) buildSelectIDByName(rec *domain.UserRecord) (Statement, error) {
	if rec.Name == "" {
		return Statement{}, fmt.Errorf("select id: %w", domain.ErrIdentity)
	}
	return toStatement(cql.Select("id").From(q.users).Where("name = ?", rec.Name))
}

func (q queries) buildSelectAll() (Statement, error) {
	return toStatement(cql.Select("id", "name").From(q.users))
}

func (q queries) buildExistsByName(rec *domain.UserRecord) (Statement, error) {
	return toStatement(cql.Select("id").From(q.users).Where("name = ?", rec.Name).Limit(1))
}

func (q queries) buildExistsByID(rec *domain.UserRecord) (Statement, error) {
	return toStatement(cql.Select("id").From(q.users).Where("id = ?", bindID(rec.ID)).Limit(1))
}
