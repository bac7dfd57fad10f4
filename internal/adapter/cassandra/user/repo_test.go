package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	"github.com/heartmarshall/user-registry/internal/domain"
)

type call struct {
	kind string // exec, select, cas
	cql  string
	args []any
}

// scriptedSession answers statements through per-kind hooks and records
// every call.
type scriptedSession struct {
	calls    []call
	selectFn func(cql string, args []any) ([]map[string]any, error)
	execFn   func(cql string, args []any) error
	casFn    func(cql string, args []any) (bool, error)
}

func (s *scriptedSession) Exec(_ context.Context, cql string, args ...any) error {
	s.calls = append(s.calls, call{"exec", cql, args})
	if s.execFn != nil {
		return s.execFn(cql, args)
	}
	return nil
}

func (s *scriptedSession) Select(_ context.Context, cql string, args ...any) ([]map[string]any, error) {
	s.calls = append(s.calls, call{"select", cql, args})
	if s.selectFn != nil {
		return s.selectFn(cql, args)
	}
	return nil, nil
}

func (s *scriptedSession) ExecCAS(_ context.Context, cql string, args ...any) (bool, error) {
	s.calls = append(s.calls, call{"cas", cql, args})
	if s.casFn != nil {
		return s.casFn(cql, args)
	}
	return true, nil
}

type fakeScope struct {
	sess    *scriptedSession
	opens   int
	openErr error
}

func (f *fakeScope) Keyspace() string { return "users" }

func (f *fakeScope) WithSession(ctx context.Context, fn func(ctx context.Context, s cassandra.Session) error) error {
	f.opens++
	if f.openErr != nil {
		return f.openErr
	}
	return fn(ctx, f.sess)
}

var _ Scope = &fakeScope{}

func newTestRepo(sess *scriptedSession) (*Repo, *fakeScope) {
	scope := &fakeScope{sess: sess}
	return New(scope, slog.Default()), scope
}

func row(id uuid.UUID, name string) map[string]any {
	return map[string]any{
		"id": gocql.UUID(id), "name": name, "description": "", "owner": "Bob",
		"owner_email": "", "notes": "", "is_domain": true, "domain": "corp",
	}
}

// tables keeps users_tbl and users_by_name in memory and answers the
// statements Repo sends through a scriptedSession.
type tables struct {
	now    time.Time
	rows   map[gocql.UUID]string
	claims map[string]heldClaim

	failRelease   int   // release CAS calls left to fail
	failRowInsert error // returned by the next users_tbl insert
}

type heldClaim struct {
	id      gocql.UUID
	written time.Time
}

func newTables() *tables {
	return &tables{
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		rows:   map[gocql.UUID]string{},
		claims: map[string]heldClaim{},
	}
}

func (tb *tables) session() *scriptedSession {
	return &scriptedSession{
		selectFn: func(cql string, args []any) ([]map[string]any, error) {
			switch {
			case strings.Contains(cql, "FROM users.users_by_name"):
				c, ok := tb.claims[args[0].(string)]
				if !ok {
					return nil, nil
				}
				return []map[string]any{{"id": c.id, "claimed_at": c.written.UnixMicro()}}, nil
			case strings.Contains(cql, "FROM users.users_tbl WHERE id = ?"):
				id := args[0].(gocql.UUID)
				name, ok := tb.rows[id]
				if !ok {
					return nil, nil
				}
				return []map[string]any{row(uuid.UUID(id), name)}, nil
			}
			return nil, nil
		},
		execFn: func(cql string, args []any) error {
			if strings.HasPrefix(cql, "DELETE FROM users.users_tbl") {
				delete(tb.rows, args[0].(gocql.UUID))
			}
			return nil
		},
		casFn: func(cql string, args []any) (bool, error) {
			switch {
			case strings.HasPrefix(cql, "INSERT INTO users.users_by_name"):
				name := args[0].(string)
				if _, ok := tb.claims[name]; ok {
					return false, nil
				}
				tb.claims[name] = heldClaim{id: args[1].(gocql.UUID), written: tb.now}
				return true, nil
			case strings.HasPrefix(cql, "INSERT INTO users.users_tbl"):
				if err := tb.failRowInsert; err != nil {
					tb.failRowInsert = nil
					return false, err
				}
				id := args[0].(gocql.UUID)
				if _, ok := tb.rows[id]; ok {
					return false, nil
				}
				tb.rows[id] = args[1].(string)
				return true, nil
			case strings.HasPrefix(cql, "DELETE FROM users.users_by_name"):
				if tb.failRelease > 0 {
					tb.failRelease--
					return false, errors.New("write timeout")
				}
				name := args[0].(string)
				if c, ok := tb.claims[name]; ok && c.id == args[1].(gocql.UUID) {
					delete(tb.claims, name)
					return true, nil
				}
				return false, nil
			case strings.HasPrefix(cql, "UPDATE users.users_by_name"):
				name := args[1].(string)
				if c, ok := tb.claims[name]; ok && c.id == args[2].(gocql.UUID) {
					tb.claims[name] = heldClaim{id: args[0].(gocql.UUID), written: tb.now}
					return true, nil
				}
				return false, nil
			}
			return true, nil
		},
	}
}

func newTablesRepo(tb *tables) *Repo {
	repo, _ := newTestRepo(tb.session())
	repo.now = func() time.Time { return tb.now }
	return repo
}

func TestRepo_FindIDByName(t *testing.T) {
	t.Parallel()

	first, second := uuid.New(), uuid.New()
	sess := &scriptedSession{selectFn: func(_ string, args []any) ([]map[string]any, error) {
		if args[0] == "alice" {
			return []map[string]any{{"id": gocql.UUID(first)}, {"id": gocql.UUID(second)}}, nil
		}
		return nil, nil
	}}
	repo, _ := newTestRepo(sess)

	id, found, err := repo.FindIDByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first, id, "first row wins")

	id, found, err = repo.FindIDByName(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, uuid.Nil, id)
}

func TestRepo_Exists(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	sess := &scriptedSession{selectFn: func(cql string, args []any) ([]map[string]any, error) {
		if args[0] == "alice" || args[0] == gocql.UUID(id) {
			return []map[string]any{{"id": gocql.UUID(id)}}, nil
		}
		return nil, nil
	}}
	repo, _ := newTestRepo(sess)
	ctx := context.Background()

	ok, err := repo.ExistsByName(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByName(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ExistsByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepo_Insert_ClaimsThenWrites(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{}
	repo, scope := newTestRepo(sess)

	rec := &domain.UserRecord{Name: "alice", Owner: "Bob"}
	require.NoError(t, repo.Insert(context.Background(), rec))

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, 1, scope.opens, "insert runs in a single session scope")
	require.Len(t, sess.calls, 2)
	assert.Contains(t, sess.calls[0].cql, "users.users_by_name")
	assert.Contains(t, sess.calls[1].cql, "INSERT INTO users.users_tbl")
}

func TestRepo_Insert_NameTaken(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{casFn: func(cql string, _ []any) (bool, error) {
		return !strings.Contains(cql, "users_by_name"), nil
	}}
	repo, _ := newTestRepo(sess)

	err := repo.Insert(context.Background(), &domain.UserRecord{Name: "alice"})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	for _, c := range sess.calls {
		assert.NotContains(t, c.cql, "INSERT INTO users.users_tbl", "row must not be written when the claim is lost")
	}
}

func TestRepo_Insert_TakesOverStaleClaim(t *testing.T) {
	t.Parallel()

	tb := newTables()
	orphan := gocql.UUID(uuid.New())
	tb.claims["alice"] = heldClaim{id: orphan, written: tb.now.Add(-2 * staleClaimAge)}
	repo := newTablesRepo(tb)

	rec := &domain.UserRecord{Name: "alice"}
	require.NoError(t, repo.Insert(context.Background(), rec))

	assert.Equal(t, gocql.UUID(rec.ID), tb.claims["alice"].id)
	assert.Equal(t, "alice", tb.rows[gocql.UUID(rec.ID)])
}

func TestRepo_Insert_KeepsLiveClaims(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		age     time.Duration
		withRow bool
	}{
		{name: "claim of an insert in flight", age: time.Second},
		{name: "claim backed by a row", age: 2 * staleClaimAge, withRow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tb := newTables()
			holder := gocql.UUID(uuid.New())
			tb.claims["alice"] = heldClaim{id: holder, written: tb.now.Add(-tt.age)}
			if tt.withRow {
				tb.rows[holder] = "alice"
			}
			repo := newTablesRepo(tb)

			err := repo.Insert(context.Background(), &domain.UserRecord{Name: "alice"})
			require.ErrorIs(t, err, domain.ErrAlreadyExists)
			assert.Equal(t, holder, tb.claims["alice"].id)
		})
	}
}

func TestRepo_Insert_FailedReleaseRecoversLater(t *testing.T) {
	t.Parallel()

	tb := newTables()
	tb.failRowInsert = domain.ErrStoreProtocol
	tb.failRelease = 1
	repo := newTablesRepo(tb)
	ctx := context.Background()

	err := repo.Insert(ctx, &domain.UserRecord{Name: "alice"})
	require.ErrorIs(t, err, domain.ErrStoreProtocol)
	require.Contains(t, tb.claims, "alice", "the release failed so the claim is left behind")

	err = repo.Insert(ctx, &domain.UserRecord{Name: "alice"})
	require.ErrorIs(t, err, domain.ErrAlreadyExists, "a fresh claim is kept")

	tb.now = tb.now.Add(staleClaimAge)
	rec := &domain.UserRecord{Name: "alice"}
	require.NoError(t, repo.Insert(ctx, rec))
	assert.Equal(t, gocql.UUID(rec.ID), tb.claims["alice"].id)
}

func TestRepo_Insert_IDTakenReleasesClaim(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{casFn: func(cql string, _ []any) (bool, error) {
		return !strings.HasPrefix(cql, "INSERT INTO users.users_tbl"), nil
	}}
	repo, _ := newTestRepo(sess)

	rec := &domain.UserRecord{ID: uuid.New(), Name: "alice"}
	err := repo.Insert(context.Background(), rec)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	require.Len(t, sess.calls, 3)
	last := sess.calls[2]
	assert.True(t, strings.HasPrefix(last.cql, "DELETE FROM users.users_by_name"))
	assert.Equal(t, []any{"alice", gocql.UUID(rec.ID)}, last.args)
}

func TestRepo_Insert_StoreErrorReleasesClaim(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{casFn: func(cql string, _ []any) (bool, error) {
		if strings.HasPrefix(cql, "INSERT INTO users.users_tbl") {
			return false, domain.ErrStoreProtocol
		}
		return true, nil
	}}
	repo, _ := newTestRepo(sess)

	err := repo.Insert(context.Background(), &domain.UserRecord{Name: "alice"})
	require.ErrorIs(t, err, domain.ErrStoreProtocol)
	require.Len(t, sess.calls, 3)
	assert.True(t, strings.HasPrefix(sess.calls[2].cql, "DELETE FROM users.users_by_name"))
}

func TestRepo_Insert_ValidationBeforeStore(t *testing.T) {
	t.Parallel()

	repo, scope := newTestRepo(&scriptedSession{})

	err := repo.Insert(context.Background(), &domain.UserRecord{})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, scope.opens)
}

func TestRepo_Update(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{}
	repo, scope := newTestRepo(sess)
	id := uuid.New()

	require.NoError(t, repo.Update(context.Background(), &domain.UserRecord{ID: id, Domain: "newcorp"}))
	require.Len(t, sess.calls, 1)
	assert.Equal(t, "cas", sess.calls[0].kind)
	assert.True(t, strings.HasSuffix(sess.calls[0].cql, " IF EXISTS"))
	assert.Equal(t, []any{"newcorp", gocql.UUID(id)}, sess.calls[0].args)

	err := repo.Update(context.Background(), &domain.UserRecord{ID: id})
	require.ErrorIs(t, err, domain.ErrNoColumnsToUpdate)
	assert.Equal(t, 1, scope.opens, "nothing is sent when there are no columns")
}

func TestRepo_Update_MissingRowIsNotRecreated(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{casFn: func(string, []any) (bool, error) { return false, nil }}
	repo, _ := newTestRepo(sess)

	err := repo.Update(context.Background(), &domain.UserRecord{ID: uuid.New(), Notes: "late"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, sess.calls, 1)
}

func TestRepo_Delete_ReleasesClaim(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	sess := &scriptedSession{selectFn: func(string, []any) ([]map[string]any, error) {
		return []map[string]any{row(id, "alice")}, nil
	}}
	repo, _ := newTestRepo(sess)

	require.NoError(t, repo.Delete(context.Background(), &domain.UserRecord{ID: id}))

	require.Len(t, sess.calls, 3)
	assert.Equal(t, "cas", sess.calls[1].kind, "claim is released before the row goes")
	assert.Equal(t, "DELETE FROM users.users_by_name WHERE name = ? IF id = ?", sess.calls[1].cql)
	assert.Equal(t, []any{"alice", gocql.UUID(id)}, sess.calls[1].args)
	assert.Equal(t, "exec", sess.calls[2].kind)
	assert.Equal(t, "DELETE FROM users.users_tbl WHERE id = ?", sess.calls[2].cql)
}

func TestRepo_Delete_AbsentIsNotAnError(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{}
	repo, _ := newTestRepo(sess)

	require.NoError(t, repo.Delete(context.Background(), &domain.UserRecord{ID: uuid.New()}))
	require.Len(t, sess.calls, 2, "no claim to release")
}

func TestRepo_Delete_AbsentRowStillReleasesName(t *testing.T) {
	t.Parallel()

	sess := &scriptedSession{}
	repo, _ := newTestRepo(sess)
	id := uuid.New()

	require.NoError(t, repo.Delete(context.Background(), &domain.UserRecord{ID: id, Name: "alice"}))
	require.Len(t, sess.calls, 3)
	assert.Equal(t, "cas", sess.calls[1].kind)
	assert.Equal(t, []any{"alice", gocql.UUID(id)}, sess.calls[1].args)
}

func TestRepo_Delete_FailedReleaseCanBeRetried(t *testing.T) {
	t.Parallel()

	tb := newTables()
	repo := newTablesRepo(tb)
	ctx := context.Background()

	rec := &domain.UserRecord{Name: "alice"}
	require.NoError(t, repo.Insert(ctx, rec))

	tb.failRelease = 1
	err := repo.Delete(ctx, &domain.UserRecord{ID: rec.ID, Name: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write timeout")
	assert.Contains(t, tb.rows, gocql.UUID(rec.ID), "row stays until its claim is released")

	require.NoError(t, repo.Delete(ctx, &domain.UserRecord{ID: rec.ID, Name: "alice"}))
	assert.Empty(t, tb.rows)
	assert.Empty(t, tb.claims)

	again := &domain.UserRecord{Name: "alice"}
	require.NoError(t, repo.Insert(ctx, again), "name is free again with a new id")
	assert.NotEqual(t, rec.ID, again.ID)
}

func TestRepo_Delete_RequiresID(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(&scriptedSession{})
	require.ErrorIs(t, repo.Delete(context.Background(), &domain.UserRecord{Name: "alice"}), domain.ErrIdentity)
}

func TestRepo_GetByID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	sess := &scriptedSession{selectFn: func(_ string, args []any) ([]map[string]any, error) {
		if args[0] == gocql.UUID(id) {
			return []map[string]any{row(id, "alice")}, nil
		}
		return nil, nil
	}}
	repo, _ := newTestRepo(sess)

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRecord{ID: id, Name: "alice", Owner: "Bob", IsDomain: true, Domain: "corp"}, *got)

	_, err = repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_ListAll(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	sess := &scriptedSession{selectFn: func(string, []any) ([]map[string]any, error) {
		return []map[string]any{
			{"id": gocql.UUID(a), "name": "alice"},
			{"id": gocql.UUID(b), "name": "bob"},
		}, nil
	}}
	repo, _ := newTestRepo(sess)

	got, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]uuid.UUID{"alice": a, "bob": b}, got)
}

func TestRepo_StoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("boom")
	scope := &fakeScope{openErr: domain.ErrConnectivity}
	repo := New(scope, slog.Default())
	ctx := context.Background()

	_, err := repo.ListAll(ctx)
	require.ErrorIs(t, err, domain.ErrConnectivity)

	_, _, err = repo.FindIDByName(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrConnectivity)

	sess := &scriptedSession{selectFn: func(string, []any) ([]map[string]any, error) { return nil, storeErr }}
	repo, _ = newTestRepo(sess)
	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, storeErr)
}

func TestRowUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	assert.Equal(t, id, rowUUID(map[string]any{"id": gocql.UUID(id)}, "id"))
	assert.Equal(t, id, rowUUID(map[string]any{"id": id}, "id"))
	assert.Equal(t, uuid.Nil, rowUUID(map[string]any{}, "id"))
	assert.Equal(t, int64(42), rowInt64(map[string]any{"claimed_at": int64(42)}, "claimed_at"))
	assert.Zero(t, rowInt64(map[string]any{}, "claimed_at"))
}
