package cassandra

import (
	"context"
	"fmt"
	"strings"

	"github.com/gocql/gocql"

	"github.com/heartmarshall/user-registry/internal/config"
	"github.com/heartmarshall/user-registry/internal/domain"
)

// Session is the subset of a cluster session the repositories use.
// Every method returns errors already mapped to domain errors.
type Session interface {
	Exec(ctx context.Context, stmt string, args ...any) error
	Select(ctx context.Context, stmt string, args ...any) ([]map[string]any, error)
	// ExecCAS runs a lightweight transaction and reports whether it applied.
	ExecCAS(ctx context.Context, stmt string, args ...any) (bool, error)
}

// session is a Session that must be closed when the scope ends.
type session interface {
	Session
	Close()
}

// opener creates a session for the given hosts. keyspace may be empty.
type opener func(cfg config.CassandraConfig, hosts []string, keyspace string) (session, error)

// gocqlSession adapts *gocql.Session to Session.
type gocqlSession struct {
	s *gocql.Session
}

func openGocql(cfg config.CassandraConfig, hosts []string, keyspace string) (session, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = keyspace
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.Timeout = cfg.RequestTimeout

	consistency, err := gocql.ParseConsistencyWrapper(strings.ToUpper(strings.TrimSpace(cfg.Consistency)))
	if err != nil {
		return nil, fmt.Errorf("consistency %q: %w", cfg.Consistency, domain.ErrConfiguration)
	}
	cluster.Consistency = consistency

	s, err := cluster.CreateSession()
	if err != nil {
		return nil, mapError(err, "open session")
	}
	return &gocqlSession{s: s}, nil
}

func (g *gocqlSession) Exec(ctx context.Context, stmt string, args ...any) error {
	if err := g.s.Query(stmt, args...).WithContext(ctx).Exec(); err != nil {
		return mapError(err, "exec")
	}
	return nil
}

func (g *gocqlSession) Select(ctx context.Context, stmt string, args ...any) ([]map[string]any, error) {
	iter := g.s.Query(stmt, args...).WithContext(ctx).Iter()

	rows, err := iter.SliceMap()
	if closeErr := iter.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, mapError(err, "select")
	}
	return rows, nil
}

func (g *gocqlSession) ExecCAS(ctx context.Context, stmt string, args ...any) (bool, error) {
	applied, err := g.s.Query(stmt, args...).WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return false, mapError(err, "lightweight transaction")
	}
	return applied, nil
}

func (g *gocqlSession) Close() {
	g.s.Close()
}
