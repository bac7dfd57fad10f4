// Package cassandra provides scoped access to the Cassandra cluster.
package cassandra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/user-registry/internal/config"
	"github.com/heartmarshall/user-registry/internal/domain"
)

// Provider opens a cluster session for the duration of one call and tears
// it down afterwards.
type Provider struct {
	cfg   config.CassandraConfig
	hosts []string
	log   *slog.Logger
	open  opener
}

// NewProvider creates a Provider. Explicit contact points take precedence
// over the ones from configuration; if neither is set it fails with
// domain.ErrConfiguration.
func NewProvider(cfg config.CassandraConfig, logger *slog.Logger, contactPoints ...string) (*Provider, error) {
	return newProvider(cfg, logger, openGocql, contactPoints...)
}

func newProvider(cfg config.CassandraConfig, logger *slog.Logger, open opener, contactPoints ...string) (*Provider, error) {
	hosts := compact(contactPoints)
	if len(hosts) == 0 {
		hosts = cfg.ContactPoints
	}
	if len(hosts) == 0 {
		hosts = config.ParseContactPoints(cfg.ContactPointsRaw)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("cassandra: no contact points (set CASSANDRA_CONTACT_POINTS): %w", domain.ErrConfiguration)
	}

	return &Provider{
		cfg:   cfg,
		hosts: hosts,
		log:   logger.With("component", "cassandra"),
		open:  open,
	}, nil
}

// Keyspace returns the keyspace sessions are bound to.
func (p *Provider) Keyspace() string {
	return p.cfg.Keyspace
}

// Hosts returns the resolved contact points.
func (p *Provider) Hosts() []string {
	return p.hosts
}

// WithSession opens a session bound to the configured keyspace, runs fn
// under the query timeout and closes the session on every exit path,
// including a panic in fn.
func (p *Provider) WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	return p.withSession(ctx, p.cfg.Keyspace, fn)
}

// WithClusterSession is WithSession without a keyspace, for statements that
// must run before the keyspace exists.
func (p *Provider) WithClusterSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	return p.withSession(ctx, "", fn)
}

func (p *Provider) withSession(ctx context.Context, keyspace string, fn func(ctx context.Context, s Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s, err := p.open(p.cfg, p.hosts, keyspace)
	if err != nil {
		p.log.ErrorContext(ctx, "open session failed",
			slog.Any("hosts", p.hosts),
			slog.String("keyspace", keyspace),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("cassandra: %w", err)
	}
	defer func() {
		s.Close()
		p.log.DebugContext(ctx, "session closed", slog.String("keyspace", keyspace))
	}()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	return fn(ctx, s)
}

// Ping reads the local node's release version to verify the cluster is
// reachable.
func (p *Provider) Ping(ctx context.Context) error {
	return p.WithClusterSession(ctx, func(ctx context.Context, s Session) error {
		_, err := s.Select(ctx, "SELECT release_version FROM system.local")
		return err
	})
}

func compact(hosts []string) []string {
	var out []string
	for _, h := range hosts {
		out = append(out, config.ParseContactPoints(h)...)
	}
	return out
}
