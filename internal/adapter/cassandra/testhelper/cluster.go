// Package testhelper starts a shared Cassandra container for integration tests.
package testhelper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	"github.com/heartmarshall/user-registry/internal/adapter/cassandra/schema"
	"github.com/heartmarshall/user-registry/internal/config"
)

// Keyspace is the keyspace created in the shared container.
const Keyspace = "users_it"

var (
	once    sync.Once
	shared  config.CassandraConfig
	initErr error
)

// SetupCassandra starts a shared Cassandra container (once for the entire
// test run), bootstraps the schema and returns a provider connected to it.
// The container lives until the process exits.
func SetupCassandra(t *testing.T) *cassandra.Provider {
	t.Helper()

	once.Do(func() {
		shared, initErr = startContainerAndBootstrap()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup cassandra: %v", initErr)
	}

	p, err := cassandra.NewProvider(shared, slog.Default())
	if err != nil {
		t.Fatalf("testhelper: new provider: %v", err)
	}
	return p
}

func startContainerAndBootstrap() (config.CassandraConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "cassandra:4.1",
		ExposedPorts: []string{"9042/tcp"},
		Env: map[string]string{
			"MAX_HEAP_SIZE":             "512M",
			"HEAP_NEWSIZE":              "128M",
			"CASSANDRA_CLUSTER_NAME":    "it",
			"CASSANDRA_NUM_TOKENS":      "1",
			"CASSANDRA_ENDPOINT_SNITCH": "SimpleSnitch",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9042/tcp"),
			wait.ForLog("Starting listening for CQL clients"),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return config.CassandraConfig{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return config.CassandraConfig{}, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "9042")
	if err != nil {
		return config.CassandraConfig{}, fmt.Errorf("get mapped port: %w", err)
	}

	cfg := config.CassandraConfig{
		ContactPoints:     []string{host},
		Port:              port.Int(),
		Keyspace:          Keyspace,
		Consistency:       "ONE",
		ConnectTimeout:    10 * time.Second,
		RequestTimeout:    20 * time.Second,
		QueryTimeout:      30 * time.Second,
		ReplicationFactor: 1,
	}

	p, err := cassandra.NewProvider(cfg, slog.Default())
	if err != nil {
		return config.CassandraConfig{}, err
	}
	if err := schema.Bootstrap(ctx, p, slog.Default(), cfg.Keyspace, cfg.ReplicationFactor); err != nil {
		return config.CassandraConfig{}, fmt.Errorf("bootstrap: %w", err)
	}

	return cfg, nil
}
