// Command setup-keyspace creates the users keyspace, its tables and
// indexes. It is safe to run repeatedly.
//
// Flags:
//
//	--config  path to the YAML config file (default: $CONFIG_PATH)
//	--hosts   comma-separated contact points, overriding configuration
//	--drop    drop the keyspace before creating it
//	--seed    insert the sample users after creating the schema
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	"github.com/heartmarshall/user-registry/internal/adapter/cassandra/schema"
	"github.com/heartmarshall/user-registry/internal/adapter/cassandra/user"
	"github.com/heartmarshall/user-registry/internal/app"
	"github.com/heartmarshall/user-registry/internal/config"
)

func main() {
	configFlag := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	hostsFlag := flag.String("hosts", "", "comma-separated contact points (overrides config)")
	dropFlag := flag.Bool("drop", false, "drop the keyspace first")
	seedFlag := flag.Bool("seed", false, "insert the sample users")
	flag.Parse()

	cfg, err := config.LoadFile(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := cassandra.NewProvider(cfg.Cassandra, logger, config.ParseContactPoints(*hostsFlag)...)
	if err != nil {
		logger.Error("create cassandra provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	keyspace := provider.Keyspace()

	if *dropFlag {
		if err := schema.Drop(ctx, provider, logger, keyspace); err != nil {
			logger.Error("drop keyspace", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := schema.Bootstrap(ctx, provider, logger, keyspace, cfg.Cassandra.ReplicationFactor); err != nil {
		logger.Error("bootstrap keyspace", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *seedFlag {
		n, err := schema.Seed(ctx, user.New(provider, logger), logger, schema.SeedUsers())
		if err != nil {
			logger.Error("seed users", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("seed completed", slog.Int("inserted", n))
	}

	logger.Info("setup completed",
		slog.String("keyspace", keyspace),
		slog.Any("hosts", provider.Hosts()),
	)
}
