package config

import (
	"fmt"
	"regexp"
	"strings"
)

var cqlIdentifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)

var consistencyLevels = []string{
	"ANY", "ONE", "TWO", "THREE", "QUORUM", "ALL",
	"LOCAL_QUORUM", "EACH_QUORUM", "LOCAL_ONE",
}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}

	if err := c.Cassandra.validate(); err != nil {
		return fmt.Errorf("cassandra: %w", err)
	}

	if c.Log.File == "" && !c.Log.Console {
		return fmt.Errorf("log: console output disabled and no log file configured")
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be >= 0 (got %d)", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be > 0 (got %v)", c.RateLimit.CleanupInterval)
	}

	return nil
}

func (c *CassandraConfig) validate() error {
	if !cqlIdentifier.MatchString(c.Keyspace) {
		return fmt.Errorf("keyspace %q is not a valid CQL identifier", c.Keyspace)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range (got %d)", c.Port)
	}
	if !isConsistencyLevel(c.Consistency) {
		return fmt.Errorf("unknown consistency level %q", c.Consistency)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be > 0 (got %v)", c.QueryTimeout)
	}
	if c.ReplicationFactor < 1 {
		return fmt.Errorf("replication_factor must be >= 1 (got %d)", c.ReplicationFactor)
	}

	c.ContactPoints = ParseContactPoints(c.ContactPointsRaw)

	return nil
}

func isConsistencyLevel(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, l := range consistencyLevels {
		if l == s {
			return true
		}
	}
	return false
}

// ParseContactPoints splits a comma-separated host list. Blank entries are
// dropped; an empty string returns a nil slice.
func ParseContactPoints(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		hosts = append(hosts, p)
	}
	if len(hosts) == 0 {
		return nil
	}
	return hosts
}
