package rest

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

// cluster is satisfied by the Cassandra provider.
type cluster interface {
	Ping(ctx context.Context) error
	Hosts() []string
	Keyspace() string
}

// HealthHandler serves the liveness, readiness and health endpoints.
type HealthHandler struct {
	cluster cluster
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(c cluster, version string) *HealthHandler {
	return &HealthHandler{cluster: c, version: version}
}

// HealthResponse is the JSON response for /live, /ready and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component. For Cassandra it
// names the contact points and keyspace the service was configured with.
type CompStatus struct {
	Status   string   `json:"status"`
	Latency  string   `json:"latency,omitempty"`
	Error    string   `json:"error,omitempty"`
	Hosts    []string `json:"hosts,omitempty"`
	Keyspace string   `json:"keyspace,omitempty"`
}

// Live always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready pings Cassandra: 200 if it answers, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	comp := h.checkCassandra(r.Context())
	writeJSON(w, statusCode(comp.Status), HealthResponse{
		Status:    comp.Status,
		Timestamp: time.Now(),
	})
}

// Health reports the build version and the Cassandra component: round
// trip latency or the ping error, plus contact points and keyspace.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	comp := h.checkCassandra(r.Context())
	writeJSON(w, statusCode(comp.Status), HealthResponse{
		Status:     comp.Status,
		Version:    h.version,
		Components: map[string]CompStatus{"cassandra": comp},
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) checkCassandra(ctx context.Context) CompStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	comp := CompStatus{
		Status:   "ok",
		Hosts:    h.cluster.Hosts(),
		Keyspace: h.cluster.Keyspace(),
	}

	start := time.Now()
	if err := h.cluster.Ping(ctx); err != nil {
		comp.Status = "down"
		comp.Error = err.Error()
		return comp
	}
	comp.Latency = time.Since(start).String()
	return comp
}

func statusCode(status string) int {
	if status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
