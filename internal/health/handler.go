package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/eleven-am/peergrade/internal/gateway"
	"github.com/eleven-am/peergrade/internal/session"
	"github.com/labstack/echo/v4"
)

type Status string

const (
	StatusHealthy Status = "healthy"
)

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	MemorySysMB   uint64 `json:"memory_sys_mb"`
	NumGC         uint32 `json:"num_gc"`
}

type SessionStats struct {
	SessionID        string `json:"session_id,omitempty"`
	ConnectedClients int    `json:"connected_clients"`
	LiveConnections  int    `json:"live_connections"`
	Votes            int    `json:"votes"`
	VotingOpen       bool   `json:"voting_open"`
}

type Stats struct {
	Session SessionStats `json:"session"`
	Runtime RuntimeStats `json:"runtime"`
}

type HealthResponse struct {
	Status        Status    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Stats         Stats     `json:"stats"`
}

type Handler struct {
	store     *session.Store
	hub       *gateway.Hub
	version   string
	startTime time.Time
}

func NewHandler(store *session.Store, hub *gateway.Hub, version string) *Handler {
	return &Handler{
		store:     store,
		hub:       hub,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *Handler) Readiness(c echo.Context) error {
	snap := h.store.Snapshot()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return c.JSON(http.StatusOK, HealthResponse{
		Status:        StatusHealthy,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Session: SessionStats{
				SessionID:        snap.SessionID,
				ConnectedClients: snap.ConnectedClients,
				LiveConnections:  h.hub.ConnectionCount(),
				Votes:            len(snap.Votes),
				VotingOpen:       snap.VotingOpen,
			},
			Runtime: RuntimeStats{
				Goroutines:    runtime.NumGoroutine(),
				MemoryAllocMB: memStats.Alloc / 1024 / 1024,
				MemorySysMB:   memStats.Sys / 1024 / 1024,
				NumGC:         memStats.NumGC,
			},
		},
	})
}
