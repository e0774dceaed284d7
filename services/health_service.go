package services

import (
	"context"
	"runtime"
	"time"

	"atelier_server/database"

	"github.com/MonkyMars/gecho"
)

var processStart = time.Now()

// ServerStatus is the liveness snapshot returned by /health/server.
type ServerStatus struct {
	Uptime       float64         `json:"uptime"`
	CurrentTime  time.Time       `json:"current_time"`
	ServiceAlive bool            `json:"service_alive"`
	Memory       *MemorySnapshot `json:"ram_stats"`
}

// MemorySnapshot summarizes Go heap usage in whole megabytes.
type MemorySnapshot struct {
	TotalMB     uint64 `json:"total_mb"`
	UsedMB      uint64 `json:"used_mb"`
	FreeMB      uint64 `json:"free_mb"`
	UsedPercent uint64 `json:"used_percent"`
}

// DatabaseStatus reports connectivity and round-trip time to Postgres.
type DatabaseStatus struct {
	Connected      bool      `json:"connected"`
	LastChecked    time.Time `json:"last_checked"`
	ResponseTimeMs int64     `json:"response_time_ms"`
}

// CacheStatus reports connectivity and pool counters for Redis.
type CacheStatus struct {
	Connected   bool           `json:"connected"`
	LastChecked time.Time      `json:"last_checked"`
	Pool        map[string]any `json:"pool"`
}

// HealthService backs the /health endpoints with live probes of the process,
// the database and the cache.
type HealthService struct {
	logger *gecho.Logger
	db     *database.DB
	cache  *CacheService
}

func NewHealthService(logger *gecho.Logger, db *database.DB, cache *CacheService) *HealthService {
	return &HealthService{
		logger: logger,
		db:     db,
		cache:  cache,
	}
}

// GetServerHealthStatus snapshots uptime and memory use. The process
// answering at all is the liveness signal.
func (hs *HealthService) GetServerHealthStatus() ServerStatus {
	return ServerStatus{
		Uptime:       time.Since(processStart).Seconds(),
		CurrentTime:  time.Now(),
		ServiceAlive: true,
		Memory:       snapshotMemory(),
	}
}

// GetDatabaseHealthStatus pings Postgres and measures the round trip.
func (hs *HealthService) GetDatabaseHealthStatus() (DatabaseStatus, error) {
	start := time.Now()
	err := hs.db.PingContext(context.Background())
	if err != nil {
		hs.logger.Error("Database health check failed", gecho.Field("error", err))
	}

	return DatabaseStatus{
		Connected:      err == nil,
		LastChecked:    time.Now(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}, err
}

// GetCacheHealthStatus pings Redis and attaches connection pool counters.
func (hs *HealthService) GetCacheHealthStatus() (CacheStatus, error) {
	err := hs.cache.Ping()
	if err != nil {
		hs.logger.Error("Cache health check failed", gecho.Field("error", err))
	}

	return CacheStatus{
		Connected:   err == nil,
		LastChecked: time.Now(),
		Pool:        hs.cache.GetConnectionStats(),
	}, err
}

func snapshotMemory() *MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	totalMB := m.Sys / 1024 / 1024
	usedMB := m.Alloc / 1024 / 1024

	var usedPercent uint64
	if totalMB > 0 {
		usedPercent = usedMB * 100 / totalMB
	}

	return &MemorySnapshot{
		TotalMB:     totalMB,
		UsedMB:      usedMB,
		FreeMB:      totalMB - usedMB,
		UsedPercent: usedPercent,
	}
}
