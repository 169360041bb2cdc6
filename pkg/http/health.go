package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"voicewell-server/pkg/version"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
	System    SystemInfo             `json:"system"`
}

// CheckResult represents an individual health check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemInfo contains system resource information
type SystemInfo struct {
	GoRoutines int    `json:"goroutines"`
	MemoryMB   uint64 `json:"memory_mb"`
	CPUCount   int    `json:"cpu_count"`
}

// HealthHandler handles health check requests
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks:    make(map[string]CheckResult),
	}

	// Check database connectivity
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(ctx); err != nil {
			health.Checks["database"] = CheckResult{Status: "unhealthy", Message: err.Error()}
			health.Status = "unhealthy"
		} else {
			health.Checks["database"] = CheckResult{Status: "healthy", Message: "Database reachable"}
		}
	} else {
		health.Checks["database"] = CheckResult{Status: "unhealthy", Message: "Store not initialized"}
		health.Status = "unhealthy"
	}

	// Check messaging; a disabled or down publisher degrades rather than fails
	if s.deps.Publisher == nil {
		health.Checks["messaging"] = CheckResult{Status: "degraded", Message: "Messaging disabled"}
	} else if s.deps.Publisher.IsConnected() {
		health.Checks["messaging"] = CheckResult{Status: "healthy", Message: "AMQP connected"}
	} else {
		health.Checks["messaging"] = CheckResult{Status: "degraded", Message: "AMQP not connected"}
	}

	// Check WebSocket hub
	if s.hub != nil && s.hub.IsRunning() {
		health.Checks["websocket"] = CheckResult{Status: "healthy", Message: "WebSocket hub is running"}
	} else {
		health.Checks["websocket"] = CheckResult{Status: "degraded", Message: "WebSocket hub not running"}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	health.System = SystemInfo{
		GoRoutines: runtime.NumGoroutine(),
		MemoryMB:   mem.Alloc / 1024 / 1024,
		CPUCount:   runtime.NumCPU(),
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// LivenessHandler reports that the process is alive
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler reports whether the service can take traffic
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.deps.Store == nil || s.deps.Store.Ping(ctx) != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
