package handlers

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Health status constants
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Pinger is a dependency that can report its availability
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles health check endpoints
// #INTEGRATION_POINT: Used by load balancers and monitoring systems
type HealthHandler struct {
	dependencies map[string]Pinger
	version      string
	startTime    time.Time
}

// NewHealthHandler creates a new health handler
// dependencies maps a service name such as "mongodb" or "redis" to its check.
func NewHealthHandler(dependencies map[string]Pinger, version string) *HealthHandler {
	if dependencies == nil {
		dependencies = map[string]Pinger{}
	}
	return &HealthHandler{
		dependencies: dependencies,
		version:      version,
		startTime:    time.Now(),
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Services  map[string]string `json:"services,omitempty"`
}

// DetailedHealthResponse includes more information
type DetailedHealthResponse struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Version   string             `json:"version"`
	Uptime    string             `json:"uptime"`
	Services  map[string]Service `json:"services"`
	System    SystemInfo         `json:"system"`
}

// Service represents service health
type Service struct {
	Status      string `json:"status"`
	Latency     string `json:"latency,omitempty"`
	Description string `json:"description,omitempty"`
}

// SystemInfo represents system information
type SystemInfo struct {
	GoVersion    string  `json:"go_version"`
	NumCPU       int     `json:"num_cpu"`
	NumGoroutine int     `json:"num_goroutine"`
	MemAllocMB   float64 `json:"mem_alloc_mb"`
}

// checkAll pings every dependency in name order
func (h *HealthHandler) checkAll(ctx context.Context) (map[string]Service, bool) {
	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make(map[string]Service, len(names))
	allHealthy := true
	for _, name := range names {
		start := time.Now()
		if err := h.dependencies[name].Ping(ctx); err != nil {
			services[name] = Service{Status: statusUnhealthy, Description: err.Error()}
			allHealthy = false
			continue
		}
		services[name] = Service{Status: statusHealthy, Latency: time.Since(start).String()}
	}
	return services, allHealthy
}

// Ping handles GET /health/ping
// @Summary Ping endpoint
// @Description Simple ping endpoint for basic availability check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "pong",
	})
}

// Health handles GET /health
// @Summary Health check endpoint
// @Description Returns basic health status
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// Ready handles GET /health/ready
// @Summary Readiness check endpoint
// @Description Checks if the service is ready to receive traffic (dependencies are healthy)
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checked, allHealthy := h.checkAll(ctx)
	services := make(map[string]string, len(checked))
	for name, svc := range checked {
		services[name] = svc.Status
	}

	status := "ready"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Services:  services,
	})
}

// Live handles GET /health/live
// @Summary Liveness check endpoint
// @Description Indicates the service is running (for Kubernetes liveness checks)
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Detailed handles GET /health/detailed
// @Summary Detailed health check
// @Description Returns detailed health information including system stats
// @Tags Health
// @Produce json
// @Success 200 {object} DetailedHealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services, allHealthy := h.checkAll(ctx)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := statusHealthy
	if !allHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, DetailedHealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Services:  services,
		System: SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   float64(memStats.Alloc) / 1024 / 1024,
		},
	})
}

// RegisterRoutes registers health handler routes
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	// Health endpoints at root level (not under /api/v1)
	router.GET("/health", h.Health)
	router.GET("/health/ping", h.Ping)
	router.GET("/health/ready", h.Ready)
	router.GET("/health/live", h.Live)
	router.GET("/health/detailed", h.Detailed)
}
