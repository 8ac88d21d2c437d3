// Package health contiene DTOs para endpoints de health check.
package health

import "time"

// ServiceStatus es el estado de una dependencia.
type ServiceStatus struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	Driver    string `json:"driver,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

// StatusResponse: GET /api/gateway/status y GET /readyz.
type StatusResponse struct {
	Status    string                   `json:"status"` // "healthy" | "unhealthy"
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceStatus `json:"services"`
	Version   string                   `json:"version,omitempty"`
}

// RootResponse: GET /
type RootResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}
