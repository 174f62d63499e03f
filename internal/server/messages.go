package server

import (
	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/resolve"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type (
	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}

	// HealthResponse reports service and store health
	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Error   string `json:"error,omitempty"`
	}

	// PathResponse carries an execution path
	PathResponse struct {
		RequestID         string             `json:"requestId"`
		FlowExecutionPath flow.ExecutionPath `json:"flowExecutionPath"`
		Count             int                `json:"count"`
	}

	// PathSavedResponse acknowledges a saved execution path
	PathSavedResponse struct {
		RequestID string `json:"requestId"`
		Count     int    `json:"count"`
	}

	// ResolveResponse carries the resolved inputs of every step
	ResolveResponse struct {
		RequestID string               `json:"requestId"`
		Steps     []resolve.StepInputs `json:"steps"`
		Count     int                  `json:"count"`
	}
)
