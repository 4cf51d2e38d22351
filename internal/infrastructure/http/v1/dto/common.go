// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusResponse is the body of health endpoints.
type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
