// internal/api/types/response.go
package types

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// PaginatedResponse is the envelope of list endpoints.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// WriteJSON encodes payload as the response body with the given status.
func WriteJSON(w http.ResponseWriter, code int, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(body)
	return err
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, code int, message string) error {
	return WriteJSON(w, code, Response{Success: false, Message: message})
}
