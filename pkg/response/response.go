// Package response writes the JSON envelope every endpoint answers with:
//
//	{"status": 200, "message": "...", "data": ..., "errors": ...}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/shopease/pkg/orm"
)

// Envelope is the response body shape.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Page is the data payload of list endpoints.
type Page struct {
	Items      interface{}    `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

// JSON writes body with the given status.
func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with a message and data.
func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Message: message, Data: data})
}

// Message sends a response carrying both a message and data.
func Message(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, Envelope{Status: status, Message: message, Data: data})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Paginated sends a 200 response with {items, pagination}.
func Paginated(w http.ResponseWriter, items interface{}, pagination orm.Pagination) {
	Success(w, Page{Items: items, Pagination: pagination})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
