// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package api provides the HTTP surface: request decoding, response
// shaping, and routing with Chi.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/acmecorp/accountd/internal/httperr"
	"github.com/acmecorp/accountd/internal/logging"
)

// errorBody is the service-wide error response shape.
type errorBody struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

var statusTexts = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusConflict:            "Conflict",
	http.StatusInternalServerError: "Internal Server Error",
}

// respondJSON writes data as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Err(err).Msg("failed to encode response")
	}
}

// respondError writes the error body for a failed request.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	text, ok := statusTexts[status]
	if !ok {
		text = http.StatusText(status)
	}

	respondJSON(w, status, &errorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Error:     text,
		Message:   message,
		Path:      r.URL.Path,
	})
}

// respondServiceError maps a service-layer error onto the wire. Errors
// without an HTTP status become opaque 500s.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var herr *httperr.Error
	if errors.As(err, &herr) {
		respondError(w, r, herr.Status, herr.Message)
		return
	}

	logging.Err(err).Str("path", r.URL.Path).Msg("internal error")
	respondError(w, r, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON decodes a request body, rejecting unknown or malformed
// payloads uniformly.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httperr.BadRequest("Invalid input!")
	}
	return nil
}
