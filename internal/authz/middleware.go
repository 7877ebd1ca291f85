// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/logging"
)

// Middleware enforces the HTTP access matrix. It runs after the
// authentication middleware and reads the account from the request
// context.
type Middleware struct {
	enforcer *Enforcer
	onDeny   func()
}

// NewMiddleware creates the authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// SetOnDeny installs a hook invoked on every denied request.
func (m *Middleware) SetOnDeny(fn func()) {
	m.onDeny = fn
}

// Handler wraps next with access matrix enforcement keyed on the
// request path and method.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct, ok := auth.AccountFromContext(r.Context())
		if !ok {
			m.deny(w, r)
			return
		}

		allowed, err := m.enforcer.EnforceAnyRole(acct.SortedRoleNames(), r.URL.Path, r.Method)
		if err != nil {
			logging.Err(err).Str("path", r.URL.Path).Msg("authorization enforcement error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			m.deny(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) deny(w http.ResponseWriter, r *http.Request) {
	if m.onDeny != nil {
		m.onDeny()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)

	body := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"status":    http.StatusForbidden,
		"error":     "Forbidden",
		"message":   "Access Denied!",
		"path":      r.URL.Path,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Err(err).Msg("failed to encode forbidden response")
	}
}
