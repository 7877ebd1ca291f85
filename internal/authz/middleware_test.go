// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/models"
)

func doAuthorized(t *testing.T, mw *Middleware, acct *models.Account, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, path, nil)
	if acct != nil {
		req = req.WithContext(auth.ContextWithAccount(req.Context(), acct))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareAllowsMatchingRole(t *testing.T) {
	mw := NewMiddleware(newTestEnforcer(t))
	user := &models.Account{Email: "john@acme.com", Roles: []models.Role{models.RoleUser}}

	rec := doAuthorized(t, mw, user, http.MethodGet, "/api/empl/payment")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareDeniesWrongRole(t *testing.T) {
	mw := NewMiddleware(newTestEnforcer(t))
	user := &models.Account{Email: "john@acme.com", Roles: []models.Role{models.RoleUser}}

	rec := doAuthorized(t, mw, user, http.MethodGet, "/api/admin/user")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var body struct {
		Status  int    `json:"status"`
		Error   string `json:"error"`
		Message string `json:"message"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != 403 || body.Error != "Forbidden" || body.Message != "Access Denied!" || body.Path != "/api/admin/user" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestMiddlewareDeniesMissingAccount(t *testing.T) {
	mw := NewMiddleware(newTestEnforcer(t))

	rec := doAuthorized(t, mw, nil, http.MethodGet, "/api/empl/payment")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestMiddlewareOnDenyHook(t *testing.T) {
	mw := NewMiddleware(newTestEnforcer(t))
	denied := 0
	mw.SetOnDeny(func() { denied++ })

	user := &models.Account{Email: "john@acme.com", Roles: []models.Role{models.RoleUser}}
	doAuthorized(t, mw, user, http.MethodGet, "/api/admin/user")
	doAuthorized(t, mw, user, http.MethodGet, "/api/empl/payment")

	if denied != 1 {
		t.Fatalf("deny hook fired %d times, want 1", denied)
	}
}
