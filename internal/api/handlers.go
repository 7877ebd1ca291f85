// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acmecorp/accountd/internal/accounts"
	"github.com/acmecorp/accountd/internal/audit"
	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/models"
	"github.com/acmecorp/accountd/internal/payroll"
)

// Handlers bundles the HTTP handlers over the service layer.
type Handlers struct {
	accounts      *accounts.Service
	payroll       *payroll.Service
	recorder      *audit.Recorder
	authenticator *auth.Authenticator
	jwt           *auth.JWTManager
}

// NewHandlers wires the handler set. jwt may be nil, which disables
// the token endpoint.
func NewHandlers(accountsSvc *accounts.Service, payrollSvc *payroll.Service, recorder *audit.Recorder, authenticator *auth.Authenticator, jwt *auth.JWTManager) *Handlers {
	return &Handlers{
		accounts:      accountsSvc,
		payroll:       payrollSvc,
		recorder:      recorder,
		authenticator: authenticator,
		jwt:           jwt,
	}
}

// Signup handles POST /api/auth/signup.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	created, err := h.accounts.Register(r.Context(), &req, r.URL.Path)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, created.View())
}

// ChangePassword handles POST /api/auth/changepass.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "")
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), actor, req.NewPassword, r.URL.Path); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"email":  actor.Email,
		"status": "The password has been updated successfully",
	})
}

// Token handles POST /api/auth/token: it exchanges Basic credentials or
// a JSON body for a bearer token.
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	if h.jwt == nil {
		respondError(w, r, http.StatusNotFound, "Token issuing is disabled")
		return
	}

	email, password, err := auth.ParseBasic(r.Header.Get("Authorization"))
	if err != nil {
		var req models.TokenRequest
		if derr := decodeJSON(r, &req); derr != nil {
			respondServiceError(w, r, derr)
			return
		}
		email, password = req.Email, req.Password
	}

	acct, err := h.authenticator.Authenticate(r.Context(), email, password, r.URL.Path)
	if err != nil {
		status := http.StatusUnauthorized
		message := ""
		if errors.Is(err, auth.ErrAccountLocked) {
			message = "User account is locked"
		}
		respondError(w, r, status, message)
		return
	}

	token, err := h.jwt.GenerateToken(acct.Email)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwt.Timeout().Seconds()),
	})
}

// Profile handles GET /api/empl/user, returning the authenticated
// account.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "")
		return
	}
	respondJSON(w, http.StatusOK, actor.View())
}

// Payment handles GET /api/empl/payment. With a period query parameter
// it returns that period's payment; without one it returns all
// payments, newest first.
func (h *Handlers) Payment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "")
		return
	}

	if period := r.URL.Query().Get("period"); period != "" {
		view, err := h.payroll.PaymentFor(r.Context(), actor, period)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		if view == nil {
			respondJSON(w, http.StatusOK, struct{}{})
			return
		}
		respondJSON(w, http.StatusOK, view)
		return
	}

	views, err := h.payroll.PaymentsFor(r.Context(), actor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// UploadPayments handles POST /api/acct/payments.
func (h *Handlers) UploadPayments(w http.ResponseWriter, r *http.Request) {
	var batch []models.PayrollUploadRequest
	if err := decodeJSON(r, &batch); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.payroll.UploadBatch(r.Context(), batch); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: "Added successfully!"})
}

// UpdatePayment handles PUT /api/acct/payments.
func (h *Handlers) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.PayrollUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.payroll.UpdateRecord(r.Context(), &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: "Updated successfully!"})
}

// ListUsers handles GET /api/admin/user.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	views, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// DeleteUser handles DELETE /api/admin/user/{email}.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "")
		return
	}

	email := chi.URLParam(r, "email")
	if err := h.accounts.DeleteUser(r.Context(), actor, email, r.URL.Path); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"user":   models.CanonicalEmail(email),
		"status": "Deleted successfully!",
	})
}

// ChangeRole handles PUT /api/admin/user/role.
func (h *Handlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "")
		return
	}

	var req models.RoleChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	updated, err := h.accounts.ChangeRole(r.Context(), actor, &req, r.URL.Path)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated.View())
}

// ChangeAccess handles PUT /api/admin/user/access.
func (h *Handlers) ChangeAccess(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "")
		return
	}

	var req models.AccessChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	status, err := h.accounts.ChangeAccess(r.Context(), actor, &req, r.URL.Path)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: status})
}

// SecurityEvents handles GET /api/security/events.
func (h *Handlers) SecurityEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.recorder.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}
