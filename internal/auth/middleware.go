// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/acmecorp/accountd/internal/logging"
	"github.com/acmecorp/accountd/internal/models"
	"github.com/acmecorp/accountd/internal/store"
)

// ErrNoCredentials indicates the request carried no credentials a
// given authenticator understands.
var ErrNoCredentials = errors.New("no credentials provided")

type contextKey string

const accountContextKey contextKey = "account"

// ContextWithAccount stores the authenticated account on the context.
func ContextWithAccount(ctx context.Context, a *models.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, a)
}

// AccountFromContext extracts the authenticated account, if any.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountContextKey).(*models.Account)
	return a, ok
}

// RequestAuthenticator resolves an HTTP request to an account.
// Implementations return ErrNoCredentials when the request carries no
// credentials of their kind, so a chain can try the next method.
type RequestAuthenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*models.Account, error)
}

// BasicRequestAuthenticator authenticates HTTP Basic credentials
// through the password verifier and lockout machine.
type BasicRequestAuthenticator struct {
	auth *Authenticator
}

// NewBasicRequestAuthenticator wires basic-auth extraction.
func NewBasicRequestAuthenticator(auth *Authenticator) *BasicRequestAuthenticator {
	return &BasicRequestAuthenticator{auth: auth}
}

// Authenticate decodes the Basic header and verifies the pair.
func (b *BasicRequestAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*models.Account, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "basic ") {
		return nil, ErrNoCredentials
	}

	email, password, err := ParseBasic(header)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return b.auth.Authenticate(ctx, email, password, r.URL.Path)
}

// BearerRequestAuthenticator authenticates bearer tokens issued by the
// token endpoint. Roles and the lock flag are re-read from the store,
// so a token issued before a lock or role change does not bypass it.
type BearerRequestAuthenticator struct {
	jwt   *JWTManager
	users store.UserStore
}

// NewBearerRequestAuthenticator wires bearer-token extraction.
func NewBearerRequestAuthenticator(jwt *JWTManager, users store.UserStore) *BearerRequestAuthenticator {
	return &BearerRequestAuthenticator{jwt: jwt, users: users}
}

// Authenticate validates the bearer token and reloads the account.
func (b *BearerRequestAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*models.Account, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrNoCredentials
	}

	claims, err := b.jwt.ValidateToken(strings.TrimSpace(header[len("Bearer "):]))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	acct, err := b.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if acct.Locked {
		return nil, ErrAccountLocked
	}
	return acct, nil
}

// Middleware enforces authentication on protected routes. It tries
// bearer tokens first, then basic credentials, and stores the account
// on the request context for downstream authorization and handlers.
type Middleware struct {
	chain []RequestAuthenticator
}

// NewMiddleware builds the authentication middleware. Authenticators
// are tried in the order given.
func NewMiddleware(chain ...RequestAuthenticator) *Middleware {
	return &Middleware{chain: chain}
}

// Handler wraps the next handler with authentication enforcement.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastErr := ErrNoCredentials

		for _, auth := range m.chain {
			acct, err := auth.Authenticate(r.Context(), r)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(ContextWithAccount(r.Context(), acct)))
				return
			}
			lastErr = err
			if errors.Is(err, ErrNoCredentials) {
				continue
			}
			break
		}

		writeUnauthorized(w, r, lastErr)
	})
}

// writeUnauthorized emits the service-wide error body shape without
// importing the api package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	message := ""
	if errors.Is(err, ErrAccountLocked) {
		message = "User account is locked"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Basic realm="accountd"`)
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"status":    http.StatusUnauthorized,
		"error":     "Unauthorized",
		"message":   message,
		"path":      r.URL.Path,
	}
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		logging.Err(encodeErr).Msg("failed to encode unauthorized response")
	}
}
