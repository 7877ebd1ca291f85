// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package main is the entry point for the Accountd server.
//
// Accountd is the internal account management and payroll service: it
// registers corporate accounts, authenticates requests with HTTP Basic
// or JWT bearer credentials, enforces role-based access to payroll and
// administrative endpoints, and keeps an append-only security event
// log.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, ACCOUNTD_ env vars (Koanf v2)
//  2. Storage: SQLite (modernc.org/sqlite) or in-memory stores
//  3. Audit: security event recorder over the chosen backend
//  4. Authentication: bcrypt verification, lockout tracking, optional JWT
//  5. Authorization: embedded Casbin RBAC model and policy
//  6. HTTP server: chi router with rate limiting, CORS, and Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (ACCOUNTD_SERVER_PORT, ACCOUNTD_SECURITY_JWT_SECRET, ...)
//   - Config file (config.yaml, or the path in ACCOUNTD_CONFIG)
//   - Built-in defaults
//
// Setting ACCOUNTD_SECURITY_JWT_SECRET (32+ characters) enables the
// /api/auth/token endpoint and bearer authentication; without it the
// service accepts Basic credentials only.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it
// stops accepting new connections, waits for in-flight requests up to
// the configured shutdown timeout, then closes the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/acmecorp/accountd/internal/accounts"
	"github.com/acmecorp/accountd/internal/api"
	"github.com/acmecorp/accountd/internal/audit"
	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/authz"
	"github.com/acmecorp/accountd/internal/config"
	"github.com/acmecorp/accountd/internal/logging"
	"github.com/acmecorp/accountd/internal/metrics"
	"github.com/acmecorp/accountd/internal/payroll"
	"github.com/acmecorp/accountd/internal/store"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Int("port", cfg.Server.Port).
		Bool("jwt_enabled", cfg.Security.JWTSecret != "").
		Msg("Starting Accountd")

	var (
		users      store.UserStore
		ledger     store.PayrollStore
		auditStore audit.Store
	)
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := store.Open(cfg.Database.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing database")
			}
		}()
		users = store.NewSQLiteUserStore(db)
		ledger = store.NewSQLitePayrollStore(db)
		auditStore = audit.NewSQLiteStore(db.Handle())
		logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized successfully")
	case "memory":
		users = store.NewMemoryUserStore()
		ledger = store.NewMemoryPayrollStore()
		auditStore = audit.NewMemoryStore()
		logging.Warn().Msg("Using in-memory storage, all data is lost on restart")
	default:
		logging.Fatal().Str("driver", cfg.Database.Driver).Msg("Unknown database driver")
	}

	recorder := audit.NewRecorder(auditStore)
	recorder.SetOnRecord(func(action audit.Action) {
		metrics.RecordAuditEvent(string(action))
		switch action {
		case audit.ActionLoginFailed:
			metrics.LoginFailuresTotal.Inc()
		case audit.ActionLockUser:
			metrics.LockoutsTotal.Inc()
		}
	})

	hasher := auth.NewHasher(
		auth.WithCost(cfg.Security.BcryptCost),
		auth.WithMinLength(cfg.Security.MinPasswordLength),
	)
	lockout := auth.NewLockout(cfg.Security.MaxLoginAttempts)
	authenticator := auth.NewAuthenticator(users, hasher, lockout, recorder)

	var jwtManager *auth.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Dur("session_timeout", jwtManager.Timeout()).Msg("JWT authentication enabled")
	} else {
		logging.Info().Msg("JWT secret not configured, token endpoint disabled")
	}

	chain := make([]auth.RequestAuthenticator, 0, 2)
	if jwtManager != nil {
		chain = append(chain, auth.NewBearerRequestAuthenticator(jwtManager, users))
	}
	chain = append(chain, auth.NewBasicRequestAuthenticator(authenticator))
	authn := auth.NewMiddleware(chain...)

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()
	authzMW := authz.NewMiddleware(enforcer)
	authzMW.SetOnDeny(metrics.AuthzDenialsTotal.Inc)

	accountsSvc := accounts.NewService(users, hasher, lockout, recorder)
	payrollSvc := payroll.NewService(ledger, users)

	handlers := api.NewHandlers(accountsSvc, payrollSvc, recorder, authenticator, jwtManager)
	router := api.NewRouter(handlers, authn, authzMW, &api.RouterConfig{
		CORSOrigins:     cfg.Security.CORSOrigins,
		RateLimitReqs:   cfg.Security.RateLimitReqs,
		RateLimitWindow: cfg.Security.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
		_ = srv.Close()
	}
	logging.Info().Msg("Server stopped")
}
