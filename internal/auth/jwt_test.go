// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-accountd-0123456789"

func TestNewJWTManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTManager("short", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
	if _, err := NewJWTManager(testSecret, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}

	token, err := m.GenerateToken("john@acme.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Email != "john@acme.com" {
		t.Errorf("email = %q, want john@acme.com", claims.Email)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m1, _ := NewJWTManager(testSecret, time.Hour)
	m2, _ := NewJWTManager("another-secret-key-for-accountd-987654321", time.Hour)

	token, err := m1.GenerateToken("john@acme.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m2.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m, _ := NewJWTManager(testSecret, time.Hour)
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m, _ := NewJWTManager(testSecret, time.Hour)
	m.timeout = -time.Minute

	token, err := m.GenerateToken("john@acme.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}
