// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the bcrypt cost factor for password hashing.
// The slow hash defends against offline cracking of a stolen database;
// it is unrelated to the online lockout threshold, which defends
// against online guessing.
const DefaultBcryptCost = 13

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 12

// Password policy violations surfaced to the API with these exact
// messages.
var (
	ErrPasswordTooShort = errors.New("Password length must be 12 chars minimum!")
	ErrPasswordBreached = errors.New("The password is in the hacker's database!")
	ErrPasswordSame     = errors.New("The passwords must be different!")
)

// defaultBreachedPasswords is the known-breached set checked at signup
// and password change.
var defaultBreachedPasswords = []string{
	"PasswordForJanuary", "PasswordForFebruary", "PasswordForMarch", "PasswordForApril",
	"PasswordForMay", "PasswordForJune", "PasswordForJuly", "PasswordForAugust",
	"PasswordForSeptember", "PasswordForOctober", "PasswordForNovember", "PasswordForDecember",
}

// Hasher hashes and verifies passwords with bcrypt and enforces the
// password acceptance policy.
type Hasher struct {
	cost      int
	minLength int
	breached  map[string]struct{}
}

// HasherOption configures a Hasher.
type HasherOption func(*Hasher)

// WithCost overrides the bcrypt cost factor.
func WithCost(cost int) HasherOption {
	return func(h *Hasher) { h.cost = cost }
}

// WithMinLength overrides the minimum password length.
func WithMinLength(n int) HasherOption {
	return func(h *Hasher) { h.minLength = n }
}

// WithBreachedPasswords replaces the known-breached set.
func WithBreachedPasswords(passwords []string) HasherOption {
	return func(h *Hasher) {
		h.breached = make(map[string]struct{}, len(passwords))
		for _, p := range passwords {
			h.breached[p] = struct{}{}
		}
	}
}

// NewHasher creates a password hasher with the default policy.
func NewHasher(opts ...HasherOption) *Hasher {
	h := &Hasher{
		cost:      DefaultBcryptCost,
		minLength: MinPasswordLength,
	}
	WithBreachedPasswords(defaultBreachedPasswords)(h)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CheckPolicy validates a candidate password against the acceptance
// policy. Checks run in order; the first failure wins.
func (h *Hasher) CheckPolicy(password string) error {
	if len(password) < h.minLength {
		return ErrPasswordTooShort
	}
	if _, bad := h.breached[password]; bad {
		return ErrPasswordBreached
	}
	return nil
}

// Hash produces a bcrypt hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
func (h *Hasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
