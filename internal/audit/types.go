// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

// Package audit provides security audit logging functionality.
// It records security-relevant events for compliance and forensic
// analysis in an append-only, insertion-ordered trail.
package audit

import (
	"context"
	"time"
)

// Action categorizes security events.
type Action string

const (
	ActionCreateUser     Action = "CREATE_USER"
	ActionChangePassword Action = "CHANGE_PASSWORD"
	ActionGrantRole      Action = "GRANT_ROLE"
	ActionRemoveRole     Action = "REMOVE_ROLE"
	ActionLockUser       Action = "LOCK_USER"
	ActionUnlockUser     Action = "UNLOCK_USER"
	ActionDeleteUser     Action = "DELETE_USER"
	ActionLoginFailed    Action = "LOGIN_FAILED"
	ActionBruteForce     Action = "BRUTE_FORCE"
)

// SubjectAnonymous is recorded when no authenticated identity exists,
// e.g. at signup time or for a login attempt without a username.
const SubjectAnonymous = "Anonymous"

// Event is one immutable security audit record. Events are strictly
// append-only and retrieved in ascending id order.
type Event struct {
	// ID is assigned by the store on append, monotonically increasing.
	ID int64 `json:"id"`

	// Date is when the event occurred.
	Date time.Time `json:"date"`

	// Action categorizes the event.
	Action Action `json:"action"`

	// Subject is the acting identity, or "Anonymous".
	Subject string `json:"subject"`

	// Object is a free-text description of the target of the action.
	Object string `json:"object"`

	// Path is the API path where the event originated.
	Path string `json:"path"`
}

// Store defines the interface for audit event persistence.
//
// Appends from different logical operations may run in parallel, but
// within one operation (e.g. the BRUTE_FORCE then LOCK_USER pair) the
// caller appends synchronously so insertion order is preserved.
type Store interface {
	// Append persists an event, assigning its ID.
	Append(ctx context.Context, event *Event) error

	// ListAll returns all events ordered by id ascending.
	ListAll(ctx context.Context) ([]Event, error)
}
