// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package audit

import (
	"context"
	"time"

	"github.com/acmecorp/accountd/internal/logging"
)

// Recorder is the write-side facade used by services to log security
// events. Writes are synchronous: the ordering of related events
// (LOGIN_FAILED, then BRUTE_FORCE, then LOCK_USER) must survive audit
// replay, so buffering is deliberately not used here.
type Recorder struct {
	store Store
	now   func() time.Time

	// onRecord, when set, is invoked after each successful append.
	// Used to bump metrics without coupling this package to prometheus.
	onRecord func(action Action)
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// SetClock overrides the timestamp source. Used by tests.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// SetOnRecord sets a callback invoked after each recorded event.
func (r *Recorder) SetOnRecord(fn func(action Action)) {
	r.onRecord = fn
}

// Record appends one event. Failures are logged and swallowed: an
// audit write error must not turn a completed state change into a
// caller-visible failure.
func (r *Recorder) Record(ctx context.Context, action Action, subject, object, path string) {
	if subject == "" {
		subject = SubjectAnonymous
	}

	event := &Event{
		Date:    r.now(),
		Action:  action,
		Subject: subject,
		Object:  object,
		Path:    path,
	}

	if err := r.store.Append(ctx, event); err != nil {
		logging.Error().Err(err).
			Str("action", string(action)).
			Str("subject", subject).
			Msg("Failed to append security event")
		return
	}

	logging.Debug().
		Str("action", string(action)).
		Str("subject", subject).
		Str("object", object).
		Int64("event_id", event.ID).
		Msg("Security event recorded")

	if r.onRecord != nil {
		r.onRecord(action)
	}
}

// ListAll returns the full trail ordered by id ascending.
func (r *Recorder) ListAll(ctx context.Context) ([]Event, error) {
	return r.store.ListAll(ctx)
}
