// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/acmecorp/accountd/internal/audit"
	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/httperr"
	"github.com/acmecorp/accountd/internal/models"
	"github.com/acmecorp/accountd/internal/store"
)

func newTestService(t *testing.T) (*Service, store.UserStore, *audit.Recorder) {
	t.Helper()

	users := store.NewMemoryUserStore()
	hasher := auth.NewHasher(auth.WithCost(4))
	recorder := audit.NewRecorder(audit.NewMemoryStore())
	svc := NewService(users, hasher, auth.NewLockout(5), recorder)
	return svc, users, recorder
}

func register(t *testing.T, svc *Service, email string) *models.Account {
	t.Helper()

	a, err := svc.Register(context.Background(), &models.SignupRequest{
		Name:     "John",
		Lastname: "Doe",
		Email:    email,
		Password: "aVeryStrongPw1",
	}, "/api/auth/signup")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return a
}

func wantBadRequest(t *testing.T, err error, msg string) {
	t.Helper()

	var herr *httperr.Error
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want *httperr.Error", err)
	}
	if herr.Status != 400 {
		t.Errorf("status = %d, want 400", herr.Status)
	}
	if herr.Message != msg {
		t.Errorf("message = %q, want %q", herr.Message, msg)
	}
}

func wantNotFound(t *testing.T, err error, msg string) {
	t.Helper()

	var herr *httperr.Error
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want *httperr.Error", err)
	}
	if herr.Status != 404 {
		t.Errorf("status = %d, want 404", herr.Status)
	}
	if herr.Message != msg {
		t.Errorf("message = %q, want %q", herr.Message, msg)
	}
}

func TestRegisterFirstUserIsAdministrator(t *testing.T) {
	svc, _, _ := newTestService(t)

	first := register(t, svc, "first@acme.com")
	if !first.IsAdministrator() {
		t.Errorf("first account roles = %v, want ADMINISTRATOR", first.Roles)
	}

	second := register(t, svc, "second@acme.com")
	if !second.HasRole(models.RoleUser) || second.IsAdministrator() {
		t.Errorf("second account roles = %v, want USER", second.Roles)
	}
}

func TestRegisterChecksInOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "john@acme.com")

	tests := []struct {
		name string
		req  models.SignupRequest
		msg  string
	}{
		{
			name: "missing fields",
			req:  models.SignupRequest{Email: "x@acme.com"},
			msg:  msgInvalidInput,
		},
		{
			name: "wrong domain",
			req:  models.SignupRequest{Name: "J", Lastname: "D", Email: "john@other.com", Password: "aVeryStrongPw1"},
			msg:  msgBadEmailDomain,
		},
		{
			name: "duplicate beats weak password",
			req:  models.SignupRequest{Name: "J", Lastname: "D", Email: "John@ACME.com", Password: "short"},
			msg:  msgUserExists,
		},
		{
			name: "short password",
			req:  models.SignupRequest{Name: "J", Lastname: "D", Email: "new@acme.com", Password: "short"},
			msg:  "Password length must be 12 chars minimum!",
		},
		{
			name: "breached password",
			req:  models.SignupRequest{Name: "J", Lastname: "D", Email: "new@acme.com", Password: "PasswordForJanuary"},
			msg:  "The password is in the hacker's database!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req, "/api/auth/signup")
			wantBadRequest(t, err, tt.msg)
		})
	}
}

func TestRegisterRecordsCreateUserEvent(t *testing.T) {
	svc, _, recorder := newTestService(t)
	register(t, svc, "John@ACME.com")

	events, _ := recorder.ListAll(context.Background())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Action != audit.ActionCreateUser {
		t.Errorf("action = %q, want CREATE_USER", e.Action)
	}
	if e.Subject != audit.SubjectAnonymous {
		t.Errorf("subject = %q, want Anonymous", e.Subject)
	}
	if e.Object != "john@acme.com" {
		t.Errorf("object = %q, want canonical email", e.Object)
	}
	if e.Path != "/api/auth/signup" {
		t.Errorf("path = %q", e.Path)
	}
}

func TestChangePassword(t *testing.T) {
	svc, users, recorder := newTestService(t)
	a := register(t, svc, "john@acme.com")

	if err := svc.ChangePassword(context.Background(), a, "short", "/api/auth/changepass"); err == nil {
		t.Fatal("short password accepted")
	}
	if err := svc.ChangePassword(context.Background(), a, "PasswordForMarch", "/api/auth/changepass"); err == nil {
		t.Fatal("breached password accepted")
	}

	err := svc.ChangePassword(context.Background(), a, "aVeryStrongPw1", "/api/auth/changepass")
	wantBadRequest(t, err, "The passwords must be different!")

	if err := svc.ChangePassword(context.Background(), a, "aBrandNewPw123", "/api/auth/changepass"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	stored, _ := users.FindByEmail(context.Background(), "john@acme.com")
	if !auth.NewHasher().Verify(stored.PasswordHash, "aBrandNewPw123") {
		t.Error("stored hash does not match the new password")
	}

	events, _ := recorder.ListAll(context.Background())
	last := events[len(events)-1]
	if last.Action != audit.ActionChangePassword || last.Subject != "john@acme.com" {
		t.Errorf("unexpected last event: %+v", last)
	}
}

func TestListUsersOrderedByID(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@acme.com")
	register(t, svc, "b@acme.com")
	register(t, svc, "c@acme.com")

	views, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d users, want 3", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].ID <= views[i-1].ID {
			t.Errorf("views not in ascending id order: %v", views)
		}
	}
	if views[0].Roles[0] != "ROLE_ADMINISTRATOR" {
		t.Errorf("first user roles = %v", views[0].Roles)
	}
}

func TestDeleteUser(t *testing.T) {
	svc, users, recorder := newTestService(t)
	admin := register(t, svc, "admin@acme.com")
	register(t, svc, "john@acme.com")

	err := svc.DeleteUser(context.Background(), admin, "ghost@acme.com", "/api/admin/user")
	wantNotFound(t, err, msgUserNotFound)

	err = svc.DeleteUser(context.Background(), admin, "admin@acme.com", "/api/admin/user")
	wantBadRequest(t, err, msgRemoveAdminRole)

	if err := svc.DeleteUser(context.Background(), admin, "John@ACME.com", "/api/admin/user"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := users.FindByEmail(context.Background(), "john@acme.com"); !errors.Is(err, store.ErrNotFound) {
		t.Error("account still present after delete")
	}

	events, _ := recorder.ListAll(context.Background())
	last := events[len(events)-1]
	if last.Action != audit.ActionDeleteUser || last.Subject != "admin@acme.com" || last.Object != "john@acme.com" {
		t.Errorf("unexpected delete event: %+v", last)
	}
}

func TestChangeRoleGrantAndRemove(t *testing.T) {
	svc, _, recorder := newTestService(t)
	admin := register(t, svc, "admin@acme.com")
	register(t, svc, "john@acme.com")

	updated, err := svc.ChangeRole(context.Background(), admin, &models.RoleChangeRequest{
		User: "john@acme.com", Role: "ACCOUNTANT", Operation: "GRANT",
	}, "/api/admin/user/role")
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if !updated.HasRole(models.RoleAccountant) || !updated.HasRole(models.RoleUser) {
		t.Errorf("roles after grant = %v", updated.Roles)
	}

	events, _ := recorder.ListAll(context.Background())
	last := events[len(events)-1]
	if last.Action != audit.ActionGrantRole || last.Object != "Grant role ACCOUNTANT to john@acme.com" {
		t.Errorf("unexpected grant event: %+v", last)
	}

	updated, err = svc.ChangeRole(context.Background(), admin, &models.RoleChangeRequest{
		User: "john@acme.com", Role: "ACCOUNTANT", Operation: "REMOVE",
	}, "/api/admin/user/role")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if updated.HasRole(models.RoleAccountant) {
		t.Errorf("roles after remove = %v", updated.Roles)
	}

	events, _ = recorder.ListAll(context.Background())
	last = events[len(events)-1]
	if last.Action != audit.ActionRemoveRole || last.Object != "Remove role ACCOUNTANT from john@acme.com" {
		t.Errorf("unexpected remove event: %+v", last)
	}
}

func TestChangeRoleRejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	admin := register(t, svc, "admin@acme.com")
	register(t, svc, "john@acme.com")

	tests := []struct {
		name   string
		req    models.RoleChangeRequest
		status int
		msg    string
	}{
		{
			name:   "unknown role",
			req:    models.RoleChangeRequest{User: "john@acme.com", Role: "WIZARD", Operation: "GRANT"},
			status: 404,
			msg:    msgRoleNotFound,
		},
		{
			name:   "unknown user",
			req:    models.RoleChangeRequest{User: "ghost@acme.com", Role: "ACCOUNTANT", Operation: "GRANT"},
			status: 404,
			msg:    msgUserNotFound,
		},
		{
			// The user lookup wins when both are unknown.
			name:   "unknown user and unknown role",
			req:    models.RoleChangeRequest{User: "ghost@acme.com", Role: "WIZARD", Operation: "GRANT"},
			status: 404,
			msg:    msgUserNotFound,
		},
		{
			name:   "unknown operation",
			req:    models.RoleChangeRequest{User: "john@acme.com", Role: "ACCOUNTANT", Operation: "PROMOTE"},
			status: 400,
			msg:    msgInvalidOperation,
		},
		{
			name:   "business role to administrator",
			req:    models.RoleChangeRequest{User: "admin@acme.com", Role: "ACCOUNTANT", Operation: "GRANT"},
			status: 400,
			msg:    "The user cannot combine administrative and business roles!",
		},
		{
			name:   "remove administrator",
			req:    models.RoleChangeRequest{User: "admin@acme.com", Role: "ADMINISTRATOR", Operation: "REMOVE"},
			status: 400,
			msg:    "Can't remove ADMINISTRATOR role!",
		},
		{
			name:   "remove role not held",
			req:    models.RoleChangeRequest{User: "john@acme.com", Role: "AUDITOR", Operation: "REMOVE"},
			status: 400,
			msg:    "The user does not have a role!",
		},
		{
			name:   "remove last role",
			req:    models.RoleChangeRequest{User: "john@acme.com", Role: "USER", Operation: "REMOVE"},
			status: 400,
			msg:    "The user must have at least one role!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ChangeRole(context.Background(), admin, &tt.req, "/api/admin/user/role")
			if tt.status == 404 {
				wantNotFound(t, err, tt.msg)
			} else {
				wantBadRequest(t, err, tt.msg)
			}
		})
	}
}

func TestChangeAccessLockAndUnlock(t *testing.T) {
	svc, users, recorder := newTestService(t)
	admin := register(t, svc, "admin@acme.com")
	register(t, svc, "john@acme.com")

	status, err := svc.ChangeAccess(context.Background(), admin, &models.AccessChangeRequest{
		User: "John@ACME.com", Operation: "LOCK",
	}, "/api/admin/user/access")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if status != "User john@acme.com locked!" {
		t.Errorf("status = %q", status)
	}

	stored, _ := users.FindByEmail(context.Background(), "john@acme.com")
	if !stored.Locked {
		t.Fatal("account not locked")
	}

	events, _ := recorder.ListAll(context.Background())
	last := events[len(events)-1]
	if last.Action != audit.ActionLockUser || last.Subject != "admin@acme.com" || last.Object != "Lock user john@acme.com" {
		t.Errorf("unexpected lock event: %+v", last)
	}

	// Seed a failure count so unlock provably clears it.
	users.Update(context.Background(), "john@acme.com", func(u *models.Account) error {
		u.FailedLoginAttempts = 4
		return nil
	})

	status, err = svc.ChangeAccess(context.Background(), admin, &models.AccessChangeRequest{
		User: "john@acme.com", Operation: "UNLOCK",
	}, "/api/admin/user/access")
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if status != "User john@acme.com unlocked!" {
		t.Errorf("status = %q", status)
	}

	stored, _ = users.FindByEmail(context.Background(), "john@acme.com")
	if stored.Locked || stored.FailedLoginAttempts != 0 {
		t.Errorf("after unlock: locked=%v failures=%d", stored.Locked, stored.FailedLoginAttempts)
	}

	events, _ = recorder.ListAll(context.Background())
	last = events[len(events)-1]
	if last.Action != audit.ActionUnlockUser || last.Object != "Unlock user john@acme.com" {
		t.Errorf("unexpected unlock event: %+v", last)
	}
}

func TestChangeAccessRejections(t *testing.T) {
	svc, _, recorder := newTestService(t)
	admin := register(t, svc, "admin@acme.com")
	register(t, svc, "john@acme.com")

	_, err := svc.ChangeAccess(context.Background(), admin, &models.AccessChangeRequest{
		User: "admin@acme.com", Operation: "LOCK",
	}, "/api/admin/user/access")
	wantBadRequest(t, err, msgLockAdmin)

	// UNLOCK of an administrator is rejected the same way, and leaves
	// no trace in the event log.
	before, _ := recorder.ListAll(context.Background())
	_, err = svc.ChangeAccess(context.Background(), admin, &models.AccessChangeRequest{
		User: "admin@acme.com", Operation: "UNLOCK",
	}, "/api/admin/user/access")
	wantBadRequest(t, err, msgLockAdmin)
	after, _ := recorder.ListAll(context.Background())
	if len(after) != len(before) {
		t.Errorf("rejected unlock recorded an event: %+v", after[len(after)-1])
	}

	_, err = svc.ChangeAccess(context.Background(), admin, &models.AccessChangeRequest{
		User: "ghost@acme.com", Operation: "LOCK",
	}, "/api/admin/user/access")
	wantNotFound(t, err, msgUserNotFound)

	_, err = svc.ChangeAccess(context.Background(), admin, &models.AccessChangeRequest{
		User: "john@acme.com", Operation: "FREEZE",
	}, "/api/admin/user/access")
	wantBadRequest(t, err, msgInvalidOperation)
}
