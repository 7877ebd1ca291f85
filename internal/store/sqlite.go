// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/acmecorp/accountd/internal/models"
)

// DB wraps the sqlite handle shared by the sqlite-backed stores.
type DB struct {
	db *sql.DB

	// writeMu serializes read-modify-write cycles. accountd runs as a
	// single instance; an in-process lock is sufficient to protect the
	// failed-login counter and the first-account decision.
	writeMu sync.Mutex
}

// Open opens (and if necessary creates) the sqlite database at path
// and runs schema migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return d, nil
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it does not exist.
func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			roles TEXT NOT NULL,
			failed_login_attempts INTEGER NOT NULL DEFAULT 0,
			locked INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee TEXT NOT NULL,
			period TEXT NOT NULL,
			salary INTEGER NOT NULL,
			UNIQUE(employee, period)
		)`,
		`CREATE TABLE IF NOT EXISTS security_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			action TEXT NOT NULL,
			subject TEXT NOT NULL,
			object TEXT NOT NULL,
			path TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_employee ON payments(employee)`,
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	return tx.Commit()
}

// Handle returns the raw sql handle. Used by the sqlite audit store,
// which shares this database.
func (d *DB) Handle() *sql.DB {
	return d.db
}

// joinRoles serializes a role set for storage.
func joinRoles(roles []models.Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ",")
}

// splitRoles deserializes a stored role set.
func splitRoles(s string) []models.Role {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roles := make([]models.Role, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, models.Role(p))
	}
	return roles
}

// SQLiteUserStore implements UserStore on sqlite.
type SQLiteUserStore struct {
	d *DB
}

// NewSQLiteUserStore creates a sqlite-backed account store.
func NewSQLiteUserStore(d *DB) *SQLiteUserStore {
	return &SQLiteUserStore{d: d}
}

const userColumns = `id, name, lastname, email, password_hash, roles, failed_login_attempts, locked`

// scanAccount reads one account row.
func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var roles string
	var locked int
	err := row.Scan(&a.ID, &a.Name, &a.Lastname, &a.Email, &a.PasswordHash, &roles, &a.FailedLoginAttempts, &locked)
	if err != nil {
		return nil, err
	}
	a.Roles = splitRoles(roles)
	a.Locked = locked != 0
	return &a, nil
}

// FindByEmail looks up an account by canonical email.
func (s *SQLiteUserStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		models.CanonicalEmail(email))

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

// List returns all accounts ordered by id ascending.
func (s *SQLiteUserStore) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteUserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// Create inserts a new account. The count observed by prepare and the
// insert happen under the store write lock inside one transaction.
func (s *SQLiteUserStore) Create(ctx context.Context, a *models.Account, prepare func(count int64)) (*models.Account, error) {
	s.d.writeMu.Lock()
	defer s.d.writeMu.Unlock()

	tx, err := s.d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	email := models.CanonicalEmail(a.Email)

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if exists > 0 {
		return nil, ErrDuplicate
	}

	if prepare != nil {
		var count int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
			return nil, fmt.Errorf("count accounts: %w", err)
		}
		prepare(count)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, lastname, email, password_hash, roles, failed_login_attempts, locked)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Lastname, email, a.PasswordHash, joinRoles(a.Roles), a.FailedLoginAttempts, boolToInt(a.Locked))
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("account id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	created := a.Clone()
	created.ID = id
	created.Email = email
	return created, nil
}

// Update applies fn to the stored account inside a transaction held
// under the store write lock.
func (s *SQLiteUserStore) Update(ctx context.Context, email string, fn func(*models.Account) error) (*models.Account, error) {
	s.d.writeMu.Lock()
	defer s.d.writeMu.Unlock()

	tx, err := s.d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		models.CanonicalEmail(email))

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET name = ?, lastname = ?, password_hash = ?, roles = ?,
		 failed_login_attempts = ?, locked = ? WHERE id = ?`,
		a.Name, a.Lastname, a.PasswordHash, joinRoles(a.Roles),
		a.FailedLoginAttempts, boolToInt(a.Locked), a.ID)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return a, nil
}

// Delete removes an account.
func (s *SQLiteUserStore) Delete(ctx context.Context, email string) error {
	res, err := s.d.db.ExecContext(ctx,
		`DELETE FROM users WHERE email = ?`, models.CanonicalEmail(email))
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SQLitePayrollStore implements PayrollStore on sqlite.
type SQLitePayrollStore struct {
	d *DB
}

// NewSQLitePayrollStore creates a sqlite-backed payroll ledger.
func NewSQLitePayrollStore(d *DB) *SQLitePayrollStore {
	return &SQLitePayrollStore{d: d}
}

// Find returns the record for an employee and period.
func (s *SQLitePayrollStore) Find(ctx context.Context, employee, period string) (*models.PayrollRecord, error) {
	var r models.PayrollRecord
	err := s.d.db.QueryRowContext(ctx,
		`SELECT id, employee, period, salary FROM payments WHERE employee = ? AND period = ?`,
		models.CanonicalEmail(employee), period).
		Scan(&r.ID, &r.Employee, &r.Period, &r.Salary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &r, nil
}

// FindAllFor returns all records for an employee.
func (s *SQLitePayrollStore) FindAllFor(ctx context.Context, employee string) ([]*models.PayrollRecord, error) {
	rows, err := s.d.db.QueryContext(ctx,
		`SELECT id, employee, period, salary FROM payments WHERE employee = ?`,
		models.CanonicalEmail(employee))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*models.PayrollRecord
	for rows.Next() {
		var r models.PayrollRecord
		if err := rows.Scan(&r.ID, &r.Employee, &r.Period, &r.Salary); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// SaveAll inserts a batch of new records in one transaction.
func (s *SQLitePayrollStore) SaveAll(ctx context.Context, records []*models.PayrollRecord) error {
	s.d.writeMu.Lock()
	defer s.d.writeMu.Unlock()

	tx, err := s.d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upload: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO payments (employee, period, salary) VALUES (?, ?, ?)`,
			models.CanonicalEmail(r.Employee), r.Period, r.Salary)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert payment: %w", err)
		}
	}

	return tx.Commit()
}

// Save updates an existing record's salary.
func (s *SQLitePayrollStore) Save(ctx context.Context, record *models.PayrollRecord) error {
	res, err := s.d.db.ExecContext(ctx,
		`UPDATE payments SET salary = ? WHERE employee = ? AND period = ?`,
		record.Salary, models.CanonicalEmail(record.Employee), record.Period)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
