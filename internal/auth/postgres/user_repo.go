// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wellnest/wellnest/internal/auth"
)

// Pool is the subset of pgxpool.Pool the repository needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, username, email, first_name, last_name, password_hash,
		       password_hint, picture, roles, failed_login_attempts, logged_in, created_at`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by exact e-mail address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// Count returns the number of users matching every set field of filter.
func (r *UserRepository) Count(ctx context.Context, filter auth.UserFilter) (int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Username != "" {
		args = append(args, filter.Username)
		conds = append(conds, fmt.Sprintf("username = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.LoggedIn != nil {
		args = append(args, *filter.LoggedIn)
		conds = append(conds, fmt.Sprintf("logged_in = $%d", len(args)))
	}

	query := `SELECT COUNT(*) FROM users`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, oops.Code("USER_COUNT_FAILED").
			With("operation", "count users").
			Wrap(err)
	}
	return n, nil
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id, username, email, first_name, last_name, password_hash,
			password_hint, picture, roles, failed_login_attempts, logged_in, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.PasswordHint,
		user.Picture,
		user.Roles.Strings(),
		user.FailedLoginAttempts,
		user.LoggedIn,
		createdAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_DUPLICATE").
			With("username", user.Username).
			With("email", user.Email).
			Wrap(auth.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// UpdateFields changes the non-nil columns of update. An empty update is a no-op.
func (r *UserRepository) UpdateFields(ctx context.Context, username string, update auth.UserUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var (
		sets []string
		args = []any{username}
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.FirstName != nil {
		set("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		set("last_name", *update.LastName)
	}
	if update.PasswordHash != nil {
		set("password_hash", *update.PasswordHash)
	}
	if update.Roles != nil {
		set("roles", update.Roles.Strings())
	}
	sets = append(sets, "updated_at = NOW()")

	result, err := r.pool.Exec(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE username = $1`, args...)
	if isUniqueViolation(err) {
		return oops.Code("USER_DUPLICATE").
			With("username", username).
			Wrap(auth.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user fields").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// IncrementFailedAttempts adds one to the failed-login counter in a single statement.
func (r *UserRepository) IncrementFailedAttempts(ctx context.Context, username string) error {
	return r.execByUsername(ctx, "increment failed attempts", username, `
		UPDATE users SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		WHERE username = $1
	`)
}

// ResetFailedAttempts sets the failed-login counter to zero.
func (r *UserRepository) ResetFailedAttempts(ctx context.Context, username string) error {
	return r.execByUsername(ctx, "reset failed attempts", username, `
		UPDATE users SET failed_login_attempts = 0, updated_at = NOW()
		WHERE username = $1
	`)
}

// SetLoggedIn toggles the logged-in flag.
func (r *UserRepository) SetLoggedIn(ctx context.Context, username string, loggedIn bool) error {
	return r.execByUsername(ctx, "set logged in", username, `
		UPDATE users SET logged_in = $2, updated_at = NOW()
		WHERE username = $1
	`, loggedIn)
}

func (r *UserRepository) execByUsername(ctx context.Context, op, username, sql string, extra ...any) error {
	args := append([]any{username}, extra...)
	result, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", op).
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SearchByEmail lists users whose e-mail contains fragment, case-insensitively.
func (r *UserRepository) SearchByEmail(ctx context.Context, fragment string, limit int) ([]*auth.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email ILIKE '%' || $1 || '%'
		ORDER BY email
		LIMIT $2
	`, escapeLike(fragment), limit)
	if err != nil {
		return nil, oops.Code("USER_SEARCH_FAILED").
			With("operation", "search users by email").
			With("fragment", fragment).
			Wrap(err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_SEARCH_FAILED").
				With("operation", "scan user row").
				Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_SEARCH_FAILED").
			With("operation", "iterate users").
			Wrap(err)
	}
	return users, nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr     string
		user      auth.User
		roleNames []string
	)

	err := row.Scan(
		&idStr,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.PasswordHint,
		&user.Picture,
		&roleNames,
		&user.FailedLoginAttempts,
		&user.LoggedIn,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	user.Roles, err = auth.ParseRoles(roleNames...)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ROLES").
			With("username", user.Username).
			With("roles", roleNames).
			Wrap(err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
