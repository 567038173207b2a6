// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/wellnest/wellnest/internal/auth"
)

// memUserRepo is a stateful in-memory UserRepository for scenario tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*auth.User)}
}

// get returns a copy of the stored user or nil.
func (r *memUserRepo) get(username string) *auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (r *memUserRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	if u := r.get(username); u != nil {
		return u, nil
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) Count(_ context.Context, f auth.UserFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if f.Username != "" && u.Username != f.Username {
			continue
		}
		if f.Email != "" && u.Email != f.Email {
			continue
		}
		if f.LoggedIn != nil && u.LoggedIn != *f.LoggedIn {
			continue
		}
		n++
	}
	return n, nil
}

func (r *memUserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return auth.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.Username] = &cp
	return nil
}

func (r *memUserRepo) UpdateFields(_ context.Context, username string, up auth.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return auth.ErrNotFound
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.FirstName != nil {
		u.FirstName = *up.FirstName
	}
	if up.LastName != nil {
		u.LastName = *up.LastName
	}
	if up.PasswordHash != nil {
		u.PasswordHash = *up.PasswordHash
	}
	if up.Roles != nil {
		u.Roles = up.Roles
	}
	return nil
}

func (r *memUserRepo) IncrementFailedAttempts(_ context.Context, username string) error {
	return r.mutate(username, func(u *auth.User) { u.FailedLoginAttempts++ })
}

func (r *memUserRepo) ResetFailedAttempts(_ context.Context, username string) error {
	return r.mutate(username, func(u *auth.User) { u.FailedLoginAttempts = 0 })
}

func (r *memUserRepo) SetLoggedIn(_ context.Context, username string, loggedIn bool) error {
	return r.mutate(username, func(u *auth.User) { u.LoggedIn = loggedIn })
}

func (r *memUserRepo) SearchByEmail(_ context.Context, fragment string, limit int) ([]*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auth.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Email), strings.ToLower(fragment)) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, u := range r.users {
		if u.ID == id {
			delete(r.users, name)
			return nil
		}
	}
	return auth.ErrNotFound
}

func (r *memUserRepo) mutate(username string, fn func(*auth.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return auth.ErrNotFound
	}
	fn(u)
	return nil
}

var _ auth.UserRepository = (*memUserRepo)(nil)
