// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package redisstate stores single-use OAuth state nonces in Redis.
package redisstate

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultTTL bounds how long a user may take to finish the provider round trip.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "oauth_state:"

// ErrInvalidState is returned when a state is unknown, expired, reused, or
// was issued for another provider.
var ErrInvalidState = errors.New("invalid oauth state")

// Store issues and consumes state nonces.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// New creates a Store. A non-positive ttl selects DefaultTTL.
func New(rdb redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Issue creates a random state bound to provider.
func (s *Store) Issue(ctx context.Context, provider string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("OAUTH_STATE_FAILED").Wrap(err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.rdb.Set(ctx, keyPrefix+state, provider, s.ttl).Err(); err != nil {
		return "", oops.Code("OAUTH_STATE_FAILED").
			With("provider", provider).
			Wrap(err)
	}
	return state, nil
}

// Consume deletes state and checks it was issued for provider. A state can
// be consumed once.
func (s *Store) Consume(ctx context.Context, state, provider string) error {
	if state == "" {
		return oops.Code("OAUTH_STATE_INVALID").With("provider", provider).Wrap(ErrInvalidState)
	}

	issuedFor, err := s.rdb.GetDel(ctx, keyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return oops.Code("OAUTH_STATE_INVALID").With("provider", provider).Wrap(ErrInvalidState)
	}
	if err != nil {
		return oops.Code("OAUTH_STATE_FAILED").With("provider", provider).Wrap(err)
	}
	if issuedFor != provider {
		return oops.Code("OAUTH_STATE_INVALID").
			With("provider", provider).
			With("issued_for", issuedFor).
			Wrap(ErrInvalidState)
	}
	return nil
}
