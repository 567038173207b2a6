// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package store

import (
	"errors"
	"regexp"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/pkg/errutil"
)

type fakeMigrate struct {
	upErr, downErr, stepsErr error
	version                  uint
	dirty                    bool
	versionErr               error
	closeSrcErr, closeDBErr  error
	steps                    []int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Close() (error, error)        { return f.closeSrcErr, f.closeDBErr }

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/wellnest":   "pgx5://u:p@db:5432/wellnest",
		"postgresql://u:p@db:5432/wellnest": "pgx5://u:p@db:5432/wellnest",
		"pgx5://db/wellnest":                "pgx5://db/wellnest",
		"mysql://db/wellnest":               "mysql://db/wellnest",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestNewMigrator_InitFailures(t *testing.T) {
	for _, url := range []string{"invalid://url", "postgresql://127.0.0.1:1/wellnest?connect_timeout=1"} {
		_, err := NewMigrator(url)
		require.Error(t, err, url)
		errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
		assert.NotContains(t, err.Error(), "unknown driver postgresql")
	}
}

func TestMigrator_IgnoresNoChange(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{
		upErr:    migrate.ErrNoChange,
		downErr:  migrate.ErrNoChange,
		stepsErr: migrate.ErrNoChange,
	}}
	require.NoError(t, m.Up())
	require.NoError(t, m.Down())
	require.NoError(t, m.Steps(0))
}

func TestMigrator_Failures(t *testing.T) {
	boom := errors.New("database locked")
	m := &Migrator{m: &fakeMigrate{upErr: boom, downErr: boom, stepsErr: boom, versionErr: boom}}

	errutil.AssertErrorCode(t, m.Up(), "MIGRATION_UP_FAILED")
	errutil.AssertErrorCode(t, m.Down(), "MIGRATION_DOWN_FAILED")
	errutil.AssertErrorCode(t, m.Steps(-1), "MIGRATION_STEPS_FAILED")

	_, _, err := m.Version()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")

	_, err = m.Status()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
}

func TestMigrator_StepsPassesCount(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}
	require.NoError(t, m.Steps(2))
	require.NoError(t, m.Steps(-1))
	assert.Equal(t, []int{2, -1}, fake.steps)
}

func TestMigrator_VersionOfFreshDatabase(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestMigrator_Status(t *testing.T) {
	t.Run("fresh database has everything pending", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		status, err := m.Status()
		require.NoError(t, err)
		assert.Zero(t, status.Current)
		assert.Empty(t, status.Applied)
		assert.Equal(t, []uint{1, 2}, status.Pending)
	})

	t.Run("partially migrated", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 1, dirty: true}}
		status, err := m.Status()
		require.NoError(t, err)
		assert.Equal(t, uint(1), status.Current)
		assert.True(t, status.Dirty)
		assert.Equal(t, []uint{1}, status.Applied)
		assert.Equal(t, []uint{2}, status.Pending)
	})
}

func TestMigrator_Close(t *testing.T) {
	require.NoError(t, (&Migrator{m: &fakeMigrate{}}).Close())

	err := (&Migrator{m: &fakeMigrate{closeDBErr: errors.New("conn busy")}}).Close()
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	assert.Contains(t, err.Error(), "conn busy")

	err = (&Migrator{m: &fakeMigrate{closeSrcErr: errors.New("source gone")}}).Close()
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make(map[string]bool, len(entries))
	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		names[entry.Name()] = true
		assert.Regexp(t, pattern, entry.Name())
	}
	for _, want := range []string{
		"000001_users.up.sql",
		"000001_users.down.sql",
		"000002_users_email_search.up.sql",
		"000002_users_email_search.down.sql",
	} {
		assert.True(t, names[want], "missing %s", want)
	}

	versions, err := embeddedVersions()
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, versions)
}
