// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wellnest/wellnest/internal/store"
)

var _ = Describe("PostgreSQL store", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("wellnest_test"),
			postgres.WithUsername("wellnest"),
			postgres.WithPassword("wellnest"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	Describe("Connect", func() {
		It("returns a pool that answers queries", func() {
			pool, err := store.Connect(ctx, connStr, store.WithAttempts(3, 500*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())
			defer pool.Close()

			var one int
			Expect(pool.QueryRow(ctx, "SELECT 1").Scan(&one)).To(Succeed())
			Expect(one).To(Equal(1))
		})
	})

	Describe("Migrator", func() {
		var migrator *store.Migrator

		BeforeEach(func() {
			var err error
			migrator, err = store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(migrator.Close()).To(Succeed())
		})

		It("walks the schema up, back one step and down", func() {
			status, err := migrator.Status()
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Current).To(BeZero())
			Expect(status.Pending).To(Equal([]uint{1, 2}))

			Expect(migrator.Up()).To(Succeed())
			Expect(migrator.Up()).To(Succeed(), "a second Up is a no-op")

			status, err = migrator.Status()
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Current).To(Equal(uint(2)))
			Expect(status.Dirty).To(BeFalse())
			Expect(status.Pending).To(BeEmpty())

			Expect(migrator.Steps(-1)).To(Succeed())
			version, _, err := migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(uint(1)))

			Expect(migrator.Down()).To(Succeed())
			version, _, err = migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(BeZero())
		})

		It("enforces unique usernames and the role vocabulary", func() {
			Expect(migrator.Up()).To(Succeed())
			DeferCleanup(func() { Expect(migrator.Down()).To(Succeed()) })

			pool, err := store.Connect(ctx, connStr)
			Expect(err).NotTo(HaveOccurred())
			defer pool.Close()

			insert := `INSERT INTO users (id, username, email, password_hash, roles)
				VALUES ($1, $2, $3, 'x', $4)`
			_, err = pool.Exec(ctx, insert, "01J0000000000000000000000A", "bob", "bob@example.com", []string{"user"})
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx, insert, "01J0000000000000000000000B", "bob", "other@example.com", []string{"user"})
			Expect(err).To(HaveOccurred())

			_, err = pool.Exec(ctx, insert, "01J0000000000000000000000C", "eve", "eve@example.com", []string{"root"})
			Expect(err).To(HaveOccurred())
		})
	})
})
