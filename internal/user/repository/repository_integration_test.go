//go:build integration

package repository_test

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AlibekovAA/credauth/internal/common/db"
	"github.com/AlibekovAA/credauth/internal/common/logger"
	"github.com/AlibekovAA/credauth/internal/user/domain"
	"github.com/AlibekovAA/credauth/internal/user/repository"
)

var _ = Describe("PgRepository", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		pool      *pgxpool.Pool
		repo      *repository.PgRepository
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("credauth_test"),
			postgres.WithUsername("credauth"),
			postgres.WithPassword("credauth"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := db.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = db.NewPool(ctx, logger.NewWithWriter(&bytes.Buffer{}, "test", "error"), connStr)
		Expect(err).NotTo(HaveOccurred())
		repo = repository.NewPgRepository(pool)
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	BeforeEach(func() {
		_, err := pool.Exec(ctx, `TRUNCATE users`)
		Expect(err).NotTo(HaveOccurred())
	})

	newUser := func(email, username string) domain.User {
		return domain.User{
			ID:           domain.ID(uuid.NewString()),
			Email:        email,
			Username:     username,
			PasswordHash: "$2a$12$abcdefghijklmnopqrstuuO8aQ0lEHm1uVx0Kp3bX2M3jzS9Gq5yG",
			CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		}
	}

	It("round-trips a user and finds it by email, username and id", func() {
		u := newUser("Alice@Example.com", "alice")
		u.DisplayName = "Alice"
		Expect(repo.Create(ctx, u)).To(Succeed())

		byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmail.ID).To(Equal(u.ID))
		Expect(byEmail.Email).To(Equal("alice@example.com"))
		Expect(byEmail.DisplayName).To(Equal("Alice"))

		byEither, err := repo.FindByEmailOrUsername(ctx, "other@example.com", "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEither.ID).To(Equal(u.ID))

		byID, err := repo.FindByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.CreatedAt.Equal(u.CreatedAt)).To(BeTrue())
	})

	It("stores absent display name and password hash as NULL", func() {
		u := newUser("nopass@example.com", "nopass")
		u.PasswordHash = ""
		Expect(repo.Create(ctx, u)).To(Succeed())

		got, err := repo.FindByEmail(ctx, "nopass@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.HasPassword()).To(BeFalse())
		Expect(got.DisplayName).To(BeEmpty())
	})

	It("classifies unique violations by constraint", func() {
		Expect(repo.Create(ctx, newUser("dup@example.com", "dup"))).To(Succeed())

		Expect(repo.Create(ctx, newUser("DUP@example.com", "fresh"))).To(MatchError(repository.ErrEmailAlreadyExists))
		Expect(repo.Create(ctx, newUser("fresh@example.com", "dup"))).To(MatchError(repository.ErrUsernameAlreadyExists))
	})

	It("lets exactly one of many concurrent identical registrations win", func() {
		const attempts = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				err := repo.Create(ctx, newUser("race@example.com", "racer"))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else {
					Expect(err).To(Or(
						MatchError(repository.ErrEmailAlreadyExists),
						MatchError(repository.ErrUsernameAlreadyExists),
					))
					conflicts++
				}
			}()
		}
		wg.Wait()

		Expect(successes).To(Equal(1))
		Expect(conflicts).To(Equal(attempts - 1))

		var count int
		Expect(pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = 'race@example.com'`).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("reports ErrUserNotFound for unknown users", func() {
		_, err := repo.FindByEmail(ctx, "ghost@example.com")
		Expect(err).To(MatchError(repository.ErrUserNotFound))
	})
})
