package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T, driver string) (*DB, func()) {
	ctx := context.Background()

	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("po_monitoring_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, driver, dsn)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestPostgres_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			db, cleanup := setupPostgresContainer(t, driver)
			defer cleanup()

			repo := NewPORepository(db)
			ctx := context.Background()

			created, err := repo.Create(ctx, samplePO("PO-100", "Acme Corp"))
			require.NoError(t, err)

			got, err := repo.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, "2024-01-01", got.OrderDate.String())
			assert.Equal(t, "2024-01-10", got.ExpectedETA.String())
			assert.True(t, created.Nominal.Equal(got.Nominal))

			actual := domain.MustParseDate("2024-01-12")
			got.ActualETA = &actual
			updated, err := repo.Update(ctx, got)
			require.NoError(t, err)
			require.NotNil(t, updated.ActualETA)
			assert.Equal(t, domain.StatusCompleted, domain.Classify(updated, domain.MustParseDate("2024-01-11")))

			_, err = repo.Create(ctx, samplePO("ACME-2", "Globex"))
			require.NoError(t, err)
			_, err = repo.Create(ctx, samplePO("PO-3", "Initech"))
			require.NoError(t, err)

			found, err := repo.List(ctx, domain.POFilter{Search: "acme", Year: 2024, Month: 1})
			require.NoError(t, err)
			assert.Len(t, found, 2)

			years, err := repo.GetYears(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int{2024}, years)

			require.NoError(t, repo.Delete(ctx, created.ID))
			assert.True(t, domain.IsNotFound(repo.Delete(ctx, created.ID)))
		})
	}
}
