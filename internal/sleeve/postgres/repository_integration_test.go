//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/sleeveselector/internal/sleeve"
)

func TestRepositoryImportAndReadBack(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("sleeves"),
		postgrescontainer.WithUsername("sizing"),
		postgrescontainer.WithPassword("sizing"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	runMigrations(t, ctx, pool)

	products, err := sleeve.EmbeddedSource{}.Products(ctx)
	require.NoError(t, err)

	repo := NewRepository(pool)
	require.NoError(t, repo.Import(ctx, products))

	stored, err := repo.Products(ctx)
	require.NoError(t, err)
	require.Equal(t, products, stored)

	// A second import replaces rather than appends.
	require.NoError(t, repo.Import(ctx, products[:2]))
	stored, err = repo.Products(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	catalog, err := sleeve.LoadCatalog(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())
}

func runMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	contents, err := os.ReadFile(resolvePath(t, "../../../db/migrations/0001_sleeve_products.up.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
