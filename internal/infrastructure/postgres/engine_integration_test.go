package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-pos/pkg/config"
)

// Requiere una base PostgreSQL desechable: TIENDA_POS_TEST_DATABASE_URL=postgres://...
func TestEngine_PostgresSalidasConcurrentesNuncaDejanStockNegativo(t *testing.T) {
	url := os.Getenv("TIENDA_POS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TIENDA_POS_TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 30})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, postgres.RunMigrations(ctx, pool, zerolog.Nop()))

	supplierID := uuid.NewString()
	_, err = pool.Exec(ctx, `INSERT INTO suppliers (id, name) VALUES ($1, $2)`, supplierID, "Distribuidora Central")
	require.NoError(t, err)

	store := postgres.NewStore(pool)
	productID := uuid.NewString()
	now := time.Now()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: productID, Title: "Medias", CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(20),
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))

	engine := stock.NewEngine(postgres.NewTxRunner(pool), zerolog.Nop())
	_, err = engine.Receive(ctx, productID, 10, supplierID, "compra")
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Adjust(ctx, productID, 1, "conteo"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	p, err := store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
}
