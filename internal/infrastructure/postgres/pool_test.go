package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/pkg/config"
)

func TestNewPoolConfig_AplicaTamanoDelPool(t *testing.T) {
	cfg := config.DBConfig{
		Host: "127.0.0.1", Port: 5432, User: "pos", Password: "secreto", DBName: "tienda", SSLMode: "disable",
		MaxConns: 8, MinConns: 1, MaxConnLifetime: 15 * time.Minute, MaxConnIdleTime: 5 * time.Minute, HealthCheckPeriod: 30 * time.Second,
	}
	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 15*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, 30*time.Second, pc.HealthCheckPeriod)
	assert.Equal(t, "127.0.0.1", pc.ConnConfig.Host)
	assert.Equal(t, "tienda", pc.ConnConfig.Database)
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_DSNInvalido(t *testing.T) {
	_, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://pos@127.0.0.1:puerto/tienda", MaxConns: 1})
	assert.Error(t, err)
}

func TestResolveIPv4_LiteralSinDNS(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", ip)

	_, err = resolveIPv4(context.Background(), "::1")
	assert.Error(t, err)
}
