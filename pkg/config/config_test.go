package config_test

import (
	"testing"

	"github.com/jhoicas/Cocina-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DriverYDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	cfg, err := config.Load()
	require.Error(t, err)
	assert.Nil(t, cfg)

	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("ALERTS_WARNING_DAYS", "7")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 7, cfg.Alerts.WarningDays)
	assert.Equal(t, 5, cfg.Alerts.UrgentDays)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "passthrough", cfg.App.UnitPolicy)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "cocina", Password: "p@ss:word", DBName: "cocina", SSLMode: "disable"}
	assert.Equal(t, "postgres://cocina:p%40ss%3Aword@db:5432/cocina?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
