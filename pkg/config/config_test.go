package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-inspector/pkg/config"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Log.Path = t.TempDir()
	require.NoError(t, cfg.Validate())
}

func TestDatabaseConfigURI(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.Equal(t, "bolt://localhost:7687", cfg.Database.URI())

	cfg.Database.Scheme = "neo4j+s"
	cfg.Database.Host = "db.example.com"
	cfg.Database.Port = 7688
	assert.Equal(t, "neo4j+s://db.example.com:7688", cfg.Database.URI())
}

func TestDatabaseConfigEncrypted(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.False(t, cfg.Database.Encrypted())

	for _, scheme := range []string{"bolt+s", "neo4j+s"} {
		cfg.Database.Scheme = scheme
		assert.True(t, cfg.Database.Encrypted(), scheme)
	}
}

func TestDatabaseConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *config.DatabaseConfig)
	}{
		{"unknown scheme", func(d *config.DatabaseConfig) { d.Scheme = "http" }},
		{"zero port", func(d *config.DatabaseConfig) { d.Port = 0 }},
		{"port too large", func(d *config.DatabaseConfig) { d.Port = 70000 }},
		{"empty host", func(d *config.DatabaseConfig) { d.Host = "  " }},
		{"host carries scheme", func(d *config.DatabaseConfig) { d.Host = "bolt://localhost" }},
		{"connect timeout too small", func(d *config.DatabaseConfig) { d.ConnectTimeout = 100 * time.Millisecond }},
		{"connect timeout too large", func(d *config.DatabaseConfig) { d.ConnectTimeout = time.Hour }},
		{"pool size zero", func(d *config.DatabaseConfig) { d.PoolMaxSize = 0 }},
		{"pool size too large", func(d *config.DatabaseConfig) { d.PoolMaxSize = 2048 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := config.NewDefaultConfig().Database
			tc.mutate(&db)
			assert.Error(t, db.Validate())
		})
	}
}

func TestServerConfigRejectsBadAddr(t *testing.T) {
	srv := config.NewDefaultConfig().Server
	srv.Addr = "not an address"
	assert.Error(t, srv.Validate())
}

func TestLogConfigRejectsBadValues(t *testing.T) {
	base := config.NewDefaultConfig().Log
	base.Path = t.TempDir()

	lvl := base
	lvl.Level = "verbose"
	assert.Error(t, lvl.Validate())

	format := base
	format.Format = "xml"
	assert.Error(t, format.Validate())
}
