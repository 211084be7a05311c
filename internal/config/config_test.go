package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8080
database:
  host: localhost
  user: costume
  database: costume_rental
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.GRPCPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, int32(30), cfg.Rental.MaxDays)
	assert.True(t, decimal.RequireFromString("50").Equal(cfg.DefaultPenalty()))
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.MarkOverdueRentals)
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.RefreshPenaltyRate)
	assert.Equal(t, "postgres://costume:@localhost:5432/costume_rental?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("RENTAL_MAX_DAYS", "14")
	t.Setenv("RENTAL_DEFAULT_PENALTY_PER_DAY", "25.50")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int32(14), cfg.Rental.MaxDays)
	assert.True(t, decimal.RequireFromString("25.50").Equal(cfg.DefaultPenalty()))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Missing port", "database: {host: h, user: u, database: d}"},
		{"Missing database host", "server: {port: 8080}\ndatabase: {user: u, database: d}"},
		{"Negative penalty", minimalYAML + "rental: {default_penalty_per_day: \"-1\"}"},
		{"Unparseable penalty", minimalYAML + "rental: {default_penalty_per_day: abc}"},
		{"Negative max days", minimalYAML + "rental: {max_days: -3}"},
		{"Bad yaml", "server: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("Reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.GetServerAddress())
		assert.Equal(t, ":8081", cfg.GetGRPCAddress())
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestGetAccessLevel(t *testing.T) {
	assert.Equal(t, AccessPublic, GetAccessLevel("Health"))
	assert.Equal(t, AccessActor, GetAccessLevel("ReturnRental"))
	assert.Equal(t, AccessActor, GetAccessLevel("SomethingNew"))
}
