package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  input_files:
    - data/day1.csv
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"data/day1.csv"}, cfg.Pipeline.InputFiles)
	assert.Equal(t, "output", cfg.Pipeline.OutputDir)
	assert.Equal(t, "result.log", cfg.Logging.LogFile)
	assert.Equal(t, "info", cfg.Logging.LogLevel)
	assert.False(t, cfg.Export.Database.Enabled)
}

func TestLoad_RequiresInputFiles(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  output_dir: out
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one input file")
}

func TestLoad_ValidatesDatabaseOnlyWhenSinkEnabled(t *testing.T) {
	// Broken database block is fine while the sink is off
	path := writeConfig(t, `
pipeline:
  input_files: [data/day1.csv]
database:
  driver: oracle
`)
	_, err := Load(path)
	require.NoError(t, err)

	// Same block fails once the sink is enabled
	path = writeConfig(t, `
pipeline:
  input_files: [data/day1.csv]
export:
  database:
    enabled: true
database:
  driver: oracle
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestValidateDatabase(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "sqlite with path",
			mutate: func(c *Config) { c.Database.Driver = "sqlite"; c.Database.SQLite.Path = "x.db" },
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: "sqlite path is required",
		},
		{
			name: "mysql missing user",
			mutate: func(c *Config) {
				c.Database.Driver = "mysql"
				c.Database.MySQL.Host = "localhost"
				c.Database.MySQL.DBName = "turbines"
			},
			wantErr: "mysql user is required",
		},
		{
			name: "postgres missing host",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.PostgreSQL.User = "u"
				c.Database.PostgreSQL.DBName = "turbines"
			},
			wantErr: "postgres host is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mongodb" },
			wantErr: "unsupported database driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			tt.mutate(&cfg)

			err := cfg.ValidateDatabase()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	var cfg Config
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLite.Path = "turbine_data.db"
	assert.Equal(t, "turbine_data.db", cfg.GetDSN())

	cfg.Database.Driver = "postgres"
	cfg.Database.PostgreSQL = PostgresConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "turbines", SSLMode: "disable", TimeZone: "UTC",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=u password=p dbname=turbines sslmode=disable TimeZone=UTC",
		cfg.GetDSN())

	cfg.Database.Driver = "unknown"
	assert.Equal(t, "", cfg.GetDSN())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
