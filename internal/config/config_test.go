package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  host: 0.0.0.0
  port: 9000
database:
  host: localhost
  port: 5432
  user: swatch
  password: secret
  dbname: swatches
jwt:
  secret: from-file
  ttl: 45m
storage:
  base_dir: /srv/swatches
log:
  level: debug
`

func clearEnv(t *testing.T) {
	t.Setenv("SWATCH_JWT_SECRET", "")
	t.Setenv("SWATCH_DATABASE_URL", "")
	t.Setenv("SWATCH_STORAGE_DIR", "")
}

func TestParse(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 45*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "X-Refresh-Token", cfg.JWT.RefreshHeader)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "/srv/swatches", cfg.Storage.BaseDir)
	assert.Equal(t, "model image", cfg.Storage.ModelDir)
	assert.EqualValues(t, 32<<20, cfg.Storage.MaxUploadBytes())
	assert.False(t, cfg.Auth.RequireToken)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t,
		"host=localhost port=5432 user=swatch password=secret dbname=swatches sslmode=disable",
		cfg.Database.DSN())
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("jwt:\n  secret: k\ndatabase:\n  url: postgres://localhost/db\n"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "postgres://localhost/db", cfg.Database.DSN())
	assert.True(t, filepath.IsAbs(cfg.Storage.BaseDir) || cfg.Storage.BaseDir == "swach image")
	assert.Equal(t, "swach image", filepath.Base(cfg.Storage.BaseDir))
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SWATCH_JWT_SECRET", "from-env")
	t.Setenv("SWATCH_DATABASE_URL", "postgres://env/db")
	t.Setenv("SWATCH_STORAGE_DIR", "/tmp/swatches")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN())
	assert.Equal(t, "/tmp/swatches", cfg.Storage.BaseDir)
}

func TestParse_Invalid(t *testing.T) {
	clearEnv(t)

	cases := map[string]string{
		"missing secret":  "database:\n  host: db\n",
		"unknown backend": "jwt:\n  secret: k\ndatabase:\n  host: db\nstorage:\n  backend: ftp\n",
		"s3 no bucket":    "jwt:\n  secret: k\ndatabase:\n  host: db\nstorage:\n  backend: s3\n  s3:\n    region: us-east-1\n",
		"no database":     "jwt:\n  secret: k\n",
		"bad yaml":        "jwt: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.Secret)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
