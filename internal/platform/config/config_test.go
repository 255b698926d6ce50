package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv deja vacías las variables que lee applyEnv.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvConfigPath, "APP_NAME", "PORT", "STORAGE_DRIVER", "DB_DSN",
		"SQLITE_PATH", "CLINIC_TIMEZONE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
	// sin .env ni vetclinic.yaml del repo
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, path, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.Addr())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "clinic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app: clinica-norte
port: "9090"
storage:
  driver: sqlite
  sqlite_path: /tmp/norte.db
clinic:
  timezone: America/Argentina/Buenos_Aires
log:
  level: debug
`), 0o600))

	t.Setenv(EnvConfigPath, path)
	t.Setenv("PORT", "7070")

	cfg, used, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "clinica-norte", cfg.App)
	assert.Equal(t, ":7070", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/norte.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	// lo que el YAML no trae queda con el default
	assert.Equal(t, "text", cfg.Log.Format)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", loc.String())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("LOG_FORMAT"))
	require.NoError(t, os.WriteFile(".env", []byte("LOG_FORMAT=json\n"), 0o600))

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "mongo"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Driver = "POSTGRES"
	require.Error(t, cfg.Validate(), "postgres without dsn")
	cfg.Storage.DSN = "postgres://localhost/vet"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres", cfg.Storage.Driver)

	cfg = Default()
	cfg.Clinic.Timezone = "Mars/Olympus"
	require.Error(t, cfg.Validate())
}
