package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, ".gallery", cfg.DataDir)
	assert.Equal(t, "hive:tibfox", cfg.Admin)
	assert.Equal(t, DriverSqlite, cfg.Indexer.Driver)
	assert.Equal(t, filepath.Join(".gallery", "index.db"), cfg.Indexer.DSN)
	assert.Equal(t, filepath.Join(".gallery", "chain"), cfg.ChainDir())
}

func TestLoadYamlThenEnv(t *testing.T) {
	yamlContent := `
dataDir: "/var/lib/gallery"
admin: "hive:curator"
metricsAddr: ":9000"
logging:
  level: debug
  console: false
  file: gallery.log
indexer:
  driver: mysql
  dsn: "user:pw@tcp(db:3306)/gallery"
`
	path := writeFile(t, "gallery.yaml", yamlContent)
	t.Setenv("GALLERY_METRICS_ADDR", ":9100")
	t.Setenv("GALLERY_LOG_LEVEL", "warn")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/gallery", cfg.DataDir)
	assert.Equal(t, "hive:curator", cfg.Admin)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "gallery.log", cfg.Logging.LogFile)
	assert.False(t, cfg.Logging.Console)
	assert.Equal(t, DriverMysql, cfg.Indexer.Driver)
	assert.Equal(t, "user:pw@tcp(db:3306)/gallery", cfg.Indexer.DSN)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "GALLERY_ADMIN=hive:fromdotenv\nGALLERY_DATA_DIR=\n")
	// godotenv only fills unset variables, t.Setenv restores whatever was there
	for _, k := range []string{"GALLERY_ADMIN", "GALLERY_DATA_DIR"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("GALLERY_INDEXER_DRIVER", "none")

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "hive:fromdotenv", cfg.Admin)
	assert.Equal(t, "", cfg.ChainDir())
	assert.Equal(t, DriverNone, cfg.Indexer.Driver)

	// a missing .env is not an error
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"bad admin":    "admin: nobody\n",
		"mysql no dsn": "indexer:\n  driver: mysql\n",
		"bad driver":   "indexer:\n  driver: postgres\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", content), "")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	_, err := Load(writeFile(t, "c.yaml", "admin: [\n"), "")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	cfg := Default()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
