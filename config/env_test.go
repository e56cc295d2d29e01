package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadPrecedence(t *testing.T) {
	_ = Load()
	t.Cleanup(func() { _ = loadFromFiles("", "", "") })

	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"app_name":"FromJSON","tax_rate":0.2,"nested":{"x":1}}`)
	yamlPath := writeFile(t, dir, "app.yaml", "app_name: FromYAML\nshipping_flat_rate: 7.5\n")
	envPath := writeFile(t, dir, ".env", "# comment\nAPP_NAME=\"FromEnvFile\"\nCART_TTL=1h\nbroken line\n")
	t.Setenv("LOW_STOCK_THRESHOLD", "9")

	require.NoError(t, loadFromFiles(jsonPath, yamlPath, envPath))

	assert.Equal(t, "FromEnvFile", AppName())
	assert.Equal(t, 0.2, TaxRate())
	assert.Equal(t, 7.5, ShippingFlatRate())
	assert.Equal(t, time.Hour, CartTTL())
	assert.Equal(t, 9, LowStockThreshold())
	assert.Empty(t, get("NESTED", ""))
}

func TestMissingFilesUseDefaults(t *testing.T) {
	_ = Load()
	t.Cleanup(func() { _ = loadFromFiles("", "", "") })

	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "a.json"), filepath.Join(dir, "a.yaml"), filepath.Join(dir, ".env")))

	assert.Equal(t, defaultAppName, AppName())
	assert.Equal(t, 100.0, FreeShippingThreshold())
	assert.Equal(t, "sql", StoreDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
}

func TestMalformedValuesFallBack(t *testing.T) {
	Set("TAX_RATE", "ten percent")
	Set("PENDING_ORDER_TTL", "-5h")
	Set("STORE_DRIVER", "cassandra")
	Set("RATE_LIMIT", "lots")
	t.Cleanup(func() {
		Set("TAX_RATE", "0.10")
		Set("PENDING_ORDER_TTL", "72h")
		Set("STORE_DRIVER", "sql")
		Set("RATE_LIMIT", "200")
	})

	assert.Equal(t, 0.10, TaxRate())
	assert.Equal(t, 72*time.Hour, PendingOrderTTL())
	assert.Equal(t, "sql", StoreDriver())
	assert.Equal(t, 200, RateLimit())
}

func TestCORSOriginsSplit(t *testing.T) {
	Set("CORS_ORIGINS", " https://a.test, ,https://b.test ")
	t.Cleanup(func() { Set("CORS_ORIGINS", "*") })

	assert.Equal(t, []string{"https://a.test", "https://b.test"}, CORSOrigins())
}

func TestIsProduction(t *testing.T) {
	Set("APP_ENV", "Production")
	t.Cleanup(func() { Set("APP_ENV", defaultAppEnv) })
	assert.True(t, IsProduction())
}
