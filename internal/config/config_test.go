package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DEFAULTS_INQUIRY_RESPONSE_DATE_OFFSET_DAYS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgrest", cfg.Store.Backend)
	assert.Equal(t, "https://example.supabase.co", cfg.Store.URL)
	assert.Equal(t, "anon-key", cfg.Store.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12*time.Hour, cfg.Redis.SessionTTL)

	assert.Equal(t, "한상명", cfg.Defaults.Activity.Assignees.CNSManager)
	assert.Equal(t, "이정인", cfg.Defaults.Inquiry.Assignees.CNSManager)
	assert.Equal(t, 1, cfg.Defaults.Activity.WorkDateOffsetDays)
	assert.Equal(t, 0, cfg.Defaults.Inquiry.ResponseDateOffsetDays)
}

func TestLoadRequiresStoreCredentials(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "")
	t.Setenv("STORE_BACKEND", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateBackends(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Backend: "postgres"}, Database: DatabaseConfig{Host: "db", DBName: "smdesk"}}
	assert.NoError(t, cfg.Validate())

	cfg.Store.Backend = "mongo"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", d.DSN())
}
