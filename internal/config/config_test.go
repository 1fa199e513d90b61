package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "test_secret", cfg.JWTSecret)
}

func TestFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestFromEnv_UnsupportedDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "postgres")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_FROM", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.db", cfg.Database.DSN())
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "mailer@example.com", cfg.SMTP.From)
}

func TestDatabaseConfig_MySQLDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "mysql", User: "u", Pass: "p", Host: "db", Port: "3306", Name: "todo"}
	assert.Equal(t, "u:p@tcp(db:3306)/todo?parseTime=true&loc=UTC", d.DSN())
}

func TestLoadClient_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("TODO_SERVER_URL", "http://api.example:8080/")
	t.Setenv("TODO_LOG_FILE", "")

	cfg := LoadClient()
	assert.Equal(t, "http://api.example:8080", cfg.ServerURL)
	assert.Equal(t, "todo.log", cfg.LogFile)
}
