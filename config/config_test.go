package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_KEY", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "surveydesk.sqlite?_foreign_keys=on", cfg.DatabaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "uploads/", cfg.UploadPrefix)
	require.NotNil(t, GoogleOauthConfig)
	assert.Equal(t, "http://localhost:9000/auth/google/callback", GoogleOauthConfig.RedirectURL)
}

func TestLoadRequiresSettings(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_KEY", "secret")
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL environment variable is not set")

	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("SESSION_KEY", "")
	_, err = Load()
	assert.EqualError(t, err, "SESSION_KEY environment variable is not set")

	t.Setenv("DB_DRIVER", "mysql")
	_, err = Load()
	assert.EqualError(t, err, `unsupported DB_DRIVER "mysql"`)
}
