package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "JWT_EXPIRATION", "PASSWORD_SCHEME", "CORS_ORIGINS", "TELEGRAM_BOT_TOKEN", "CONFIG_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, PasswordSchemePlain, cfg.PasswordScheme)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
port: "9090"
upload_path: /srv/uploads
jwt_expiration: 2h
institute_name: Test Institute
cors_origins: ["http://a.example"]
frontend_url: http://old.example
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("CORS_ORIGINS", "http://b.example, http://c.example")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/srv/uploads", cfg.UploadPath)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "Test Institute", cfg.InstituteName)
	assert.Equal(t, []string{"http://b.example", "http://c.example"}, cfg.CORSOrigins)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad max file size", "MAX_FILE_SIZE", "big"},
		{"bad expiration", "JWT_EXPIRATION", "tomorrow"},
		{"unknown scheme", "PASSWORD_SCHEME", "md5"},
		{"bad chat id", "TELEGRAM_CHAT_ID", "chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
