package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[database]
storage = "memory"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.Database.Storage)
	assert.Equal(t, "Asia/Tokyo", cfg.Booking.Timezone)
	assert.Equal(t, 30, cfg.Booking.MakeupWindowDays)
	assert.Equal(t, "12:00", cfg.Booking.CutoffTime)
	assert.Equal(t, SenderConsole, cfg.Mail.Sender)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	settings := cfg.DefaultSettings()
	assert.Equal(t, 30, settings.MakeupWindowDays)
	assert.Equal(t, "12:00", settings.CutoffTime.String())
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
[database]
storage = "postgres"
user = "furikae"
dbname = "furikae"
password = "from-file"

[mail]
public_base_url = "http://file.example"
`)

	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("ADMIN_TOKEN_HASH", "$2a$10$hash")
	t.Setenv("PUBLIC_BASE_URL", "https://school.example/")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "$2a$10$hash", cfg.Admin.TokenHash)
	assert.Equal(t, "https://school.example", cfg.Mail.PublicBaseURL)
	assert.Contains(t, cfg.Database.DSN(), "password=from-env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "unknown storage",
			body: "[database]\nstorage = \"mysql\"\n",
		},
		{
			name: "postgres without dbname",
			body: "[database]\nstorage = \"postgres\"\nuser = \"u\"\n",
		},
		{
			name: "bad timezone",
			body: "[database]\nstorage = \"memory\"\n[booking]\ntimezone = \"Mars/Olympus\"\n",
		},
		{
			name: "window out of range",
			body: "[database]\nstorage = \"memory\"\n[booking]\nmakeup_window_days = 365\n",
		},
		{
			name: "sendgrid without key",
			body: "[database]\nstorage = \"memory\"\n[mail]\nsender = \"sendgrid\"\n",
		},
		{
			name: "sweeper window reversed",
			body: "[database]\nstorage = \"memory\"\n[sweeper]\nenabled = true\nwindow_start = \"20:00\"\nwindow_end = \"08:00\"\n",
		},
		{
			name: "malformed toml",
			body: "[database\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
