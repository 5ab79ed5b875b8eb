package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/config"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

func TestNewMux(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Redis.Password = "secret"
	mux := newMux(&cfg)

	tests := []struct {
		name   string
		path   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "health",
			path:   "/health",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Equal(t, "ok", body["status"])
			},
		},
		{
			name:   "config is redacted",
			path:   "/config",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				redis, ok := body["redis"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "******", redis["password"])
				assert.Equal(t, "redis://localhost:6379/0", redis["url"])
			},
		},
		{
			name:   "index",
			path:   "/",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Equal(t, "cfgvars", body["name"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.check(t, body)
		})
	}

	assert.Equal(t, "secret", cfg.Redis.Password, "redaction must not modify the loaded config")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  timeout: "${SERVER_TIMEOUT}"
redis:
  password: "${REDIS_PASSWORD}"
  db: "${REDIS_DB}"
`), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_TIMEOUT=2s\nREDIS_DB=3\n"), 0o600))

	secrets := filepath.Join(dir, "secrets")
	require.NoError(t, os.Mkdir(secrets, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "REDIS_PASSWORD"), []byte("s3cret\n"), 0o600))

	run := func(t *testing.T, args ...string) (*config.Config, error) {
		t.Helper()

		var (
			cfg     *config.Config
			loadErr error
		)
		cmd := &cli.Command{
			Name:  "server",
			Flags: slices.Concat(command.SourceFlags(), command.DelimiterFlags(), NewCommand().Flags),
			Action: func(_ context.Context, cmd *cli.Command) error {
				cfg, loadErr = loadConfig(cmd)

				return nil
			},
		}
		require.NoError(t, cmd.Run(context.Background(), append([]string{"server"}, args...)))

		return cfg, loadErr
	}

	t.Run("all sources", func(t *testing.T) {
		cfg, err := run(t, "--config", path, "--env-file", envFile, "--secrets-dir", secrets, "--server-addr", ":9999")
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Server.Timeout)
		assert.Equal(t, 3, cfg.Redis.DB)
		assert.Equal(t, "s3cret", cfg.Redis.Password)
		assert.Equal(t, ":9999", cfg.Server.Addr)
	})

	t.Run("undefined variable", func(t *testing.T) {
		_, err := run(t, "--config", path, "--env-file", envFile)
		require.Error(t, err)
		require.ErrorIs(t, err, cfgvars.ErrUndefinedVariable)

		var e *cfgvars.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "redis.password", e.Path)
	})

	t.Run("flag value is a placeholder", func(t *testing.T) {
		t.Setenv("TEST_REDIS_URL", "redis://cache:6379/1")

		cfg, err := run(t, "--config", path, "--env-file", envFile, "--secrets-dir", secrets,
			"--redis-url", "${TEST_REDIS_URL}")
		require.NoError(t, err)
		assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	})
}
