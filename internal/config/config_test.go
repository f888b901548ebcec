package config

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "development": {"frontend": {"port": 5173, "host": "127.0.0.1"}, "backend": {"port": 4000, "host": "127.0.0.1"}},
  "production":  {"frontend": {"port": 80, "host": "notes.example"}, "backend": {"port": 8443}}
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEndpointEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FRONTEND_PORT", "BACKEND_PORT", "FRONTEND_HOST", "BACKEND_HOST"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestResolveEndpoints(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	tests := []struct {
		name     string
		env      string
		vars     map[string]string
		frontend Endpoint
		backend  Endpoint
	}{
		{
			name:     "development entry",
			env:      EnvDevelopment,
			frontend: Endpoint{Host: "127.0.0.1", Port: 5173},
			backend:  Endpoint{Host: "127.0.0.1", Port: 4000},
		},
		{
			name:     "production entry keeps fallback host for missing field",
			env:      EnvProduction,
			frontend: Endpoint{Host: "notes.example", Port: 80},
			backend:  Endpoint{Host: "localhost", Port: 8443},
		},
		{
			name:     "unknown environment uses development entry",
			env:      "staging",
			frontend: Endpoint{Host: "127.0.0.1", Port: 5173},
			backend:  Endpoint{Host: "127.0.0.1", Port: 4000},
		},
		{
			name:     "environment variables win",
			env:      EnvDevelopment,
			vars:     map[string]string{"BACKEND_PORT": "9999", "FRONTEND_HOST": "0.0.0.0"},
			frontend: Endpoint{Host: "0.0.0.0", Port: 5173},
			backend:  Endpoint{Host: "127.0.0.1", Port: 9999},
		},
		{
			name:     "invalid port variable ignored",
			env:      EnvDevelopment,
			vars:     map[string]string{"BACKEND_PORT": "70000"},
			frontend: Endpoint{Host: "127.0.0.1", Port: 5173},
			backend:  Endpoint{Host: "127.0.0.1", Port: 4000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEndpointEnv(t)
			for k, v := range tt.vars {
				t.Setenv(k, v)
			}

			got, err := ResolveEndpoints(path, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.frontend, got.Frontend)
			assert.Equal(t, tt.backend, got.Backend)
		})
	}
}

func TestResolveEndpointsFallback(t *testing.T) {
	clearEndpointEnv(t)

	got, err := ResolveEndpoints(filepath.Join(t.TempDir(), "missing.json"), EnvDevelopment)
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", got.Frontend.Address())
	assert.Equal(t, "http://localhost:3001", got.Backend.URL())

	broken := writeConfig(t, "{not json")
	got, err = ResolveEndpoints(broken, EnvDevelopment)
	assert.Error(t, err)
	assert.Equal(t, fallbackBackendPort, got.Backend.Port)
}

func TestResolveEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "")
	t.Setenv("NODE_ENV", "")
	os.Unsetenv("GO_ENV")
	os.Unsetenv("NODE_ENV")
	assert.Equal(t, EnvDevelopment, ResolveEnvironment())

	t.Setenv("NODE_ENV", "Production")
	assert.Equal(t, EnvProduction, ResolveEnvironment())

	t.Setenv("GO_ENV", "development")
	assert.Equal(t, EnvDevelopment, ResolveEnvironment())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NOET_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.json"))
	t.Setenv("DELETE_POLICY", "CASCADE")
	t.Setenv("RATE_LIMIT_WINDOW", "bogus")

	cfg := Load()
	assert.Equal(t, DeletePolicyCascade, cfg.Storage.DeletePolicy)
	assert.Equal(t, 15*time.Minute, cfg.Limits.RateLimitWindow)
	assert.Equal(t, int64(100*1024*1024), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 110*1024*1024, cfg.Limits.BodyLimitBytes)
}

func TestCheckPortAvailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	busy := ln.Addr().(*net.TCPAddr).Port
	assert.False(t, CheckPortAvailable("127.0.0.1", busy))

	free, err := FindAvailablePort("127.0.0.1", busy, 20)
	require.NoError(t, err)
	assert.NotEqual(t, busy, free)
	assert.True(t, CheckPortAvailable("127.0.0.1", free))
}
