package config

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetSingleton gives each test a clean slate.
func resetSingleton() {
	instance = nil
	once = sync.Once{}
}

func TestGetUninitialized(t *testing.T) {
	resetSingleton()

	assert.Panics(t, func() {
		Get()
	}, "Get() should panic if configuration is not initialized")
}

func TestDefaults(t *testing.T) {
	resetSingleton()

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, Load(v))

	cfg := Get()
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, 60*time.Second, cfg.Network.Timeout)
	assert.Equal(t, 50, cfg.Generator.ConcurrentUsers)
	assert.Equal(t, 300, cfg.Generator.DurationSeconds)
	assert.Equal(t, time.Second, cfg.Generator.TickInterval)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAndGet(t *testing.T) {
	resetSingleton()

	yamlConfig := []byte(`
generator:
  concurrent_users: 10
  duration_seconds: 60
server:
  addr: ":8080"
  server_id: "web-1"
`)

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))
	require.NoError(t, Load(v))

	cfg := Get()
	assert.Equal(t, 10, cfg.Generator.ConcurrentUsers)
	assert.Equal(t, 60, cfg.Generator.DurationSeconds)
	assert.Equal(t, time.Minute, cfg.Generator.Duration())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "web-1", cfg.Server.ServerID)

	// Subsequent loads must not replace the instance.
	v2 := viper.New()
	SetDefaults(v2)
	require.NoError(t, Load(v2))
	assert.Same(t, cfg, Get())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Network:   NetworkConfig{Timeout: time.Minute},
			Generator: GeneratorConfig{ConcurrentUsers: 50, DurationSeconds: 300, TickInterval: time.Second},
			Server:    ServerConfig{Addr: ":7777"},
		}
	}

	testCases := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero users", mutate: func(c *Config) { c.Generator.ConcurrentUsers = 0 }, expectError: true},
		{name: "zero duration", mutate: func(c *Config) { c.Generator.DurationSeconds = 0 }, expectError: true},
		{name: "zero tick", mutate: func(c *Config) { c.Generator.TickInterval = 0 }, expectError: true},
		{name: "zero request timeout", mutate: func(c *Config) { c.Network.Timeout = 0 }, expectError: true},
		{name: "missing addr", mutate: func(c *Config) { c.Server.Addr = "" }, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTargetURL(t *testing.T) {
	assert.NoError(t, ValidateTargetURL("http://192.168.2.50:7777"))
	assert.NoError(t, ValidateTargetURL("https://pool.example.com"))
	assert.Error(t, ValidateTargetURL(""))
	assert.Error(t, ValidateTargetURL("not a url"))
}
