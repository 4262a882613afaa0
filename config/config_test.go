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
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestGetAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	c := Get(path)

	assert.Equal(t, "8080", c.ApiPort)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, "sqlite3", c.Database)
	assert.Equal(t, 1500, c.PollIntervalMs)
	assert.Equal(t, 500, c.EventLogCapacity)
	assert.False(t, c.CreateLeads)
}

func TestGetReadsFile(t *testing.T) {
	path := writeConfig(t, `{
		"api_port": "9090",
		"environment": "production",
		"database": "postgres",
		"db_host": "db.interno",
		"create_leads": true,
		"create_tasks": true,
		"create_deals": true,
		"poll_interval_ms": 500,
		"event_log_capacity": 100
	}`)

	c := Get(path)

	assert.Equal(t, "9090", c.ApiPort)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, "postgres", c.Database)
	assert.Equal(t, "db.interno", c.DbHost)
	assert.True(t, c.CreateLeads)
	assert.True(t, c.CreateTasks)
	assert.True(t, c.CreateDeals)
	assert.Equal(t, 500, c.PollIntervalMs)
	assert.Equal(t, 100, c.EventLogCapacity)
}

func TestGetEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"api_port": "9090", "create_leads": false}`)

	t.Setenv("IMOBOT_API_PORT", "7070")
	t.Setenv("IMOBOT_CREATE_LEADS", "true")

	c := Get(path)

	assert.Equal(t, "7070", c.ApiPort)
	assert.True(t, c.CreateLeads)
}
