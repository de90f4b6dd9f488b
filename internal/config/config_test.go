package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Reconciliation.MonthsBefore)
		assert.Equal(t, 6, cfg.Reconciliation.MonthsAfter)
		assert.Equal(t, 100, cfg.Reconciliation.PageSize)
		assert.Equal(t, "quarkus-releases", cfg.Events.ReleasesDir)
		assert.Equal(t, "quarkus-calls", cfg.Events.CallsDir)
		assert.Equal(t, ":8181", cfg.Server.Addr)
		assert.Empty(t, cfg.Calendars.Releases.Id)
		assert.True(t, cfg.DatabaseEnabled())
	})

	t.Run("should override defaults from file and environment", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := `
calendars:
  releases:
    id: releases@group.calendar.google.com
  calls:
    id: calls@group.calendar.google.com
reconciliation:
  monthsafter: 3
  schedule: "0 * * * *"
google:
  credentialsfile: /secrets/sa.json
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("CALSYNC_RECONCILIATION_MONTHSBEFORE", "2")
		t.Setenv("CALSYNC_NATS_URL", "nats://localhost:4222")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "releases@group.calendar.google.com", cfg.Calendars.Releases.Id)
		assert.Equal(t, "calls@group.calendar.google.com", cfg.Calendars.Calls.Id)
		assert.Equal(t, 2, cfg.Reconciliation.MonthsBefore)
		assert.Equal(t, 3, cfg.Reconciliation.MonthsAfter)
		assert.Equal(t, "0 * * * *", cfg.Reconciliation.Schedule)
		assert.Equal(t, "nats://localhost:4222", cfg.Nats.Url)
		assert.False(t, cfg.DatabaseEnabled())
	})

	t.Run("should fail on malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("calendars: [unclosed"), 0o600))

		_, err := Load(path)

		assert.Error(t, err)
	})
}
