package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choretracker/choretracker/internal/database"
)

func TestNewRootCmd(t *testing.T) {
	root := newRootCmd()

	assert.NotNil(t, root.RunE)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	for _, sub := range []string{"up", "down", "status"} {
		cmd, _, err := root.Find([]string{"migrate", sub})
		require.NoError(t, err)
		assert.Equal(t, sub, cmd.Name())
	}
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "")

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "status"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database configured")
}

func TestPrintStatus(t *testing.T) {
	applied := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	statuses := []database.MigrationStatus{
		{Migration: database.Migration{Version: 1, Name: "create_users"}, AppliedAt: &applied},
		{Migration: database.Migration{Version: 2, Name: "create_chores"}},
	}

	var buf bytes.Buffer
	require.NoError(t, printStatus(&buf, statuses))

	out := buf.String()
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "001")
	assert.Contains(t, out, "2025-01-02T03:04:05Z")
	assert.Contains(t, out, "create_chores")
	assert.Contains(t, out, "pending")
}
