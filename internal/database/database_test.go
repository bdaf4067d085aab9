package database

import (
	"bytes"
	"testing"

	"github.com/riadevigo/buoyplanner/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ConnectAndSetup(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.New(&buf))

	require.NoError(t, m.Connect())
	assert.True(t, m.IsValid)
	require.NoError(t, m.Setup())
	assert.True(t, m.DB.Migrator().HasTable(&model.Waypoint{}))
	assert.Contains(t, buf.String(), "Database setup complete")

	require.NoError(t, m.Close())
	assert.False(t, m.IsValid)
}

func TestManager_SetupWithoutConnect(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup())
	assert.NoError(t, m.Close())
}

func TestGetSqliteDBStandalone_Isolated(t *testing.T) {
	a, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	b, err := GetSqliteDBStandalone("")
	require.NoError(t, err)

	require.NoError(t, a.AutoMigrate(&model.Waypoint{}))
	assert.False(t, b.Migrator().HasTable(&model.Waypoint{}), "in-memory databases must not share state")
}
