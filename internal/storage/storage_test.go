package storage

import (
	"testing"
	"time"

	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/internal/database"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*SQLite)(nil)
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	return map[string]Backend{
		"memory": NewMemory(),
		"sqlite": NewSQLite(database.NewManager(zerolog.Nop())),
	}
}

func waypoint(id, name string, lat, lng float64) *core.Waypoint {
	return &core.Waypoint{
		ID:          id,
		Name:        name,
		Position:    core.Position{Lat: lat, Lng: lng},
		Description: "test " + name,
		CreatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBackend_SaveLoadDelete(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Init())
			defer b.Close()

			lousal := waypoint("a", "Lousal", 42.27485, -8.68905)
			tofino := waypoint("b", "Tofiño", 42.22845, -8.77865)
			subrido := waypoint("c", "Subrido", 42.24283, -8.86533)

			require.NoError(t, b.SaveWaypoint(lousal))
			require.NoError(t, b.SaveWaypoint(tofino))
			require.NoError(t, b.SaveWaypoint(subrido))

			got, err := b.LoadWaypoints()
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, []string{"Lousal", "Tofiño", "Subrido"}, []string{got[0].Name, got[1].Name, got[2].Name})
			assert.Equal(t, tofino.Position, got[1].Position)
			assert.Equal(t, tofino.Description, got[1].Description)
			assert.True(t, tofino.CreatedAt.Equal(got[1].CreatedAt))

			require.NoError(t, b.DeleteWaypoint("b"))
			got, err = b.LoadWaypoints()
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "Subrido", got[1].Name)

			err = b.DeleteWaypoint("b")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestBackend_DuplicateID(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Init())
			defer b.Close()

			require.NoError(t, b.SaveWaypoint(waypoint("a", "Lousal", 42.27485, -8.68905)))
			assert.Error(t, b.SaveWaypoint(waypoint("a", "Other", 42, -8)))
		})
	}
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(config.StorageConfig{Type: "memory"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = NewBackend(config.StorageConfig{Type: "sqlite"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, b)

	_, err = NewBackend(config.StorageConfig{Type: "postgres"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestMemory_CloseClears(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.SaveWaypoint(waypoint("a", "Lousal", 42.27485, -8.68905)))
	require.NoError(t, b.Close())

	got, err := b.LoadWaypoints()
	require.NoError(t, err)
	assert.Empty(t, got)
}
