package convert

import (
	"testing"
	"time"

	"github.com/riadevigo/buoyplanner/internal/model"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreToWaypoint(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	w := core.Waypoint{
		ID:          "b1",
		Name:        "Tofiño",
		Position:    core.Position{Lat: 42.22845, Lng: -8.77865},
		Description: "Baliza cardinal",
		CreatedAt:   created,
	}

	row := CoreToWaypoint(w, 3)
	assert.Equal(t, "b1", row.ID)
	assert.Equal(t, uint(3), row.Seq)
	assert.Equal(t, "Tofiño", row.Name)

	xy, ok := row.Position.XY()
	require.True(t, ok)
	assert.Equal(t, -8.77865, xy.X)
	assert.Equal(t, 42.22845, xy.Y)

	back, err := WaypointToCore(row)
	require.NoError(t, err)
	assert.Equal(t, w, back)
}

func TestWaypointToCore_EmptyPosition(t *testing.T) {
	_, err := WaypointToCore(model.Waypoint{ID: "x"})
	assert.Error(t, err)
}
