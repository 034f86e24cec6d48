package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

func groupID(id string) *string { return &id }

func TestSnapToGrid(t *testing.T) {
	layout := NewSeatingLayout(0, 0)
	assert.Equal(t, 20.0, layout.GridSize)
	assert.Equal(t, 40.0, layout.SnapThreshold)

	assert.Equal(t, 20.0, layout.SnapToGrid(29))
	assert.Equal(t, 40.0, layout.SnapToGrid(31))
	assert.Equal(t, 0.0, layout.SnapToGrid(-15))
}

func TestNearestDeskUsesStrictThreshold(t *testing.T) {
	layout := NewSeatingLayout(20, 40)
	desks := []models.Desk{{ID: "d1", X: 0, Y: 0}, {ID: "d2", X: 100, Y: 0}}

	_, ok := layout.NearestDesk(40, 0, desks, nil)
	assert.False(t, ok)

	desk, ok := layout.NearestDesk(39, 0, desks, nil)
	require.True(t, ok)
	assert.Equal(t, "d1", desk.ID)

	_, ok = layout.NearestDesk(0, 0, desks, map[string]bool{"d1": true})
	assert.False(t, ok)
}

func TestReleaseAlignsLoneDeskToNeighbour(t *testing.T) {
	layout := NewSeatingLayout(20, 40)
	desks := []models.Desk{{ID: "d1", X: 0, Y: 0}, {ID: "d2", X: 220, Y: 120}}

	move := layout.Release(desks[0], 205, 98, desks)
	require.Len(t, move.Desks, 1)
	assert.Equal(t, "d2", move.SnapTargetID)
	assert.Equal(t, 220.0, move.Desks[0].X)
	assert.Equal(t, 120.0, move.Desks[0].Y)

	move = layout.Release(desks[0], 505, 498, desks)
	assert.Empty(t, move.SnapTargetID)
	assert.Equal(t, 500.0, move.Desks[0].X)
	assert.Equal(t, 500.0, move.Desks[0].Y)
}

func TestReleaseMovesWholeGroup(t *testing.T) {
	layout := NewSeatingLayout(20, 40)
	desks := []models.Desk{
		{ID: "d1", X: 100, Y: 100, GroupID: groupID("g1")},
		{ID: "d2", X: 300, Y: 300},
		{ID: "d3", X: 216, Y: 100, GroupID: groupID("g1")},
	}

	move := layout.Release(desks[0], 133, 100, desks)
	assert.Empty(t, move.SnapTargetID)
	require.Len(t, move.Desks, 2)
	assert.Equal(t, "d1", move.Desks[0].ID)
	assert.Equal(t, 140.0, move.Desks[0].X)
	assert.Equal(t, "d3", move.Desks[1].ID)
	assert.Equal(t, 240.0, move.Desks[1].X)
	assert.Equal(t, 100.0, move.Desks[1].Y)
	assert.Equal(t, 100.0, desks[0].X)
}
