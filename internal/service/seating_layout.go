package service

import (
	"math"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

// SeatingLayout holds the seating chart geometry.
type SeatingLayout struct {
	GridSize      float64
	SnapThreshold float64
}

// NewSeatingLayout falls back to a 20 unit grid and a 40 unit snap threshold.
func NewSeatingLayout(gridSize, snapThreshold float64) SeatingLayout {
	if gridSize <= 0 {
		gridSize = 20
	}
	if snapThreshold <= 0 {
		snapThreshold = 40
	}
	return SeatingLayout{GridSize: gridSize, SnapThreshold: snapThreshold}
}

// SnapToGrid rounds v to the nearest grid line, never below zero.
func (l SeatingLayout) SnapToGrid(v float64) float64 {
	snapped := math.Round(v/l.GridSize) * l.GridSize
	if snapped < 0 {
		return 0
	}
	return snapped
}

// NearestDesk returns the desk whose top-left corner is closest to (x, y) and inside the snap threshold.
// Desks listed in exclude are skipped.
func (l SeatingLayout) NearestDesk(x, y float64, desks []models.Desk, exclude map[string]bool) (*models.Desk, bool) {
	var nearest *models.Desk
	best := math.Inf(1)
	for i := range desks {
		if exclude[desks[i].ID] {
			continue
		}
		dist := math.Hypot(desks[i].X-x, desks[i].Y-y)
		if dist < best {
			best = dist
			nearest = &desks[i]
		}
	}
	if nearest == nil || best >= l.SnapThreshold {
		return nil, false
	}
	return nearest, true
}

// DeskMove is the outcome of releasing a dragged desk.
type DeskMove struct {
	Desks        []models.Desk `json:"desks"`
	SnapTargetID string        `json:"snapTargetId,omitempty"`
}

// Release places the dragged desk at (x, y). A grouped desk moves its whole cluster by the same delta,
// each member landing on the grid. A lone desk lands on the grid and then aligns each axis to the
// nearest desk when both the distance and that axis' delta are inside the threshold.
func (l SeatingLayout) Release(dragged models.Desk, x, y float64, desks []models.Desk) DeskMove {
	if dragged.GroupID != nil && *dragged.GroupID != "" {
		return DeskMove{Desks: l.moveGroup(dragged, x-dragged.X, y-dragged.Y, desks)}
	}

	nextX, nextY := l.SnapToGrid(x), l.SnapToGrid(y)
	move := DeskMove{}
	if target, ok := l.NearestDesk(nextX, nextY, desks, map[string]bool{dragged.ID: true}); ok {
		move.SnapTargetID = target.ID
		if math.Abs(target.X-nextX) < l.SnapThreshold {
			nextX = target.X
		}
		if math.Abs(target.Y-nextY) < l.SnapThreshold {
			nextY = target.Y
		}
	}
	dragged.X, dragged.Y = nextX, nextY
	move.Desks = []models.Desk{dragged}
	return move
}

func (l SeatingLayout) moveGroup(dragged models.Desk, dx, dy float64, desks []models.Desk) []models.Desk {
	group := *dragged.GroupID
	moved := make([]models.Desk, 0, len(desks))
	seen := false
	for _, desk := range desks {
		if desk.GroupID == nil || *desk.GroupID != group {
			continue
		}
		if desk.ID == dragged.ID {
			seen = true
		}
		desk.X = l.SnapToGrid(desk.X + dx)
		desk.Y = l.SnapToGrid(desk.Y + dy)
		moved = append(moved, desk)
	}
	if !seen {
		dragged.X = l.SnapToGrid(dragged.X + dx)
		dragged.Y = l.SnapToGrid(dragged.Y + dy)
		moved = append(moved, dragged)
	}
	return moved
}
