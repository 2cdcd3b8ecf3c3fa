package grid

import (
	"math"

	"github.com/fundiary/fundiary/pkg/types"
)

// Snap rounds a continuous offset to the nearest whole number of tiles.
func Snap(offset, tile float64) int {
	if tile <= 0 {
		return 0
	}
	return int(math.Round(offset / tile))
}

// SnapPosition applies a dragged offset to origin, snapping to cells and
// clamping at the grid origin.
func SnapPosition(origin types.Position, dx, dy, tile float64) types.Position {
	return types.Position{
		X: max(0, origin.X+Snap(dx, tile)),
		Y: max(0, origin.Y+Snap(dy, tile)),
	}
}

// Overlaps reports whether two panes share at least one cell.
func Overlaps(a, b types.PaneInstance) bool {
	ac, ar := a.Extent()
	bc, br := b.Extent()
	return a.Pos.X < bc && b.Pos.X < ac && a.Pos.Y < br && b.Pos.Y < ar
}

// Collision names two overlapping panes by id.
type Collision struct {
	A, B string
}

// Collisions returns every overlapping pair, in list order.
func Collisions(panes []types.PaneInstance) []Collision {
	var out []Collision
	for i := range panes {
		for j := i + 1; j < len(panes); j++ {
			if Overlaps(panes[i], panes[j]) {
				out = append(out, Collision{A: panes[i].ID, B: panes[j].ID})
			}
		}
	}
	return out
}

// FindFree returns the first position, scanning rows top to bottom and
// columns left to right, where a pane of size fits within cols columns
// without overlapping any pane. When size is wider than cols the pane is
// placed at column 0 below every existing pane.
func FindFree(panes []types.PaneInstance, size types.Size, cols int) types.Position {
	bottom := Bounds(panes).Rows
	if size.Width > cols {
		return types.Position{X: 0, Y: bottom}
	}
	candidate := types.PaneInstance{Size: size}
	for y := 0; y <= bottom; y++ {
		for x := 0; x+size.Width <= cols; x++ {
			candidate.Pos = types.Position{X: x, Y: y}
			if !overlapsAny(candidate, panes) {
				return candidate.Pos
			}
		}
	}
	return types.Position{X: 0, Y: bottom}
}

func overlapsAny(p types.PaneInstance, panes []types.PaneInstance) bool {
	for _, other := range panes {
		if Overlaps(p, other) {
			return true
		}
	}
	return false
}
