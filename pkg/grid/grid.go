// Package grid implements the layout rules for panes placed on a document
// grid. Coordinates and sizes are whole cells; a document's grid size is
// derived from the extents of its panes.
package grid

import (
	"fmt"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// Bounds returns the smallest grid covering every pane. An empty list has
// zero bounds.
func Bounds(panes []types.PaneInstance) types.GridSize {
	var g types.GridSize
	for _, p := range panes {
		col, row := p.Extent()
		g.Cols = max(g.Cols, col)
		g.Rows = max(g.Rows, row)
	}
	return g
}

// CanShrinkCols reports whether the column count may be decreased to cols.
// Every pane must satisfy x+width < cols.
func CanShrinkCols(panes []types.PaneInstance, cols int) bool {
	for _, p := range panes {
		if col, _ := p.Extent(); col >= cols {
			return false
		}
	}
	return true
}

// CanShrinkRows reports whether the row count may be decreased to rows.
// Every pane must satisfy y+height < rows.
func CanShrinkRows(panes []types.PaneInstance, rows int) bool {
	for _, p := range panes {
		if _, row := p.Extent(); row >= rows {
			return false
		}
	}
	return true
}

// Resize checks a proposed grid size against the panes and returns it when
// accepted. Increases always succeed; decreases must pass the shrink checks.
func Resize(panes []types.PaneInstance, current, proposed types.GridSize) (types.GridSize, error) {
	if proposed.Cols < 1 || proposed.Rows < 1 {
		return current, &types.ConstraintError{
			Op:     "resize grid",
			Reason: fmt.Sprintf("%dx%d is below 1x1", proposed.Cols, proposed.Rows),
		}
	}
	if proposed.Cols < current.Cols && !CanShrinkCols(panes, proposed.Cols) {
		return current, &types.ConstraintError{
			Op:     "resize grid",
			Reason: fmt.Sprintf("a pane reaches column %d", proposed.Cols),
		}
	}
	if proposed.Rows < current.Rows && !CanShrinkRows(panes, proposed.Rows) {
		return current, &types.ConstraintError{
			Op:     "resize grid",
			Reason: fmt.Sprintf("a pane reaches row %d", proposed.Rows),
		}
	}
	return proposed, nil
}

// Place moves and resizes inst. The request is rejected, leaving inst
// untouched, when the position is negative, the size is below 1x1, or the
// size breaks the resize policy. A nil policy allows any size.
func Place(inst *types.PaneInstance, pos types.Position, size types.Size, policy *pane.ResizePolicy) error {
	reject := func(format string, args ...any) error {
		return &types.ConstraintError{Op: "place pane " + inst.ID, Reason: fmt.Sprintf(format, args...)}
	}
	if pos.X < 0 || pos.Y < 0 {
		return reject("position (%d,%d) is negative", pos.X, pos.Y)
	}
	if size.Width < 1 || size.Height < 1 {
		return reject("size %dx%d is below 1x1", size.Width, size.Height)
	}
	if reason := checkPolicy(inst.Size, size, policy); reason != "" {
		return reject("%s", reason)
	}
	inst.Pos = pos
	inst.Size = size
	return nil
}

func checkPolicy(current, size types.Size, policy *pane.ResizePolicy) string {
	if policy == nil {
		return ""
	}
	if m := policy.Min; m != nil && (size.Width < m.Width || size.Height < m.Height) {
		return fmt.Sprintf("size %dx%d is below minimum %dx%d", size.Width, size.Height, m.Width, m.Height)
	}
	if m := policy.Max; m != nil && (size.Width > m.Width || size.Height > m.Height) {
		return fmt.Sprintf("size %dx%d is above maximum %dx%d", size.Width, size.Height, m.Width, m.Height)
	}
	if policy.LockAspect && current.Width > 0 && current.Height > 0 &&
		size.Width*current.Height != size.Height*current.Width {
		return fmt.Sprintf("size %dx%d changes locked aspect %d:%d", size.Width, size.Height, current.Width, current.Height)
	}
	return ""
}
