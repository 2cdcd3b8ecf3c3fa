package types

// Position is a grid cell coordinate. Coordinates are non-negative.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a footprint in grid units. Both dimensions are positive.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GridSize is the column and row extent of a document grid.
type GridSize struct {
	Cols int `json:"col"`
	Rows int `json:"row"`
}

// PaneInstance is one placed occurrence of a pane type inside a document.
// Data holds JSON-native values whose shape matches the pane type's schema.
type PaneInstance struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Pane string         `json:"pane"`
	Pos  Position       `json:"pos"`
	Size Size           `json:"size"`
	Data map[string]any `json:"data"`
}

// Extent returns the exclusive bottom-right corner of the pane.
func (p PaneInstance) Extent() (col, row int) {
	return p.Pos.X + p.Size.Width, p.Pos.Y + p.Size.Height
}

// Clone returns a deep copy of the instance, including nested data values.
func (p PaneInstance) Clone() PaneInstance {
	out := p
	out.Data = cloneMap(p.Data)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
