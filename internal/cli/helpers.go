package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/fundiary/fundiary/pkg/grid"
	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// defaultCols is the grid width used to place panes given without a
// position.
const defaultCols = 4

const timeFormat = "2006-01-02 15:04:05"

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	red   = color.New(color.FgRed)
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// newTable returns a table with a bold header row.
func newTable(header ...any) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = bold.Sprint(h)
	}
	tbl.AddRow(cells...)
	return tbl
}

// resultView is the JSON form of a listing row.
type resultView[T any] struct {
	ID    string `json:"id"`
	Value *T     `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func viewResults[T any](results []types.Result[T]) []resultView[T] {
	out := make([]resultView[T], 0, len(results))
	for _, r := range results {
		v := resultView[T]{ID: r.ID, Value: r.Value}
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		out = append(out, v)
	}
	return out
}

func invalid(err error) string {
	return red.Sprint("invalid: ", err)
}

// summary renders a pane through its type's Renderer.
func summary(registry *pane.Registry, p types.PaneInstance) string {
	desc, ok := registry.Get(p.Pane)
	if !ok {
		return faint.Sprint("(unknown pane type)")
	}
	if render, ok := desc.Component.(pane.Renderer); ok {
		return render(p.Data)
	}
	return ""
}

// printPanes writes one row per pane.
func printPanes(w io.Writer, registry *pane.Registry, panes []types.PaneInstance) {
	if len(panes) == 0 {
		fmt.Fprintln(w, faint.Sprint("(no panes)"))
		return
	}
	tbl := newTable("#", "ID", "TYPE", "POS", "SIZE", "CONTENT")
	for i, p := range panes {
		tbl.AddRow(i, p.ID, p.Pane,
			fmt.Sprintf("%d,%d", p.Pos.X, p.Pos.Y),
			fmt.Sprintf("%dx%d", p.Size.Width, p.Size.Height),
			summary(registry, p))
	}
	fmt.Fprintln(w, tbl)
}

// parsePaneArg parses "identifier[@x,y][/WxH]". A missing position is
// reported as nil.
func parsePaneArg(arg string) (id string, pos *types.Position, size types.Size, err error) {
	id, rest, _ := strings.Cut(arg, "@")
	id, sizeStr, hasSize := strings.Cut(id, "/")
	posStr := rest
	if rest != "" {
		if p, s, ok := strings.Cut(rest, "/"); ok {
			posStr, sizeStr, hasSize = p, s, true
		}
	}
	if posStr != "" {
		xs, ys, ok := strings.Cut(posStr, ",")
		x, errX := strconv.Atoi(xs)
		y, errY := strconv.Atoi(ys)
		if !ok || errX != nil || errY != nil {
			return "", nil, size, fmt.Errorf("pane %q: position must be x,y: %w", arg, errUsage)
		}
		pos = &types.Position{X: x, Y: y}
	}
	if hasSize {
		ws, hs, ok := strings.Cut(sizeStr, "x")
		w, errW := strconv.Atoi(ws)
		h, errH := strconv.Atoi(hs)
		if !ok || errW != nil || errH != nil {
			return "", nil, size, fmt.Errorf("pane %q: size must be WxH: %w", arg, errUsage)
		}
		size = types.Size{Width: w, Height: h}
	}
	return id, pos, size, nil
}

// buildPanes creates a pane for each argument. Panes without a position go to
// the first free slot of a defaultCols wide grid.
func buildPanes(registry *pane.Registry, paneArgs []string) ([]types.PaneInstance, error) {
	var panes []types.PaneInstance
	for _, arg := range paneArgs {
		id, pos, size, err := parsePaneArg(arg)
		if err != nil {
			return nil, err
		}
		desc, ok := registry.Get(id)
		if !ok {
			return nil, fmt.Errorf("pane %q: %w", id, types.ErrUnknownPane)
		}
		inst := pane.Create(desc, types.Position{}, types.Size{})
		if size == (types.Size{}) {
			size = inst.Size
		}
		at := grid.FindFree(panes, size, max(defaultCols, grid.Bounds(panes).Cols))
		if pos != nil {
			at = *pos
		}
		if err := grid.Place(&inst, at, size, desc.Resize); err != nil {
			return nil, err
		}
		panes = append(panes, inst)
	}
	return panes, nil
}

// assignment is one "index.key=value" argument.
type assignment struct {
	index int
	key   string
	raw   string
}

func parseAssignment(s string) (assignment, error) {
	target, raw, ok := strings.Cut(s, "=")
	if !ok {
		return assignment{}, fmt.Errorf("%q: expected index.key=value: %w", s, errUsage)
	}
	idx, key, ok := strings.Cut(target, ".")
	n, err := strconv.Atoi(idx)
	if !ok || err != nil || key == "" {
		return assignment{}, fmt.Errorf("%q: expected index.key=value: %w", s, errUsage)
	}
	return assignment{index: n, key: key, raw: raw}, nil
}

// target returns the pane an assignment addresses and its type.
func (asg assignment) target(registry *pane.Registry, panes []types.PaneInstance) (*types.PaneInstance, pane.Descriptor, error) {
	if asg.index < 0 || asg.index >= len(panes) {
		return nil, pane.Descriptor{}, fmt.Errorf("pane index %d: %w", asg.index, types.ErrNotFound)
	}
	p := &panes[asg.index]
	desc, ok := registry.Get(p.Pane)
	if !ok {
		return nil, pane.Descriptor{}, fmt.Errorf("pane %d: %w", asg.index, types.ErrUnknownPane)
	}
	return p, desc, nil
}

// parseValue converts a command-line string to the JSON value type the
// schema expects for key.
func parseValue(desc pane.Descriptor, key, raw string) (any, error) {
	fs, ok := desc.Schema[key]
	if !ok {
		return nil, fmt.Errorf("pane %s has no field %q: %w", desc.Identifier, key, types.ErrFieldNotFound)
	}
	field, _ := desc.Field(key)
	mismatch := func(err error) error {
		return fmt.Errorf("field %q: %v: %w", key, err, types.ErrTypeMismatch)
	}
	switch fs.Type {
	case pane.TypeNumber, pane.TypeInteger:
		if field.Input.Kind == pane.KindColor {
			return pane.ParseColor(raw)
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, mismatch(err)
		}
		return n, nil
	case pane.TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, mismatch(err)
		}
		return b, nil
	case pane.TypeDate:
		if raw == "today" {
			return time.Now().Format(pane.DateLayout), nil
		}
		d, err := pane.ParseDate(raw)
		if err != nil {
			return nil, mismatch(err)
		}
		return d.Format(pane.DateLayout), nil
	case pane.TypeStringList:
		if raw == "" {
			return []string{}, nil
		}
		items := strings.Split(raw, ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		return items, nil
	default:
		return raw, nil
	}
}

// applyAssignments parses each "index.key=value" argument and sets the
// field on the addressed pane.
func applyAssignments(registry *pane.Registry, panes []types.PaneInstance, args []string) error {
	for _, arg := range args {
		asg, err := parseAssignment(arg)
		if err != nil {
			return err
		}
		p, desc, err := asg.target(registry, panes)
		if err != nil {
			return err
		}
		v, err := parseValue(desc, asg.key, asg.raw)
		if err != nil {
			return err
		}
		if err := pane.SetField(p, asg.key, v); err != nil {
			return err
		}
	}
	return nil
}

// formatValue renders a data value for tables.
func formatValue(field pane.FieldDescriptor, v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case float64:
		if field.Input.Kind == pane.KindColor {
			return pane.FormatColor(int(t))
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
