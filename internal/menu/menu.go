// Package menu implements the grid menu driven by gesture actions.
package menu

import (
	"fmt"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Cell is a grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Item is a menu entry. When Plugin is set, selecting the item runs Action
// on that plugin with Params.
type Item struct {
	Label  string         `json:"label" mapstructure:"label"`
	Plugin string         `json:"plugin,omitempty" mapstructure:"plugin"`
	Action string         `json:"action,omitempty" mapstructure:"action"`
	Params map[string]any `json:"params,omitempty" mapstructure:"params"`
}

// Config describes the grid layout. Items fill the grid row by row; missing
// items get a generated label.
type Config struct {
	Rows     int
	Cols     int
	Tracking bool // Move the cursor with the fingertip instead of swipes
	Items    []Item
}

// DefaultConfig returns a 3x3 grid.
func DefaultConfig() Config {
	return Config{Rows: 3, Cols: 3}
}

// Validate reports a layout that cannot be built.
func (c Config) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("menu grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	}
	if len(c.Items) > c.Rows*c.Cols {
		return fmt.Errorf("menu has %d items but only %d cells", len(c.Items), c.Rows*c.Cols)
	}
	return nil
}

// Selection is emitted when the select action lands on a cell.
type Selection struct {
	Cell Cell `json:"cell"`
	Item Item `json:"item"`
}

// Grid is a rows x cols menu with a clamped cursor. It is safe for concurrent use.
type Grid struct {
	mu     sync.RWMutex
	rows   int
	cols   int
	items  []Item
	cursor Cell
}

// NewGrid builds a grid from cfg. Dimensions below 1 are raised to 1.
func NewGrid(cfg Config) *Grid {
	rows, cols := max(cfg.Rows, 1), max(cfg.Cols, 1)

	items := make([]Item, rows*cols)
	for i := range items {
		if i < len(cfg.Items) {
			items[i] = cfg.Items[i]
		}
		if items[i].Label == "" {
			items[i].Label = fmt.Sprintf("Item %d", i+1)
		}
	}

	return &Grid{rows: rows, cols: cols, items: items}
}

// Size returns the grid dimensions.
func (g *Grid) Size() (rows, cols int) {
	return g.rows, g.cols
}

// Cursor returns the highlighted cell.
func (g *Grid) Cursor() Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cursor
}

// Item returns the item at c, clamped into the grid.
func (g *Grid) Item(c Cell) Item {
	c = g.clamp(c)
	return g.items[c.Row*g.cols+c.Col]
}

// Items returns a copy of all items, row major.
func (g *Grid) Items() []Item {
	out := make([]Item, len(g.items))
	copy(out, g.items)
	return out
}

// Move shifts the cursor by (dRow, dCol), stopping at the edges.
func (g *Grid) Move(dRow, dCol int) Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor = g.clamp(Cell{Row: g.cursor.Row + dRow, Col: g.cursor.Col + dCol})
	return g.cursor
}

// MoveTo places the cursor at c, clamped into the grid.
func (g *Grid) MoveTo(c Cell) Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor = g.clamp(c)
	return g.cursor
}

func (g *Grid) clamp(c Cell) Cell {
	return Cell{
		Row: min(max(c.Row, 0), g.rows-1),
		Col: min(max(c.Col, 0), g.cols-1),
	}
}

// Navigator maps gesture actions onto a Grid.
type Navigator struct {
	grid        *Grid
	selectLabel gesture.Label
}

// NewNavigator returns a navigator that selects on selectLabel.
func NewNavigator(grid *Grid, selectLabel gesture.Label) *Navigator {
	if selectLabel == "" {
		selectLabel = gesture.LabelThumbsUp
	}
	return &Navigator{grid: grid, selectLabel: selectLabel}
}

// Grid returns the underlying grid.
func (n *Navigator) Grid() *Grid {
	return n.grid
}

// Apply moves the cursor for a swipe action or selects the current cell for
// the select action. It reports true only when a selection was made.
func (n *Navigator) Apply(action gesture.Label) (Selection, bool) {
	switch action {
	case gesture.LabelSwipeLeft:
		n.grid.Move(0, -1)
	case gesture.LabelSwipeRight:
		n.grid.Move(0, 1)
	case gesture.LabelSwipeUp:
		n.grid.Move(-1, 0)
	case gesture.LabelSwipeDown:
		n.grid.Move(1, 0)
	case n.selectLabel:
		c := n.grid.Cursor()
		return Selection{Cell: c, Item: n.grid.Item(c)}, true
	}
	return Selection{}, false
}

// Track places the cursor on the cell under a normalized fingertip position.
func (n *Navigator) Track(p gesture.Position) Cell {
	rows, cols := n.grid.Size()
	return n.grid.MoveTo(Cell{
		Row: int(p.Y * float64(rows)),
		Col: int(p.X * float64(cols)),
	})
}
