package grid

// Domain is the number of checkboxes in the shared grid. The index space
// 0..Domain-1 is fixed for the lifetime of the process; no per-index state is
// allocated anywhere; indices are purely addressable.
const Domain = 10_000_000

// DefaultWidth is assumed when the terminal width is not yet known. The first
// View call can happen before the initial WindowSizeMsg arrives.
const DefaultWidth = 80

// DefaultOverscan is the number of extra rows included in range queries beyond
// the strictly visible area, so freshly scrolled-in rows already have data.
const DefaultOverscan = 4

// Placement is a cell's box in terminal cells, relative to the grid origin.
type Placement struct {
	X, Y, W, H int
}

// Geometry holds the inputs the viewport calculation depends on: the drawable
// area in terminal cells, the horizontal extent of one cell (glyph + padding),
// and the overscan margin. It is a pure value; all methods are side-effect free.
type Geometry struct {
	Width      int // available width in cells; <= 0 means unknown
	Height     int // available height in rows
	CellExtent int // cell width incl. padding, >= 1
	Overscan   int // extra rows queried beyond the visible range
}

// Columns returns floor(availableWidth / cellExtent), clamped to at least 1.
func (g Geometry) Columns() int {
	w := g.Width
	if w <= 0 {
		w = DefaultWidth
	}
	ext := g.CellExtent
	if ext < 1 {
		ext = 1
	}
	cols := w / ext
	if cols < 1 {
		cols = 1
	}
	return cols
}

// TotalRows returns the number of grid rows at the current column count. The
// last row may be partial.
func (g Geometry) TotalRows() int {
	cols := g.Columns()
	return (Domain + cols - 1) / cols
}

// Viewport is the derived visible window: the column count the layout was
// computed with and the visible row range, RowEnd exclusive.
type Viewport struct {
	ColumnCount int
	RowStart    int
	RowEnd      int
	TotalRows   int
}

// Visible computes the viewport for a given scroll row. The scroll row is
// clamped so the viewport always lies within the grid.
func (g Geometry) Visible(scrollRow int) Viewport {
	cols := g.Columns()
	total := g.TotalRows()
	rows := g.Height
	if rows < 1 {
		rows = 1
	}
	if rows > total {
		rows = total
	}
	if scrollRow > total-rows {
		scrollRow = total - rows
	}
	if scrollRow < 0 {
		scrollRow = 0
	}
	return Viewport{
		ColumnCount: cols,
		RowStart:    scrollRow,
		RowEnd:      scrollRow + rows,
		TotalRows:   total,
	}
}

// Range returns the linear index range covered by the visible rows, half-open
// and clamped to [0, Domain).
func (v Viewport) Range() (start, end int) {
	start = v.RowStart * v.ColumnCount
	end = v.RowEnd * v.ColumnCount
	if start < 0 {
		start = 0
	}
	if end > Domain {
		end = Domain
	}
	if end < start {
		end = start
	}
	return start, end
}

// QueryRange widens the visible range by the overscan margin and returns the
// linear range to request from the authority, clamped to [0, Domain).
func (g Geometry) QueryRange(v Viewport) (start, end int) {
	over := g.Overscan
	if over < 0 {
		over = 0
	}
	w := Viewport{
		ColumnCount: v.ColumnCount,
		RowStart:    v.RowStart - over,
		RowEnd:      v.RowEnd + over,
	}
	if w.RowStart < 0 {
		w.RowStart = 0
	}
	return w.Range()
}

// PlacementAt returns the box for a visible (row, col) pair, positioned
// relative to the viewport's top-left corner.
func (g Geometry) PlacementAt(v Viewport, row, col int) Placement {
	ext := g.CellExtent
	if ext < 1 {
		ext = 1
	}
	return Placement{
		X: col * ext,
		Y: row - v.RowStart,
		W: ext,
		H: 1,
	}
}

// CellAt maps a point inside the grid area (relative to the grid origin) back
// to a linear index. ok is false when the point falls on padding past the last
// column, or past the end of the domain.
func (g Geometry) CellAt(v Viewport, x, y int) (index int, ok bool) {
	ext := g.CellExtent
	if ext < 1 {
		ext = 1
	}
	col := x / ext
	row := v.RowStart + y
	if x < 0 || y < 0 || col >= v.ColumnCount || row >= v.RowEnd {
		return 0, false
	}
	idx := row*v.ColumnCount + col
	if idx >= Domain {
		return 0, false
	}
	return idx, true
}
