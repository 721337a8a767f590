package grid

// Cell is everything the renderer needs to draw one visible checkbox.
type Cell struct {
	Row       int
	Col       int
	Index     int
	Checked   bool
	Placement Placement
}

// Materialize produces exactly one descriptor per visible (row, col) pair,
// looking up checked state in the store. It walks only the viewport, never
// the full domain, and is pure given its inputs. Positions past the end of
// the domain (the tail of a partial last row) are skipped.
func Materialize(g Geometry, v Viewport, s *Store) []Cell {
	out := make([]Cell, 0, (v.RowEnd-v.RowStart)*v.ColumnCount)
	for row := v.RowStart; row < v.RowEnd; row++ {
		for col := 0; col < v.ColumnCount; col++ {
			index := row*v.ColumnCount + col
			if index >= Domain {
				break
			}
			out = append(out, Cell{
				Row:       row,
				Col:       col,
				Index:     index,
				Checked:   s.IsChecked(index),
				Placement: g.PlacementAt(v, row, col),
			})
		}
	}
	return out
}
