package line

// Plotter is handed each cell of a line as it is walked.
// Returning false ends the walk.
type Plotter interface {
	Set(x, y int) bool
}

// bresenham walks every cell from (x1,y1) to (x2,y2) inclusive, in order.
// Integer only; each step moves to one of the 8 neighbours of the last cell
// so the result never has gaps, whichever way the line points.
func bresenham(p Plotter, x1, y1, x2, y2 int) {
	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	dy := y2 - y1
	if dy > 0 {
		dy = -dy
	}

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	// running error term, dy is kept negative
	e := dx + dy
	for {
		if !p.Set(x1, y1) {
			return
		}
		if x1 == x2 && y1 == y2 {
			return
		}

		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}
