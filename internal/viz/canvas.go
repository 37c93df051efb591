package viz

import (
	"strings"

	"gonum.org/v1/gonum/mat"
)

const brailleBase = 0x2800

// dotBits[row][col] is the Braille bit for a dot inside a 2x4 cell.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width x Height grid of Braille cells, each holding 2x4 dots.
// Dot coordinates grow right and down.
type Canvas struct {
	Width, Height int
	cells         []uint8
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]uint8, w*h)}
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (w, h int) {
	return 2 * c.Width, 4 * c.Height
}

func (c *Canvas) Set(x, y int) {
	w, h := c.Dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	c.cells[(y/4)*c.Width+x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	w, h := c.Dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	return c.cells[(y/4)*c.Width+x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = 0
	}
}

// Line draws a segment with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}

	e := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x0 += sx
		}
		if e2 < dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.Height; row++ {
		for _, bits := range c.cells[row*c.Width : (row+1)*c.Width] {
			sb.WriteRune(rune(brailleBase + int(bits)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Window is the world rectangle mapped onto a canvas.
type Window struct {
	MinX, MinY, MaxX, MaxY float64
}

// DefaultWindow frames the unit square with room for sagging and bulging.
var DefaultWindow = Window{MinX: -0.25, MinY: -0.5, MaxX: 1.5, MaxY: 1.25}

func (w Window) toDots(c *Canvas, x, y float64) (int, int) {
	dw, dh := c.Dots()
	px := (x - w.MinX) / (w.MaxX - w.MinX) * float64(dw-1)
	py := (w.MaxY - y) / (w.MaxY - w.MinY) * float64(dh-1)
	return int(px + 0.5), int(py + 0.5)
}

// DrawLattice draws the mesh joining neighbouring particles at positions
// (px, py), both n x n with row i along y.
func DrawLattice(c *Canvas, w Window, px, py *mat.Dense) {
	n, _ := px.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x0, y0 := w.toDots(c, px.At(i, j), py.At(i, j))
			if j+1 < n {
				x1, y1 := w.toDots(c, px.At(i, j+1), py.At(i, j+1))
				c.Line(x0, y0, x1, y1)
			}
			if i+1 < n {
				x1, y1 := w.toDots(c, px.At(i+1, j), py.At(i+1, j))
				c.Line(x0, y0, x1, y1)
			}
			c.Set(x0, y0)
		}
	}
}
