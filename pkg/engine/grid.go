// Package engine implements the per-slice k-space transform engine: a
// coupled pair of buffers (spatial image and complex frequency-domain data)
// kept consistent under repeated, composable in-place filter operations.
// Each Slice owns its buffers outright; a new instance should be created for
// every loaded image or channel.
package engine

import (
	"fmt"
)

// Shape describes the dimensions of a 2D buffer in rows and columns.
type Shape struct {
	Rows int
	Cols int
}

// Size returns the total number of elements for the shape.
func (s Shape) Size() int { return s.Rows * s.Cols }

// Grid is a real-valued 2D buffer stored in row-major order.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid allocates a zeroed real grid with the given dimensions.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Shape returns the grid's dimensions.
func (g *Grid) Shape() Shape { return Shape{Rows: g.Rows, Cols: g.Cols} }

// At returns the value at row i, column j.
func (g *Grid) At(i, j int) float64 { return g.Data[i*g.Cols+j] }

// Set stores v at row i, column j.
func (g *Grid) Set(i, j int, v float64) { g.Data[i*g.Cols+j] = v }

// Resize reshapes the grid to the given shape, reusing the backing slice
// when it has sufficient capacity. The contents are zeroed.
func (g *Grid) Resize(shape Shape) {
	g.Data = resizeFloats(g.Data, shape.Size())
	g.Rows, g.Cols = shape.Rows, shape.Cols
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Rows, g.Cols)
	copy(out.Data, g.Data)
	return out
}

// CGrid is a complex-valued 2D buffer stored in row-major order. It holds
// one slice's k-space samples with the DC term at the array center.
type CGrid struct {
	Rows int
	Cols int
	Data []complex128
}

// NewCGrid allocates a zeroed complex grid with the given dimensions.
func NewCGrid(rows, cols int) *CGrid {
	return &CGrid{Rows: rows, Cols: cols, Data: make([]complex128, rows*cols)}
}

// Shape returns the grid's dimensions.
func (k *CGrid) Shape() Shape { return Shape{Rows: k.Rows, Cols: k.Cols} }

// At returns the value at row i, column j.
func (k *CGrid) At(i, j int) complex128 { return k.Data[i*k.Cols+j] }

// Set stores v at row i, column j.
func (k *CGrid) Set(i, j int, v complex128) { k.Data[i*k.Cols+j] = v }

// Resize reshapes the grid to the given shape, reusing the backing slice
// when it has sufficient capacity. The contents are zeroed.
func (k *CGrid) Resize(shape Shape) {
	k.Data = resizeComplexes(k.Data, shape.Size())
	k.Rows, k.Cols = shape.Rows, shape.Cols
}

// Clone returns an independent copy of the grid.
func (k *CGrid) Clone() *CGrid {
	out := NewCGrid(k.Rows, k.Cols)
	copy(out.Data, k.Data)
	return out
}

// CopyFrom copies src into k. It returns an error on shape mismatch and
// leaves k untouched in that case.
func (k *CGrid) CopyFrom(src *CGrid) error {
	if k.Rows != src.Rows || k.Cols != src.Cols {
		return fmt.Errorf("copy: %w: dst %dx%d, src %dx%d",
			ErrShapeMismatch, k.Rows, k.Cols, src.Rows, src.Cols)
	}
	copy(k.Data, src.Data)
	return nil
}

func resizeFloats(s []float64, n int) []float64 {
	if cap(s) >= n {
		s = s[:n]
		for i := range s {
			s[i] = 0
		}
		return s
	}
	return make([]float64, n)
}

func resizeComplexes(s []complex128, n int) []complex128 {
	if cap(s) >= n {
		s = s[:n]
		for i := range s {
			s[i] = 0
		}
		return s
	}
	return make([]complex128, n)
}
