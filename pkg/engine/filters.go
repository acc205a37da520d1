package engine

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/window"
)

// FillMode selects the k-space trajectory used by the acquisition fill
// simulation.
type FillMode int

const (
	// FillLinear fills k-space top to bottom in raster order.
	FillLinear FillMode = iota
	// FillCentric fills the center line first, then alternates outward one
	// line above and one below.
	FillCentric
	// FillSSEPIBlipped follows a single-shot EPI zig-zag trajectory: even
	// lines left to right, odd lines right to left.
	FillSSEPIBlipped
	// FillSpiral is a recognized trajectory that is not simulated; filling
	// with it is a no-op.
	FillSpiral
)

// ApplySpikes overlays the recorded spikes onto kspace, setting each cell to
// twice the current maximum k-space magnitude. Coordinates outside the array
// are ignored.
func ApplySpikes(kspace *CGrid, spikes []Spike) {
	if len(spikes) == 0 {
		return
	}
	var maxMag float64
	for _, v := range kspace.Data {
		if m := cmplx.Abs(v); m > maxMag {
			maxMag = m
		}
	}
	intensity := complex(maxMag*2, 0)
	for _, sp := range spikes {
		if sp.Row < 0 || sp.Row >= kspace.Rows || sp.Col < 0 || sp.Col >= kspace.Cols {
			continue
		}
		kspace.Set(sp.Row, sp.Col, intensity)
	}
}

// ApplyPatches zeroes a square block of kspace for each recorded patch,
// centered at (Row, Col) with half-width HalfSize and clipped to the array
// bounds.
func ApplyPatches(kspace *CGrid, patches []Patch) {
	for _, p := range patches {
		r0 := max(p.Row-p.HalfSize, 0)
		r1 := min(p.Row+p.HalfSize+1, kspace.Rows)
		c0 := max(p.Col-p.HalfSize, 0)
		c1 := min(p.Col+p.HalfSize+1, kspace.Cols)
		for i := r0; i < r1; i++ {
			for j := c0; j < c1; j++ {
				kspace.Set(i, j, 0)
			}
		}
	}
}

// ReducedScanPercentage zeroes an equal number of lines at the top and
// bottom of kspace so that only the requested central percentage of rows
// remains populated. The per-edge line count rounds ties to even. A
// percentage of 100 or more is a no-op.
func ReducedScanPercentage(kspace *CGrid, percentage float64) {
	if int(percentage) >= 100 {
		return
	}
	linesToDelete := int(math.RoundToEven((1 - percentage/100) * float64(kspace.Rows) / 2))
	if linesToDelete <= 0 {
		return
	}
	if linesToDelete > kspace.Rows/2 {
		linesToDelete = kspace.Rows / 2
	}
	zeroRows(kspace, 0, linesToDelete)
	zeroRows(kspace, kspace.Rows-linesToDelete, kspace.Rows)
}

// PartialFourier simulates half-scan acquisition: only the leading portion
// of k-space lines is kept. The trailing skip rows are either zero-filled
// (zf true) or reconstructed by conjugate symmetry (zf false): the array is
// reversed along both axes, circularly shifted by one row and/or column when
// the corresponding dimension is even (the mirrored DC peak is off center
// for even resolutions), and the conjugate of that view's trailing rows is
// written into the missing rows. The skipped row count rounds ties to even;
// a percentage of 100 is a no-op.
func PartialFourier(kspace *CGrid, percentage float64, zf bool) {
	if int(percentage) == 100 {
		return
	}
	frac := 1 - percentage/100
	rowsToSkip := int(math.RoundToEven(frac * (float64(kspace.Rows)/2 - 1)))
	if rowsToSkip <= 0 {
		return
	}
	if rowsToSkip > kspace.Rows {
		rowsToSkip = kspace.Rows
	}
	if zf {
		zeroRows(kspace, kspace.Rows-rowsToSkip, kspace.Rows)
		return
	}

	rows, cols := kspace.Rows, kspace.Cols
	shiftVer := 1 - rows%2
	shiftHor := 1 - cols%2

	// The mirror rows are assembled into a scratch buffer first so reads
	// never observe rows already overwritten.
	mirror := make([]complex128, rowsToSkip*cols)
	for i := rows - rowsToSkip; i < rows; i++ {
		// Row i of roll(reverse(kspace), (shiftVer, shiftHor)).
		src := ((i-shiftVer)%rows + rows) % rows
		for j := 0; j < cols; j++ {
			sj := ((j-shiftHor)%cols + cols) % cols
			mirror[(i-(rows-rowsToSkip))*cols+j] =
				cmplx.Conj(kspace.At(rows-1-src, cols-1-sj))
		}
	}
	copy(kspace.Data[(rows-rowsToSkip)*cols:], mirror)
}

// HighPassFilter removes the low spatial frequencies by zeroing all samples
// within a circle around the k-space center. The circle's radius is
// radius/100 of half the array diagonal. A radius of 0 or less is a no-op.
func HighPassFilter(kspace *CGrid, radius float64) {
	if radius <= 0 {
		return
	}
	r := math.Hypot(float64(kspace.Rows), float64(kspace.Cols)) / 2 * radius / 100
	circularMask(kspace, r, true)
}

// LowPassFilter removes the high spatial frequencies by zeroing all samples
// outside a circle around the k-space center. The circle's radius is
// radius/100 of half the array diagonal. A radius of 100 or more is a no-op.
func LowPassFilter(kspace *CGrid, radius float64) {
	if radius >= 100 {
		return
	}
	r := math.Hypot(float64(kspace.Rows), float64(kspace.Cols)) / 2 * radius / 100
	circularMask(kspace, r, false)
}

// circularMask zeroes samples inside (inside true) or outside (inside
// false) the circle of radius r around the conceptual center of the grid.
func circularMask(kspace *CGrid, r float64, inside bool) {
	a := kspace.Rows / 2
	b := kspace.Cols / 2
	r2 := r * r
	for i := 0; i < kspace.Rows; i++ {
		y := float64(i - a)
		for j := 0; j < kspace.Cols; j++ {
			x := float64(j - b)
			if (x*x+y*y <= r2) == inside {
				kspace.Set(i, j, 0)
			}
		}
	}
}

// Undersample simulates acquiring only every n-th k-space line (n = factor),
// starting from the midline and walking outward in both directions. With
// compress false the skipped lines are zeroed in place; with compress true
// the array is collapsed to the kept lines only, resizing all of the slice's
// buffers to the reduced shape. A factor of 1 or less disables the filter.
func (s *Slice) Undersample(factor int, compress bool) {
	if factor <= 1 {
		return
	}
	kspace := s.KSpace
	keep := make([]bool, kspace.Rows)
	midline := kspace.Rows / 2
	for i := midline; i < kspace.Rows; i += factor {
		keep[i] = true
	}
	for i := midline; i >= 0; i -= factor {
		keep[i] = true
	}

	if !compress {
		for i := range keep {
			if !keep[i] {
				zeroRows(kspace, i, i+1)
			}
		}
		return
	}

	cols := kspace.Cols
	kept := make([]complex128, 0, kspace.Rows*cols)
	for i := range keep {
		if keep[i] {
			kept = append(kept, kspace.Data[i*cols:(i+1)*cols]...)
		}
	}
	s.ResizeArrays(Shape{Rows: len(kept) / cols, Cols: cols})
	copy(s.KSpace.Data, kept)
}

// DecreaseDC scales the single central k-space cell (the DC term) by
// (100-percentage)/100.
func DecreaseDC(kspace *CGrid, percentage int) {
	i := kspace.Rows / 2
	j := kspace.Cols / 2
	kspace.Set(i, j, kspace.At(i, j)*complex(float64(100-percentage)/100, 0))
}

// HammingFilter multiplies kspace by the outer product of two 1D Hamming
// windows sized to its row and column counts, suppressing Gibbs ringing.
func HammingFilter(kspace *CGrid) {
	rowWin := hammingWindow(kspace.Rows)
	colWin := hammingWindow(kspace.Cols)
	for i := 0; i < kspace.Rows; i++ {
		for j := 0; j < kspace.Cols; j++ {
			kspace.Data[i*kspace.Cols+j] *= complex(rowWin[i]*colWin[j], 0)
		}
	}
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return window.Hamming(w)
}

// Filling zeroes the portion of k-space not yet acquired at the given phase
// of the acquisition (value, 0-100 percent) under the selected trajectory.
// The spiral trajectory is recognized but not simulated.
func Filling(kspace *CGrid, value float64, mode FillMode) {
	switch mode {
	case FillLinear:
		FillingLinear(kspace, value)
	case FillCentric:
		FillingCentric(kspace, value)
	case FillSSEPIBlipped:
		FillingSSEPIBlipped(kspace, value)
	case FillSpiral:
		// Not simulated.
	}
}

// FillingLinear zeroes everything from flattened index
// floor(size*value/100) onward, modeling raster-order acquisition.
func FillingLinear(kspace *CGrid, value float64) {
	zeroTail(kspace.Data, value)
}

// FillingCentric reorders the lines center-out (center, center+1, center-1,
// center+2, ...), zeroes the flattened tail, and restores physical order.
func FillingCentric(kspace *CGrid, value float64) {
	rows, cols := kspace.Rows, kspace.Cols
	centric := make([]complex128, rows*cols)

	// Even slots take the midline and below, odd slots walk upward from
	// just above the midline.
	mid := rows / 2
	for n, i := 0, mid; i < rows; n, i = n+1, i+1 {
		copy(centric[2*n*cols:(2*n+1)*cols], kspace.Data[i*cols:(i+1)*cols])
	}
	for n, i := 0, mid-1; i >= 0; n, i = n+1, i-1 {
		copy(centric[(2*n+1)*cols:(2*n+2)*cols], kspace.Data[i*cols:(i+1)*cols])
	}

	zeroTail(centric, value)

	for n, i := 0, mid; i < rows; n, i = n+1, i+1 {
		copy(kspace.Data[i*cols:(i+1)*cols], centric[2*n*cols:(2*n+1)*cols])
	}
	for n, i := 0, mid-1; i >= 0; n, i = n+1, i-1 {
		copy(kspace.Data[i*cols:(i+1)*cols], centric[(2*n+1)*cols:(2*n+2)*cols])
	}
}

// FillingSSEPIBlipped models the single-shot EPI zig-zag trajectory: odd
// lines are logically reversed before the flattened tail is zeroed, then
// restored to physical order.
func FillingSSEPIBlipped(kspace *CGrid, value float64) {
	rows, cols := kspace.Rows, kspace.Cols
	epi := make([]complex128, rows*cols)
	for i := 0; i < rows; i++ {
		row := kspace.Data[i*cols : (i+1)*cols]
		dst := epi[i*cols : (i+1)*cols]
		if i%2 == 0 {
			copy(dst, row)
		} else {
			for j := 0; j < cols; j++ {
				dst[j] = row[cols-1-j]
			}
		}
	}

	zeroTail(epi, value)

	for i := 0; i < rows; i++ {
		src := epi[i*cols : (i+1)*cols]
		dst := kspace.Data[i*cols : (i+1)*cols]
		if i%2 == 0 {
			copy(dst, src)
		} else {
			for j := 0; j < cols; j++ {
				dst[j] = src[cols-1-j]
			}
		}
	}
}

// zeroTail zeroes flat from floor(len*value/100) onward.
func zeroTail(data []complex128, value float64) {
	start := int(float64(len(data)) * value / 100)
	if start < 0 {
		start = 0
	}
	for i := start; i < len(data); i++ {
		data[i] = 0
	}
}

func zeroRows(kspace *CGrid, from, to int) {
	for i := from * kspace.Cols; i < to*kspace.Cols; i++ {
		kspace.Data[i] = 0
	}
}
