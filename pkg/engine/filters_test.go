package engine

import (
	"math"
	"math/cmplx"
	"testing"
)

// testKSpace fills a complex grid with a deterministic asymmetric pattern.
func testKSpace(rows, cols int) *CGrid {
	k := NewCGrid(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			k.Set(i, j, complex(float64(i*cols+j)+1, float64(i-j)*0.5))
		}
	}
	return k
}

func countZeroRows(k *CGrid) int {
	zero := 0
	for i := 0; i < k.Rows; i++ {
		allZero := true
		for j := 0; j < k.Cols; j++ {
			if k.At(i, j) != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			zero++
		}
	}
	return zero
}

// TestReducedScanPercentage verifies the deleted line count at both edges
// and the no-op at 100 percent.
func TestReducedScanPercentage(t *testing.T) {
	k := testKSpace(8, 4)
	ReducedScanPercentage(k, 100)
	if countZeroRows(k) != 0 {
		t.Errorf("100%% should be a no-op, got %d zero rows", countZeroRows(k))
	}

	// round((1 - 0.5) * 8 / 2) = 2 lines from each edge.
	ReducedScanPercentage(k, 50)
	for _, i := range []int{0, 1, 6, 7} {
		for j := 0; j < k.Cols; j++ {
			if k.At(i, j) != 0 {
				t.Errorf("row %d should be zeroed", i)
			}
		}
	}
	for _, i := range []int{2, 3, 4, 5} {
		if k.At(i, 0) == 0 {
			t.Errorf("row %d should be untouched", i)
		}
	}

	// Percentage 0 clips the deletion at rows/2 per edge, zeroing everything.
	k2 := testKSpace(8, 4)
	ReducedScanPercentage(k2, 0)
	if countZeroRows(k2) != 8 {
		t.Errorf("0%% should zero all rows, got %d zero rows", countZeroRows(k2))
	}
}

// TestReducedScanPercentageRoundsTiesToEven pins the tie behavior of the
// line count: 50 percent of 10 rows puts 2.5 lines on each edge, which
// rounds to even, deleting 2 per edge and keeping 6.
func TestReducedScanPercentageRoundsTiesToEven(t *testing.T) {
	k := testKSpace(10, 4)
	ReducedScanPercentage(k, 50)

	if got := countZeroRows(k); got != 4 {
		t.Fatalf("zeroed rows: want 4, got %d", got)
	}
	for _, i := range []int{0, 1, 8, 9} {
		if k.At(i, 0) != 0 {
			t.Errorf("edge row %d should be zeroed", i)
		}
	}
	for i := 2; i <= 7; i++ {
		if k.At(i, 0) == 0 {
			t.Errorf("central row %d should be kept", i)
		}
	}
}

// TestHighLowPassComplement verifies that the high-pass and low-pass masks
// with the same radius formula input are exact set complements: every cell
// is zeroed by exactly one of them.
func TestHighLowPassComplement(t *testing.T) {
	for _, shape := range []Shape{{8, 8}, {7, 5}} {
		high := testKSpace(shape.Rows, shape.Cols)
		low := testKSpace(shape.Rows, shape.Cols)

		HighPassFilter(high, 40)
		LowPassFilter(low, 40)

		for i := range high.Data {
			zeroedHigh := high.Data[i] == 0
			zeroedLow := low.Data[i] == 0
			if zeroedHigh == zeroedLow {
				t.Fatalf("%dx%d cell %d: zeroed by high-pass=%v and low-pass=%v",
					shape.Rows, shape.Cols, i, zeroedHigh, zeroedLow)
			}
		}
	}
}

// TestHighPassDisabled verifies the boundary no-ops of both circular masks.
func TestHighPassDisabled(t *testing.T) {
	k := testKSpace(6, 6)
	ref := k.Clone()

	HighPassFilter(k, 0)
	LowPassFilter(k, 100)

	for i := range k.Data {
		if k.Data[i] != ref.Data[i] {
			t.Fatalf("cell %d modified by disabled filters", i)
		}
	}
}

// TestHighPassRemovesDC ensures the high-pass mask always covers the center
// cell for any positive radius.
func TestHighPassRemovesDC(t *testing.T) {
	k := testKSpace(8, 6)
	HighPassFilter(k, 1)
	if k.At(4, 3) != 0 {
		t.Errorf("center cell should be zeroed by high-pass, got %v", k.At(4, 3))
	}
}

// TestPartialFourierZeroFill checks that zero filling zeroes exactly the
// trailing skip rows.
func TestPartialFourierZeroFill(t *testing.T) {
	k := testKSpace(8, 4)
	ref := k.Clone()

	// skip = round((1 - 0.75) * (8/2 - 1)) = round(0.75) = 1
	PartialFourier(k, 75, true)

	for j := 0; j < k.Cols; j++ {
		if k.At(7, j) != 0 {
			t.Errorf("row 7 col %d should be zeroed", j)
		}
	}
	for i := 0; i < 7; i++ {
		for j := 0; j < k.Cols; j++ {
			if k.At(i, j) != ref.At(i, j) {
				t.Errorf("row %d col %d should be untouched", i, j)
			}
		}
	}
}

// TestPartialFourierTieRowCount pins the tie behavior of the skip count:
// 50 percent of 12 rows gives 0.5*(12/2-1) = 2.5 skipped rows, which rounds
// to even, zero-filling exactly the trailing 2 rows.
func TestPartialFourierTieRowCount(t *testing.T) {
	k := testKSpace(12, 4)
	ref := k.Clone()

	PartialFourier(k, 50, true)

	for i := 10; i < 12; i++ {
		for j := 0; j < k.Cols; j++ {
			if k.At(i, j) != 0 {
				t.Errorf("row %d col %d should be zeroed", i, j)
			}
		}
	}
	for i := 0; i < 10; i++ {
		for j := 0; j < k.Cols; j++ {
			if k.At(i, j) != ref.At(i, j) {
				t.Errorf("row %d col %d should be untouched", i, j)
			}
		}
	}
}

// TestPartialFourierConjugateSymmetry verifies the symmetry reconstruction
// on k-space generated from a real image, where the missing rows are exactly
// the conjugate mirror of the acquired ones. Both even and odd dimensions
// exercise the DC-offset roll correction.
func TestPartialFourierConjugateSymmetry(t *testing.T) {
	for _, shape := range []Shape{{8, 8}, {7, 7}, {8, 5}, {7, 6}} {
		img := testImage(shape.Rows, shape.Cols)
		k := NewCGrid(shape.Rows, shape.Cols)
		if err := ForwardTransform(img, k); err != nil {
			t.Fatalf("forward transform failed: %v", err)
		}

		got := k.Clone()
		PartialFourier(got, 60, false)

		for i := range k.Data {
			if cmplx.Abs(got.Data[i]-k.Data[i]) > 1e-9 {
				t.Fatalf("%dx%d: symmetry reconstruction mismatch at %d: want %v, got %v",
					shape.Rows, shape.Cols, i, k.Data[i], got.Data[i])
			}
		}
	}
}

// TestPartialFourierMirrorFormula verifies on synthetic asymmetric data that
// the written rows equal the conjugate of the double-reversed, roll-corrected
// source rows.
func TestPartialFourierMirrorFormula(t *testing.T) {
	k := testKSpace(8, 4)
	ref := k.Clone()

	// skip = round((1 - 0.5) * (8/2 - 1)) = round(1.5) = 2
	PartialFourier(k, 50, false)

	rows, cols := k.Rows, k.Cols
	shiftVer, shiftHor := 1, 1 // both dimensions even
	for i := rows - 2; i < rows; i++ {
		for j := 0; j < cols; j++ {
			si := ((i-shiftVer)%rows + rows) % rows
			sj := ((j-shiftHor)%cols + cols) % cols
			want := cmplx.Conj(ref.At(rows-1-si, cols-1-sj))
			if k.At(i, j) != want {
				t.Errorf("mirror row %d col %d: want %v, got %v", i, j, want, k.At(i, j))
			}
		}
	}
	// Leading rows stay untouched.
	for i := 0; i < rows-2; i++ {
		for j := 0; j < cols; j++ {
			if k.At(i, j) != ref.At(i, j) {
				t.Errorf("row %d col %d should be untouched", i, j)
			}
		}
	}
}

// TestUndersample verifies midline-anchored line skipping without and with
// compression.
func TestUndersample(t *testing.T) {
	img := testImage(8, 4)
	s, err := NewSliceFromImage(img)
	if err != nil {
		t.Fatalf("NewSliceFromImage failed: %v", err)
	}

	// Factor 2 from midline 4 keeps rows 0, 2, 4, 6.
	s.Undersample(2, false)
	if got := s.KSpace.Shape(); got != (Shape{8, 4}) {
		t.Fatalf("shape changed without compression: %v", got)
	}
	for _, i := range []int{1, 3, 5, 7} {
		for j := 0; j < 4; j++ {
			if s.KSpace.At(i, j) != 0 {
				t.Errorf("skipped row %d should be zeroed", i)
			}
		}
	}
	orig := s.OriginalKSpace()
	for _, i := range []int{0, 2, 4, 6} {
		for j := 0; j < 4; j++ {
			if s.KSpace.At(i, j) != orig.At(i, j) {
				t.Errorf("kept row %d should be unchanged", i)
			}
		}
	}

	// With compression the array collapses to the kept rows.
	if err := s.KSpace.CopyFrom(orig); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	s.Undersample(2, true)
	if got := s.KSpace.Shape(); got != (Shape{4, 4}) {
		t.Fatalf("compressed shape: want 4x4, got %v", got)
	}
	for n, src := range []int{0, 2, 4, 6} {
		for j := 0; j < 4; j++ {
			if s.KSpace.At(n, j) != orig.At(src, j) {
				t.Errorf("compressed row %d should hold original row %d", n, src)
			}
		}
	}
	if s.Img.Shape() != s.KSpace.Shape() {
		t.Errorf("image shape %v does not follow kspace shape %v", s.Img.Shape(), s.KSpace.Shape())
	}
	if len(s.ImageDisplay) != s.KSpace.Shape().Size() {
		t.Errorf("display buffer not resized with compression")
	}

	// Factor 1 is a no-op.
	before := s.KSpace.Clone()
	s.Undersample(1, false)
	for i := range before.Data {
		if s.KSpace.Data[i] != before.Data[i] {
			t.Fatalf("factor 1 modified kspace at %d", i)
		}
	}
}

// TestDecreaseDC verifies the central cell scaling.
func TestDecreaseDC(t *testing.T) {
	k := testKSpace(6, 7)
	dc := k.At(3, 3)

	DecreaseDC(k, 40)

	want := dc * complex(0.6, 0)
	if cmplx.Abs(k.At(3, 3)-want) > 1e-12 {
		t.Errorf("DC cell: want %v, got %v", want, k.At(3, 3))
	}
	if k.At(0, 0) != complex(1, 0) {
		t.Errorf("non-DC cell modified")
	}
}

// TestHammingFilter verifies that the filter is the outer product of two 1D
// Hamming windows and attenuates edges more than the center.
func TestHammingFilter(t *testing.T) {
	rows, cols := 8, 6
	k := NewCGrid(rows, cols)
	for i := range k.Data {
		k.Data[i] = 1
	}

	HammingFilter(k)

	rowWin := hammingWindow(rows)
	colWin := hammingWindow(cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			want := rowWin[i] * colWin[j]
			if math.Abs(real(k.At(i, j))-want) > 1e-12 || imag(k.At(i, j)) != 0 {
				t.Fatalf("cell (%d,%d): want %g, got %v", i, j, want, k.At(i, j))
			}
		}
	}

	if real(k.At(0, 0)) >= real(k.At(rows/2, cols/2)) {
		t.Errorf("corner %v not attenuated below center %v", k.At(0, 0), k.At(rows/2, cols/2))
	}
}

// TestFillingLinear checks the raster-order fill: on an 8-element k-space at
// 50 percent, flattened indices 4..7 are zeroed.
func TestFillingLinear(t *testing.T) {
	k := testKSpace(2, 4)
	ref := k.Clone()

	FillingLinear(k, 50)

	for i := 0; i < 4; i++ {
		if k.Data[i] != ref.Data[i] {
			t.Errorf("index %d should be untouched", i)
		}
	}
	for i := 4; i < 8; i++ {
		if k.Data[i] != 0 {
			t.Errorf("index %d should be zeroed", i)
		}
	}
}

// TestFillingCentric verifies the center-out ordering: at 25 percent on a
// 4x2 grid only the physical center row has been acquired.
func TestFillingCentric(t *testing.T) {
	k := testKSpace(4, 2)
	ref := k.Clone()

	FillingCentric(k, 25)

	for j := 0; j < 2; j++ {
		if k.At(2, j) != ref.At(2, j) {
			t.Errorf("center row col %d should be kept", j)
		}
	}
	for _, i := range []int{0, 1, 3} {
		for j := 0; j < 2; j++ {
			if k.At(i, j) != 0 {
				t.Errorf("row %d col %d should be zeroed", i, j)
			}
		}
	}
}

// TestFillingSSEPIBlipped verifies the zig-zag ordering: odd rows fill right
// to left, so the tail cut lands on their leading columns.
func TestFillingSSEPIBlipped(t *testing.T) {
	k := testKSpace(2, 4)
	ref := k.Clone()

	// Zero tail from flattened index 6: the last two samples of the
	// reversed odd row are its physical columns 1 and 0.
	FillingSSEPIBlipped(k, 75)

	for j := 0; j < 4; j++ {
		if k.At(0, j) != ref.At(0, j) {
			t.Errorf("even row col %d should be kept", j)
		}
	}
	for _, j := range []int{0, 1} {
		if k.At(1, j) != 0 {
			t.Errorf("odd row col %d should be zeroed", j)
		}
	}
	for _, j := range []int{2, 3} {
		if k.At(1, j) != ref.At(1, j) {
			t.Errorf("odd row col %d should be kept", j)
		}
	}
}

// TestFillingSpiralNoop verifies the recognized but unimplemented spiral
// trajectory leaves k-space untouched.
func TestFillingSpiralNoop(t *testing.T) {
	k := testKSpace(4, 4)
	ref := k.Clone()

	Filling(k, 10, FillSpiral)

	for i := range k.Data {
		if k.Data[i] != ref.Data[i] {
			t.Fatalf("spiral fill modified kspace at %d", i)
		}
	}
}

// TestApplySpikes verifies the spike intensity and out-of-bounds handling.
func TestApplySpikes(t *testing.T) {
	k := testKSpace(4, 4)
	var maxMag float64
	for _, v := range k.Data {
		if m := cmplx.Abs(v); m > maxMag {
			maxMag = m
		}
	}

	ApplySpikes(k, []Spike{{Row: 1, Col: 2}, {Row: -1, Col: 0}, {Row: 0, Col: 9}})

	want := complex(maxMag*2, 0)
	if k.At(1, 2) != want {
		t.Errorf("spike cell: want %v, got %v", want, k.At(1, 2))
	}
	if k.At(0, 0) != complex(1, 0) {
		t.Errorf("out-of-bounds spikes must be ignored")
	}
}

// TestApplyPatches verifies block zeroing with bound clipping.
func TestApplyPatches(t *testing.T) {
	k := testKSpace(5, 5)

	// Centered at the corner: only the in-bounds quadrant is zeroed.
	ApplyPatches(k, []Patch{{Row: 0, Col: 0, HalfSize: 1}})

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if k.At(i, j) != 0 {
				t.Errorf("cell (%d,%d) should be zeroed", i, j)
			}
		}
	}
	if k.At(2, 2) == 0 || k.At(0, 2) == 0 {
		t.Errorf("cells outside the patch were zeroed")
	}
}

// TestAddNoiseCaching verifies the noise map contract: with generateNew
// false the identical cached map is re-added; with true a fresh realization
// is drawn. An SNR at or above 30 is a no-op.
func TestAddNoiseCaching(t *testing.T) {
	s, err := NewSliceFromImage(testImage(8, 8))
	if err != nil {
		t.Fatalf("NewSliceFromImage failed: %v", err)
	}

	if err := s.AddNoise(10, true); err != nil {
		t.Fatalf("add noise failed: %v", err)
	}
	map1 := s.NoiseMap()

	someNonZero := false
	for _, v := range map1.Data {
		if v != 0 {
			someNonZero = true
			break
		}
	}
	if !someNonZero {
		t.Fatal("noise map is all zero after generation")
	}

	// Cached map is bitwise stable.
	if err := s.AddNoise(10, false); err != nil {
		t.Fatalf("add noise failed: %v", err)
	}
	map2 := s.NoiseMap()
	for i := range map1.Data {
		if map1.Data[i] != map2.Data[i] {
			t.Fatalf("cached noise map changed at %d", i)
		}
	}

	// A cached pass adds exactly the cached map.
	before := s.KSpace.Clone()
	if err := s.AddNoise(10, false); err != nil {
		t.Fatalf("add noise failed: %v", err)
	}
	for i := range before.Data {
		want := before.Data[i] + complex(map1.Data[i], 0)
		if s.KSpace.Data[i] != want {
			t.Fatalf("noise application mismatch at %d", i)
		}
	}

	// Regeneration draws a new realization.
	if err := s.AddNoise(10, true); err != nil {
		t.Fatalf("add noise failed: %v", err)
	}
	map3 := s.NoiseMap()
	same := true
	for i := range map1.Data {
		if map1.Data[i] != map3.Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("regenerated noise map is identical to the previous one")
	}

	// At or above the threshold nothing is added.
	before = s.KSpace.Clone()
	if err := s.AddNoise(NoNoiseSNR, true); err != nil {
		t.Fatalf("add noise failed: %v", err)
	}
	for i := range before.Data {
		if s.KSpace.Data[i] != before.Data[i] {
			t.Fatalf("SNR %d should be a no-op", NoNoiseSNR)
		}
	}
}
