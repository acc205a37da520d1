package engine

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NoNoiseSNR is the signal-to-noise threshold (in dB) at or above which the
// noise filter is disabled.
const NoNoiseSNR = 30

// Spike is a user-added bright artifact point in k-space.
type Spike struct {
	Row int
	Col int
}

// Patch is a user-added zeroed square region in k-space, centered at
// (Row, Col) with half-width HalfSize.
type Patch struct {
	Row      int
	Col      int
	HalfSize int
}

// Slice holds one 2D slice's dual representation: the magnitude image and
// its complex k-space, together with the 8-bit display buffers derived from
// them. A Slice owns all of its buffers exclusively; distinct Slices never
// alias, so independent Slices may be recomputed in parallel by the caller.
//
// The k-space snapshot taken at construction is kept private and is the
// source of truth for every recompute: each Recompute call restores the
// working k-space from it before reapplying filters, so filter effects
// compose predictably and remain independently toggleable.
type Slice struct {
	// Img is the real magnitude image, regenerated from KSpace on every
	// recompute.
	Img *Grid

	// KSpace is the mutable working copy of the frequency-domain data.
	KSpace *CGrid

	// ImageDisplay and KSpaceDisplay are the 8-bit render buffers, always
	// the same shape as Img.
	ImageDisplay  []uint8
	KSpaceDisplay []uint8

	// SignalToNoise is the last-applied SNR in dB. The default of 30 means
	// no noise is applied.
	SignalToNoise float64

	// Spikes and Patches persist across recomputes and are edited through
	// the Add/Undo/Clear methods.
	Spikes  []Spike
	Patches []Patch

	origKSpace *CGrid
	noiseMap   *Grid
	kspaceAbs  []float64
	noiseSrc   rand.Source
}

// NewSliceFromImage builds a Slice from a real-valued image: the image is
// copied, forward-transformed into k-space, and the result snapshotted as
// the immutable original. Display buffers are prepared with default display
// settings.
func NewSliceFromImage(img *Grid) (*Slice, error) {
	s := newSlice(img.Shape())
	copy(s.Img.Data, img.Data)
	if err := ForwardTransform(s.Img, s.KSpace); err != nil {
		return nil, fmt.Errorf("failed to build slice from image: %v", err)
	}
	s.origKSpace = s.KSpace.Clone()
	s.PrepareDisplays(DefaultKSpaceScaleExp, nil)
	return s, nil
}

// NewSliceFromKSpace builds a Slice from raw complex k-space data: the data
// is copied and snapshotted as the immutable original, and the magnitude
// image is obtained by one inverse transform.
func NewSliceFromKSpace(kspace *CGrid) (*Slice, error) {
	s := newSlice(kspace.Shape())
	copy(s.KSpace.Data, kspace.Data)
	if err := InverseTransform(s.KSpace, s.Img); err != nil {
		return nil, fmt.Errorf("failed to build slice from kspace: %v", err)
	}
	s.origKSpace = s.KSpace.Clone()
	s.PrepareDisplays(DefaultKSpaceScaleExp, nil)
	return s, nil
}

func newSlice(shape Shape) *Slice {
	return &Slice{
		Img:           NewGrid(shape.Rows, shape.Cols),
		KSpace:        NewCGrid(shape.Rows, shape.Cols),
		ImageDisplay:  make([]uint8, shape.Size()),
		KSpaceDisplay: make([]uint8, shape.Size()),
		SignalToNoise: NoNoiseSNR,
		noiseMap:      NewGrid(shape.Rows, shape.Cols),
		kspaceAbs:     make([]float64, shape.Size()),
		noiseSrc:      rand.NewSource(uint64(time.Now().UnixNano())),
	}
}

// OriginalKSpace returns a copy of the immutable k-space snapshot taken at
// construction. The snapshot itself is never handed out, so it cannot be
// mutated by callers.
func (s *Slice) OriginalKSpace() *CGrid { return s.origKSpace.Clone() }

// OriginalShape returns the shape of the k-space snapshot, which is the
// shape every recompute restores before reapplying filters.
func (s *Slice) OriginalShape() Shape { return s.origKSpace.Shape() }

// ResizeArrays resizes the image, both display buffers, and the working
// k-space to the given shape. It is called by undersampling with compression
// when the row count changes, and at the start of every recompute to restore
// the original shape. The noise map keeps the original shape: noise is
// always applied before any shape-changing filter.
func (s *Slice) ResizeArrays(shape Shape) {
	s.Img.Resize(shape)
	s.KSpace.Resize(shape)
	n := shape.Size()
	if cap(s.ImageDisplay) >= n {
		s.ImageDisplay = s.ImageDisplay[:n]
		s.KSpaceDisplay = s.KSpaceDisplay[:n]
	} else {
		s.ImageDisplay = make([]uint8, n)
		s.KSpaceDisplay = make([]uint8, n)
	}
	s.kspaceAbs = resizeFloats(s.kspaceAbs, n)
}

// AddSpike records a spike artifact at the given k-space coordinate.
func (s *Slice) AddSpike(row, col int) {
	s.Spikes = append(s.Spikes, Spike{Row: row, Col: col})
}

// UndoSpike removes the most recently added spike, if any.
func (s *Slice) UndoSpike() {
	if n := len(s.Spikes); n > 0 {
		s.Spikes = s.Spikes[:n-1]
	}
}

// ClearSpikes removes all recorded spikes.
func (s *Slice) ClearSpikes() { s.Spikes = s.Spikes[:0] }

// AddPatch records a zeroed square region centered at the given k-space
// coordinate with the given half-width.
func (s *Slice) AddPatch(row, col, halfSize int) {
	s.Patches = append(s.Patches, Patch{Row: row, Col: col, HalfSize: halfSize})
}

// UndoPatch removes the most recently added patch, if any.
func (s *Slice) UndoPatch() {
	if n := len(s.Patches); n > 0 {
		s.Patches = s.Patches[:n-1]
	}
}

// ClearPatches removes all recorded patches.
func (s *Slice) ClearPatches() { s.Patches = s.Patches[:0] }

// AddNoise adds Gaussian white noise to the working k-space so that the
// result has the requested signal-to-noise ratio, where
// SNR [dB] = 20*log10(S/N) with S the mean k-space magnitude and N the
// noise standard deviation. An SNR at or above NoNoiseSNR disables the
// filter. When generateNew is false the cached noise map is re-added
// unchanged, keeping the noise realization visually stable while other
// parameters move; when true a fresh map is drawn at the new sigma.
func (s *Slice) AddNoise(signalToNoise float64, generateNew bool) error {
	if signalToNoise >= NoNoiseSNR {
		return nil
	}
	if s.noiseMap.Rows != s.KSpace.Rows || s.noiseMap.Cols != s.KSpace.Cols {
		return fmt.Errorf("add noise: %w: noise map %dx%d, kspace %dx%d",
			ErrShapeMismatch, s.noiseMap.Rows, s.noiseMap.Cols, s.KSpace.Rows, s.KSpace.Cols)
	}
	if generateNew {
		abs := make([]float64, len(s.KSpace.Data))
		for i, v := range s.KSpace.Data {
			abs[i] = cmplx.Abs(v)
		}
		meanSignal := stat.Mean(abs, nil)
		stdNoise := meanSignal / math.Pow(10, signalToNoise/20)
		normal := distuv.Normal{Mu: 0, Sigma: stdNoise, Src: s.noiseSrc}
		for i := range s.noiseMap.Data {
			s.noiseMap.Data[i] = normal.Rand()
		}
	}
	for i := range s.KSpace.Data {
		s.KSpace.Data[i] += complex(s.noiseMap.Data[i], 0)
	}
	return nil
}

// NoiseMap returns a copy of the cached noise realization.
func (s *Slice) NoiseMap() *Grid { return s.noiseMap.Clone() }

// PrepareDisplays refreshes both 8-bit display buffers from the current
// image and k-space. The image is windowed onto the 0-255 range; the
// k-space magnitude is scaled by 10^kscale, log-compressed, and normalized.
// An all-zero k-space skips the log and normalization steps.
func (s *Slice) PrepareDisplays(kscale int, win *Window) {
	ApplyWindow(s.Img.Data, win)

	for i, v := range s.KSpace.Data {
		s.kspaceAbs[i] = cmplx.Abs(v)
	}
	if len(s.kspaceAbs) > 0 && floats.Max(s.kspaceAbs) > 0 {
		scaling := math.Pow(10, float64(kscale))
		for i, v := range s.kspaceAbs {
			s.kspaceAbs[i] = math.Log1p(v * scaling)
		}
		Normalize(s.kspaceAbs)
	}

	for i, v := range s.Img.Data {
		s.ImageDisplay[i] = clampByte(v)
	}
	for i, v := range s.kspaceAbs {
		s.KSpaceDisplay[i] = clampByte(v)
	}
}
