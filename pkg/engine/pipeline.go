package engine

import "fmt"

// DefaultKSpaceScaleExp is the default exponent for k-space display scaling:
// magnitudes are multiplied by 10^exp before log compression.
const DefaultKSpaceScaleExp = -3

// Options is the full recompute configuration surface: the eleven k-space
// filters plus the display controls. Every field is independently togglable.
// Note that the zero value is not the neutral setting for every field (a
// low-pass radius of 0 masks everything); use DefaultOptions for the
// all-disabled baseline.
type Options struct {
	// SignalToNoise is the target SNR in dB; values at or above NoNoiseSNR
	// disable the noise filter.
	SignalToNoise float64

	// ReducedScan enables deleting edge lines so only ReducedScanPercent of
	// the phase-direction lines stay populated.
	ReducedScan        bool
	ReducedScanPercent float64

	// PartialFourier enables half-scan simulation at PartialFourierPercent;
	// ZeroFill selects zero filling instead of conjugate-symmetry
	// reconstruction.
	PartialFourier        bool
	PartialFourierPercent float64
	ZeroFill              bool

	// HighPassPercent and LowPassPercent are the circular mask radii as a
	// percentage of half the array diagonal. High-pass is disabled at 0,
	// low-pass at 100.
	HighPassPercent float64
	LowPassPercent  float64

	// UndersampleFactor keeps only every n-th line starting from the
	// midline; a factor of 1 or less disables it. Compress collapses the
	// array to the kept lines, changing its shape.
	UndersampleFactor int
	Compress          bool

	// DecreaseDCPercent reduces the DC term by that percentage; values of
	// 1 or less are ignored.
	DecreaseDCPercent int

	// Hamming applies the 2D Hamming window.
	Hamming bool

	// FillPercent is the acquisition phase of the fill simulation, 0-100;
	// 100 means fully acquired and disables it. FillMode selects the
	// trajectory.
	FillPercent float64
	FillMode    FillMode

	// KSpaceScaleExp and Window are the display controls passed to
	// PrepareDisplays.
	KSpaceScaleExp int
	Window         *Window
}

// DefaultOptions returns a configuration with every filter disabled and
// default display settings.
func DefaultOptions() Options {
	return Options{
		SignalToNoise:         NoNoiseSNR,
		ReducedScanPercent:    100,
		PartialFourierPercent: 100,
		HighPassPercent:       0,
		LowPassPercent:        100,
		UndersampleFactor:     1,
		DecreaseDCPercent:     0,
		FillPercent:           100,
		KSpaceScaleExp:        DefaultKSpaceScaleExp,
	}
}

// Recompute runs one full engine pass: the working k-space is restored to
// the original snapshot (including its shape, which a previous compressed
// recompute may have changed), the enabled filters are applied in fixed
// order, and the inverse transform and display preparation refresh the image
// and both display buffers. Spikes and patches recorded on the slice are
// reapplied on every pass.
//
// The filter order is a contract: the filters are not mathematically
// commutative, and each recompute starting from a fresh copy of the original
// k-space is what makes their effects compose predictably.
func (s *Slice) Recompute(opts Options) error {
	s.ResizeArrays(s.origKSpace.Shape())
	if err := s.KSpace.CopyFrom(s.origKSpace); err != nil {
		return fmt.Errorf("failed to reset kspace: %v", err)
	}

	// 01 - Noise. A changed SNR invalidates the cached noise map.
	generateNew := opts.SignalToNoise != s.SignalToNoise
	if generateNew {
		s.SignalToNoise = opts.SignalToNoise
	}
	if err := s.AddNoise(opts.SignalToNoise, generateNew); err != nil {
		return fmt.Errorf("failed to apply noise: %v", err)
	}

	// 02 - Spikes
	ApplySpikes(s.KSpace, s.Spikes)

	// 03 - Patches
	ApplyPatches(s.KSpace, s.Patches)

	// 04 - Reduced scan percentage
	if opts.ReducedScan {
		ReducedScanPercentage(s.KSpace, opts.ReducedScanPercent)
	}

	// 05 - Partial Fourier
	if opts.PartialFourier {
		PartialFourier(s.KSpace, opts.PartialFourierPercent, opts.ZeroFill)
	}

	// 06 - High pass filter
	HighPassFilter(s.KSpace, opts.HighPassPercent)

	// 07 - Low pass filter
	LowPassFilter(s.KSpace, opts.LowPassPercent)

	// 08 - Undersampling
	s.Undersample(opts.UndersampleFactor, opts.Compress)

	// 09 - DC signal decrease
	if opts.DecreaseDCPercent > 1 {
		DecreaseDC(s.KSpace, opts.DecreaseDCPercent)
	}

	// 10 - Hamming filter
	if opts.Hamming {
		HammingFilter(s.KSpace)
	}

	// 11 - Acquisition fill simulation
	if opts.FillPercent < 100 {
		Filling(s.KSpace, opts.FillPercent, opts.FillMode)
	}

	if err := InverseTransform(s.KSpace, s.Img); err != nil {
		return fmt.Errorf("failed to reconstruct image: %v", err)
	}
	s.PrepareDisplays(opts.KSpaceScaleExp, opts.Window)
	return nil
}
