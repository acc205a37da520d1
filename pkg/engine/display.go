package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Window holds display windowing options. Width and Center are fractions of
// the image's own maximum intensity: a Width of 1 and Center of 0.5 on an
// image whose maximum is 196 gives a window width of 196 centered at 98.
type Window struct {
	// Width is the window width as a fraction of the maximum intensity.
	Width float64
	// Center is the window center as a fraction of the maximum intensity.
	Center float64
}

// Normalize linearly rescales f in place so that the minimum maps to 0 and
// the maximum to 255, with floor rounding. A flat array (min == max) is left
// unchanged.
func Normalize(f []float64) {
	if len(f) == 0 {
		return
	}
	fmin := floats.Min(f)
	fmax := floats.Max(f)
	if fmax == fmin {
		return
	}
	coeff := fmax - fmin
	for i, v := range f {
		f[i] = math.Floor((v - fmin) / coeff * 255)
	}
}

// ApplyWindow maps f in place onto the displayable 0-255 range using the
// given window. Values below center-width/2 clip to 0, values above
// center+width/2 clip to 255, and values inside the window map linearly.
// A nil window means full range with the center at half maximum. A flat
// array is left unchanged.
func ApplyWindow(f []float64, win *Window) {
	if len(f) == 0 {
		return
	}
	fmin := floats.Min(f)
	fmax := floats.Max(f)
	if fmax == fmin {
		return
	}
	ww := fmax
	wc := ww / 2
	if win != nil && win.Width > 0 {
		ww = win.Width * fmax
		wc = win.Center * fmax
	}
	wLow := wc - ww/2
	wHigh := wc + ww/2
	for i, v := range f {
		switch {
		case v <= wLow:
			f[i] = 0
		case v > wHigh:
			f[i] = 255
		default:
			f[i] = ((v-wc)/ww + 0.5) * 255
		}
	}
}

// clampByte converts a prepared display value to an 8-bit sample.
func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
