package engine

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrShapeMismatch reports a transform or copy between buffers whose
// dimensions disagree. Operations validate shapes before mutating anything.
var ErrShapeMismatch = errors.New("shape mismatch")

// ForwardTransform computes the centered 2D Fourier transform of img into
// out: inverse-shift, 2D FFT, forward-shift, so that the DC term sits at the
// array center both before and after the transform. Both buffers must share
// the same shape; on mismatch an error is returned and out is untouched.
func ForwardTransform(img *Grid, out *CGrid) error {
	if img.Rows != out.Rows || img.Cols != out.Cols {
		return fmt.Errorf("forward transform: %w: image %dx%d, kspace %dx%d",
			ErrShapeMismatch, img.Rows, img.Cols, out.Rows, out.Cols)
	}
	rows, cols := img.Rows, img.Cols

	// Inverse shift moves the centered DC term back to index (0,0) before
	// the transform.
	work := make([]complex128, rows*cols)
	ri, ci := rows/2, cols/2
	for i := 0; i < rows; i++ {
		si := (i + ri) % rows
		for j := 0; j < cols; j++ {
			sj := (j + ci) % cols
			work[i*cols+j] = complex(img.Data[si*cols+sj], 0)
		}
	}

	fft2InPlace(work, rows, cols, false)

	// Forward shift re-centers the DC term.
	ro, co := rows-rows/2, cols-cols/2
	for i := 0; i < rows; i++ {
		si := (i + ro) % rows
		for j := 0; j < cols; j++ {
			sj := (j + co) % cols
			out.Data[i*cols+j] = work[si*cols+sj]
		}
	}
	return nil
}

// InverseTransform computes the centered inverse 2D FFT of kspace and writes
// the complex magnitude into out. This is the only path that turns frequency
// data back into a viewable image. Both buffers must share the same shape;
// on mismatch an error is returned and out is untouched.
func InverseTransform(kspace *CGrid, out *Grid) error {
	if kspace.Rows != out.Rows || kspace.Cols != out.Cols {
		return fmt.Errorf("inverse transform: %w: kspace %dx%d, image %dx%d",
			ErrShapeMismatch, kspace.Rows, kspace.Cols, out.Rows, out.Cols)
	}
	rows, cols := kspace.Rows, kspace.Cols

	work := make([]complex128, rows*cols)
	ri, ci := rows/2, cols/2
	for i := 0; i < rows; i++ {
		si := (i + ri) % rows
		for j := 0; j < cols; j++ {
			sj := (j + ci) % cols
			work[i*cols+j] = kspace.Data[si*cols+sj]
		}
	}

	fft2InPlace(work, rows, cols, true)

	// The inverse pass is unnormalized; divide by the element count so a
	// forward/inverse round trip is energy-consistent.
	scale := complex(1/float64(rows*cols), 0)
	ro, co := rows-rows/2, cols-cols/2
	for i := 0; i < rows; i++ {
		si := (i + ro) % rows
		for j := 0; j < cols; j++ {
			sj := (j + co) % cols
			out.Data[i*cols+j] = cmplx.Abs(work[si*cols+sj] * scale)
		}
	}
	return nil
}

// fft2InPlace runs a row pass followed by a column pass over a row-major
// complex buffer. Arbitrary (odd or even) lengths are supported.
func fft2InPlace(data []complex128, rows, cols int, inverse bool) {
	rowFFT := fourier.NewCmplxFFT(cols)
	rowBuf := make([]complex128, cols)
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		if inverse {
			rowFFT.Sequence(rowBuf, row)
		} else {
			rowFFT.Coefficients(rowBuf, row)
		}
		copy(row, rowBuf)
	}

	colFFT := fourier.NewCmplxFFT(rows)
	colIn := make([]complex128, rows)
	colOut := make([]complex128, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			colIn[i] = data[i*cols+j]
		}
		if inverse {
			colFFT.Sequence(colOut, colIn)
		} else {
			colFFT.Coefficients(colOut, colIn)
		}
		for i := 0; i < rows; i++ {
			data[i*cols+j] = colOut[i]
		}
	}
}
