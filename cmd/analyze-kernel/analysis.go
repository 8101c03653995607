package main

import (
	"fmt"
	"math/cmplx"

	"github.com/ymsynth/ymsynth/internal/filter"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Response bands, as fractions of the output Nyquist frequency.
const (
	passbandEdge = 0.6
	stopbandEdge = 1.5
)

type rowReport struct {
	sums    []int64
	peakTap []int
	mean    float64
	stdDev  float64
	exact   bool
}

// analyzeRows sums every kernel row and locates its peak tap.
func analyzeRows(table *filter.StepTable) rowReport {
	r := rowReport{
		sums:    make([]int64, len(table.Rows)),
		peakTap: make([]int, len(table.Rows)),
		exact:   true,
	}
	asFloat := make([]float64, len(table.Rows))

	for p, row := range table.Rows {
		var sum int64
		peak := 0
		for i, v := range row {
			sum += int64(v)
			if abs64(int64(v)) > abs64(int64(row[peak])) {
				peak = i
			}
		}
		r.sums[p] = sum
		r.peakTap[p] = peak
		asFloat[p] = float64(sum)
		if sum != int64(table.Unit) {
			r.exact = false
		}
	}

	r.mean, r.stdDev = stat.MeanStdDev(asFloat, nil)
	return r
}

type responseReport struct {
	dcGain           float64
	passbandRippleDB float64
	nyquistDB        float64
	stopbandDB       float64
}

// analyzePrototype measures the oversampled prototype with an FFT. Bin
// frequencies are expressed relative to the output rate, which is Phases
// times lower than the prototype rate.
func analyzePrototype(prototype []float64, params filter.StepParams, fftSize int) (responseReport, error) {
	if fftSize < len(prototype) || fftSize&(fftSize-1) != 0 {
		return responseReport{}, fmt.Errorf("FFT size %d must be a power of two of at least %d", fftSize, len(prototype))
	}

	padded := make([]float64, fftSize)
	copy(padded, prototype)
	coeffs := fourier.NewFFT(fftSize).Coefficients(nil, padded)

	mag := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mag[k] = cmplx.Abs(c)
	}
	dc := mag[0]

	// Bin k is at k/fftSize cycles per prototype sample, that is
	// k*Phases/fftSize cycles per output sample; Nyquist is 0.5 of that.
	binAt := func(nyquistFraction float64) int {
		return int(nyquistFraction * 0.5 * float64(fftSize) / float64(params.Phases))
	}

	pass := mag[:binAt(passbandEdge)+1]
	stop := mag[min(binAt(stopbandEdge), len(mag)-1):]

	return responseReport{
		dcGain:           dc,
		passbandRippleDB: filter.MagnitudeDB(floats.Max(pass)/dc) - filter.MagnitudeDB(floats.Min(pass)/dc),
		nyquistDB:        filter.MagnitudeDB(mag[binAt(1)] / dc),
		stopbandDB:       filter.MagnitudeDB(floats.Max(stop) / dc),
	}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
