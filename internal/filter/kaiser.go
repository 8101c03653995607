// Package filter designs the band-limited kernels used by the delta buffer.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"github.com/ymsynth/ymsynth/internal/mathutil"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 8191

	windowNormalizationFactor = 2.0
	sincZeroThreshold         = 1e-10
)

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
//	w[n] = I₀(β·√(1 - ((n - α)/α)²)) / I₀(β),  α = (N-1)/2
//
// The window is symmetric: w[i] = w[length-1-i], with w[α] = 1.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}

	return window
}

// FilterParams holds parameters for windowed-sinc lowpass design.
type FilterParams struct {
	// NumTaps is the filter length. Odd lengths give a tap exactly on the centre.
	NumTaps int

	// CutoffFreq is the normalized cutoff frequency (0 to 0.5), 0.5 being Nyquist
	// of the rate the filter runs at.
	CutoffFreq float64

	// Attenuation is the stopband attenuation in dB used to pick the Kaiser β.
	Attenuation float64

	// Gain is the DC gain (sum of coefficients) after normalization.
	Gain float64
}

// Validate checks if filter parameters are valid.
func (fp *FilterParams) Validate() error {
	if fp.NumTaps < minFilterTaps {
		return fmt.Errorf("filter too short: %d taps (minimum %d)", fp.NumTaps, minFilterTaps)
	}

	if fp.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter too long: %d taps (maximum %d)", fp.NumTaps, maxFilterTaps)
	}

	if fp.CutoffFreq <= 0 || fp.CutoffFreq >= 0.5 {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", fp.CutoffFreq)
	}

	if fp.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", fp.Attenuation)
	}

	if fp.Gain <= 0 {
		return fmt.Errorf("invalid gain: %f (must be positive)", fp.Gain)
	}

	return nil
}

// DesignLowPassFilter designs a Kaiser-windowed sinc lowpass FIR filter with
// linear phase, normalized to params.Gain at DC.
func DesignLowPassFilter(params FilterParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(params.Attenuation)
	window := KaiserWindow(params.NumTaps, beta)

	filter := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / windowNormalizationFactor
	twoFc := windowNormalizationFactor * params.CutoffFreq

	for n := range params.NumTaps {
		// sin(2πfc·x)/(πx) = 2fc·sinc(2fc·x)
		x := float64(n) - center
		filter[n] = twoFc * mathutil.Sinc(twoFc*x) * window[n]
	}

	sum := f64.Sum(filter)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(filter, filter, params.Gain/sum)
	}

	return filter, nil
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64
}

// ComputeFrequencyResponse evaluates the DTFT magnitude of a FIR filter at
// numPoints frequencies from DC up to (but excluding) Nyquist.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = 512
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(windowNormalizationFactor*numPoints)
		response.Frequencies[k] = freq

		var realPart, imagPart float64
		omega := windowNormalizationFactor * math.Pi * freq

		for n, h := range coeffs {
			angle := omega * float64(n)
			realPart += h * math.Cos(angle)
			imagPart -= h * math.Sin(angle)
		}

		response.Magnitude[k] = math.Hypot(realPart, imagPart)
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10
		dbMultiplier = 20.0
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
