package filter

import (
	"fmt"
	"math"
)

const (
	// Default step table geometry, matching the classic blip_buf layout.
	DefaultStepPhases    = 32
	DefaultStepHalfWidth = 8

	// DefaultStepCutoff places the kernel cutoff at 90% of the output Nyquist.
	DefaultStepCutoff = 0.90

	// DefaultStepAttenuation is the Kaiser design target in dB.
	DefaultStepAttenuation = 60.0

	// DefaultStepUnit is the fixed-point sum of every kernel row (1 << 15).
	DefaultStepUnit = 1 << 15

	maxStepPhases    = 256
	maxStepHalfWidth = 32
	nyquist          = 0.5
)

// StepParams describes a band-limited impulse table.
type StepParams struct {
	// Phases is the number of sub-sample positions the impulse can take.
	Phases int

	// HalfWidth is half the kernel length in output samples.
	HalfWidth int

	// Cutoff is the passband edge as a fraction of the output Nyquist (0 to 1].
	Cutoff float64

	// Attenuation is the stopband attenuation in dB for the Kaiser window.
	Attenuation float64

	// Unit is the integer every kernel row sums to.
	Unit int32
}

// DefaultStepParams returns the parameters the delta buffer uses.
func DefaultStepParams() StepParams {
	return StepParams{
		Phases:      DefaultStepPhases,
		HalfWidth:   DefaultStepHalfWidth,
		Cutoff:      DefaultStepCutoff,
		Attenuation: DefaultStepAttenuation,
		Unit:        DefaultStepUnit,
	}
}

// Validate checks if step table parameters are valid.
func (sp *StepParams) Validate() error {
	if sp.Phases < 2 || sp.Phases > maxStepPhases || sp.Phases&(sp.Phases-1) != 0 {
		return fmt.Errorf("phases %d must be a power of two in [2, %d]", sp.Phases, maxStepPhases)
	}

	if sp.HalfWidth < 1 || sp.HalfWidth > maxStepHalfWidth {
		return fmt.Errorf("half width %d out of range [1, %d]", sp.HalfWidth, maxStepHalfWidth)
	}

	if sp.Cutoff <= 0 || sp.Cutoff > 1 {
		return fmt.Errorf("cutoff %f out of range (0, 1]", sp.Cutoff)
	}

	if sp.Attenuation < 0 {
		return fmt.Errorf("attenuation %f dB must be positive", sp.Attenuation)
	}

	if sp.Unit <= 0 {
		return fmt.Errorf("unit %d must be positive", sp.Unit)
	}

	return nil
}

// StepTable is a polyphase decomposition of an oversampled windowed sinc.
//
// Row p holds the 2*HalfWidth output-rate taps of an impulse located p/Phases
// of a sample after tap HalfWidth-1. There are Phases+1 rows so that row p+1
// is always available for linear interpolation between phases; row Phases is
// row 0 delayed by one sample.
type StepTable struct {
	Phases    int
	HalfWidth int
	Unit      int32

	// Rows is indexed [phase][tap].
	Rows [][]int32
}

// Width returns the kernel length in output samples.
func (st *StepTable) Width() int {
	return 2 * st.HalfWidth
}

// DesignStepPrototype designs the oversampled prototype the table is cut from.
// It has 2*HalfWidth*Phases+1 taps at Phases times the output rate, with an
// average DC gain of 1 per phase.
func DesignStepPrototype(params StepParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step parameters: %w", err)
	}

	return DesignLowPassFilter(FilterParams{
		NumTaps:     2*params.HalfWidth*params.Phases + 1,
		CutoffFreq:  params.Cutoff * nyquist / float64(params.Phases),
		Attenuation: params.Attenuation,
		Gain:        float64(params.Phases),
	})
}

// DesignStepTable builds the integer kernel table. Every row sums to exactly
// params.Unit so that a delta injected at any phase integrates to the same
// step height.
func DesignStepTable(params StepParams) (*StepTable, error) {
	prototype, err := DesignStepPrototype(params)
	if err != nil {
		return nil, fmt.Errorf("failed to design step prototype: %w", err)
	}

	width := 2 * params.HalfWidth
	st := &StepTable{
		Phases:    params.Phases,
		HalfWidth: params.HalfWidth,
		Unit:      params.Unit,
		Rows:      make([][]int32, params.Phases+1),
	}

	row := make([]float64, width)
	for phase := 0; phase <= params.Phases; phase++ {
		for tap := range width {
			row[tap] = prototype[(tap+1)*params.Phases-phase]
		}
		st.Rows[phase] = quantizeRow(row, params.Unit)
	}

	return st, nil
}

// quantizeRow scales a row to sum to unit and rounds it, folding the rounding
// error into the largest tap.
func quantizeRow(row []float64, unit int32) []int32 {
	var sum float64
	for _, v := range row {
		sum += v
	}

	out := make([]int32, len(row))
	if math.Abs(sum) < sincZeroThreshold {
		return out
	}

	scale := float64(unit) / sum
	var total int32
	peak := 0
	for i, v := range row {
		out[i] = int32(math.Round(v * scale))
		total += out[i]
		if abs32(out[i]) > abs32(out[peak]) {
			peak = i
		}
	}
	out[peak] += unit - total

	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
