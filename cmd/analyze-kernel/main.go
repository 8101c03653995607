// Command analyze-kernel prints the properties of the band-limited step
// table used by the resampling buffer: per-phase DC gain, symmetry and the
// frequency response of the oversampled prototype.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ymsynth/ymsynth/internal/filter"
)

const (
	defaultFFTSize = 1 << 14

	// Display limits
	maxPhasesToShow = 5
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	params := filter.DefaultStepParams()
	flag.IntVar(&params.Phases, "phases", params.Phases, "Sub-sample phases (power of two)")
	flag.IntVar(&params.HalfWidth, "half-width", params.HalfWidth, "Half kernel width in output samples")
	flag.Float64Var(&params.Cutoff, "cutoff", params.Cutoff, "Passband edge as a fraction of output Nyquist")
	flag.Float64Var(&params.Attenuation, "attenuation", params.Attenuation, "Kaiser stopband attenuation in dB")
	fftSize := flag.Int("fft", defaultFFTSize, "FFT size for the prototype response")
	flag.Parse()

	fmt.Println("=== Analyzing Step Table ===")

	table, err := filter.DesignStepTable(params)
	if err != nil {
		return err
	}
	prototype, err := filter.DesignStepPrototype(params)
	if err != nil {
		return err
	}

	fmt.Printf("Step table info:\n")
	fmt.Printf("  Phases: %d\n", table.Phases)
	fmt.Printf("  Width: %d taps\n", table.Width())
	fmt.Printf("  Unit: %d\n", table.Unit)
	fmt.Printf("  Prototype taps: %d\n\n", len(prototype))

	rows := analyzeRows(table)
	fmt.Println("Row sums:")
	for p := range min(maxPhasesToShow, len(rows.sums)) {
		fmt.Printf("  Phase %2d: %d\n", p, rows.sums[p])
	}
	if len(rows.sums) > maxPhasesToShow {
		fmt.Printf("  ... (%d more phases)\n", len(rows.sums)-maxPhasesToShow)
	}
	fmt.Printf("  Mean %.3f, std dev %.3f, all exact: %v\n\n", rows.mean, rows.stdDev, rows.exact)

	fmt.Println("Peak tap per phase:")
	for _, p := range []int{0, table.Phases / 4, table.Phases / 2, 3 * table.Phases / 4, table.Phases} {
		fmt.Printf("  Phase %2d: tap %d = %d\n", p, rows.peakTap[p], table.Rows[p][rows.peakTap[p]])
	}

	resp, err := analyzePrototype(prototype, params, *fftSize)
	if err != nil {
		return err
	}
	fmt.Printf("\n=== Prototype response (FFT size %d) ===\n", *fftSize)
	fmt.Printf("  DC gain: %.6f (expected %d)\n", resp.dcGain, params.Phases)
	fmt.Printf("  Passband ripple (to %.2f of Nyquist): %.4f dB\n", passbandEdge, resp.passbandRippleDB)
	fmt.Printf("  Gain at output Nyquist: %.2f dB\n", resp.nyquistDB)
	fmt.Printf("  Worst stopband (from %.2f of Nyquist): %.2f dB\n", stopbandEdge, resp.stopbandDB)

	return nil
}
