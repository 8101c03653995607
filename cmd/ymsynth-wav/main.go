// Command ymsynth-wav renders a short FM demo phrase to a stereo WAV file.
//
// Usage:
//
//	ymsynth-wav output.wav
//	ymsynth-wav -rate 48000 -note A4 output.wav
//	ymsynth-wav -v -hold 100 output.wav
//
// The phrase is a stretch of silence, a single held note on channel 0 and a
// release tail, rendered block by block through the synth session.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	synth "github.com/ymsynth/ymsynth"
	"github.com/ymsynth/ymsynth/internal/chipsim"
)

const (
	// Samples per Generate call
	blockSize = 2000

	// CLI defaults
	defaultRate       = 44100
	defaultNote       = "C3"
	defaultLeadBlocks = 20
	defaultHoldBlocks = 50
	defaultTailBlocks = 20
	minRequiredArgs   = 1
	progressInterval  = 10 // Print progress every N%
	percentScale      = 100
	bitsPerSample16   = 16
	stereoChannels    = 2
	wavPCMFormat      = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Int("rate", defaultRate, "Output sample rate in Hz")
	noteName := flag.String("note", defaultNote, "Note to play (e.g. C3, F#4, Bb2)")
	lead := flag.Int("lead", defaultLeadBlocks, "Blocks of silence before the note")
	hold := flag.Int("hold", defaultHoldBlocks, "Blocks the note is held")
	tail := flag.Int("tail", defaultTailBlocks, "Blocks rendered after note off")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s demo.wav                      # C3 at 44.1kHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rate 48000 -note A4 a4.wav   # A4 at 48kHz\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	note, err := synth.ParseNote(*noteName)
	if err != nil {
		return err
	}

	plan := demoPlan(note, *lead, *hold, *tail)
	if err := plan.validate(); err != nil {
		return err
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	outputPath := args[0]
	if *verbose {
		log.Printf("Output: %s", outputPath)
		log.Printf("Rate: %d Hz", *rate)
		log.Printf("Note: %s (F-number 0x%03X, block %d)", note, note.FNumber(), note.Octave)
		log.Printf("Blocks: %d lead, %d hold, %d tail of %d samples", *lead, *hold, *tail, blockSize)
	}

	start := time.Now()
	stats, err := renderWAV(outputPath, *rate, plan, *verbose)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Rendered %s\n", filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit\n", stats.outputRate, stereoChannels, bitsPerSample16)
	fmt.Printf("  %d samples (%d native ticks), peak %d\n", stats.samples, stats.ticks, stats.peak)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.samples)/float64(stats.outputRate)/elapsed.Seconds())

	return nil
}

// renderWAV plays plan through a fresh session and writes the result.
func renderWAV(path string, rate int, plan renderPlan, verbose bool) (stats *renderStats, err error) {
	chip := chipsim.New()
	session := synth.NewSession(chip)
	if err := session.Start(float64(rate)); err != nil {
		return nil, fmt.Errorf("failed to start synth session: %w", err)
	}
	defer func() {
		if stopErr := session.Stop(); err == nil {
			err = stopErr
		}
	}()

	output, err := createWAVOutput(path, rate)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (the encoder patches the header)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	stats, err = plan.render(session, output, newProgressTracker(plan.totalBlocks(), verbose))
	if err != nil {
		return nil, err
	}
	stats.outputRate = rate
	stats.ticks = chip.Ticks()

	return stats, nil
}
