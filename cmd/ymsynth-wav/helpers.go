package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	synth "github.com/ymsynth/ymsynth"
)

var errEmptyPlan = errors.New("render plan has no blocks")

// demoTone is a bright four-operator voice (algorithm 4, full feedback).
func demoTone() *synth.Tone {
	return &synth.Tone{
		AL: 0x04,
		FB: 0x07,
		Op: [4]synth.Operator{
			{AR: 0x1F, TL: 28, ML: 0x04},
			{AR: 0x1F, DR: 10, RR: 0x07, SL: 0x01, ML: 4},
			{AR: 0x1F, TL: 21, ML: 4, DT: 0x03},
			{AR: 0x1F, DR: 10, RR: 0x07, SL: 0x01, ML: 4},
		},
	}
}

// renderStep runs an optional session action, then renders blocks.
type renderStep struct {
	name   string
	action func(*synth.Session)
	blocks int
}

type renderPlan []renderStep

// demoPlan builds: silence, tone + note on, hold, note off, tail.
func demoPlan(note synth.Note, lead, hold, tail int) renderPlan {
	return renderPlan{
		{name: "lead", blocks: lead},
		{
			name: "note on",
			action: func(s *synth.Session) {
				s.SetTone(demoTone())
				s.NoteOn(0, note)
			},
			blocks: hold,
		},
		{
			name:   "note off",
			action: func(s *synth.Session) { s.NoteOff(0) },
			blocks: tail,
		},
	}
}

func (p renderPlan) totalBlocks() int {
	total := 0
	for _, step := range p {
		total += step.blocks
	}
	return total
}

func (p renderPlan) validate() error {
	for _, step := range p {
		if step.blocks < 0 {
			return fmt.Errorf("step %q: negative block count %d", step.name, step.blocks)
		}
	}
	if p.totalBlocks() == 0 {
		return errEmptyPlan
	}
	return nil
}

// renderStats summarizes a render.
type renderStats struct {
	outputRate int
	samples    int64
	ticks      int64
	peak       int
}

// sampleWriter receives interleaved stereo samples.
type sampleWriter interface {
	WriteSamples(samples []int) error
}

func (p renderPlan) render(s *synth.Session, w sampleWriter, progress *progressTracker) (*renderStats, error) {
	left := make([]int16, blockSize)
	right := make([]int16, blockSize)
	interleaved := make([]int, blockSize*stereoChannels)
	stats := &renderStats{}
	blocks := 0

	for _, step := range p {
		if step.action != nil {
			step.action(s)
		}
		for range step.blocks {
			n := s.Generate(left, right)
			if n != blockSize {
				return nil, fmt.Errorf("step %q: generated %d of %d samples", step.name, n, blockSize)
			}

			m := interleaveInto(interleaved, left[:n], right[:n])
			stats.peak = max(stats.peak, peakAbs(interleaved[:m]))
			if err := w.WriteSamples(interleaved[:m]); err != nil {
				return nil, fmt.Errorf("failed to write audio data: %w", err)
			}
			stats.samples += int64(n)

			blocks++
			progress.reportIfNeeded(blocks)
		}
	}

	return stats, nil
}

// interleaveInto writes left/right pairs into dst and returns the number of
// values written.
func interleaveInto(dst []int, left, right []int16) int {
	n := min(len(left), len(right), len(dst)/stereoChannels)
	for i := range n {
		dst[i*stereoChannels] = int(left[i])
		dst[i*stereoChannels+1] = int(right[i])
	}
	return n * stereoChannels
}

func peakAbs(samples []int) int {
	peak := 0
	for _, v := range samples {
		peak = max(peak, v, -v)
	}
	return peak
}

// wavOutputWriter wraps the output file and the WAV encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  *audio.Format
}

// createWAVOutput creates a 16-bit stereo PCM WAV file.
func createWAVOutput(path string, sampleRate int) (*wavOutputWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitsPerSample16, stereoChannels, wavPCMFormat),
		format: &audio.Format{
			NumChannels: stereoChannels,
			SampleRate:  sampleRate,
		},
	}, nil
}

// WriteSamples encodes interleaved stereo samples.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	return w.encoder.Write(&audio.IntBuffer{
		Format:         w.format,
		Data:           samples,
		SourceBitDepth: bitsPerSample16,
	})
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalBlocks  int
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalBlocks int, verbose bool) *progressTracker {
	return &progressTracker{
		totalBlocks: totalBlocks,
		verbose:     verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(blocks int) {
	if !p.verbose || p.totalBlocks == 0 {
		return
	}

	progress := blocks * percentScale / p.totalBlocks
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
