package datagen

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hailam/atomicgen/internal/board"
	"github.com/hailam/atomicgen/internal/engine"
	"github.com/hailam/atomicgen/internal/nnue"
	"github.com/hailam/atomicgen/internal/tablebase"
)

// RescoreMode selects how samples get their new score.
type RescoreMode int

const (
	RescoreSearch RescoreMode = iota
	RescoreTB
	RescoreTBOrSearch
)

// RescoreConfig holds the rescore parameters.
type RescoreConfig struct {
	Mode          RescoreMode
	Threads       int
	Nodes         uint64
	Depth         int
	ProgressEvery uint64
	TBPieces      int
	TTSizeMB      int
}

// tbScore maps a WDL verdict onto the sample score scale.
const tbScore = 20000

// sampleStream hands out input samples to rescore threads.
type sampleStream struct {
	mu     sync.Mutex
	reader *bufio.Reader
	file   *os.File
	done   bool
}

func openSampleStream(path string) (*sampleStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datagen: open input: %w", err)
	}
	return &sampleStream{
		reader: bufio.NewReaderSize(f, 1<<20),
		file:   f,
	}, nil
}

func (s *sampleStream) next() (*Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, io.EOF
	}
	sample, err := ReadSample(s.reader)
	if err != nil {
		s.done = true
		return nil, err
	}
	return sample, nil
}

func (s *sampleStream) Close() error {
	return s.file.Close()
}

// rescoreWriter serializes output samples with its own progress line
// (no fixed total, so only the count and rate are reported).
type rescoreWriter struct {
	mu          sync.Mutex
	file        *os.File
	buf         *bufio.Writer
	completed   atomic.Uint64
	reportEvery uint64
	nextReport  uint64
	startTime   time.Time
}

func newRescoreWriter(path string, reportEvery uint64) (*rescoreWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("datagen: create output: %w", err)
	}
	return &rescoreWriter{
		file:        f,
		buf:         bufio.NewWriterSize(f, 1<<20),
		reportEvery: reportEvery,
		nextReport:  reportEvery,
		startTime:   time.Now(),
	}, nil
}

func (w *rescoreWriter) write(s *Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := WriteSample(w.buf, s); err != nil {
		return err
	}
	completed := w.completed.Add(1)
	if w.reportEvery > 0 && completed >= w.nextReport {
		elapsed := time.Since(w.startTime).Seconds()
		rate := uint64(0)
		if elapsed > 0 {
			rate = uint64(float64(completed) / elapsed)
		}
		fmt.Fprintf(os.Stderr, "progress %d samples %d samples/s\n", completed, rate)
		w.nextReport = (completed/w.reportEvery + 1) * w.reportEvery
	}
	return nil
}

func (w *rescoreWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Rescore re-evaluates an existing dataset with new search or
// tablebase settings and writes the result to outPath.
func Rescore(inPath, outPath string, cfg RescoreConfig, net *nnue.Network, prober tablebase.Prober) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.TTSizeMB < 1 {
		cfg.TTSizeMB = 16
	}

	runID := uuid.NewString()
	log.Printf("rescore run %s: %s -> %s, %d threads", runID, inPath, outPath, cfg.Threads)

	stream, err := openSampleStream(inPath)
	if err != nil {
		return err
	}
	defer stream.Close()

	writer, err := newRescoreWriter(outPath, cfg.ProgressEvery)
	if err != nil {
		return err
	}

	tt := engine.NewTransTable(cfg.TTSizeMB)

	errCh := make(chan error, cfg.Threads)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Threads; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := rescoreThread(idx, cfg, stream, writer, tt, net, prober); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()

	if err := writer.Close(); err != nil {
		return fmt.Errorf("datagen: close output: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func rescoreThread(idx int, cfg RescoreConfig, stream *sampleStream, writer *rescoreWriter, tt *engine.TransTable, net *nnue.Network, prober tablebase.Prober) error {
	var stop atomic.Bool
	worker := engine.NewWorker(idx, tt, net, &stop)
	worker.SetPollHook(func(w *engine.Worker) {
		if cfg.Nodes > 0 && w.Nodes() >= cfg.Nodes {
			stop.Store(true)
		}
	})
	if prober != nil && cfg.TBPieces > 0 {
		worker.SetProber(prober, cfg.TBPieces)
	}

	for {
		sample, err := stream.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		pos := sample.Position

		tbAnswered := false
		if (cfg.Mode == RescoreTB || cfg.Mode == RescoreTBOrSearch) &&
			prober != nil && prober.Available() &&
			pos.PieceCount() <= cfg.TBPieces && pos.CastlingRights == board.NoCastling {
			if result := prober.Probe(pos); result.Found {
				switch {
				case result.WDL > 0:
					sample.Score = tbScore
				case result.WDL < 0:
					sample.Score = -tbScore
				default:
					sample.Score = 0
				}
				tbAnswered = true
			}
		}

		if !tbAnswered {
			if cfg.Mode == RescoreTB {
				// TB-only mode passes unanswered samples through.
				if err := writer.write(sample); err != nil {
					return err
				}
				continue
			}
			stop.Store(false)
			depth := cfg.Depth
			if depth <= 0 {
				depth = engine.MaxPly
			}
			worker.Go(pos, nil, depth)
			sample.Score = worker.Score()
		}

		if err := writer.write(sample); err != nil {
			return err
		}
	}
}
