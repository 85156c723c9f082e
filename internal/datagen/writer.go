package datagen

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Writer serializes per-game sample blocks to the output file. Blocks
// are written whole under the lock, so records from different games
// never interleave; inter-game order is unspecified.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer

	total     uint64
	completed atomic.Uint64

	reportEvery uint64
	nextReport  uint64
	startTime   time.Time
}

// NewWriter creates the output file, truncating any existing content.
func NewWriter(path string, total uint64) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("datagen: create output: %w", err)
	}
	return &Writer{
		file:  f,
		buf:   bufio.NewWriterSize(f, 1<<20),
		total: total,
	}, nil
}

// SetProgressEvery enables the stderr rate line every n samples; 0
// disables it.
func (w *Writer) SetProgressEvery(n uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reportEvery = n
	if n > 0 {
		w.startTime = time.Now()
		w.nextReport = (w.completed.Load()/n + 1) * n
	}
}

// IsComplete reports whether the sample target has been reached.
func (w *Writer) IsComplete() bool {
	return w.completed.Load() >= w.total
}

// Progress returns (completed, total).
func (w *Writer) Progress() (uint64, uint64) {
	return w.completed.Load(), w.total
}

// WriteBlock appends a game's samples in one critical section. Samples
// past the target are dropped.
func (w *Writer) WriteBlock(block []*Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range block {
		if w.completed.Load() >= w.total {
			break
		}
		if err := WriteSample(w.buf, s); err != nil {
			return fmt.Errorf("datagen: write sample: %w", err)
		}
		w.completed.Add(1)
	}

	completed := w.completed.Load()
	if w.reportEvery > 0 && completed >= w.nextReport {
		elapsed := time.Since(w.startTime).Seconds()
		rate := uint64(0)
		if elapsed > 0 {
			rate = uint64(float64(completed) / elapsed)
		}
		percent := uint64(0)
		if w.total > 0 {
			percent = completed * 100 / w.total
		}
		fmt.Fprintf(os.Stderr, "progress %d/%d (%d%%) %d samples/s\n", completed, w.total, percent, rate)
		w.nextReport = (completed/w.reportEvery + 1) * w.reportEvery
	}
	return nil
}

// Close flushes and closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
