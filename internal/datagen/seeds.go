package datagen

import (
	"bufio"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/hailam/atomicgen/internal/board"
)

// SeedProvider hands out starting positions for self-play games.
type SeedProvider interface {
	// Next returns the next seed, or false when the provider is dry.
	Next(rng *rand.Rand) (*board.Position, bool)
}

// StartposSeeds always returns the standard starting position.
type StartposSeeds struct{}

func (StartposSeeds) Next(*rand.Rand) (*board.Position, bool) {
	return board.NewPosition(), true
}

// ListSeeds draws uniformly from a fixed set of positions.
type ListSeeds struct {
	positions []*board.Position
}

// NewListSeeds wraps a position list; returns nil for an empty list.
func NewListSeeds(positions []*board.Position) *ListSeeds {
	if len(positions) == 0 {
		return nil
	}
	return &ListSeeds{positions: positions}
}

func (l *ListSeeds) Next(rng *rand.Rand) (*board.Position, bool) {
	return l.positions[rng.Intn(len(l.positions))].Copy(), true
}

// ParseFENRelaxed accepts 4-, 5- and 6-field FENs: missing clocks
// default to "0 1".
func ParseFENRelaxed(fen string) (*board.Position, error) {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 5:
		fields = append(fields, "1")
	}
	return board.ParseFEN(strings.Join(fields, " "))
}

// EPDSeeds streams seed positions from one or more EPD/FEN files,
// round-robin across files, looping on EOF. Hash comments, anything
// after a semicolon, blank lines and unparseable lines are skipped
// silently. The cursor is shared by all generator threads.
type EPDSeeds struct {
	mu      sync.Mutex
	paths   []string
	current int
	file    *os.File
	scanner *bufio.Scanner
}

// NewEPDSeeds creates a stream over the given paths; returns nil when
// the list is empty.
func NewEPDSeeds(paths []string) *EPDSeeds {
	if len(paths) == 0 {
		return nil
	}
	return &EPDSeeds{paths: paths}
}

func (e *EPDSeeds) Next(*rand.Rand) (*board.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.current
	wrapped := false

	for {
		if e.scanner == nil {
			if !e.openCurrentLocked() {
				return nil, false
			}
		}

		for e.scanner.Scan() {
			line := strings.TrimSpace(e.scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if semi := strings.IndexByte(line, ';'); semi >= 0 {
				line = strings.TrimSpace(line[:semi])
			}
			if line == "" {
				continue
			}
			pos, err := ParseFENRelaxed(line)
			if err != nil {
				// Malformed lines are skipped, not fatal.
				continue
			}
			return pos, true
		}

		// EOF: advance to the next file, wrapping around.
		e.closeCurrentLocked()
		e.current = (e.current + 1) % len(e.paths)
		if e.current == start {
			if wrapped {
				return nil, false
			}
			wrapped = true
		}
	}
}

func (e *EPDSeeds) openCurrentLocked() bool {
	for range e.paths {
		f, err := os.Open(e.paths[e.current])
		if err == nil {
			e.file = f
			e.scanner = bufio.NewScanner(f)
			return true
		}
		e.current = (e.current + 1) % len(e.paths)
	}
	return false
}

func (e *EPDSeeds) closeCurrentLocked() {
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
	e.scanner = nil
}

// Close releases the underlying file.
func (e *EPDSeeds) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeCurrentLocked()
}
