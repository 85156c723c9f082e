// Package tablebase defines the endgame oracle the search consumes. The
// probe format is opaque to the engine: any implementation that answers
// win/draw/loss for a position satisfies it.
package tablebase

import "github.com/hailam/atomicgen/internal/board"

// WDL is the outcome of a probed position from the side to move's
// perspective.
type WDL int

const (
	WDLLoss WDL = -1
	WDLDraw WDL = 0
	WDLWin  WDL = 1
)

// ProbeResult is the answer to a probe.
type ProbeResult struct {
	Found bool
	WDL   WDL
}

// Prober answers endgame probes.
type Prober interface {
	// Probe looks up the position. Found is false when the position is
	// outside the table.
	Probe(pos *board.Position) ProbeResult

	// MaxPieces returns the largest piece count the table covers.
	MaxPieces() int

	// Available reports whether the table is loaded.
	Available() bool
}

// NoopProber always answers "not found". Used when no tablebases are
// configured.
type NoopProber struct{}

func (NoopProber) Probe(*board.Position) ProbeResult { return ProbeResult{} }
func (NoopProber) MaxPieces() int                    { return 0 }
func (NoopProber) Available() bool                   { return false }
