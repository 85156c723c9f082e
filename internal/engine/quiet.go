package engine

import "github.com/hailam/atomicgen/internal/board"

// Hooks used by the data-generation filters, which need the evaluator
// and the quiescence search outside a full iterative-deepening run.

// StaticEval returns the corrected static evaluation of pos, rebuilt
// from scratch.
func (w *Worker) StaticEval(pos *board.Position) int {
	w.eval.Reset(pos)
	return w.evaluate(pos)
}

// QSearchRoot runs a full-window quiescence search from pos. Used by
// the quiet filter to test whether the position's static evaluation
// already agrees with its tactical resolution.
func (w *Worker) QSearchRoot(pos *board.Position, hist *board.History) int {
	w.eval.Reset(pos)
	if hist != nil {
		w.line = hist.Clone()
	} else {
		w.line = board.NewHistory()
	}
	return w.qsearch(pos, 0, -MateScore, MateScore, false, 0)
}
