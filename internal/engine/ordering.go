package engine

import "github.com/hailam/atomicgen/internal/board"

// Move ordering tiers.
const (
	ttMoveScore     = 10_000_000
	goodNoisyBase   = 1_000_000
	killerScore     = 900_000
	counterScore    = 850_000
	badNoisyPenalty = -2_000_000
)

// mvvLva ranks captures by victim value first, attacker value second.
var mvvLva [6][6]int

func init() {
	for victim := board.Pawn; victim < board.King; victim++ {
		for attacker := board.Pawn; attacker <= board.King; attacker++ {
			mvvLva[victim][attacker] = board.SeeValue[victim]*16 - board.SeeValue[attacker]/16
		}
	}
}

// scoreMoves assigns ordering scores: TT move, then noisy moves by
// MVV/LVA + SEE gate + noisy history, then quiets by killers, counter
// move and composite history.
func (w *Worker) scoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move, ctx historyContext) []int {
	scores := make([]int, moves.Len())
	killer := w.stack[ply].killer
	counter := w.hist.CounterMove(pos.SideToMove, ctx.counter)

	for i := 0; i < moves.Len(); i++ {
		mv := moves.Get(i)

		switch {
		case mv == ttMove:
			scores[i] = ttMoveScore

		case mv.IsNoisy():
			score := goodNoisyBase
			if mv.IsCapture() {
				score += mvvLva[mv.Captured()][mv.Piece()]
			} else {
				// Queen promotion.
				score += mvvLva[board.Queen][board.Pawn] / 2
			}
			score += w.hist.NoisyScore(pos.SideToMove, mv) / 8
			if !pos.SeeGE(mv, 0) {
				score += badNoisyPenalty
			}
			scores[i] = score

		case mv == killer:
			scores[i] = killerScore

		case mv == counter:
			scores[i] = counterScore

		default:
			scores[i] = w.hist.QuietScore(ctx, mv)
		}
	}
	return scores
}

// pickMove selection-sorts the best remaining move to index i.
func pickMove(moves *board.MoveList, scores []int, i int) {
	best := i
	for j := i + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		moves.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
}
