package engine

import "github.com/hailam/atomicgen/internal/board"

// History bonuses use the usual gravity scheme: updates pull an entry
// toward a depth-scaled target, so stale values decay on their own.
const (
	historyMax   = 16384
	historyScale = 16
)

func historyBonus(depth int) int {
	bonus := 16*depth*depth + 32*depth
	if bonus > 1200 {
		bonus = 1200
	}
	return bonus
}

func gravity(entry *int16, bonus int) {
	v := int(*entry)
	v += bonus - v*abs(bonus)/historyMax
	if v > historyMax {
		v = historyMax
	} else if v < -historyMax {
		v = -historyMax
	}
	*entry = int16(v)
}

// pieceIndex folds (color, piece type) into 0..11 for table keys.
func pieceIndex(c board.Color, pt board.PieceType) int {
	return int(pt) + 6*int(c)
}

// HistoryTables bundles every move-ordering memory a worker keeps: the
// butterfly table, counter-move and follow-up continuations, and the
// noisy (capture) history.
type HistoryTables struct {
	// butterfly[side][from][to]
	butterfly [2][64][64]int16

	// counterMove[prevPiece][prevTo] remembers the refutation.
	counterMove [12][64]board.Move

	// continuation[prevPiece][prevTo][piece][to] serves both the
	// counter-move (1 ply back) and follow-up (2 plies back) contexts.
	continuation [12][64][12][64]int16

	// noisy[piece][to][captured]
	noisy [12][64][6]int16
}

// NewHistoryTables creates zeroed tables.
func NewHistoryTables() *HistoryTables {
	return &HistoryTables{}
}

// Clear wipes everything (new game).
func (h *HistoryTables) Clear() {
	*h = HistoryTables{}
}

// historyContext carries the previous moves that key the continuation
// tables at a node.
type historyContext struct {
	side    board.Color
	counter board.Move // move played 1 ply ago, by the opponent
	follow  board.Move // move played 2 plies ago, by us
}

// QuietScore is the composite ordering value of a quiet move.
func (h *HistoryTables) QuietScore(ctx historyContext, mv board.Move) int {
	score := int(h.butterfly[ctx.side][mv.From()][mv.To()])
	moverIdx := pieceIndex(ctx.side, mv.Piece())

	if ctx.counter != board.NoMove && !ctx.counter.IsNull() {
		prevIdx := pieceIndex(ctx.side.Other(), ctx.counter.Piece())
		score += int(h.continuation[prevIdx][ctx.counter.To()][moverIdx][mv.To()])
	}
	if ctx.follow != board.NoMove && !ctx.follow.IsNull() {
		prevIdx := pieceIndex(ctx.side, ctx.follow.Piece())
		score += int(h.continuation[prevIdx][ctx.follow.To()][moverIdx][mv.To()])
	}
	return score
}

// NoisyScore is the ordering value of a capture beyond MVV/LVA.
func (h *HistoryTables) NoisyScore(side board.Color, mv board.Move) int {
	captured := mv.Captured()
	if captured >= board.NoPieceType {
		captured = board.Pawn
	}
	return int(h.noisy[pieceIndex(side, mv.Piece())][mv.To()][captured])
}

// CounterMove returns the remembered refutation of the opponent's move.
func (h *HistoryTables) CounterMove(side board.Color, prev board.Move) board.Move {
	if prev == board.NoMove || prev.IsNull() {
		return board.NoMove
	}
	return h.counterMove[pieceIndex(side.Other(), prev.Piece())][prev.To()]
}

// UpdateQuiet rewards the cutoff move and punishes the quiets tried
// before it.
func (h *HistoryTables) UpdateQuiet(ctx historyContext, best board.Move, tried []board.Move, depth int) {
	bonus := historyBonus(depth)

	apply := func(mv board.Move, b int) {
		gravity(&h.butterfly[ctx.side][mv.From()][mv.To()], b)
		moverIdx := pieceIndex(ctx.side, mv.Piece())
		if ctx.counter != board.NoMove && !ctx.counter.IsNull() {
			prevIdx := pieceIndex(ctx.side.Other(), ctx.counter.Piece())
			gravity(&h.continuation[prevIdx][ctx.counter.To()][moverIdx][mv.To()], b)
		}
		if ctx.follow != board.NoMove && !ctx.follow.IsNull() {
			prevIdx := pieceIndex(ctx.side, ctx.follow.Piece())
			gravity(&h.continuation[prevIdx][ctx.follow.To()][moverIdx][mv.To()], b)
		}
	}

	apply(best, bonus)
	for _, mv := range tried {
		if mv != best {
			apply(mv, -bonus)
		}
	}

	if ctx.counter != board.NoMove && !ctx.counter.IsNull() {
		h.counterMove[pieceIndex(ctx.side.Other(), ctx.counter.Piece())][ctx.counter.To()] = best
	}
}

// UpdateNoisy rewards a cutoff capture.
func (h *HistoryTables) UpdateNoisy(side board.Color, mv board.Move, depth int, good bool) {
	captured := mv.Captured()
	if captured >= board.NoPieceType {
		captured = board.Pawn
	}
	bonus := historyBonus(depth)
	if !good {
		bonus = -bonus
	}
	gravity(&h.noisy[pieceIndex(side, mv.Piece())][mv.To()][captured], bonus)
}

// CorrectionHistory learns the systematic error between static
// evaluation and search results, keyed by a composite feature hash so
// that structurally similar positions share a correction.
const (
	corrSize = 1 << 16
	corrMask = corrSize - 1
	corrMax  = 4096
)

type CorrectionHistory struct {
	table [2][corrSize]int16
}

// NewCorrectionHistory creates a zeroed table.
func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

// featureHash mixes the pawn hash with the upper half of the side to
// move's piece hash (all of its pieces) into the correction key.
func featureHash(pos *board.Position) uint64 {
	h := pos.PawnKey
	h ^= pos.SideKeys[pos.SideToMove] >> 32
	return h ^ (h >> 29)
}

// Get returns the correction to add to the static evaluation.
func (ch *CorrectionHistory) Get(pos *board.Position) int {
	return int(ch.table[pos.SideToMove][featureHash(pos)&corrMask]) / 64
}

// Update records the observed eval error with depth weighting.
func (ch *CorrectionHistory) Update(pos *board.Position, searchScore, staticEval, depth int) {
	if depth < 1 || IsMateScore(searchScore) {
		return
	}

	diff := (searchScore - staticEval) * 64
	weight := min(depth+1, 16)

	entry := &ch.table[pos.SideToMove][featureHash(pos)&corrMask]
	v := (int(*entry)*(256-weight) + diff*weight) / 256
	if v > corrMax {
		v = corrMax
	} else if v < -corrMax {
		v = -corrMax
	}
	*entry = int16(v)
}

// Clear wipes the table.
func (ch *CorrectionHistory) Clear() {
	*ch = CorrectionHistory{}
}
