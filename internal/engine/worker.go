package engine

import (
	"math"
	"sync/atomic"

	"github.com/hailam/atomicgen/internal/board"
	"github.com/hailam/atomicgen/internal/nnue"
	"github.com/hailam/atomicgen/internal/tablebase"
)

// lmrReductions is the precomputed logarithmic reduction table indexed
// by (depth, move index).
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(0.8 + math.Log(float64(d))*math.Log(float64(m))/2.3)
		}
	}
}

// stackEntry is the per-ply search state.
type stackEntry struct {
	played   board.Move
	killer   board.Move
	excluded board.Move
	eval     int
}

// PVTable stores the principal variation per ply.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Worker is one search thread: it owns its evaluator, histories, and
// stacks, and shares only the transposition table with its siblings.
type Worker struct {
	id int

	tt       *TransTable
	prober   tablebase.Prober
	tbPieces int

	eval  *nnue.Evaluator
	hist  *HistoryTables
	corr  *CorrectionHistory
	cache *EvalCache

	stack [MaxPly + 4]stackEntry
	pv    PVTable

	// Sided keys of the game followed by the current search line.
	line *board.History

	nodes  atomic.Uint64
	tbHits atomic.Uint64

	stopFlag *atomic.Bool
	// onPoll runs every nodesPerPoll nodes; it may flip the stop flag.
	onPoll func(*Worker)

	// Published after each completed iteration.
	bestMove       board.Move
	ponderMove     board.Move
	score          int
	completedDepth int
}

// NewWorker creates a worker bound to a shared table and network.
func NewWorker(id int, tt *TransTable, net *nnue.Network, stopFlag *atomic.Bool) *Worker {
	return &Worker{
		id:       id,
		tt:       tt,
		eval:     nnue.NewEvaluator(net),
		hist:     NewHistoryTables(),
		corr:     NewCorrectionHistory(),
		cache:    NewEvalCache(1 << 14),
		stopFlag: stopFlag,
		prober:   tablebase.NoopProber{},
	}
}

// SetProber installs the endgame oracle, probed when the piece count is
// at most maxPieces.
func (w *Worker) SetProber(p tablebase.Prober, maxPieces int) {
	w.prober = p
	w.tbPieces = maxPieces
}

// SetPollHook installs the periodic limit check.
func (w *Worker) SetPollHook(hook func(*Worker)) {
	w.onPoll = hook
}

// Nodes returns the node count of the current search.
func (w *Worker) Nodes() uint64 { return w.nodes.Load() }

// TBHits returns the tablebase hit count.
func (w *Worker) TBHits() uint64 { return w.tbHits.Load() }

// BestMove returns the last published best move.
func (w *Worker) BestMove() board.Move { return w.bestMove }

// PonderMove returns the last published ponder move.
func (w *Worker) PonderMove() board.Move { return w.ponderMove }

// Score returns the last published score.
func (w *Worker) Score() int { return w.score }

// Depth returns the deepest completed iteration.
func (w *Worker) Depth() int { return w.completedDepth }

// PV returns the principal variation of the last completed iteration.
func (w *Worker) PV() []board.Move {
	pv := make([]board.Move, w.pv.length[0])
	copy(pv, w.pv.moves[0][:w.pv.length[0]])
	return pv
}

// NewGame clears per-game memories.
func (w *Worker) NewGame() {
	w.hist.Clear()
	w.corr.Clear()
	w.cache.Clear()
}

func (w *Worker) keepGoing() bool {
	return !w.stopFlag.Load()
}

func (w *Worker) poll() {
	if w.nodes.Load()%nodesPerPoll == 0 && w.onPoll != nil {
		w.onPoll(w)
	}
}

// Go runs iterative deepening from pos with the given game history and
// depth cap (0 means MaxPly). Results are read through BestMove, Score
// and PV after it returns; the worker stops when the stop flag flips or
// the cap is reached.
func (w *Worker) Go(pos *board.Position, gameHist *board.History, maxDepth int) {
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	w.nodes.Store(0)
	w.tbHits.Store(0)
	w.bestMove = board.NoMove
	w.ponderMove = board.NoMove
	w.score = 0
	w.completedDepth = 0
	for i := range w.stack {
		w.stack[i] = stackEntry{}
	}

	if gameHist != nil {
		w.line = gameHist.Clone()
	} else {
		w.line = board.NewHistory()
	}

	w.eval.Reset(pos)

	alpha, beta := -Infinity, Infinity
	for depth := 1; depth <= maxDepth && w.keepGoing(); depth++ {
		if depth >= aspirationDepth {
			alpha = w.score - aspirationDelta
			beta = w.score + aspirationDelta
		}

		delta := aspirationDelta
		failedHigh := 0

		for {
			adjusted := max(1, depth-failedHigh)
			score := w.search(pos, 0, adjusted, alpha, beta, true)

			if !w.keepGoing() {
				break
			}

			if score <= alpha {
				// Fail low: pull beta toward the midpoint, widen alpha.
				beta = (alpha + beta) / 2
				alpha = score - delta
				failedHigh = 0
			} else if score >= beta {
				beta = score + delta
				failedHigh++
			} else {
				w.score = score
				w.completedDepth = depth
				if w.pv.length[0] > 0 {
					w.bestMove = w.pv.moves[0][0]
					if w.pv.length[0] > 1 {
						w.ponderMove = w.pv.moves[0][1]
					}
				}
				break
			}

			// Grow the window exponentially on every re-search.
			delta += delta / 3
		}
	}

	// Fallback when the very first iteration was interrupted.
	if w.bestMove == board.NoMove {
		if moves := pos.GenerateMoves(board.ModeAll); moves.Len() > 0 {
			w.bestMove = moves.Get(0)
		}
	}
}

// evaluate returns the corrected static evaluation.
func (w *Worker) evaluate(pos *board.Position) int {
	raw, ok := w.cache.Probe(pos.Hash)
	if !ok {
		raw = nnue.Scale(w.eval.Evaluate(pos, pos.SideToMove))
		w.cache.Store(pos.Hash, raw)
	}

	value := raw + w.corr.Get(pos)
	if value >= MateBound {
		value = MateBound - 1
	} else if value <= -MateBound {
		value = -MateBound + 1
	}
	return value
}

// search is the principal-variation search.
func (w *Worker) search(pos *board.Position, ply, depth, alpha, beta int, isPV bool) int {
	if depth <= 0 {
		return w.qsearch(pos, ply, alpha, beta, isPV, 0)
	}

	w.nodes.Add(1)
	w.poll()
	if !w.keepGoing() {
		return 0
	}

	w.pv.length[ply] = 0

	us := pos.SideToMove
	isRoot := ply == 0

	// Terminal shortcuts: a blasted king decides immediately.
	if pos.Pieces[us][board.King] == 0 {
		return MatedIn(ply)
	}
	if pos.Pieces[us.Other()][board.King] == 0 {
		return MateIn(ply)
	}
	if ply >= MaxPly-1 {
		return w.evaluate(pos)
	}

	if !isRoot {
		if pos.HalfMoveClock >= 100 {
			return DrawScore
		}
		// A repetition inside the halfmove window clamps toward draw.
		if w.line.IsRepetition(pos) {
			if DrawScore >= beta {
				return DrawScore
			}
			alpha = max(alpha, DrawScore)
		}
	}

	excluded := w.stack[ply].excluded

	// Transposition table probe, skipped under a singular exclusion.
	var ttEntry TTEntry
	ttHit := false
	if excluded == board.NoMove {
		ttEntry, ttHit = w.tt.Probe(pos.Hash)
	}
	ttMove := board.NoMove
	if ttHit {
		ttMove = ttEntry.Move
		if ttMove != board.NoMove && !pos.IsLegal(ttMove) {
			ttMove = board.NoMove
		}

		ttScore := ScoreFromTT(ttEntry.Score, ply)
		cutoff := !isPV && ttEntry.Depth >= depth &&
			(ttEntry.Bound == BoundExact ||
				(ttEntry.Bound == BoundLower && ttScore >= beta) ||
				(ttEntry.Bound == BoundUpper && ttScore <= alpha))
		if cutoff {
			return ttScore
		}
	}
	ttPv := isPV || (ttHit && ttEntry.TTPv)

	// Endgame oracle at non-root nodes.
	if !isRoot && w.tbPieces > 0 && pos.CastlingRights == board.NoCastling &&
		pos.PieceCount() <= w.tbPieces && w.prober.Available() {
		if result := w.prober.Probe(pos); result.Found {
			w.tbHits.Add(1)
			switch {
			case result.WDL > 0:
				return MateBound - 100 - ply
			case result.WDL < 0:
				return -(MateBound - 100 - ply)
			default:
				return DrawScore
			}
		}
	}

	// Internal iterative reduction on TT miss.
	if !ttHit && excluded == board.NoMove && depth >= iirDepth {
		depth--
	}

	inCheck := pos.IsCheck()
	atomicCheck := pos.InAtomicBlastCheck()
	checkAny := inCheck || atomicCheck

	staticEval := w.evaluate(pos)
	w.stack[ply].eval = staticEval

	// Clamp the working value with TT bounds when available.
	value := staticEval
	if ttHit {
		ttScore := ScoreFromTT(ttEntry.Score, ply)
		if ttEntry.Bound == BoundUpper && ttScore < value {
			value = ttScore
		}
		if ttEntry.Bound == BoundLower && ttScore > value {
			value = ttScore
		}
	}

	improving := false
	if ply >= 2 && !checkAny {
		improving = staticEval > w.stack[ply-2].eval
	}

	threatened := pos.ThreatMask(us.Other())

	if !isPV && !checkAny && excluded == board.NoMove {
		// Razoring: hopeless nodes get verified by quiescence.
		if depth <= razorDepth && value+razorMargin(depth) <= alpha {
			razorScore := w.qsearch(pos, ply, alpha, alpha+1, false, 0)
			if razorScore <= alpha {
				return razorScore
			}
		}

		// Static null move pruning.
		if depth <= snmpDepth && value > beta+snmpMargin(depth, improving, threatened != 0) && value < MateBound {
			return (beta + value) / 2
		}

		// Null move pruning; never two null moves in a row.
		if depth >= nmpDepth && value > beta && pos.HasNonPawnMaterial() &&
			(threatened == 0 || depth >= 4) &&
			(ply == 0 || !w.stack[ply-1].played.IsNull()) {
			reduction := 4 + depth/4 + min((value-beta)/256, 2)
			nullDepth := max(0, depth-reduction)

			child := pos.Apply(board.NullMove)
			w.stack[ply].played = board.NullMove
			w.eval.Push(pos, child)
			w.line.Push(pos.SidedHash())
			nullScore := -w.search(child, ply+1, nullDepth, -beta, -beta+1, false)
			w.line.Pop()
			w.eval.Pop()

			if nullScore >= beta && nullScore < MateBound {
				return nullScore
			}
		}

		// ProbCut: a noisy move clearing beta by a margin at reduced
		// depth is almost certainly a cutoff at full depth.
		if depth >= probcutDepth && abs(beta) < MateBound &&
			!(ttHit && ttEntry.Depth >= depth-probcutReduction && ScoreFromTT(ttEntry.Score, ply) < beta+probcutMargin) {
			probcutBeta := beta + probcutMargin
			noisy := pos.GenerateMoves(board.ModeNoisy)
			for i := 0; i < noisy.Len(); i++ {
				mv := noisy.Get(i)
				if mv == excluded || !pos.SeeGE(mv, 0) {
					continue
				}
				if pos.IsBlastMateCapture(mv) {
					return MateIn(ply)
				}

				child := pos.Apply(mv)
				w.tt.Prefetch(child.Hash)
				w.stack[ply].played = mv
				w.eval.Push(pos, child)
				w.line.Push(pos.SidedHash())

				score := -w.qsearch(child, ply+1, -probcutBeta, -probcutBeta+1, false, 0)
				if score >= probcutBeta {
					score = -w.search(child, ply+1, depth-probcutReduction-1, -probcutBeta, -probcutBeta+1, false)
				}

				w.line.Pop()
				w.eval.Pop()

				if score >= probcutBeta {
					return score
				}
			}
		}
	}

	ctx := historyContext{side: us}
	if ply >= 1 {
		ctx.counter = w.stack[ply-1].played
	}
	if ply >= 2 {
		ctx.follow = w.stack[ply-2].played
	}

	moves := pos.GenerateMoves(board.ModeAll)
	if moves.Len() == 0 {
		if excluded != board.NoMove {
			return alpha
		}
		if checkAny {
			return MatedIn(ply)
		}
		return DrawScore
	}

	scores := w.scoreMoves(pos, moves, ply, ttMove, ctx)

	bestScore := -Infinity
	bestMove := board.NoMove
	bound := BoundUpper
	quietsTried := make([]board.Move, 0, 16)
	legalCount := 0

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		mv := moves.Get(i)
		if mv == excluded {
			continue
		}
		legalCount++

		isQuiet := mv.IsQuiet()
		historyValue := 0
		if isQuiet {
			historyValue = w.hist.QuietScore(ctx, mv)
		}

		// Blast-mate shortcut: the capture removes the enemy king, no
		// search needed.
		if pos.IsBlastMateCapture(mv) {
			score := MateIn(ply)
			if score > bestScore {
				bestScore = score
				bestMove = mv
				if score > alpha {
					alpha = score
					bound = BoundExact
					if isPV {
						// The line ends here; no child PV to splice.
						w.pv.length[ply+1] = 0
						w.updatePV(ply, mv)
					}
				}
			}
			if bestScore >= beta {
				bound = BoundLower
				break
			}
			continue
		}

		// Shallow-depth pruning once a best move exists.
		if !isRoot && legalCount >= 2 && bestScore > -MateBound {
			if !checkAny && isQuiet && depth <= lmpDepth && legalCount > lmpCount(improving, depth) {
				break
			}
			if isQuiet && depth <= futilityDepth && value+futilityMargin(depth) < alpha {
				continue
			}
			if isQuiet && depth <= quietSeeDepth && !pos.SeeGE(mv, quietSeeThreshold(depth)) {
				continue
			}
			if !isQuiet && depth <= noisySeeDepth && !pos.SeeGE(mv, noisySeeThreshold(depth)) {
				continue
			}
			if isQuiet && depth <= historyPruneDepth && historyValue <= historyPruneThreshold(depth) {
				continue
			}
		}

		// Singular extension: if every alternative fails well below the
		// TT score, the TT move is singular and deserves extra depth.
		extension := 0
		if !isRoot && excluded == board.NoMove && mv == ttMove && ttHit &&
			depth >= singularDepth && ttEntry.Bound != BoundUpper &&
			ttEntry.Depth+singularDepthMargin >= depth && !IsMateScore(ttEntry.Score) {
			singularBeta := ScoreFromTT(ttEntry.Score, ply) - 2*depth
			halfDepth := (depth - 1) / 2

			w.stack[ply].excluded = mv
			singularScore := w.search(pos, ply, halfDepth, singularBeta-1, singularBeta, false)
			w.stack[ply].excluded = board.NoMove

			if singularScore < singularBeta {
				extension = 1
				if !isPV && singularScore+singularDoubleExt < singularBeta {
					extension = 2
				}
			} else if singularScore >= beta && !IsMateScore(singularScore) {
				// Multicut: even without the TT move the node clears beta.
				return singularScore
			}
		}

		child := pos.Apply(mv)
		w.tt.Prefetch(child.Hash)
		w.stack[ply].played = mv
		w.eval.Push(pos, child)
		w.line.Push(pos.SidedHash())

		newDepth := depth - 1 + extension
		givesCheck := child.IsCheck() || child.InAtomicBlastCheck()

		var score int
		if isPV && legalCount == 1 {
			score = -w.search(child, ply+1, newDepth, -beta, -alpha, true)
		} else {
			// Late move reductions.
			reduction := 0
			if depth >= reduceDepth && legalCount >= 3 && !checkAny && (isQuiet || !pos.SeeGE(mv, 0)) {
				reduction = lmrReductions[min(depth, 63)][min(legalCount, 63)]
				if improving {
					reduction--
				}
				if givesCheck {
					reduction--
				}
				if pos.CreatesThreat(mv) {
					reduction--
				}
				if mv == w.stack[ply].killer {
					reduction--
				}
				if !ttPv {
					reduction++
				}
				if isQuiet {
					reduction -= historyValue / 8192
				}
				if mv.Piece() == board.Pawn && mv.To().RelativeRank(us) >= 6 {
					reduction = 0
				}
				reduction = max(0, reduction)
			}

			lmrDepth := min(newDepth, max(1, newDepth-reduction))
			score = -w.search(child, ply+1, lmrDepth, -alpha-1, -alpha, false)
			if score > alpha && lmrDepth < newDepth {
				score = -w.search(child, ply+1, newDepth, -alpha-1, -alpha, false)
			}
			if isPV && score > alpha && score < beta {
				score = -w.search(child, ply+1, newDepth, -beta, -alpha, true)
			}
		}

		w.line.Pop()
		w.eval.Pop()

		if !w.keepGoing() {
			return 0
		}

		if isQuiet && len(quietsTried) < cap(quietsTried) {
			quietsTried = append(quietsTried, mv)
		}

		if score > bestScore {
			bestScore = score
			bestMove = mv
			if score > alpha {
				alpha = score
				bound = BoundExact
				if isPV {
					w.updatePV(ply, mv)
				}
			}
		}

		if bestScore >= beta {
			bound = BoundLower
			break
		}
	}

	if legalCount == 0 {
		// Every generated move was the excluded one.
		return alpha
	}

	if excluded == board.NoMove && w.keepGoing() {
		if bound == BoundLower && bestMove != board.NoMove {
			if bestMove.IsQuiet() {
				w.stack[ply].killer = bestMove
				w.hist.UpdateQuiet(ctx, bestMove, quietsTried, depth)
			} else {
				w.hist.UpdateNoisy(us, bestMove, depth, true)
			}
		}

		if !checkAny && bestMove != board.NoMove && bestMove.IsQuiet() &&
			!(bound == BoundLower && bestScore <= staticEval) &&
			!(bound == BoundUpper && bestScore >= staticEval) {
			w.corr.Update(pos, bestScore, staticEval, depth)
		}

		w.tt.Store(pos.Hash, bestMove, ScoreToTT(bestScore, ply), depth, bound, ttPv)
	}

	return bestScore
}

// qsearch resolves noisy positions: captures, checks, and the two
// atomic-specific layers (promotion and threat quiescence).
func (w *Worker) qsearch(pos *board.Position, ply, alpha, beta int, isPV bool, elevation int) int {
	w.nodes.Add(1)
	w.poll()
	if !w.keepGoing() {
		return 0
	}

	w.pv.length[ply] = 0

	us := pos.SideToMove
	if pos.Pieces[us][board.King] == 0 {
		return MatedIn(ply)
	}
	if pos.Pieces[us.Other()][board.King] == 0 {
		return MateIn(ply)
	}
	if ply >= MaxPly-1 {
		return w.evaluate(pos)
	}
	if pos.HalfMoveClock >= 100 {
		return DrawScore
	}
	if w.line.IsRepetition(pos) {
		if DrawScore >= beta {
			return DrawScore
		}
		alpha = max(alpha, DrawScore)
	}

	ttEntry, ttHit := w.tt.Probe(pos.Hash)
	if ttHit && !isPV {
		ttScore := ScoreFromTT(ttEntry.Score, ply)
		if ttEntry.Bound == BoundExact ||
			(ttEntry.Bound == BoundLower && ttScore >= beta) ||
			(ttEntry.Bound == BoundUpper && ttScore <= alpha) {
			return ttScore
		}
	}
	ttMove := board.NoMove
	if ttHit && ttEntry.Move != board.NoMove && pos.IsLegal(ttEntry.Move) {
		ttMove = ttEntry.Move
	}

	inCheck := pos.IsCheck()
	atomicCheck := pos.InAtomicBlastCheck()
	checkAny := inCheck || atomicCheck

	standPat := w.evaluate(pos)
	if ttHit {
		ttScore := ScoreFromTT(ttEntry.Score, ply)
		if ttEntry.Bound == BoundUpper && ttScore < standPat {
			standPat = ttScore
		}
		if ttEntry.Bound == BoundLower && ttScore > standPat {
			standPat = ttScore
		}
	}

	if !checkAny && standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	bestScore := standPat
	if checkAny {
		bestScore = MatedIn(ply)
	}
	bestMove := board.NoMove

	ctx := historyContext{side: us}
	if ply >= 1 {
		ctx.counter = w.stack[ply-1].played
	}

	// In check every evasion is searched; otherwise only noisy moves
	// and quiet checks.
	genMode := board.ModeNoisy | board.ModeCheck
	if checkAny {
		genMode = board.ModeAll
	}
	moves := pos.GenerateMoves(genMode)
	scores := w.scoreMoves(pos, moves, ply, ttMove, ctx)
	legalCount := 0

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		mv := moves.Get(i)
		legalCount++

		blastMate := pos.IsBlastMateCapture(mv)
		if blastMate {
			return MateIn(ply)
		}

		if !checkAny && !pos.SeeGE(mv, 0) {
			continue
		}

		// Delta pruning: upside cannot reach alpha.
		if !isPV && !checkAny && mv.IsCapture() {
			upside := board.SeeValue[mv.Captured()] + deltaMargin
			if standPat+upside < alpha {
				continue
			}
		}

		child := pos.Apply(mv)
		w.tt.Prefetch(child.Hash)
		w.stack[ply].played = mv
		w.eval.Push(pos, child)
		w.line.Push(pos.SidedHash())
		score := -w.qsearch(child, ply+1, -beta, -alpha, isPV, elevation+1)
		w.line.Pop()
		w.eval.Pop()

		if score > bestScore {
			bestScore = score
			bestMove = mv
			if score > alpha {
				if score < beta {
					alpha = score
				}
				if isPV {
					w.updatePV(ply, mv)
				}
			}
		}
		if bestScore >= beta {
			break
		}
	}

	// Promotion quiescence: quiet promotions are invisible to the noisy
	// generator but routinely decisive in atomic endgames.
	if !checkAny && bestScore < beta && elevation == 0 && bestScore+100 >= alpha && w.keepGoing() {
		explored := 0
		quiets := pos.GenerateMoves(board.ModeQuiet)
		for i := 0; i < quiets.Len() && explored < quiescencePromoLimit; i++ {
			mv := quiets.Get(i)
			if !mv.IsPromotion() || mv.IsNoisy() {
				continue
			}
			explored++

			child := pos.Apply(mv)
			w.stack[ply].played = mv
			w.eval.Push(pos, child)
			w.line.Push(pos.SidedHash())
			score := -w.qsearch(child, ply+1, -beta, -alpha, isPV, elevation+1)
			w.line.Pop()
			w.eval.Pop()

			if score > bestScore {
				bestScore = score
				bestMove = mv
				if score > alpha {
					if score < beta {
						alpha = score
					}
					if isPV {
						w.updatePV(ply, mv)
					}
				}
			}
			if bestScore >= beta || !w.keepGoing() {
				break
			}
		}
	}

	// Threat quiescence: quiet moves into the enemy king's zone that set
	// up a blast mate on the next ply. The atomic analog of discovered
	// check extensions.
	if !checkAny && bestScore < beta && elevation == 0 && bestScore+100 >= alpha && w.keepGoing() {
		explored := 0
		enemyKing := pos.Pieces[us.Other()][board.King]
		var kingZone board.Bitboard
		if enemyKing != 0 {
			kingZone = board.BlastMask(enemyKing.LSB())
		}

		quiets := pos.GenerateMoves(board.ModeQuiet)
		for i := 0; i < quiets.Len() && explored < quiescenceThreatLimit; i++ {
			mv := quiets.Get(i)
			if mv.IsNoisy() || kingZone == 0 || !kingZone.IsSet(mv.To()) {
				continue
			}

			child := pos.Apply(mv)
			if !child.InAtomicBlastCheck() {
				continue
			}
			explored++

			w.stack[ply].played = mv
			w.eval.Push(pos, child)
			w.line.Push(pos.SidedHash())
			score := -w.qsearch(child, ply+1, -beta, -alpha, isPV, elevation+1)
			w.line.Pop()
			w.eval.Pop()

			if score > bestScore {
				bestScore = score
				bestMove = mv
				if score > alpha {
					if score < beta {
						alpha = score
					}
					if isPV {
						w.updatePV(ply, mv)
					}
				}
			}
			if bestScore >= beta || !w.keepGoing() {
				break
			}
		}
	}

	if legalCount == 0 && checkAny {
		return MatedIn(ply)
	}

	if w.keepGoing() {
		bound := BoundUpper
		if bestScore >= beta {
			bound = BoundLower
		}
		w.tt.Store(pos.Hash, bestMove, ScoreToTT(bestScore, ply), 0, bound, false)
	}

	return bestScore
}

// updatePV prepends mv to the PV at ply.
func (w *Worker) updatePV(ply int, mv board.Move) {
	w.pv.moves[ply][0] = mv
	childLen := 0
	if ply+1 < MaxPly {
		childLen = w.pv.length[ply+1]
		copy(w.pv.moves[ply][1:1+childLen], w.pv.moves[ply+1][:childLen])
	}
	w.pv.length[ply] = childLen + 1
}
