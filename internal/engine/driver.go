package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/atomicgen/internal/board"
	"github.com/hailam/atomicgen/internal/nnue"
	"github.com/hailam/atomicgen/internal/tablebase"
)

// SearchLimits bounds a search. Zero values mean unlimited.
type SearchLimits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
}

// SearchResult is the outcome of a driver search.
type SearchResult struct {
	Move   board.Move
	Ponder board.Move
	Score  int
	Depth  int
	Nodes  uint64
	TBHits uint64
	PV     []board.Move
}

// Engine drives a pool of lazy-SMP workers over a shared transposition
// table. Worker 0 is the reporting thread; helpers search the same root
// and feed the table.
type Engine struct {
	tt      *TransTable
	net     *nnue.Network
	workers []*Worker
	stop    atomic.Bool
}

// NewEngine creates an engine with the given table budget and thread
// count.
func NewEngine(ttSizeMB, threads int, net *nnue.Network) *Engine {
	if threads < 1 {
		threads = 1
	}
	e := &Engine{
		tt:  NewTransTable(ttSizeMB),
		net: net,
	}
	for i := 0; i < threads; i++ {
		e.workers = append(e.workers, NewWorker(i, e.tt, net, &e.stop))
	}
	return e
}

// TT exposes the shared table (for datagen reuse across games).
func (e *Engine) TT() *TransTable {
	return e.tt
}

// SetProber installs the endgame oracle on every worker.
func (e *Engine) SetProber(p tablebase.Prober, maxPieces int) {
	for _, w := range e.workers {
		w.SetProber(p, maxPieces)
	}
}

// Stop aborts the current search.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// NewGame clears per-game worker state and ages the table.
func (e *Engine) NewGame() {
	for _, w := range e.workers {
		w.NewGame()
	}
	e.tt.NewSearch()
}

// Search runs all workers until the limits trip, then returns worker
// 0's published result.
func (e *Engine) Search(pos *board.Position, hist *board.History, limits SearchLimits) SearchResult {
	e.stop.Store(false)
	e.tt.NewSearch()

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = time.Now().Add(limits.MoveTime)
	}

	// The poll hook amortizes the limit checks over nodesPerPoll nodes.
	poll := func(w *Worker) {
		if limits.Nodes > 0 && e.totalNodes() >= limits.Nodes {
			e.stop.Store(true)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			e.stop.Store(true)
		}
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = MaxPly
	}

	var wg sync.WaitGroup
	for _, w := range e.workers {
		w.SetPollHook(poll)
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Go(pos, hist, maxDepth)
			// The first worker to finish its depth budget stops the rest.
			e.stop.Store(true)
		}(w)
	}
	wg.Wait()

	best := e.workers[0]
	return SearchResult{
		Move:   best.BestMove(),
		Ponder: best.PonderMove(),
		Score:  best.Score(),
		Depth:  best.Depth(),
		Nodes:  e.totalNodes(),
		TBHits: e.totalTBHits(),
		PV:     best.PV(),
	}
}

func (e *Engine) totalNodes() uint64 {
	var n uint64
	for _, w := range e.workers {
		n += w.Nodes()
	}
	return n
}

func (e *Engine) totalTBHits() uint64 {
	var n uint64
	for _, w := range e.workers {
		n += w.TBHits()
	}
	return n
}
