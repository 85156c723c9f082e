package datagen

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hailam/atomicgen/internal/board"
	"github.com/hailam/atomicgen/internal/engine"
	"github.com/hailam/atomicgen/internal/nnue"
)

// FilterPreset selects the per-position acceptance rules.
type FilterPreset int

const (
	FilterMinimal FilterPreset = iota
	FilterBalanced
	FilterQuiet
)

// threadSeedMix decorrelates per-thread RNG streams.
const threadSeedMix = 0x9E3779B97F4A7C15

// Config holds every generation parameter.
type Config struct {
	Threads int
	Seed    uint64

	PlyLimit     int
	RandomPlyMin int
	RandomPlyMax int
	FixedDepth   int
	FixedNodes   uint64

	EvalLimit          int
	MinPieces          int
	RequireCaptureProb float64
	Filter             FilterPreset
	QuietFilterEnabled bool
	AllowMateInOne     bool

	DedupCapacity int
	TTSizeMB      int
}

// Generator drives the self-play pipeline: a pool of worker threads
// plays games from seeds, filters positions, and streams samples
// through the shared writer.
type Generator struct {
	cfg    Config
	net    *nnue.Network
	tt     *engine.TransTable
	writer *Writer
	dedup  *DedupCache
	seeds  SeedProvider
	runID  string
}

// NewGenerator wires up a generator. seeds may be nil, in which case
// every game starts from the standard position.
func NewGenerator(cfg Config, net *nnue.Network, writer *Writer, seeds SeedProvider) *Generator {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.TTSizeMB < 1 {
		cfg.TTSizeMB = 16
	}
	if cfg.RandomPlyMax < cfg.RandomPlyMin {
		cfg.RandomPlyMax = cfg.RandomPlyMin
	}
	if seeds == nil {
		seeds = StartposSeeds{}
	}

	var dedup *DedupCache
	if cfg.DedupCapacity > 0 {
		dedup = NewDedupCache(cfg.DedupCapacity)
	}

	return &Generator{
		cfg:    cfg,
		net:    net,
		tt:     engine.NewTransTable(cfg.TTSizeMB),
		writer: writer,
		dedup:  dedup,
		seeds:  seeds,
		runID:  uuid.NewString(),
	}
}

// RunID identifies this generation run in logs.
func (g *Generator) RunID() string {
	return g.runID
}

// Run plays games on all threads until the writer reports completion.
func (g *Generator) Run() error {
	log.Printf("datagen run %s: %d threads, seed %d", g.runID, g.cfg.Threads, g.cfg.Seed)

	errCh := make(chan error, g.cfg.Threads)
	var wg sync.WaitGroup
	for i := 0; i < g.cfg.Threads; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := g.generate(idx); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// generate is the per-thread game loop.
func (g *Generator) generate(threadIdx int) error {
	mix := threadSeedMix * uint64(threadIdx+1)
	rng := rand.New(rand.NewSource(int64(g.cfg.Seed ^ mix)))

	var stop atomic.Bool
	worker := engine.NewWorker(threadIdx, g.tt, g.net, &stop)
	worker.SetPollHook(func(w *engine.Worker) {
		if g.cfg.FixedNodes > 0 && w.Nodes() >= g.cfg.FixedNodes {
			stop.Store(true)
		}
	})

	for !g.writer.IsComplete() {
		block, err := g.playGame(worker, &stop, rng)
		if err != nil {
			return err
		}
		if err := g.writer.WriteBlock(block); err != nil {
			return err
		}
	}
	return nil
}

// playGame plays one game and returns its accepted samples with
// outcomes stamped.
func (g *Generator) playGame(worker *engine.Worker, stop *atomic.Bool, rng *rand.Rand) ([]*Sample, error) {
	var block []*Sample

	hist := board.NewHistory()
	pos, ok := g.seeds.Next(rng)
	if !ok {
		pos = board.NewPosition()
	}

	lo, hi := g.cfg.RandomPlyMin, g.cfg.RandomPlyMax
	if hi > g.cfg.PlyLimit {
		hi = g.cfg.PlyLimit
	}
	if lo > hi {
		lo = hi
	}
	randomPly := lo
	if hi > lo {
		randomPly = lo + rng.Intn(hi-lo+1)
	}

	status := board.Ongoing

	for ply := 0; ply <= g.cfg.PlyLimit; ply++ {
		status = board.Status(pos, hist)
		if status != board.Ongoing {
			break
		}

		// Uniform-random prelude.
		if ply < randomPly {
			moves := pos.GenerateMoves(board.ModeAll)
			if moves.Len() == 0 {
				break
			}
			mv := moves.Get(rng.Intn(moves.Len()))
			hist.Push(pos.SidedHash())
			pos = pos.Apply(mv)
			continue
		}

		stop.Store(false)
		worker.Go(pos, hist, g.cfg.FixedDepth)
		best := worker.BestMove()
		score := worker.Score()
		if best == board.NoMove {
			break
		}

		// Adjudicate once the score clears the limit.
		if g.cfg.EvalLimit > 0 && score >= g.cfg.EvalLimit {
			status = winFor(pos.SideToMove)
			break
		}
		if g.cfg.EvalLimit > 0 && score <= -g.cfg.EvalLimit {
			status = winFor(pos.SideToMove.Other())
			break
		}

		if sample := g.filterPosition(worker, stop, pos, hist, score, rng); sample != nil {
			block = append(block, sample)
		}

		hist.Push(pos.SidedHash())
		pos = pos.Apply(best)
	}

	if status == board.Ongoing {
		status = board.Status(pos, hist)
		if status == board.Ongoing {
			// Ply limit reached with no verdict.
			status = board.DrawnGame
		}
	}

	for _, s := range block {
		s.Outcome = relativeOutcome(status, s.Position.SideToMove)
	}
	return block, nil
}

// filterPosition applies the configured preset and returns a sample
// (without outcome) on acceptance.
func (g *Generator) filterPosition(worker *engine.Worker, stop *atomic.Bool, pos *board.Position, hist *board.History, score int, rng *rand.Rand) *Sample {
	// Minimal requirements: both kings, enough material.
	if pos.Pieces[board.White][board.King].PopCount() != 1 ||
		pos.Pieces[board.Black][board.King].PopCount() != 1 {
		return nil
	}
	if g.cfg.MinPieces > 0 && pos.PieceCount() < g.cfg.MinPieces {
		return nil
	}

	noisy := pos.GenerateMoves(board.ModeNoisy)
	mateInOne := false
	hasCapture := false
	for i := 0; i < noisy.Len(); i++ {
		mv := noisy.Get(i)
		if mv.IsCapture() {
			hasCapture = true
		}
		if pos.IsBlastMateCapture(mv) {
			mateInOne = true
			break
		}
	}
	if mateInOne && !g.cfg.AllowMateInOne {
		return nil
	}

	directCheck := pos.IsCheck()
	atomicCheck := pos.InAtomicBlastCheck()

	if g.cfg.Filter != FilterMinimal {
		contact := directCheck || atomicCheck || hasCapture
		requireContact := g.cfg.RequireCaptureProb > 0 && rng.Float64() < g.cfg.RequireCaptureProb
		if requireContact && !contact {
			return nil
		}
	}

	if g.cfg.Filter == FilterQuiet && g.cfg.QuietFilterEnabled {
		if directCheck || atomicCheck {
			return nil
		}
		stop.Store(false)
		staticEval := worker.StaticEval(pos)
		qEval := worker.QSearchRoot(pos, hist)
		if staticEval != qEval {
			return nil
		}
	}

	if g.cfg.Filter != FilterMinimal && g.dedup != nil && !g.dedup.Accept(pos.Hash) {
		return nil
	}

	return &Sample{Position: pos.Copy(), Score: score}
}

func winFor(c board.Color) board.GameStatus {
	if c == board.White {
		return board.WhiteWin
	}
	return board.BlackWin
}
