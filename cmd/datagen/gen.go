package main

import (
	"log"

	"github.com/hailam/atomicgen/internal/board"
	"github.com/hailam/atomicgen/internal/datagen"
	"github.com/hailam/atomicgen/internal/nnue"
)

func runGen(args []string) {
	fs := newFlagSet("gen")

	out := fs.String("out", "", "output .bin path (required)")
	format := fs.String("format", "bin", "output format (only bin supported)")
	samples := fs.Uint64("samples", 0, "number of samples to write")
	seed := fs.Uint64("seed", 1, "RNG seed")
	threads := fs.Int("threads", 1, "worker thread count")
	fs.IntVar(threads, "concurrency", 1, "alias for -threads")
	progress := fs.Uint64("progress", 2000, "progress update every N samples (0 disables)")
	maxMoves := fs.Int("max-moves", 256, "max plies per game")
	evalLimit := fs.Int("eval-limit", 6144, "score threshold to adjudicate the game")
	fixedDepth := fs.Int("fixed-depth", 6, "max search depth per move")
	fixedNodes := fs.Uint64("fixed-nodes", 5120, "max search nodes per move")
	pliesMin := fs.Int("plies-min", 8, "random prelude min plies")
	pliesMax := fs.Int("plies-max", 16, "random prelude max plies")
	minPieces := fs.Int("min-pieces", 0, "minimum total pieces (0 disables)")
	captureProb := fs.Float64("require-capture-prob", 0, "chance to require check/capture (0..1)")
	dedup := fs.Int("dedup", 0, "dedup window size in records")
	dedupMB := fs.Int("dedup-hash-mb", 0, "dedup window size by MB (overrides -dedup)")
	filterName := fs.String("filter", "balanced", "filter preset: minimal|balanced|quiet")
	allowMateInOne := fs.Bool("allow-mate-in-one", false, "keep mate-in-one positions")
	noQuietFilter := fs.Bool("no-quiet-filter", false, "disable the quiet-only filter in -filter quiet")
	startpos := fs.Bool("startpos", false, "include the startpos seed")
	ttSize := fs.Int("hash", 64, "shared transposition table size in MB")
	nnuePath := fs.String("nnue", "", "NNUE weight file (random weights when empty)")

	var epdPaths stringList
	fs.Var(&epdPaths, "epd", "EPD/FEN seed file (repeatable)")

	fs.Parse(args)

	if *out == "" {
		fail("--out requires a path")
	}
	if *format != "bin" {
		fail("unsupported format %q (only bin)", *format)
	}
	if *samples == 0 {
		fail("--samples expects a positive integer")
	}
	if *captureProb < 0 || *captureProb > 1 {
		fail("--require-capture-prob expects a value in 0..1")
	}
	if *pliesMin < 0 || *pliesMax < *pliesMin {
		fail("invalid random prelude range %d..%d", *pliesMin, *pliesMax)
	}

	var filter datagen.FilterPreset
	switch *filterName {
	case "minimal":
		filter = datagen.FilterMinimal
	case "balanced":
		filter = datagen.FilterBalanced
	case "quiet":
		filter = datagen.FilterQuiet
	default:
		fail("unknown filter %q (minimal|balanced|quiet)", *filterName)
	}

	dedupCapacity := *dedup
	if *dedupMB > 0 {
		// 16 bytes per tracked record.
		dedupCapacity = *dedupMB * 1024 * 1024 / 16
	}
	if dedupCapacity == 0 && filter != datagen.FilterMinimal {
		dedupCapacity = 1_000_000
	}

	net := nnue.NewNetwork()
	if *nnuePath != "" {
		if err := net.LoadWeights(*nnuePath); err != nil {
			fail("%v", err)
		}
	} else {
		log.Printf("no NNUE weights given, using random network")
		net.InitRandom(*seed)
	}

	seeds := buildSeeds(*startpos, epdPaths)

	writer, err := datagen.NewWriter(*out, *samples)
	if err != nil {
		fail("%v", err)
	}
	writer.SetProgressEvery(*progress)

	cfg := datagen.Config{
		Threads:            *threads,
		Seed:               *seed,
		PlyLimit:           *maxMoves,
		RandomPlyMin:       *pliesMin,
		RandomPlyMax:       *pliesMax,
		FixedDepth:         *fixedDepth,
		FixedNodes:         *fixedNodes,
		EvalLimit:          *evalLimit,
		MinPieces:          *minPieces,
		RequireCaptureProb: *captureProb,
		Filter:             filter,
		QuietFilterEnabled: !*noQuietFilter,
		AllowMateInOne:     *allowMateInOne,
		DedupCapacity:      dedupCapacity,
		TTSizeMB:           *ttSize,
	}

	gen := datagen.NewGenerator(cfg, net, writer, seeds)
	if err := gen.Run(); err != nil {
		writer.Close()
		log.Fatalf("datagen failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("closing output: %v", err)
	}

	done, total := writer.Progress()
	log.Printf("wrote %d/%d samples to %s", done, total, *out)
}

// buildSeeds selects the seed source: EPD streams when given, the
// standard starting position otherwise. With both -epd and -startpos
// the EPD stream wins and startpos acts as its exhaustion fallback
// inside the generator.
func buildSeeds(startpos bool, epdPaths []string) datagen.SeedProvider {
	if stream := datagen.NewEPDSeeds(epdPaths); stream != nil {
		return stream
	}
	_ = startpos // startpos is the default seed either way
	var positions []*board.Position
	positions = append(positions, board.NewPosition())
	return datagen.NewListSeeds(positions)
}
