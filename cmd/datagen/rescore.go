package main

import (
	"log"

	"github.com/hailam/atomicgen/internal/datagen"
	"github.com/hailam/atomicgen/internal/nnue"
	"github.com/hailam/atomicgen/internal/tablebase"
)

func runRescore(args []string) {
	fs := newFlagSet("rescore")

	in := fs.String("in", "", "input .bin path (required)")
	out := fs.String("out", "", "output .bin path (required)")
	modeName := fs.String("mode", "search", "rescore mode: search|tb|tb_or_search")
	nodes := fs.Uint64("nodes", 200_000, "max nodes per position")
	depth := fs.Int("depth", 0, "max depth per position (0 disables)")
	threads := fs.Int("threads", 1, "worker thread count")
	progress := fs.Uint64("progress", 2000, "progress update every N samples (0 disables)")
	tbPath := fs.String("tb-path", "", "tablebase cache directory")
	tbPieces := fs.Int("tb-pieces", 6, "max pieces for TB probes (1..6)")
	ttSize := fs.Int("hash", 64, "shared transposition table size in MB")
	nnuePath := fs.String("nnue", "", "NNUE weight file (random weights when empty)")

	fs.Parse(args)

	if *in == "" {
		fail("--in requires a path")
	}
	if *out == "" {
		fail("--out requires a path")
	}
	if *tbPieces < 1 || *tbPieces > 6 {
		fail("--tb-pieces expects a value in 1..6")
	}

	var mode datagen.RescoreMode
	switch *modeName {
	case "search":
		mode = datagen.RescoreSearch
	case "tb":
		mode = datagen.RescoreTB
	case "tb_or_search":
		mode = datagen.RescoreTBOrSearch
	default:
		fail("unknown mode %q (search|tb|tb_or_search)", *modeName)
	}

	net := nnue.NewNetwork()
	if *nnuePath != "" {
		if err := net.LoadWeights(*nnuePath); err != nil {
			fail("%v", err)
		}
	} else {
		log.Printf("no NNUE weights given, using random network")
		net.InitRandom(1)
	}

	var prober tablebase.Prober = tablebase.NoopProber{}
	if *tbPath != "" {
		persistent, err := tablebase.NewPersistentProber(nil, *tbPath)
		if err != nil {
			fail("%v", err)
		}
		defer persistent.Close()
		prober = persistent
	}

	cfg := datagen.RescoreConfig{
		Mode:          mode,
		Threads:       *threads,
		Nodes:         *nodes,
		Depth:         *depth,
		ProgressEvery: *progress,
		TBPieces:      *tbPieces,
		TTSizeMB:      *ttSize,
	}

	if err := datagen.Rescore(*in, *out, cfg, net, prober); err != nil {
		log.Fatalf("rescore failed: %v", err)
	}
	log.Printf("rescored %s -> %s", *in, *out)
}
