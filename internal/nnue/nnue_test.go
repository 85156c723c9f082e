package nnue

import (
	"testing"

	"github.com/hailam/atomicgen/internal/board"
)

func testNetwork() *Network {
	net := NewNetwork()
	net.InitRandom(0xA5E1)
	return net
}

func TestIncrementalMatchesFullRebuild(t *testing.T) {
	net := testNetwork()
	eval := NewEvaluator(net)

	pos := board.NewPosition()
	eval.Reset(pos)

	// King moves cross refresh buckets; captures exercise the blast diff.
	game := []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6",
		"e1e2", "f8c5", "e2d3", "d7d6", "f3e5",
	}

	for _, uci := range game {
		mv, err := board.ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parse %s: %v", uci, err)
		}
		next := pos.Apply(mv)
		eval.Push(pos, next)
		pos = next

		incremental := eval.Evaluate(pos, pos.SideToMove)
		scratch := EvaluateOnce(net, pos, pos.SideToMove)
		if incremental != scratch {
			t.Fatalf("after %s: incremental %d != from-scratch %d", uci, incremental, scratch)
		}
	}
}

func TestPushPopRestoresEvaluation(t *testing.T) {
	net := testNetwork()
	eval := NewEvaluator(net)

	pos := board.NewPosition()
	eval.Reset(pos)
	before := eval.Evaluate(pos, pos.SideToMove)

	mv, err := board.ParseMove("d2d4", pos)
	if err != nil {
		t.Fatal(err)
	}
	next := pos.Apply(mv)
	eval.Push(pos, next)
	eval.Pop()

	after := eval.Evaluate(pos, pos.SideToMove)
	if before != after {
		t.Errorf("push/pop changed the evaluation: %d -> %d", before, after)
	}
}

func TestRefreshTableAfterBucketCrossing(t *testing.T) {
	net := testNetwork()
	eval := NewEvaluator(net)

	// Walk the king far enough to cross buckets twice, then verify
	// against a from-scratch rebuild.
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	eval.Reset(pos)

	for _, uci := range []string{"e1d2", "e8d7", "d2c3", "d7c6", "c3b4", "c6b5"} {
		mv, err := board.ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parse %s: %v", uci, err)
		}
		next := pos.Apply(mv)
		eval.Push(pos, next)
		pos = next

		if got, want := eval.Evaluate(pos, pos.SideToMove), EvaluateOnce(net, pos, pos.SideToMove); got != want {
			t.Fatalf("after %s: incremental %d != from-scratch %d", uci, got, want)
		}
	}
}

func TestFeatureIndexBounds(t *testing.T) {
	for _, perspective := range []board.Color{board.White, board.Black} {
		for kingSq := board.A1; kingSq <= board.H8; kingSq += 9 {
			for pt := board.Pawn; pt <= board.King; pt++ {
				for _, pc := range []board.Color{board.White, board.Black} {
					for sq := board.A1; sq <= board.H8; sq += 7 {
						idx := FeatureIndex(perspective, kingSq, pt, pc, sq)
						if idx < 0 || idx >= FeatureSize {
							t.Fatalf("feature index %d out of range", idx)
						}
					}
				}
			}
		}
	}
}

func TestScale(t *testing.T) {
	if Scale(288) != 1024 {
		t.Errorf("Scale(288) = %d, want 1024", Scale(288))
	}
	if Scale(0) != 0 {
		t.Errorf("Scale(0) = %d, want 0", Scale(0))
	}
}
