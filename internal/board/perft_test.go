package board

import "testing"

// perft counts leaf nodes of the legal move tree.
func perft(pos *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateMoves(ModeAll)
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		nodes += perft(pos.Apply(moves.Get(i)), depth-1)
	}
	return nodes
}

func TestPerftStartpos(t *testing.T) {
	// No captures are reachable in the first two plies, so the counts
	// match orthodox chess.
	pos := NewPosition()
	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 20},
		{2, 400},
	}
	for _, tc := range cases {
		if got := perft(pos, tc.depth); got != tc.nodes {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.nodes)
		}
	}
}

func TestPerftConsistency(t *testing.T) {
	// Generation and validation must agree move for move.
	fens := []string{
		StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 3",
		"rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"4k3/3p4/8/4N3/8/8/8/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		pos := mustFEN(t, fen)
		generated := pos.GenerateMoves(ModeAll)

		// Noisy and quiet partitions must cover exactly the full set.
		noisy := pos.GenerateMoves(ModeNoisy)
		quiet := pos.GenerateMoves(ModeQuiet)
		if noisy.Len()+quiet.Len() != generated.Len() {
			t.Errorf("%s: mode partition mismatch: %d + %d != %d",
				fen, noisy.Len(), quiet.Len(), generated.Len())
		}
		for i := 0; i < noisy.Len(); i++ {
			if noisy.Get(i).IsQuiet() {
				t.Errorf("%s: quiet move %v in noisy set", fen, noisy.Get(i))
			}
		}
		for i := 0; i < quiet.Len(); i++ {
			if quiet.Get(i).IsNoisy() {
				t.Errorf("%s: noisy move %v in quiet set", fen, quiet.Get(i))
			}
		}
	}
}
