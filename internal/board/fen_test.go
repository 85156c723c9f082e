package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 3",
		"rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"8/8/8/8/3kK3/8/8/8 w - - 0 1",
		"8/8/8/8/3kK3/8/8/8 b - - 12 40",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		"r3k3/8/8/8/8/8/8/4K3 b q - 3 20",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Errorf("ParseFEN(%q): %v", fen, err)
			continue
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip: %q -> %q", fen, got)
		}
	}
}

func TestFENReparseEquality(t *testing.T) {
	pos := mustFEN(t, "rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	again := mustFEN(t, pos.ToFEN())
	if *pos != *again {
		t.Error("parse(fen(P)) must equal P")
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",        // missing fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",    // 7 ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w - - 0 1", // bad piece
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad stm
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KZkq - 0 1", // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1", // bad ep
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q): expected error", fen)
		}
	}
}

func TestFENAdjacentKingsAccepted(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/3kK3/8/8/8 w - - 0 1")
	if err != nil {
		t.Fatalf("adjacent kings must parse: %v", err)
	}
	if !pos.KingsAdjacent() {
		t.Error("kings should register as adjacent")
	}
}

func TestPlyParityMatchesSideToMove(t *testing.T) {
	white := mustFEN(t, "8/8/8/8/3kK3/8/8/8 w - - 0 5")
	if white.PlyCount%2 != 0 {
		t.Errorf("white to move needs even ply count, got %d", white.PlyCount)
	}
	black := mustFEN(t, "8/8/8/8/3kK3/8/8/8 b - - 0 5")
	if black.PlyCount%2 != 1 {
		t.Errorf("black to move needs odd ply count, got %d", black.PlyCount)
	}
}

func TestApplyThenFEN(t *testing.T) {
	cases := []struct {
		fen   string
		move  string
		after string
	}{
		{StartFEN, "e2e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"},
		{
			// No white pawn can capture d6 en passant, so no target is
			// recorded; the mask is only set when the capture exists.
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
			"d7d5",
			"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
		},
		{
			// A capturable double push does record its target.
			"rnbqkbnr/pppppppp/8/3P4/8/8/PPP1PPPP/RNBQKBNR b KQkq - 0 2",
			"e7e5",
			"rnbqkbnr/pppp1ppp/8/3Pp3/8/8/PPP1PPPP/RNBQKBNR w KQkq e6 0 3",
		},
	}

	for _, tc := range cases {
		pos := mustFEN(t, tc.fen)
		mv, err := ParseMove(tc.move, pos)
		if err != nil {
			t.Fatalf("%s: %v", tc.move, err)
		}
		got := pos.Apply(mv).ToFEN()
		if got != tc.after {
			t.Errorf("%s + %s:\n got %q\nwant %q", tc.fen, tc.move, got, tc.after)
		}
	}
}
