package board

import "testing"

func TestStartposMoveCount(t *testing.T) {
	pos := NewPosition()
	moves := pos.GenerateMoves(ModeAll)
	if moves.Len() != 20 {
		t.Errorf("startpos: expected 20 legal moves, got %d", moves.Len())
	}
}

func TestStartposNoisyEmpty(t *testing.T) {
	pos := NewPosition()
	moves := pos.GenerateMoves(ModeNoisy)
	if moves.Len() != 0 {
		t.Errorf("startpos has no captures, got %d noisy moves", moves.Len())
	}
}

func TestKingCapturesNeverGenerated(t *testing.T) {
	// White king next to an undefended black pawn: a king capture would
	// blast the king itself, so it must not be generated.
	pos := mustFEN(t, "8/8/8/8/8/4p3/4K3/8 w - - 0 1")
	moves := pos.GenerateMoves(ModeAll)
	for i := 0; i < moves.Len(); i++ {
		mv := moves.Get(i)
		if mv.Piece() == King && mv.IsCapture() {
			t.Errorf("generated king capture %v", mv)
		}
	}
}

func TestAdjacentKings(t *testing.T) {
	pos := mustFEN(t, "8/8/8/8/3kK3/8/8/8 w - - 0 1")
	if pos.IsCheck() {
		t.Error("adjacent kings must not be in direct check")
	}
	moves := pos.GenerateMoves(ModeAll)
	if moves.Len() == 0 {
		t.Fatal("expected king moves")
	}
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).Piece() != King {
			t.Errorf("only king moves possible, got %v", moves.Get(i))
		}
	}
}

func TestAdjacentKingsNeutralizeCheck(t *testing.T) {
	// Black rook on e8 would pin the white king in orthodox chess, but
	// with the kings adjacent no direct check applies.
	pos := mustFEN(t, "4r3/8/8/8/3kK3/8/8/8 w - - 0 1")
	if pos.IsCheck() {
		t.Error("direct check must be neutralized by adjacent kings")
	}
}

func TestLegalMovesAreLegal(t *testing.T) {
	fens := []string{
		StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 3",
		"8/8/8/8/3kK3/8/8/8 w - - 0 1",
		"rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
	}
	for _, fen := range fens {
		pos := mustFEN(t, fen)
		moves := pos.GenerateMoves(ModeAll)
		for i := 0; i < moves.Len(); i++ {
			if !pos.IsLegal(moves.Get(i)) {
				t.Errorf("%s: generated move %v fails IsLegal", fen, moves.Get(i))
			}
		}
	}
}

func TestForeignMovesAreIllegal(t *testing.T) {
	a := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 3")
	b := NewPosition()
	moves := a.GenerateMoves(ModeAll)
	count := 0
	for i := 0; i < moves.Len(); i++ {
		if b.IsLegal(moves.Get(i)) {
			// A few moves genuinely exist in both positions; only moves
			// the start position cannot contain must be rejected.
			if moves.Get(i).Piece() != Pawn && moves.Get(i).Piece() != Knight {
				t.Errorf("foreign move %v accepted by startpos", moves.Get(i))
			}
			count++
		}
	}
	if count == moves.Len() {
		t.Error("every foreign move was accepted")
	}
}

func TestCastleThroughAttackIllegal(t *testing.T) {
	// Black rook on f8 attacks f1: castling kingside must be rejected
	// even though g1 itself is safe from the rook's file.
	pos := mustFEN(t, "5r2/8/8/8/8/8/7k/4K2R w K - 0 1")
	moves := pos.GenerateMoves(ModeAll)
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).IsCastle() {
			t.Errorf("castle through attacked square generated: %v", moves.Get(i))
		}
	}
}

func TestCastleGenerated(t *testing.T) {
	pos := mustFEN(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	moves := pos.GenerateMoves(ModeAll)
	castleCount := 0
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).IsCastle() {
			castleCount++
		}
	}
	if castleCount != 2 {
		t.Errorf("expected both castles, got %d", castleCount)
	}
}

func TestBlastOwnKingIllegal(t *testing.T) {
	// The black knight on d3 is capturable by the c2 pawn, but the blast
	// on d3 reaches the white king on e2: the capture must be illegal
	// even though it would win material.
	pos := mustFEN(t, "4k3/8/8/8/8/3n4/2P1K3/8 w - - 0 1")
	moves := pos.GenerateMoves(ModeAll)
	for i := 0; i < moves.Len(); i++ {
		mv := moves.Get(i)
		if mv.IsCapture() && mv.To() == D3 {
			t.Errorf("capture blasting own king generated: %v", mv)
		}
	}
}

func TestBlastBothKingsIllegal(t *testing.T) {
	// Blasting both kings at once is still illegal: you cannot
	// sacrifice your own king. cxd3 would reach both kings on c4 and e4.
	pos := mustFEN(t, "8/8/8/8/2k1K3/3n4/2P5/8 w - - 0 1")
	moves := pos.GenerateMoves(ModeAll)
	for i := 0; i < moves.Len(); i++ {
		mv := moves.Get(i)
		if mv.IsCapture() && mv.To() == D3 {
			t.Errorf("double-king blast generated: %v", mv)
		}
	}
}

func TestIndirectCheckNeedNotBeEscaped(t *testing.T) {
	// Black threatens to capture the knight on d2 and blast the white
	// king on e1. White is NOT forced to answer the threat: quiet moves
	// elsewhere must still be legal.
	pos := mustFEN(t, "4k3/8/8/8/3r4/8/3N4/4K3 w - - 0 1")
	if !pos.InAtomicBlastCheck() {
		t.Fatal("expected an atomic blast threat against white")
	}
	moves := pos.GenerateMoves(ModeAll)
	quiet := 0
	for i := 0; i < moves.Len(); i++ {
		if !moves.Get(i).IsCapture() {
			quiet++
		}
	}
	if quiet == 0 {
		t.Error("expected quiet moves to remain legal under indirect check")
	}
}

func TestEnPassantBlast(t *testing.T) {
	pos := NewPosition()
	for _, uci := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		mv, err := ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parse %s: %v", uci, err)
		}
		pos = pos.Apply(mv)
	}

	ep, err := ParseMove("e5d6", pos)
	if err != nil {
		t.Fatalf("en passant not generated: %v", err)
	}
	if !ep.IsEnPassant() {
		t.Fatalf("e5d6 should be en passant, got %v", ep)
	}

	after := pos.Apply(ep)

	// Both pawns die: the captured pawn on d5 and the capturing pawn,
	// which never survives its own blast on d6.
	if after.PieceAt(D5) != NoPiece {
		t.Error("captured pawn on d5 must be removed")
	}
	if after.PieceAt(D6) != NoPiece {
		t.Error("capturing pawn must not survive on d6")
	}
	if after.PieceAt(E5) != NoPiece {
		t.Error("e5 must be empty after the capture")
	}
	// Pawns inside the blast survive.
	if after.PieceAt(C7) != BlackPawn || after.PieceAt(E7) != BlackPawn {
		t.Error("pawns inside the blast must survive")
	}
	if err := verifyHashes(after); err != nil {
		t.Error(err)
	}
}

func TestBlastRemovesNonPawns(t *testing.T) {
	// Rxd5 blasts the knights on c6 and e6 but leaves the pawns on c4
	// and e4 alone. The rook itself dies on d5.
	pos := mustFEN(t, "4k3/8/2n1n3/3p4/2P1P3/8/8/3RK3 w - - 0 1")
	mv, err := ParseMove("d1d5", pos)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	after := pos.Apply(mv)

	for _, sq := range []Square{D5, C6, E6, D1} {
		if after.PieceAt(sq) != NoPiece {
			t.Errorf("square %v should be empty after blast", sq)
		}
	}
	if after.PieceAt(C4) != WhitePawn || after.PieceAt(E4) != WhitePawn {
		t.Error("pawns adjacent to the blast must survive")
	}
}

func TestBlastRevokesCastlingRights(t *testing.T) {
	// Bxg7 blasts the rook on h8 and the knight on g8; black loses
	// kingside castling but keeps the queenside right.
	pos := mustFEN(t, "r3k1nr/pppppppp/8/8/8/2B5/8/4K3 w kq - 0 1")
	cap, err := ParseMove("c3g7", pos)
	if err != nil {
		t.Fatalf("bishop capture not available: %v", err)
	}
	after := pos.Apply(cap)

	if after.PieceAt(H8) != NoPiece || after.PieceAt(G8) != NoPiece {
		t.Error("rook h8 and knight g8 must be blasted")
	}

	if after.CastlingRights&BlackKingSideCastle != 0 {
		t.Error("kingside right must be revoked when the rook is blasted")
	}
	if after.CastlingRights&BlackQueenSideCastle == 0 {
		t.Error("queenside right must survive")
	}
}

func TestBlastMateDetection(t *testing.T) {
	// Nxd7 blasts the black king on e8.
	pos := mustFEN(t, "4k3/3p4/8/4N3/8/8/8/4K3 w - - 0 1")
	mv, err := ParseMove("e5d7", pos)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !pos.IsBlastMateCapture(mv) {
		t.Error("Nxd7 must be recognized as a king blast capture")
	}
	after := pos.Apply(mv)
	if after.Pieces[Black][King] != 0 {
		t.Error("black king must be gone after the blast")
	}
	if Status(after, nil) != WhiteWin {
		t.Errorf("expected WhiteWin, got %v", Status(after, nil))
	}
}

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}
