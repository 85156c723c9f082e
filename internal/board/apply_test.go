package board

import (
	"fmt"
	"testing"
)

// verifyHashes checks that the incrementally maintained hashes agree
// with a from-scratch rebuild.
func verifyHashes(p *Position) error {
	if got := p.RecomputeHash(); got != p.Hash {
		return fmt.Errorf("hash mismatch: incremental %016x, rebuilt %016x", p.Hash, got)
	}
	if got := p.RecomputePawnKey(); got != p.PawnKey {
		return fmt.Errorf("pawn key mismatch: incremental %016x, rebuilt %016x", p.PawnKey, got)
	}
	for c := White; c <= Black; c++ {
		if got := p.RecomputeSideKey(c); got != p.SideKeys[c] {
			return fmt.Errorf("%s side key mismatch", c)
		}
	}
	return nil
}

func TestApplyIncrementalHashes(t *testing.T) {
	games := [][]string{
		{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1", "f8c5", "d2d3", "e8g8"},
		{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "g8f6", "c1g5", "f8e7"},
		{"e2e4", "d7d5", "b1c3", "d5d4", "c3e2", "e7e5", "e2g3"},
	}

	for gi, game := range games {
		pos := NewPosition()
		for _, uci := range game {
			mv, err := ParseMove(uci, pos)
			if err != nil {
				t.Fatalf("game %d: parse %s: %v", gi, uci, err)
			}
			pos = pos.Apply(mv)
			if err := verifyHashes(pos); err != nil {
				t.Fatalf("game %d after %s: %v", gi, uci, err)
			}
			if err := pos.Validate(); err != nil {
				t.Fatalf("game %d after %s: %v", gi, uci, err)
			}
		}
	}
}

func TestApplyCaptureHashes(t *testing.T) {
	// Captures exercise the blast path of the incremental update.
	pos := NewPosition()
	for _, uci := range []string{"e2e4", "d7d5", "e4d5"} {
		mv, err := ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parse %s: %v", uci, err)
		}
		pos = pos.Apply(mv)
		if err := verifyHashes(pos); err != nil {
			t.Fatalf("after %s: %v", uci, err)
		}
	}
	// The capturing pawn explodes along with its victim.
	if pos.PieceAt(D5) != NoPiece {
		t.Error("d5 must be empty: the capturer does not survive the blast")
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	pos := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 3")
	moves := pos.GenerateMoves(ModeAll)
	for i := 0; i < moves.Len(); i++ {
		a := pos.Apply(moves.Get(i))
		b := pos.Apply(moves.Get(i))
		if *a != *b {
			t.Errorf("Apply(%v) is not value-deterministic", moves.Get(i))
		}
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	pos := NewPosition()
	before := *pos
	mv, _ := ParseMove("e2e4", pos)
	_ = pos.Apply(mv)
	if *pos != before {
		t.Error("Apply mutated the receiver")
	}
}

func TestNullMove(t *testing.T) {
	pos := mustFEN(t, "rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	next := pos.Apply(NullMove)

	if next.SideToMove != Black {
		t.Error("null move must flip the side to move")
	}
	if next.EpMask[White] != 0 || next.EpMask[Black] != 0 {
		t.Error("null move must clear en passant state")
	}
	if err := verifyHashes(next); err != nil {
		t.Error(err)
	}
}

func TestRepetitionDetection(t *testing.T) {
	pos := NewPosition()
	hist := NewHistory()

	// Shuffle the knights back and forth.
	for _, uci := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		mv, err := ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parse %s: %v", uci, err)
		}
		hist.Push(pos.SidedHash())
		pos = pos.Apply(mv)
	}

	if !hist.IsRepetition(pos) {
		t.Error("returning to the start position must register as repetition")
	}
	if Status(pos, hist) != DrawnGame {
		t.Error("repetition must be a drawn terminal status")
	}
}

func TestHalfMoveClock(t *testing.T) {
	pos := NewPosition()
	mv, _ := ParseMove("g1f3", pos)
	pos = pos.Apply(mv)
	if pos.HalfMoveClock != 1 {
		t.Errorf("knight move must increment the clock, got %d", pos.HalfMoveClock)
	}
	mv, _ = ParseMove("e7e5", pos)
	pos = pos.Apply(mv)
	if pos.HalfMoveClock != 0 {
		t.Errorf("pawn move must reset the clock, got %d", pos.HalfMoveClock)
	}
}
