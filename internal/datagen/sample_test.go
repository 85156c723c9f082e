package datagen

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/hailam/atomicgen/internal/board"
)

func TestSampleRoundTrip(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 3",
		"8/8/8/8/3kK3/8/8/8 b - - 0 1",
		"4k3/3p4/8/4N3/8/8/8/4K3 w - - 0 1",
	}

	for _, fen := range fens {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		in := &Sample{Position: pos, Score: -321, Outcome: OutcomeWin}

		var buf bytes.Buffer
		if err := WriteSample(&buf, in); err != nil {
			t.Fatalf("write: %v", err)
		}

		out, err := ReadSample(bufio.NewReader(&buf))
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		if out.Score != in.Score || out.Outcome != in.Outcome {
			t.Errorf("%s: score/outcome mismatch: %+v", fen, out)
		}
		if out.Position.SideToMove != pos.SideToMove {
			t.Errorf("%s: side to move mismatch", fen)
		}
		for c := board.White; c <= board.Black; c++ {
			for pt := board.Pawn; pt <= board.King; pt++ {
				if out.Position.Pieces[c][pt] != pos.Pieces[c][pt] {
					t.Errorf("%s: %v %v plane mismatch", fen, c, pt)
				}
			}
		}
	}
}

func TestSampleScoreClamping(t *testing.T) {
	pos, _ := board.ParseFEN("8/8/8/8/3kK3/8/8/8 w - - 0 1")
	in := &Sample{Position: pos, Score: 100_000, Outcome: OutcomeDraw}

	var buf bytes.Buffer
	if err := WriteSample(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadSample(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != math.MaxInt16 {
		t.Errorf("score must clamp to %d, got %d", math.MaxInt16, out.Score)
	}
}

func TestSampleSquareEncoding(t *testing.T) {
	// The format mirrors files: a1 (file 0) encodes to 7.
	if got := encodeSquare(board.A1); got != 7 {
		t.Errorf("encodeSquare(a1) = %d, want 7", got)
	}
	if got := encodeSquare(board.H8); got != 56 {
		t.Errorf("encodeSquare(h8) = %d, want 56", got)
	}
	for sq := board.A1; sq <= board.H8; sq++ {
		if back := decodeSquare(encodeSquare(sq)); back != sq {
			t.Fatalf("square %v does not round trip (got %v)", sq, back)
		}
	}
}

func TestReadSampleEOF(t *testing.T) {
	if _, err := ReadSample(bufio.NewReader(bytes.NewReader(nil))); err != io.EOF {
		t.Errorf("empty stream must return io.EOF, got %v", err)
	}
}

func TestReadSampleRejectsGarbage(t *testing.T) {
	// Piece count out of range.
	if _, err := ReadSample(bufio.NewReader(bytes.NewReader([]byte{40, 1}))); err == nil || err == io.EOF {
		t.Error("invalid piece count must error")
	}
}

func TestRelativeOutcome(t *testing.T) {
	cases := []struct {
		status board.GameStatus
		stm    board.Color
		want   Outcome
	}{
		{board.WhiteWin, board.White, OutcomeWin},
		{board.WhiteWin, board.Black, OutcomeLoss},
		{board.BlackWin, board.White, OutcomeLoss},
		{board.BlackWin, board.Black, OutcomeWin},
		{board.DrawnGame, board.White, OutcomeDraw},
		{board.DrawnGame, board.Black, OutcomeDraw},
	}
	for _, tc := range cases {
		if got := relativeOutcome(tc.status, tc.stm); got != tc.want {
			t.Errorf("relativeOutcome(%v, %v) = %v, want %v", tc.status, tc.stm, got, tc.want)
		}
	}
}
