// Package datagen implements the self-play training-data pipeline:
// seeded games, per-position filters, deduplication, and the binary
// sample stream.
package datagen

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/slices"

	"github.com/hailam/atomicgen/internal/board"
)

// Outcome is a game result from the side to move's perspective.
type Outcome int8

const (
	OutcomeLoss Outcome = 0
	OutcomeDraw Outcome = 1
	OutcomeWin  Outcome = 2
)

// Sample is one training record: a position, the search score in
// centipawns of the side to move, and the eventual game outcome, also
// side-to-move relative.
type Sample struct {
	Position *board.Position
	Score    int
	Outcome  Outcome
}

// pieceEntry is the on-disk per-piece record.
type pieceEntry struct {
	code byte // 0..5 white P,N,B,R,Q,K; 6..11 black
	sq   byte // rank*8 + (7 - file)
}

// encodeSquare applies the format's file mirror.
func encodeSquare(sq board.Square) byte {
	return byte(sq.Rank()*8 + (7 - sq.File()))
}

// decodeSquare inverts encodeSquare.
func decodeSquare(b byte) board.Square {
	rank := int(b) / 8
	file := 7 - int(b)%8
	return board.NewSquare(file, rank)
}

// WriteSample serializes one record:
//
//	u8 n, u8 stm, n x (u8 code, u8 square), i16 score, i8 result
//
// Pieces are sorted by (code, square); the score is clamped to i16.
func WriteSample(w io.Writer, s *Sample) error {
	pieces := make([]pieceEntry, 0, s.Position.PieceCount())
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			code := byte(pt) + byte(c)*6
			bb := s.Position.Pieces[c][pt]
			for bb != 0 {
				pieces = append(pieces, pieceEntry{code, encodeSquare(bb.PopLSB())})
			}
		}
	}

	slices.SortFunc(pieces, func(a, b pieceEntry) int {
		if a.code != b.code {
			return int(a.code) - int(b.code)
		}
		return int(a.sq) - int(b.sq)
	})

	var stm byte
	if s.Position.SideToMove == board.White {
		stm = 1
	}

	buf := make([]byte, 0, 2+2*len(pieces)+3)
	buf = append(buf, byte(len(pieces)), stm)
	for _, p := range pieces {
		buf = append(buf, p.code, p.sq)
	}

	score := s.Score
	if score > math.MaxInt16 {
		score = math.MaxInt16
	} else if score < math.MinInt16 {
		score = math.MinInt16
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(score)))
	buf = append(buf, byte(int8(s.Outcome)))

	_, err := w.Write(buf)
	return err
}

// ReadSample parses one record. Returns io.EOF cleanly at end of stream.
func ReadSample(r *bufio.Reader) (*Sample, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("datagen: sample header: %w", err)
	}

	n := int(header[0])
	if n < 2 || n > 32 {
		return nil, fmt.Errorf("datagen: invalid piece count %d", n)
	}

	body := make([]byte, 2*n+3)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("datagen: sample body: %w", err)
	}

	pos := &board.Position{}
	for i := 0; i < n; i++ {
		code := body[2*i]
		if code > 11 {
			return nil, fmt.Errorf("datagen: invalid piece code %d", code)
		}
		c := board.Color(code / 6)
		pt := board.PieceType(code % 6)
		sq := decodeSquare(body[2*i+1])

		bb := board.SquareBB(sq)
		if pos.AllOccupied&bb != 0 {
			return nil, fmt.Errorf("datagen: duplicate square in sample")
		}
		pos.Pieces[c][pt] |= bb
		pos.Occupied[c] |= bb
		pos.AllOccupied |= bb
	}

	if header[1] == 1 {
		pos.SideToMove = board.White
	} else {
		pos.SideToMove = board.Black
		pos.PlyCount = 1
	}

	pos.Hash = pos.RecomputeHash()
	pos.PawnKey = pos.RecomputePawnKey()
	pos.SideKeys[board.White] = pos.RecomputeSideKey(board.White)
	pos.SideKeys[board.Black] = pos.RecomputeSideKey(board.Black)

	score := int(int16(binary.LittleEndian.Uint16(body[2*n:])))
	outcome := Outcome(int8(body[2*n+2]))
	if outcome < OutcomeLoss || outcome > OutcomeWin {
		return nil, fmt.Errorf("datagen: invalid outcome %d", outcome)
	}

	return &Sample{Position: pos, Score: score, Outcome: outcome}, nil
}

// relativeOutcome converts a white-perspective game status into the
// outcome seen from stm.
func relativeOutcome(status board.GameStatus, stm board.Color) Outcome {
	switch status {
	case board.WhiteWin:
		if stm == board.White {
			return OutcomeWin
		}
		return OutcomeLoss
	case board.BlackWin:
		if stm == board.Black {
			return OutcomeWin
		}
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}
