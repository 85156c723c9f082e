package board

import "fmt"

// Move encodes an atomic chess move in 32 bits:
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-14: moving piece type
//	bit  15:    capture flag
//	bits 16-18: captured piece type (valid when capture flag set)
//	bit  19:    en passant flag
//	bits 20-25: en-passant-captured square (valid when ep flag set)
//	bits 26-28: promotion piece type
//	bit  29:    promotion flag
//	bit  30:    castle flag (king move onto own rook's home square)
//	bit  31:    null-move sentinel
type Move uint32

// NoMove represents the absence of a move.
const NoMove Move = 0

// NullMove is the distinguished pass-the-turn sentinel used by null-move
// pruning. It is never generated and never legal.
const NullMove Move = 1 << 31

const (
	moveCaptureFlag Move = 1 << 15
	moveEPFlag      Move = 1 << 19
	movePromoFlag   Move = 1 << 29
	moveCastleFlag  Move = 1 << 30
)

// NewMove creates a quiet move.
func NewMove(from, to Square, piece PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(piece)<<12
}

// NewCapture creates a capture move.
func NewCapture(from, to Square, piece, captured PieceType) Move {
	return NewMove(from, to, piece) | moveCaptureFlag | Move(captured)<<16
}

// NewEnPassant creates an en passant capture. epCaptureSq is the square
// of the pawn being captured (not the destination).
func NewEnPassant(from, to, epCaptureSq Square) Move {
	return NewCapture(from, to, Pawn, Pawn) | moveEPFlag | Move(epCaptureSq)<<20
}

// NewPromotion creates a promotion move; captured is ignored unless
// isCapture is set.
func NewPromotion(from, to Square, promo PieceType, isCapture bool, captured PieceType) Move {
	m := NewMove(from, to, Pawn) | movePromoFlag | Move(promo)<<26
	if isCapture {
		m |= moveCaptureFlag | Move(captured)<<16
	}
	return m
}

// NewCastle creates a castling move, encoded as the king moving onto its
// own rook's home square.
func NewCastle(from, to Square) Move {
	return NewMove(from, to, King) | moveCastleFlag
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Piece returns the moving piece type.
func (m Move) Piece() PieceType {
	return PieceType((m >> 12) & 7)
}

// IsCapture returns true for captures, including en passant.
func (m Move) IsCapture() bool {
	return m&moveCaptureFlag != 0
}

// Captured returns the captured piece type (valid only for captures).
func (m Move) Captured() PieceType {
	return PieceType((m >> 16) & 7)
}

// IsEnPassant returns true for en passant captures.
func (m Move) IsEnPassant() bool {
	return m&moveEPFlag != 0
}

// EPCaptureSquare returns the square of the en-passant-captured pawn.
func (m Move) EPCaptureSquare() Square {
	return Square((m >> 20) & 0x3F)
}

// IsPromotion returns true for promotions.
func (m Move) IsPromotion() bool {
	return m&movePromoFlag != 0
}

// Promotion returns the promotion piece type (valid only for promotions).
func (m Move) Promotion() PieceType {
	return PieceType((m >> 26) & 7)
}

// IsCastle returns true for castling moves.
func (m Move) IsCastle() bool {
	return m&moveCastleFlag != 0
}

// IsNull returns true for the null-move sentinel.
func (m Move) IsNull() bool {
	return m&(1<<31) != 0
}

// IsNoisy returns true for captures and queen promotions, the move
// classes the noisy generation mode emits.
func (m Move) IsNoisy() bool {
	return m.IsCapture() || (m.IsPromotion() && m.Promotion() == Queen)
}

// IsQuiet is the complement of IsNoisy.
func (m Move) IsQuiet() bool {
	return !m.IsNoisy()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
// Castling prints the conventional king destination, not the rook square.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	if m.IsNull() {
		return "0000"
	}

	to := m.To()
	if m.IsCastle() {
		if to.File() == 7 {
			to = NewSquare(6, to.Rank()) // O-O
		} else {
			to = NewSquare(2, to.Rank()) // O-O-O
		}
	}

	s := m.From().String() + to.String()

	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(promoChars[m.Promotion()])
	}

	return s
}

// ParseMove parses a UCI move string against a position, resolving the
// capture/ep/castle/promotion details from the board state. Returns an
// error if the string does not correspond to any legal move.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}
	moves := pos.GenerateMoves(ModeAll)
	for i := 0; i < moves.Len(); i++ {
		if mv := moves.Get(i); mv.String() == s {
			return mv, nil
		}
	}
	return NoMove, fmt.Errorf("illegal move: %s", s)
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
