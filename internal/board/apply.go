package board

// Apply plays a move and returns the resulting position as a fresh copy.
// The receiver is never mutated. All hashes are maintained incrementally:
// only the squares actually touched by the move and its blast are XORed.
func (p *Position) Apply(mv Move) *Position {
	us := p.SideToMove
	them := us.Other()

	next := p.Copy()

	// Hash out the latent state of the parent; it is re-added below.
	next.Hash ^= zobristCastling[next.CastlingRights]
	if oldEP := next.EpMask[them]; oldEP != 0 {
		next.Hash ^= zobristEnPassant[oldEP.LSB().File()]
	}

	next.EpMask[White] = 0
	next.EpMask[Black] = 0

	if mv.IsNull() {
		next.SideToMove = them
		next.Hash ^= zobristSideToMove
		next.Hash ^= zobristCastling[next.CastlingRights]
		next.PlyCount++
		next.HalfMoveClock++
		return next
	}

	from := mv.From()
	to := mv.To()
	placed := mv.Piece()
	if mv.IsPromotion() {
		placed = mv.Promotion()
	}

	next.removePiece(us, mv.Piece(), from)

	switch {
	case mv.IsCastle():
		ci := &castles[us]
		next.CastlingRights &^= ci.ooRight | ci.oooRight
		if to == ci.ooRook {
			next.removePiece(us, Rook, ci.ooRook)
			next.setPiece(us, King, ci.ooKingTo)
			next.setPiece(us, Rook, ci.ooRookTo)
		} else {
			next.removePiece(us, Rook, ci.oooRook)
			next.setPiece(us, King, ci.oooKingTo)
			next.setPiece(us, Rook, ci.oooRookTo)
		}

	case mv.IsCapture():
		// The capturing piece never survives: it is removed along with
		// everything the blast reaches, so it is never placed on `to`.
		if mv.IsEnPassant() {
			next.removePiece(them, Pawn, mv.EPCaptureSquare())
		} else {
			next.removePiece(them, mv.Captured(), to)
		}

		// Blast centered on the destination square for every capture,
		// including en passant. Non-pawns inside the mask die on both
		// sides; pawns survive (the pawn on center was removed above).
		blast := BlastMask(to)
		for c := White; c <= Black; c++ {
			for pt := Knight; pt <= King; pt++ {
				victims := blast & next.Pieces[c][pt]
				for victims != 0 {
					next.removePiece(c, pt, victims.PopLSB())
				}
			}
		}

	default:
		next.setPiece(us, placed, to)

		// Double push: record the en passant target only when an enemy
		// pawn could actually capture it.
		if mv.Piece() == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
			ep := Square((int(from) + int(to)) / 2)
			if p.Pieces[them][Pawn]&pawnAttacks[us][ep] != 0 {
				next.EpMask[us] = SquareBB(ep)
			}
		}
	}

	// Rights die with the king move or the rook leaving home.
	ci := &castles[us]
	if mv.Piece() == King {
		next.CastlingRights &^= ci.ooRight | ci.oooRight
	}
	if from == ci.ooRook {
		next.CastlingRights &^= ci.ooRight
	}
	if from == ci.oooRook {
		next.CastlingRights &^= ci.oooRight
	}

	// A blast (or a capture onto the rook's home square) may have
	// destroyed a rook outright; revalidate every remaining right.
	for c := White; c <= Black; c++ {
		cc := &castles[c]
		if next.CastlingRights&cc.ooRight != 0 && next.Pieces[c][Rook]&SquareBB(cc.ooRook) == 0 {
			next.CastlingRights &^= cc.ooRight
		}
		if next.CastlingRights&cc.oooRight != 0 && next.Pieces[c][Rook]&SquareBB(cc.oooRook) == 0 {
			next.CastlingRights &^= cc.oooRight
		}
	}

	next.SideToMove = them
	next.PlyCount++
	next.HalfMoveClock++
	if mv.IsCapture() || mv.Piece() == Pawn {
		next.HalfMoveClock = 0
	}

	// Hash the latent state back in.
	next.Hash ^= zobristSideToMove
	next.Hash ^= zobristCastling[next.CastlingRights]
	if newEP := next.EpMask[us]; newEP != 0 {
		next.Hash ^= zobristEnPassant[newEP.LSB().File()]
	}

	return next
}
