package board

// GenMode selects which move classes a generation call emits. Noisy
// covers captures and queen promotions; quiet covers everything else
// (including under-promotions and castling); check additionally admits
// quiet moves that give direct or atomic check, used by the quiescence
// layers.
type GenMode uint8

const (
	ModeNoisy GenMode = 1 << iota
	ModeQuiet
	ModeCheck

	ModeAll = ModeNoisy | ModeQuiet
)

// GenerateMoves returns the legal moves of the requested classes.
func (p *Position) GenerateMoves(mode GenMode) *MoveList {
	pseudo := NewMoveList()
	p.generatePseudoLegal(pseudo)

	legal := NewMoveList()
	for i := 0; i < pseudo.Len(); i++ {
		mv := pseudo.Get(i)
		if !p.classAllowed(mv, mode) {
			continue
		}
		if p.legalAfter(mv) {
			legal.Add(mv)
		}
	}
	return legal
}

// classAllowed gates a pseudo-legal move by generation mode.
func (p *Position) classAllowed(mv Move, mode GenMode) bool {
	if mv.IsNoisy() {
		return mode&ModeNoisy != 0
	}
	if mode&ModeQuiet != 0 {
		return true
	}
	if mode&ModeCheck != 0 {
		// Quiet moves only reach here when quiet generation is off:
		// admit the ones that check after application.
		if !p.legalAfter(mv) {
			return false
		}
		child := p.Apply(mv)
		return child.IsCheck() || child.InAtomicBlastCheck()
	}
	return false
}

// generatePseudoLegal enumerates every pseudo-legal move for the side to
// move: piece-on-board geometry only, atomic legality comes later.
func (p *Position) generatePseudoLegal(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	if p.Pieces[us][King] == 0 {
		return
	}

	p.generatePawnMoves(ml, us, them, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		p.pushTargets(ml, from, Knight, KnightAttacks(from) & ^p.Occupied[us], them)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		p.pushTargets(ml, from, Bishop, BishopAttacks(from, occupied) & ^p.Occupied[us], them)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		p.pushTargets(ml, from, Rook, RookAttacks(from, occupied) & ^p.Occupied[us], them)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		p.pushTargets(ml, from, Queen, QueenAttacks(from, occupied) & ^p.Occupied[us], them)
	}

	// King: quiet moves only. A king capture blasts the destination
	// square, which always includes the capturing king, so no king
	// capture is ever generated.
	kingFrom := p.Pieces[us][King].LSB()
	kingTargets := KingAttacks(kingFrom) & ^occupied
	for kingTargets != 0 {
		ml.Add(NewMove(kingFrom, kingTargets.PopLSB(), King))
	}

	p.generateCastling(ml, us)
}

// pushTargets adds quiet and capture moves for a non-pawn piece.
func (p *Position) pushTargets(ml *MoveList, from Square, piece PieceType, targets Bitboard, them Color) {
	for targets != 0 {
		to := targets.PopLSB()
		if p.Occupied[them].IsSet(to) {
			ml.Add(NewCapture(from, to, piece, p.TypeAt(them, to)))
		} else {
			ml.Add(NewMove(from, to, piece))
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us, them Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR, promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to, Pawn))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*pushDir), to, Pawn))
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewCapture(from, to, Pawn, p.TypeAt(them, to)))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewCapture(from, to, Pawn, p.TypeAt(them, to)))
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to, false, NoPieceType)
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, true, p.TypeAt(them, to))
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, true, p.TypeAt(them, to))
	}

	// En passant: target readable from the opponent's latent slot.
	if epMask := p.EpMask[them]; epMask != 0 {
		ep := epMask.LSB()
		var capSq Square
		if us == White {
			capSq = ep - 8
		} else {
			capSq = ep + 8
		}
		attackers := pawnAttacks[them][ep] & pawns
		for attackers != 0 {
			ml.Add(NewEnPassant(attackers.PopLSB(), ep, capSq))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, isCapture bool, captured PieceType) {
	ml.Add(NewPromotion(from, to, Queen, isCapture, captured))
	ml.Add(NewPromotion(from, to, Rook, isCapture, captured))
	ml.Add(NewPromotion(from, to, Bishop, isCapture, captured))
	ml.Add(NewPromotion(from, to, Knight, isCapture, captured))
}

// generateCastling emits castle moves as king-to-rook-square moves; the
// attack and occupancy conditions are all checked here, the final-square
// condition in legalAfter.
func (p *Position) generateCastling(ml *MoveList, us Color) {
	ci := &castles[us]
	them := us.Other()

	if p.Pieces[us][King]&SquareBB(ci.kingStart) == 0 {
		return
	}
	// Castling out of direct check is forbidden.
	canCheck := func() bool { return !p.isCheckFor(us) }

	if p.CastlingRights&ci.ooRight != 0 &&
		p.Pieces[us][Rook]&SquareBB(ci.ooRook) != 0 &&
		p.AllOccupied&ci.ooEmpty == 0 {
		danger := ci.ooDanger
		safe := true
		for d := danger; d != 0; {
			if p.IsSquareAttacked(d.PopLSB(), them) {
				safe = false
				break
			}
		}
		if safe && canCheck() {
			ml.Add(NewCastle(ci.kingStart, ci.ooRook))
		}
	}

	if p.CastlingRights&ci.oooRight != 0 &&
		p.Pieces[us][Rook]&SquareBB(ci.oooRook) != 0 &&
		p.AllOccupied&ci.oooEmpty == 0 {
		danger := ci.oooDanger
		safe := true
		for d := danger; d != 0; {
			if p.IsSquareAttacked(d.PopLSB(), them) {
				safe = false
				break
			}
		}
		if safe && canCheck() {
			ml.Add(NewCastle(ci.kingStart, ci.oooRook))
		}
	}
}

// legalAfter applies the atomic king-safety filter to a pseudo-legal move.
func (p *Position) legalAfter(mv Move) bool {
	us := p.SideToMove

	// A capture whose blast reaches our own king is illegal outright,
	// even if the enemy king would die in the same blast.
	if mv.IsCapture() {
		if BlastMask(mv.To())&p.Pieces[us][King] != 0 {
			return false
		}
	}

	next := p.Apply(mv)
	usDead := next.Pieces[us][King] == 0
	themDead := next.Pieces[us.Other()][King] == 0

	if usDead && !themDead {
		return false
	}
	if !usDead && !themDead {
		// Adjacent kings neutralize direct check.
		if !next.KingsAdjacent() && next.isCheckFor(us) {
			return false
		}
	}
	return true
}

// IsLegal fully validates a move against this position, including moves
// fabricated elsewhere (a TT probe, a foreign position). It checks the
// structural claims the move record makes before running the atomic
// legality filter.
func (p *Position) IsLegal(mv Move) bool {
	if mv == NoMove || mv.IsNull() {
		return false
	}
	us := p.SideToMove
	them := us.Other()
	from, to := mv.From(), mv.To()

	if p.Pieces[us][King] == 0 {
		return false
	}

	if mv.IsCastle() {
		ci := &castles[us]
		if mv.Piece() != King || from != ci.kingStart {
			return false
		}
		if to != ci.ooRook && to != ci.oooRook {
			return false
		}
		ml := NewMoveList()
		p.generateCastling(ml, us)
		return ml.Contains(mv) && p.legalAfter(mv)
	}

	if p.Pieces[us][mv.Piece()]&SquareBB(from) == 0 {
		return false
	}
	if p.Occupied[us]&SquareBB(to) != 0 {
		return false
	}

	toHasEnemy := p.Occupied[them]&SquareBB(to) != 0
	if mv.IsCapture() != (toHasEnemy || mv.IsEnPassant()) {
		return false
	}
	if mv.IsCapture() && !mv.IsEnPassant() && mv.Captured() != p.TypeAt(them, to) {
		return false
	}
	if mv.IsEnPassant() {
		epMask := p.EpMask[them]
		if epMask == 0 || !epMask.IsSet(to) {
			return false
		}
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		if mv.EPCaptureSquare() != capSq || p.Pieces[them][Pawn]&SquareBB(capSq) == 0 {
			return false
		}
	}

	occ := p.AllOccupied
	reachable := false
	switch mv.Piece() {
	case Pawn:
		if mv.IsCapture() {
			reachable = pawnAttacks[us][from].IsSet(to)
		} else if pawnPushes[us][from].IsSet(to) && !occ.IsSet(to) {
			reachable = true
		} else {
			// Double push: both squares empty, from the home rank.
			mid := Square((int(from) + int(to)) / 2)
			reachable = from.RelativeRank(us) == 1 &&
				abs(int(to)-int(from)) == 16 &&
				!occ.IsSet(mid) && !occ.IsSet(to)
		}
	case Knight:
		reachable = KnightAttacks(from).IsSet(to)
	case Bishop:
		reachable = BishopAttacks(from, occ).IsSet(to)
	case Rook:
		reachable = RookAttacks(from, occ).IsSet(to)
	case Queen:
		reachable = QueenAttacks(from, occ).IsSet(to)
	case King:
		reachable = !mv.IsCapture() && KingAttacks(from).IsSet(to)
	}
	if !reachable {
		return false
	}

	lastRank := Rank8
	if us == Black {
		lastRank = Rank1
	}
	if mv.IsPromotion() {
		if mv.Piece() != Pawn || !lastRank.IsSet(to) {
			return false
		}
		if promo := mv.Promotion(); promo < Knight || promo > Queen {
			return false
		}
	} else if mv.Piece() == Pawn && lastRank.IsSet(to) {
		return false
	}

	return p.legalAfter(mv)
}
