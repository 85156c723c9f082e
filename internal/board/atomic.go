package board

// Atomic check semantics.
//
// Direct check follows classical attack rules with two atomic twists:
// kings can never give check (a king cannot capture), and adjacent kings
// neutralize direct check entirely. Indirect check - the opponent
// threatens a capture whose blast would destroy our king - is a separate
// predicate and never has to be escaped.

// KingsAdjacent returns true if both kings are on the board and within
// one king move of each other.
func (p *Position) KingsAdjacent() bool {
	wk := p.Pieces[White][King]
	bk := p.Pieces[Black][King]
	if wk == 0 || bk == 0 {
		return false
	}
	return KingAttacks(wk.LSB())&bk != 0
}

// IsCheck returns true if the side to move is in direct check.
func (p *Position) IsCheck() bool {
	return p.isCheckFor(p.SideToMove)
}

// isCheckFor reports direct check against the given side.
func (p *Position) isCheckFor(us Color) bool {
	kingBB := p.Pieces[us][King]
	if kingBB == 0 {
		// A missing king counts as checked; callers treat it as terminal.
		return true
	}
	if p.KingsAdjacent() {
		return false
	}
	// Capturing our king blasts the square it stands on. With the kings
	// not adjacent the attacker's own king is never inside that blast, so
	// any non-king attacker delivers check.
	return p.AttackersTo(kingBB.LSB(), us.Other(), p.AllOccupied) != 0
}

// HasBlastCapture returns true if the given side has a capture whose
// blast would destroy the enemy king without destroying its own.
func (p *Position) HasBlastCapture(side Color) bool {
	them := side.Other()
	enemyKing := p.Pieces[them][King]
	if enemyKing == 0 {
		return false
	}

	ourKing := p.Pieces[side][King]
	zone := BlastMask(enemyKing.LSB())
	targets := zone & p.Occupied[them]

	for targets != 0 {
		t := targets.PopLSB()
		if BlastMask(t)&ourKing != 0 {
			continue // exploding our own king is illegal
		}
		if p.AttackersTo(t, side, p.AllOccupied) != 0 {
			return true
		}
	}
	return false
}

// InAtomicBlastCheck returns true if the opponent of the side to move
// threatens to blast its king: the "indirect check" the search must see
// but the rules do not force the player to escape.
func (p *Position) InAtomicBlastCheck() bool {
	return p.HasBlastCapture(p.SideToMove.Other())
}

// IsBlastMateCapture returns true if mv is a capture whose blast destroys
// the enemy king. The blast is centered on mv.To() for every capture,
// including en passant.
func (p *Position) IsBlastMateCapture(mv Move) bool {
	if !mv.IsCapture() {
		return false
	}
	them := p.SideToMove.Other()
	return BlastMask(mv.To())&p.Pieces[them][King] != 0
}
