package nnue

import "github.com/hailam/atomicgen/internal/board"

// FeatureIndex computes the input feature index of a piece from one
// side's perspective. For the black perspective both squares are
// mirrored and piece colors are flipped, so the network always sees the
// board as if it were white.
func FeatureIndex(perspective board.Color, kingSq board.Square,
	pt board.PieceType, pc board.Color, sq board.Square) int {

	if perspective == board.Black {
		kingSq = kingSq.Mirror()
		sq = sq.Mirror()
		pc = pc.Other()
	}

	plane := int(pt)
	if pc == board.Black {
		plane += 6
	}

	return kingBucket(kingSq)*(NumPiecePlanes*NumPieceSquares) + plane*NumPieceSquares + int(sq)
}

// featureDelta is one sub/add step of an incremental update.
type featureDelta struct {
	index int
	add   bool
}

// perspectiveDeltas collects the feature changes between two positions
// for one perspective with a fixed king bucket. Bitboard diffs capture
// every effect of a move at once, including the full blast of an atomic
// capture.
func perspectiveDeltas(pre, post *board.Position, perspective board.Color, kingSq board.Square, out []featureDelta) []featureDelta {
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			before := pre.Pieces[c][pt]
			after := post.Pieces[c][pt]

			removed := before &^ after
			for removed != 0 {
				sq := removed.PopLSB()
				out = append(out, featureDelta{FeatureIndex(perspective, kingSq, pt, c, sq), false})
			}

			added := after &^ before
			for added != 0 {
				sq := added.PopLSB()
				out = append(out, featureDelta{FeatureIndex(perspective, kingSq, pt, c, sq), true})
			}
		}
	}
	return out
}

// activeFeatures lists every feature index set in pos for one perspective.
func activeFeatures(pos *board.Position, perspective board.Color, kingSq board.Square, out []int) []int {
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				out = append(out, FeatureIndex(perspective, kingSq, pt, c, sq))
			}
		}
	}
	return out
}
