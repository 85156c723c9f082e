package nnue

import "github.com/hailam/atomicgen/internal/board"

// MaxStack bounds the accumulator stack; deeper lines than this fall
// back to full recomputation.
const MaxStack = 160

// Accumulator holds the first-layer pre-activations for both
// perspectives.
type Accumulator struct {
	Perspectives [2][L1Size]int16
	Computed     bool
}

// refreshEntry caches, per (perspective, bucket), the last accumulator
// seen in that bucket together with the piece planes it was built from.
// A bucket-crossing king move replays only the diff against this cache
// instead of rebuilding from the bias.
type refreshEntry struct {
	acc    [L1Size]int16
	pieces [2][6]board.Bitboard
	valid  bool
}

// AccumulatorStack manages accumulators during search, one per ply.
type AccumulatorStack struct {
	net     *Network
	stack   [MaxStack]Accumulator
	top     int
	refresh [2][NumBuckets]refreshEntry
	scratch []featureDelta
}

// NewAccumulatorStack creates an empty stack bound to a network.
func NewAccumulatorStack(net *Network) *AccumulatorStack {
	return &AccumulatorStack{
		net:     net,
		scratch: make([]featureDelta, 0, 64),
	}
}

// Reset drops all incremental state, including the refresh table.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0].Computed = false
	for p := range s.refresh {
		for b := range s.refresh[p] {
			s.refresh[p][b].valid = false
		}
	}
}

// Current returns the accumulator for the current ply.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Push derives the child accumulator from the parent.
func (s *AccumulatorStack) Push(pre, post *board.Position) {
	if s.top >= MaxStack-1 {
		return
	}
	parent := &s.stack[s.top]
	s.top++
	child := &s.stack[s.top]

	if !parent.Computed {
		child.Computed = false
		return
	}

	*child = *parent
	child.update(pre, post, s)
}

// Pop unwinds one ply.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// ComputeFull rebuilds the accumulator from scratch for both
// perspectives. A position with a missing king is terminal; the search
// never evaluates it, so the accumulator is simply zeroed.
func (acc *Accumulator) ComputeFull(pos *board.Position, net *Network) {
	for p := board.White; p <= board.Black; p++ {
		kingSq := pos.KingSquare(p)
		if kingSq == board.NoSquare {
			for i := range acc.Perspectives[p] {
				acc.Perspectives[p][i] = 0
			}
			continue
		}
		copy(acc.Perspectives[p][:], net.L1Bias[:])
		features := activeFeatures(pos, p, kingSq, make([]int, 0, 32))
		for _, idx := range features {
			weights := &net.L1Weights[idx]
			for i := 0; i < L1Size; i++ {
				acc.Perspectives[p][i] += weights[i]
			}
		}
	}
	acc.Computed = true
}

// update applies a move transition in place.
func (acc *Accumulator) update(pre, post *board.Position, s *AccumulatorStack) {
	for p := board.White; p <= board.Black; p++ {
		preKing := pre.KingSquare(p)
		postKing := post.KingSquare(p)

		if postKing == board.NoSquare {
			for i := range acc.Perspectives[p] {
				acc.Perspectives[p][i] = 0
			}
			continue
		}

		preBucket := perspectiveBucket(p, preKing)
		postBucket := perspectiveBucket(p, postKing)

		if preKing == board.NoSquare || preBucket != postBucket {
			s.refreshPerspective(acc, post, p, postKing, postBucket)
			continue
		}

		deltas := perspectiveDeltas(pre, post, p, postKing, s.scratch[:0])
		applyDeltas(&acc.Perspectives[p], deltas, s.net)
	}
	acc.Computed = true
}

// refreshPerspective rebuilds one perspective against the bucket's
// cached accumulator, then updates the cache.
func (s *AccumulatorStack) refreshPerspective(acc *Accumulator, pos *board.Position, p board.Color, kingSq board.Square, bucket int) {
	entry := &s.refresh[p][bucket]

	if !entry.valid {
		copy(entry.acc[:], s.net.L1Bias[:])
		entry.pieces = [2][6]board.Bitboard{}
		entry.valid = true
	}

	// Diff the cached planes against the current position and replay.
	deltas := s.scratch[:0]
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			before := entry.pieces[c][pt]
			after := pos.Pieces[c][pt]

			removed := before &^ after
			for removed != 0 {
				sq := removed.PopLSB()
				deltas = append(deltas, featureDelta{FeatureIndex(p, kingSq, pt, c, sq), false})
			}
			added := after &^ before
			for added != 0 {
				sq := added.PopLSB()
				deltas = append(deltas, featureDelta{FeatureIndex(p, kingSq, pt, c, sq), true})
			}
		}
	}
	applyDeltas(&entry.acc, deltas, s.net)
	entry.pieces = pos.Pieces

	copy(acc.Perspectives[p][:], entry.acc[:])
}

func applyDeltas(dst *[L1Size]int16, deltas []featureDelta, net *Network) {
	for _, d := range deltas {
		weights := &net.L1Weights[d.index]
		if d.add {
			for i := 0; i < L1Size; i++ {
				dst[i] += weights[i]
			}
		} else {
			for i := 0; i < L1Size; i++ {
				dst[i] -= weights[i]
			}
		}
	}
}

// perspectiveBucket returns the refresh bucket of a king square as seen
// from its own side.
func perspectiveBucket(p board.Color, kingSq board.Square) int {
	if kingSq == board.NoSquare {
		return 0
	}
	if p == board.Black {
		kingSq = kingSq.Mirror()
	}
	return kingBucket(kingSq)
}
