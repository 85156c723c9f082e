// Package nnue implements the efficiently updatable neural network
// evaluator. Features are (king bucket, piece, square) pairs seen from
// each side's perspective; the first layer is maintained incrementally
// through an accumulator stack with a per-bucket refresh table.
package nnue

import "github.com/hailam/atomicgen/internal/board"

// Network architecture constants.
const (
	// NumBuckets partitions the king squares; the bucket selects the
	// feature subspace, so a king move across a bucket boundary forces a
	// full refresh of that perspective.
	NumBuckets = 4

	NumPiecePlanes  = 12 // P,N,B,R,Q,K for both colors
	NumPieceSquares = 64

	// Input features per perspective.
	FeatureSize = NumBuckets * NumPiecePlanes * NumPieceSquares

	// First hidden layer width, per perspective.
	L1Size = 256

	// Quantization: inputs are scaled by 2^6, the output sum by 2^6 more.
	ActivationMax = 127
	OutputShift   = 6

	// Rescale from raw network units to centipawns of the side to move.
	ScaleNumerator   = 1024
	ScaleDenominator = 288
)

// kingBucket maps a king square (from its own perspective, i.e. after
// mirroring for black) to its feature bucket.
func kingBucket(sq board.Square) int {
	bucket := 0
	if sq.File() >= 4 {
		bucket |= 1
	}
	if sq.Rank() >= 2 {
		bucket |= 2
	}
	return bucket
}

// clippedReLU clamps a pre-activation to [0, ActivationMax].
func clippedReLU(x int16) int32 {
	if x < 0 {
		return 0
	}
	if x > ActivationMax {
		return ActivationMax
	}
	return int32(x)
}

// Evaluator owns a network and an accumulator stack. Each search worker
// holds its own evaluator; the network itself is shared and read-only.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator creates an evaluator over the given network.
func NewEvaluator(net *Network) *Evaluator {
	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(net),
	}
}

// Reset drops all incremental state; the next evaluation rebuilds from
// scratch. Call at the root of every search.
func (e *Evaluator) Reset(pos *board.Position) {
	e.stack.Reset()
	e.stack.Current().ComputeFull(pos, e.net)
}

// Push applies a move transition: the child accumulator is derived from
// the parent by feature diffs, or by a bucket refresh when a king
// crossed buckets. Call with the position before and after the move.
func (e *Evaluator) Push(pre, post *board.Position) {
	e.stack.Push(pre, post)
}

// Pop unwinds one transition.
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Evaluate returns the raw network output for the side to move, using
// the current accumulator; Scale converts it to centipawns.
func (e *Evaluator) Evaluate(pos *board.Position, stm board.Color) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	return e.net.Forward(acc, stm)
}

// EvaluateOnce rebuilds an accumulator from scratch and evaluates. Used
// by tests; it never touches the incremental stack.
func EvaluateOnce(net *Network, pos *board.Position, stm board.Color) int {
	var acc Accumulator
	acc.ComputeFull(pos, net)
	return net.Forward(&acc, stm)
}

// Scale converts a raw network score into the engine's centipawn scale.
func Scale(raw int) int {
	return raw * ScaleNumerator / ScaleDenominator
}
