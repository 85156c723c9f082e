package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hailam/atomicgen/internal/board"
)

// Network holds the quantized weights. It is loaded (or embedded) once
// at startup and shared read-only by every worker.
type Network struct {
	L1Weights [FeatureSize][L1Size]int16
	L1Bias    [L1Size]int16

	// Output layer: one weight vector per perspective half, side to move
	// first.
	OutputWeights [2][L1Size]int16
	OutputBias    int32
}

// NewNetwork creates a zeroed network.
func NewNetwork() *Network {
	return &Network{}
}

// Forward runs the output layer over the accumulator. The side to move's
// perspective occupies the first half of the concatenated input.
func (n *Network) Forward(acc *Accumulator, stm board.Color) int {
	var sum int32

	us := &acc.Perspectives[stm]
	them := &acc.Perspectives[stm.Other()]

	for i := 0; i < L1Size; i++ {
		sum += clippedReLU(us[i]) * int32(n.OutputWeights[0][i])
	}
	for i := 0; i < L1Size; i++ {
		sum += clippedReLU(them[i]) * int32(n.OutputWeights[1][i])
	}

	return int(int32(sum+n.OutputBias) >> OutputShift)
}

// LoadWeights reads a flat little-endian int16 blob: L1 weights, L1
// bias, output weights, then a single int32 output bias.
func (n *Network) LoadWeights(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("nnue: open weights: %w", err)
	}
	defer f.Close()
	return n.ReadFrom(f)
}

// ReadFrom reads the weight blob from a stream.
func (n *Network) ReadFrom(r io.Reader) error {
	read16 := func(dst []int16) error {
		buf := make([]byte, 2*len(dst))
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		for i := range dst {
			dst[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
		}
		return nil
	}

	for i := range n.L1Weights {
		if err := read16(n.L1Weights[i][:]); err != nil {
			return fmt.Errorf("nnue: l1 weights: %w", err)
		}
	}
	if err := read16(n.L1Bias[:]); err != nil {
		return fmt.Errorf("nnue: l1 bias: %w", err)
	}
	for i := range n.OutputWeights {
		if err := read16(n.OutputWeights[i][:]); err != nil {
			return fmt.Errorf("nnue: output weights: %w", err)
		}
	}
	var bias [4]byte
	if _, err := io.ReadFull(r, bias[:]); err != nil {
		return fmt.Errorf("nnue: output bias: %w", err)
	}
	n.OutputBias = int32(binary.LittleEndian.Uint32(bias[:]))
	return nil
}

// InitRandom fills the network with small deterministic pseudo-random
// weights. Good enough to exercise the full evaluation path in tests and
// self-play smoke runs without a trained net.
func (n *Network) InitRandom(seed uint64) {
	state := seed | 1

	next := func() int16 {
		state ^= state >> 12
		state ^= state << 25
		state ^= state >> 27
		return int16(int64(state*0x2545F4914F6CDD1D)%7) - 3
	}

	for i := range n.L1Weights {
		for j := range n.L1Weights[i] {
			n.L1Weights[i][j] = next()
		}
	}
	for i := range n.L1Bias {
		n.L1Bias[i] = next() * 4
	}
	for i := range n.OutputWeights {
		for j := range n.OutputWeights[i] {
			n.OutputWeights[i][j] = next()
		}
	}
	n.OutputBias = 0
}
