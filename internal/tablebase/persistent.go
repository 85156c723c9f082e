package tablebase

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/atomicgen/internal/board"
)

// PersistentProber serves probes out of a badger-backed store. With an
// inner prober it acts as a durable cache: rescore passes over the same
// dataset hit mostly the same endgames, so the second pass becomes pure
// lookups. With a nil inner it is the oracle itself, answering from
// whatever WDL results were imported into the store.
type PersistentProber struct {
	inner Prober
	db    *badger.DB
}

// NewPersistentProber opens (or creates) the store at dir. inner may be
// nil for a store-only oracle.
func NewPersistentProber(inner Prober, dir string) (*PersistentProber, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("tablebase: open cache: %w", err)
	}
	return &PersistentProber{inner: inner, db: db}, nil
}

// Close flushes and closes the store.
func (pp *PersistentProber) Close() error {
	return pp.db.Close()
}

func probeKey(hash uint64) []byte {
	key := make([]byte, 10)
	copy(key, "tb")
	binary.LittleEndian.PutUint64(key[2:], hash)
	return key
}

func (pp *PersistentProber) Probe(pos *board.Position) ProbeResult {
	key := probeKey(pos.Hash)

	var cached []byte
	err := pp.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		cached, err = item.ValueCopy(nil)
		return err
	})
	if err == nil && len(cached) == 2 {
		return ProbeResult{
			Found: cached[0] == 1,
			WDL:   WDL(int8(cached[1])),
		}
	}

	if pp.inner == nil {
		return ProbeResult{}
	}

	result := pp.inner.Probe(pos)

	// Best effort: a failed write only costs a future re-probe.
	_ = pp.db.Update(func(txn *badger.Txn) error {
		value := []byte{0, byte(int8(result.WDL))}
		if result.Found {
			value[0] = 1
		}
		return txn.Set(key, value)
	})

	return result
}

func (pp *PersistentProber) MaxPieces() int {
	if pp.inner == nil {
		return 6
	}
	return pp.inner.MaxPieces()
}

func (pp *PersistentProber) Available() bool {
	if pp.inner == nil {
		return true
	}
	return pp.inner.Available()
}

// Store imports a WDL result, keyed by position hash. Used by tooling
// that populates the oracle out of band.
func (pp *PersistentProber) Store(pos *board.Position, result ProbeResult) error {
	return pp.db.Update(func(txn *badger.Txn) error {
		value := []byte{0, byte(int8(result.WDL))}
		if result.Found {
			value[0] = 1
		}
		return txn.Set(probeKey(pos.Hash), value)
	})
}
