package isohash

import (
	"crypto/md5"
	"encoding/binary"
	"hash"

	"github.com/cespare/xxhash/v2"
)

// A primitive is a hash function seen as a word mixer and as a stream hasher.
type primitive struct {
	word    func(x uint64) uint64
	pair    func(a, b uint64) uint64
	newHash func() hash.Hash
}

var primitives = map[HashKind]primitive{
	HashFast: {
		word: func(x uint64) uint64 {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], x)
			return xxhash.Sum64(buf[:])
		},
		pair: func(a, b uint64) uint64 {
			var buf [16]byte
			binary.LittleEndian.PutUint64(buf[:8], a)
			binary.LittleEndian.PutUint64(buf[8:], b)
			return xxhash.Sum64(buf[:])
		},
		newHash: func() hash.Hash { return xxhash.New() },
	},
	HashStrong: {
		word: func(x uint64) uint64 {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], x)
			sum := md5.Sum(buf[:])
			return binary.LittleEndian.Uint64(sum[:8])
		},
		pair: func(a, b uint64) uint64 {
			var buf [16]byte
			binary.LittleEndian.PutUint64(buf[:8], a)
			binary.LittleEndian.PutUint64(buf[8:], b)
			sum := md5.Sum(buf[:])
			return binary.LittleEndian.Uint64(sum[:8])
		},
		newHash: md5.New,
	},
}

// A ring is the arithmetic colors are combined with:
// integers modulo p, or modulo 2^64 when p is 0.
type ring struct {
	p      uint64
	add    func(a, b uint64) uint64
	sub    func(a, b uint64) uint64
	mul    func(n, a uint64) uint64
	reduce func(x uint64) uint64
}

func newRing(p uint32) ring {
	if p == 0 {
		return ring{
			add:    func(a, b uint64) uint64 { return a + b },
			sub:    func(a, b uint64) uint64 { return a - b },
			mul:    func(n, a uint64) uint64 { return n * a },
			reduce: func(x uint64) uint64 { return x },
		}
	}
	m := uint64(p)
	// Operands are always reduced, so they are < 2^32 and nothing overflows.
	return ring{
		p:      m,
		add:    func(a, b uint64) uint64 { return (a + b) % m },
		sub:    func(a, b uint64) uint64 { return (a + m - b) % m },
		mul:    func(n, a uint64) uint64 { return (n % m) * a % m },
		reduce: func(x uint64) uint64 { return x % m },
	}
}

// A mixer is the set of functions a run is made of, resolved once from the configuration.
// All returned colors are reduced in the ring.
type mixer struct {
	ring
	word      func(x uint64) uint64
	pair      func(a, b uint64) uint64
	clauseSig func(sum uint64) uint64
	newHash   func() hash.Hash
	crossRef  bool
	sorted    bool
	uniform   uint64 // color of every node at round 0
	negTag    uint64
}

func newMixer(cfg Config) *mixer {
	prim := primitives[cfg.Hash]
	m := &mixer{
		ring:     newRing(cfg.PrimeRingModulus),
		newHash:  prim.newHash,
		crossRef: cfg.CrossReference,
		sorted:   cfg.SortForClauseHash,
	}
	if m.p == 0 {
		m.word, m.pair = prim.word, prim.pair
	} else {
		p := m.p
		m.word = func(x uint64) uint64 { return prim.word(x) % p }
		m.pair = func(a, b uint64) uint64 { return prim.pair(a, b) % p }
	}
	if cfg.RehashClauses {
		m.clauseSig = m.word
	} else {
		m.clauseSig = func(sum uint64) uint64 { return sum }
	}
	m.uniform = m.word(1)
	m.negTag = m.word(2)
	return m
}

// neg returns the color of x seen through a negative literal.
func (m *mixer) neg(x uint64) uint64 {
	return m.pair(x, m.negTag)
}

// sum64 hashes the given sorted colors, skipping the color at index skip (if skip >= 0).
func (m *mixer) sum64(h hash.Hash, colors []uint64, skip int, scratch []byte) uint64 {
	h.Reset()
	var buf [8]byte
	for i, c := range colors {
		if i == skip {
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], c)
		_, _ = h.Write(buf[:])
	}
	return m.reduce(binary.LittleEndian.Uint64(h.Sum(scratch[:0])))
}

// digest hashes the given sorted colors into a fixed-size digest.
func (m *mixer) digest(colors []uint64) []byte {
	h := m.newHash()
	var buf [8]byte
	for _, c := range colors {
		binary.LittleEndian.PutUint64(buf[:], c)
		_, _ = h.Write(buf[:])
	}
	return h.Sum(nil)
}
