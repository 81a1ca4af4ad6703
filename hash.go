package fsst

import "github.com/cespare/xxhash/v2"

// prefixHash hashes the low 3 bytes of a symbol's value to select a bucket
// in Table.hashTab. Called on every encode-loop position as well as during
// training's candidate lookup, so it needs to stay allocation-free (the
// on-stack array below never escapes): xxhash's short-key path is built for
// exactly this size and gives fewer accidental bucket collisions than a
// bare multiplicative mix.
func prefixHash(prefix24 uint64) uint64 {
	var b [3]byte
	b[0] = byte(prefix24)
	b[1] = byte(prefix24 >> 8)
	b[2] = byte(prefix24 >> 16)
	return xxhash.Sum64(b[:])
}

// sampleMixPrime and sampleShift drive the deterministic reservoir sampler
// in train.go (makeSample) and the per-generation choice of which sample
// lines compressCount counts.
// This is a plain multiplicative mix, not a cryptographic or
// collision-resistant hash: it only needs to scatter a monotonically
// increasing counter across [0, 2^64) deterministically, which xxhash would
// do too but at needless cost for a single uint64 input repeated millions
// of times during training.
const (
	sampleMixPrime = uint64(2971215073)
	sampleShift    = 15
)

func sampleMix(w uint64) uint64 {
	x := w * sampleMixPrime
	return x ^ (x >> sampleShift)
}
