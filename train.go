package fsst

import (
	"container/heap"
	"math/bits"
	"unsafe"
)

const (
	sampleTarget = 1 << 14 // 16KB
	sampleMaxSz  = 2 * sampleTarget
	sampleLine   = 512

	singleByteBoost = 8
	rngSeed         = 4637947

	defaultGenerations = 5
)

// TrainOption configures Train. The number of refinement generations is the
// only exposed knob; the gain formula, tie-breaks, and sampling are fixed.
type TrainOption func(*trainConfig)

type trainConfig struct {
	generations int
}

// WithGenerations overrides the default of 5 refinement generations. Each
// generation re-tokenizes the sample under the current table and proposes
// a new table from the highest-gain candidates; more generations trade
// training time for a closer approximation to the optimal table. n < 1 is
// treated as 1.
func WithGenerations(n int) TrainOption {
	return func(c *trainConfig) { c.generations = n }
}

// Train builds a symbol table from samples by running a small, fixed
// number of refinement generations (5 by default, see WithGenerations):
// each generation tokenizes the sample with the current table, tallies
// single- and pair-code frequencies, proposes self-retention and
// pair-merge candidates scored by gain = frequency x length, and keeps
// the top <=255 candidates (ties: longer first, then lexicographically
// smaller payload, then lower code) to form the next table.
//
// An empty or all-empty sample yields a table with no learned symbols:
// Train never fails, it returns a usable, if unhelpful, table. Two calls
// to Train on the same samples in the same order always produce
// byte-identical tables.
func Train(inputs [][]byte, opts ...TrainOption) *Table {
	cfg := trainConfig{generations: defaultGenerations}
	for _, opt := range opts {
		opt(&cfg)
	}
	generations := cfg.generations
	if generations < 1 {
		generations = 1
	}

	sample := makeSample(inputs)
	table := newTable()
	counter := &counters{}

	for gen := 0; gen < generations; gen++ {
		frac := 128
		if generations > 1 {
			frac = 8 + (120*gen)/(generations-1)
		}
		*counter = counters{}
		compressCount(table, counter, sample, frac)
		buildCandidates(table, counter, frac)
	}
	table.finalize()
	return table
}

// TrainStrings is Train for []string inputs, avoiding a copy via unsafe.
func TrainStrings(inputs []string, opts ...TrainOption) *Table {
	asBytes := make([][]byte, len(inputs))
	for i := range inputs {
		asBytes[i] = unsafe.Slice(unsafe.StringData(inputs[i]), len(inputs[i]))
	}
	return Train(asBytes, opts...)
}

// findNextSymbolFast returns the best match at data[position:] under the
// current (training-time) table: a 3-8 byte hash hit, else a unique
// 2-byte short code, else the single byte itself. Used by compressCount
// wherever at least 8 bytes remain so an unaligned 8-byte load is safe.
func findNextSymbolFast(t *Table, data []byte, position int) (code uint16, advance int) {
	word := loadLE64(data[position:])
	prefix24 := word & mask24
	idx := prefixHash(prefix24) & (hashTabSize - 1)
	hashSymbol := t.hashTab[idx]
	shortCode := t.shortCodes[uint16(word&mask16)] & codeMask
	symbolMask := ^uint64(0) >> hashSymbol.ignoredBits()
	maskedWord := word & symbolMask

	if hashSymbol.icl < iclFree && hashSymbol.val == maskedWord {
		return hashSymbol.code(), int(hashSymbol.length())
	}
	if shortCode >= codeBase {
		return shortCode, 2
	}
	return t.byteCodes[byte(word&mask8)] & codeMask, 1
}

// compressCount walks the sample the way Encode would under the current
// table, crediting counter.incSingle for every emitted code and (while
// frac < 128, i.e. every generation but the last) counter.incPair for
// every adjacent pair of emitted codes. This is the "tokenize and count"
// half of one generation.
func compressCount(t *Table, c *counters, sample [][]byte, frac int) {
	for i := range sample {
		if frac < 128 && int(sampleMix(uint64(i))&0x7F) > frac {
			continue
		}
		end := len(sample[i])
		if end == 0 {
			continue
		}
		pos := 0
		cur := t.findLongestSymbol(newSymbolFromBytes(sample[i][pos:min(pos+8, end)]))
		pos += int(t.symbols[cur].length())
		start := 0
		for {
			c.incSingle(uint32(cur))
			if pos-start != 1 {
				c.incSingle(uint32(sample[i][start]))
			}
			if pos == end {
				break
			}
			start = pos
			var (
				next uint16
				adv  int
			)
			if pos < end-7 {
				next, adv = findNextSymbolFast(t, sample[i], pos)
				pos += adv
			} else {
				next = t.findLongestSymbol(newSymbolFromBytes(sample[i][pos:min(pos+8, end)]))
				pos += int(t.symbols[next].length())
			}
			if frac < 128 {
				n := pos - start
				c.incPair(uint32(cur), uint32(next))
				if n > 1 {
					c.incPair(uint32(cur), uint32(sample[i][start]))
				}
			}
			cur = next
		}
	}
}

// qsym pairs a candidate symbol with its computed gain for the top-K
// selection heap in buildCandidates.
type qsym struct {
	symbol symbol
	gain   uint32
}

// ranksBelow reports whether q ranks below o: lower gain, then shorter
// length, then lexicographically larger payload.
func (q qsym) ranksBelow(o qsym) bool {
	if q.gain != o.gain {
		return q.gain < o.gain
	}
	if q.symbol.length() != o.symbol.length() {
		return q.symbol.length() < o.symbol.length()
	}
	return bits.ReverseBytes64(q.symbol.val) > bits.ReverseBytes64(o.symbol.val)
}

// qsymHeap is a min-heap over qsym.gain, so the top-maxSymbols candidates
// can be selected in O(n log k) instead of sorting all candidates.
// Among equal gains the shorter, then the lexicographically larger payload
// ranks lower, so that, once popped into descending order, equal-gain
// candidates come out longer first and then in ascending payload order,
// giving the first of two equally-ranked candidates the lower code once
// codes are assigned in that order.
type qsymHeap []qsym

func (h qsymHeap) Len() int           { return len(h) }
func (h qsymHeap) Less(i, j int) bool { return h[i].ranksBelow(h[j]) }
func (h qsymHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *qsymHeap) Push(x any)        { *h = append(*h, x.(qsym)) }
func (h *qsymHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// buildCandidates forms the next generation's table from the counters
// gathered by compressCount: every current symbol with a nonzero count is
// a self-retention candidate (boosted 8x if it's a trivial single byte, so
// rare multi-byte symbols aren't starved out before they get a chance),
// every counted pair becomes a merge candidate (truncated to 8 bytes,
// duplicates summing their gain), and the top <=maxSymbols candidates by
// gain become the new table, added highest gain first.
func buildCandidates(t *Table, c *counters, frac int) {
	candidates := make(map[[2]uint64]qsym)

	for code := uint32(0); code < codeBase+uint32(t.nSymbols); code++ {
		count := c.nextSingle(&code)
		if count == 0 {
			continue
		}
		sym := t.symbols[code]
		weight := uint64(count)
		if sym.length() == 1 {
			weight *= singleByteBoost
		}
		key := [2]uint64{sym.val, uint64(sym.length())}
		gain := uint32(weight) * uint32(sym.length())
		if existing, ok := candidates[key]; ok {
			gain += existing.gain
		}
		candidates[key] = qsym{symbol: sym, gain: gain}

		if sym.length() == 8 || frac >= 128 {
			continue
		}
		for code2 := uint32(0); code2 < codeBase+uint32(t.nSymbols); code2++ {
			count2 := c.nextPair(code, &code2)
			if count2 == 0 {
				continue
			}
			merged := concatSymbol(sym, t.symbols[code2])
			key := [2]uint64{merged.val, uint64(merged.length())}
			gain := uint32(count2) * uint32(merged.length())
			if existing, ok := candidates[key]; ok {
				gain += existing.gain
			}
			candidates[key] = qsym{symbol: merged, gain: gain}
		}
	}

	h := make(qsymHeap, 0, maxSymbols+1)
	heap.Init(&h)
	for _, candidate := range candidates {
		if len(h) < maxSymbols {
			heap.Push(&h, candidate)
		} else if h[0].ranksBelow(candidate) {
			heap.Pop(&h)
			heap.Push(&h, candidate)
		}
	}

	list := make([]qsym, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		list[i] = heap.Pop(&h).(qsym)
	}

	t.clearSymbols()
	for i := 0; i < len(list) && int(t.nSymbols) < maxSymbols; i++ {
		t.addSymbol(list[i].symbol)
	}
}

// makeSample assembles a deterministic pseudo-random ~16KB subset of
// inputs, drawn as 512-byte lines, so training cost stays bounded
// regardless of how much data the caller passes in. Inputs smaller than
// the target are used in full.
func makeSample(inputs [][]byte) [][]byte {
	var total int
	for i := range inputs {
		total += len(inputs[i])
	}
	if total < sampleTarget {
		return inputs
	}

	buf := make([]byte, sampleMaxSz)
	sample := make([][]byte, 0, len(inputs))
	pos := 0

	rng := sampleMix(rngSeed)
	for pos < sampleMaxSz {
		rng = sampleMix(rng)
		idx := int(rng % uint64(len(inputs)))
		for len(inputs[idx]) == 0 {
			idx = (idx + 1) % len(inputs)
		}

		numChunks := (len(inputs[idx]) + sampleLine - 1) / sampleLine
		rng = sampleMix(rng)
		off := sampleLine * int(rng%uint64(numChunks))

		n := min(len(inputs[idx])-off, sampleLine)
		if pos+n > sampleMaxSz {
			break
		}
		copy(buf[pos:pos+n], inputs[idx][off:off+n])
		sample = append(sample, buf[pos:pos+n:pos+n])
		pos += n

		if pos >= sampleTarget {
			break
		}
	}
	return sample
}
