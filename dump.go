package fsst

import "fmt"

// Dump serializes the table's logical symbol list, nothing else: the
// acceleration structures (byteCodes, shortCodes, hashTab) are not
// persisted; a loaded table rebuilds them on its first Encode. The format is a self-describing byte sequence:
//
//	[N : 1 byte]             number of symbols, 0..255
//	repeat N times:
//	  [len : 1 byte]         symbol length, 1..8
//	  [payload : len bytes]  symbol bytes
//
// The i-th entry (0-indexed) is assigned code i; code 0xFF is never a
// valid entry index and is implicitly the escape code.
func (t *Table) Dump() []byte {
	n := int(t.nSymbols)
	size := 1
	for i := 0; i < n; i++ {
		size += 1 + int(t.symbols[i].length())
	}
	out := make([]byte, 0, size)
	out = append(out, byte(n))
	for i := 0; i < n; i++ {
		sym := t.symbols[i]
		length := sym.length()
		out = append(out, byte(length))
		for b := uint32(0); b < length; b++ {
			out = append(out, byte(sym.val>>(8*b)))
		}
	}
	return out
}

// Load deserializes a table previously produced by Dump. It rejects
// truncated data, a declared symbol count above 255, any symbol length
// outside 1..8, and duplicate symbol payloads (ErrDuplicateSymbol),
// wrapping each with ErrMalformedDump except the duplicate case, which
// carries its own sentinel so callers can distinguish "impossible to
// parse" from "parsed, but violates the no-duplicates invariant".
//
// The returned Table rebuilds its acceleration structures on first use; it
// encodes identically to the table that produced data (see the
// round-trip-fidelity test in dump_test.go).
func Load(data []byte) (*Table, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("fsst: empty dump: %w", ErrMalformedDump)
	}
	n := int(data[0])
	if n > maxSymbols {
		return nil, fmt.Errorf("fsst: dump declares %d symbols, max %d: %w", n, maxSymbols, ErrMalformedDump)
	}

	t := newTable()
	seen := make(map[[2]uint64]struct{}, n)

	pos := 1
	for i := 0; i < n; i++ {
		if pos >= len(data) {
			return nil, fmt.Errorf("fsst: dump truncated before length byte of symbol %d: %w", i, ErrMalformedDump)
		}
		length := int(data[pos])
		pos++
		if length < 1 || length > 8 {
			return nil, fmt.Errorf("fsst: symbol %d has invalid length %d: %w", i, length, ErrMalformedDump)
		}
		if pos+length > len(data) {
			return nil, fmt.Errorf("fsst: dump truncated in payload of symbol %d: %w", i, ErrMalformedDump)
		}
		payload := data[pos : pos+length]
		pos += length

		var val uint64
		for b, c := range payload {
			val |= uint64(c) << (8 * b)
		}
		// Key on (val, length) together, mirroring the candidate key in
		// buildCandidates: val alone isn't enough, since e.g. "ab" (length
		// 2) and "ab\x00" (length 3) pack to the same numeric val but are
		// distinct symbols.
		key := [2]uint64{val, uint64(length)}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("fsst: symbol %d duplicates an earlier entry: %w", i, ErrDuplicateSymbol)
		}
		seen[key] = struct{}{}

		sym := symbol{val: val}
		sym.setCodeLen(uint32(i), uint32(length))
		t.symbols[i] = sym
	}

	t.nSymbols = uint16(n)
	for i := 0; i < n; i++ {
		t.lenHisto[t.symbols[i].length()-1]++
	}
	// suffixLim (which codes are 2-byte symbols with a conflict-free
	// prefix) is a finalize-time derived fact the dump format does not
	// persist; leaving it at its zero value only disables the
	// noSuffixOpt fast path in chooseVariant, it never affects
	// correctness, since encodeChunk's other paths handle every code.
	t.accelReady = false
	t.decReady = false
	return t, nil
}
