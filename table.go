package fsst

// Table is a trained FSST symbol table: up to 255 symbols, each 1-8 bytes,
// addressable by a single code byte, plus the acceleration structures
// needed to find the longest matching symbol at an arbitrary input
// position in O(1). A Table is built by Train or Load and is immutable
// and safe for concurrent use by any number of Encode/Decode calls once
// returned.
type Table struct {
	// Lookup structures used while encoding.
	shortCodes [65536]uint16       // 2-byte prefix -> packed [length|code]; fast unique-prefix path
	byteCodes  [256]uint16         // 1-byte value -> packed [length|code]; single-byte/escape fallback
	symbols    [codeMax]symbol     // code -> symbol, indexed over the training-time wide code space
	hashTab    [hashTabSize]symbol // bucket (see prefixHash) -> 3-8 byte symbol

	nSymbols  uint16    // number of learned symbols (0..255)
	suffixLim uint16    // codes below this are 2-byte symbols with a unique 2-byte prefix
	lenHisto  [8]uint16 // count of learned symbols at length 1..8, indices 0..7

	// Encoder acceleration, built lazily on first Encode call.
	accelReady  bool
	noSuffixOpt bool
	avoidBranch bool
	encBuf      []byte

	// Decoder acceleration, built lazily on first Decode call.
	decLen    [255]byte
	decSymbol [255]uint64
	decReady  bool
}

// newTable returns an empty table: every byte escapes to itself (the
// pseudo-symbol convention used during training, see symbol.go), and every
// acceleration structure is in its default, symbol-free state.
func newTable() *Table {
	t := &Table{}
	for i := range 256 {
		t.symbols[i] = newSymbolFromByte(byte(i), packCodeLength(uint16(i), 1))
	}
	unused := newSymbolFromByte(0, codeMask)
	for i := 256; i < codeMax; i++ {
		t.symbols[i] = unused
	}
	empty := symbol{icl: iclFree}
	for i := range hashTabSize {
		t.hashTab[i] = empty
	}
	for i := range 256 {
		t.byteCodes[i] = packCodeLength(uint16(i), 1)
	}
	for i := range 65536 {
		t.shortCodes[i] = packCodeLength(uint16(i&mask8), 1)
	}
	return t
}

// clearSymbols removes all learned symbols and restores byteCodes/
// shortCodes/hashTab to their symbol-free defaults, ready for a new
// generation's candidate set.
func (t *Table) clearSymbols() {
	for i := range t.lenHisto {
		t.lenHisto[i] = 0
	}
	for i := codeBase; i < int(codeBase)+int(t.nSymbols); i++ {
		switch t.symbols[i].length() {
		case 1:
			b := t.symbols[i].first()
			t.byteCodes[b] = packCodeLength(uint16(b), 1)
		case 2:
			p := t.symbols[i].first2()
			t.shortCodes[p] = packCodeLength(uint16(p&mask8), 1)
		default:
			idx := t.symbols[i].bucketHash() & (hashTabSize - 1)
			t.hashTab[idx] = symbol{icl: iclFree}
		}
	}
	t.nSymbols = 0
}

// hashInsert installs a 3-8 byte symbol into its bucket. Returns false if
// the bucket is already occupied, in which case the caller drops the
// candidate rather than chaining (a single open slot per bucket is the
// whole point of keeping the hash table O(1)).
func (t *Table) hashInsert(sym symbol) bool {
	idx := sym.bucketHash() & (hashTabSize - 1)
	if t.hashTab[idx].icl < iclFree {
		return false
	}
	t.hashTab[idx].icl = sym.icl
	mask := ^uint64(0) >> sym.ignoredBits()
	t.hashTab[idx].val = sym.val & mask
	return true
}

// addSymbol assigns the next provisional code to sym and installs it into
// byteCodes, shortCodes, or hashTab depending on its length. Returns false
// if the table is full or the symbol's bucket is already taken.
func (t *Table) addSymbol(sym symbol) bool {
	if int(codeBase)+int(t.nSymbols) >= codeMax {
		return false
	}
	length := sym.length()
	sym.setCodeLen(uint32(codeBase)+uint32(t.nSymbols), length)
	switch length {
	case 1:
		t.byteCodes[sym.first()] = packCodeLength(codeBase+t.nSymbols, 1)
	case 2:
		t.shortCodes[sym.first2()] = packCodeLength(codeBase+t.nSymbols, 2)
	default:
		if !t.hashInsert(sym) {
			return false
		}
	}
	t.symbols[int(codeBase)+int(t.nSymbols)] = sym
	t.nSymbols++
	t.lenHisto[length-1]++
	return true
}

// findLongestSymbol returns the provisional code of the longest symbol
// matching sym, checked in the order: long-symbol bucket, learned 2-byte
// short code, single byte. This mirrors encodeChunk's lookup order but
// operates on the training-time wide code space (used only by the trainer).
func (t *Table) findLongestSymbol(sym symbol) uint16 {
	hashEntry := t.hashTab[sym.bucketHash()&(hashTabSize-1)]
	if hashEntry.icl <= sym.icl {
		mask := ^uint64(0) >> hashEntry.ignoredBits()
		if hashEntry.val == (sym.val & mask) {
			return hashEntry.code() & codeMask
		}
	}
	if sym.length() >= 2 {
		if code := t.shortCodes[sym.first2()] & codeMask; code >= codeBase {
			return code
		}
	}
	return t.byteCodes[sym.first()] & codeMask
}

// finalize reassigns provisional training codes to the final, compact
// code space the rest of this package (and the Dump format) expects:
// codes [0, nSymbols) in length-group order (2-8 byte symbols first,
// partitioned so 2-byte symbols with a unique prefix sort before 2-byte
// symbols that collide with a longer symbol's prefix, then 1-byte symbols
// last). Code 255 stays implicitly reserved for the escape.
//
// This ordering lets the encoder use the fastest available lookup for the
// common case: 1-byte symbols resolve straight from byteCodes, unique
// 2-byte symbols resolve straight from shortCodes, and only conflicting
// 2-byte or 3-8 byte symbols need the hash table.
func (t *Table) finalize() {
	newCode := make([]uint8, 256)
	var codeStart [8]uint8
	byteLim := uint8(t.nSymbols) - uint8(t.lenHisto[0])

	codeStart[0] = byteLim
	codeStart[1] = 0
	for i := 1; i < 7; i++ {
		codeStart[i+1] = codeStart[i] + uint8(t.lenHisto[i])
	}

	t.suffixLim = uint16(codeStart[1])
	t.symbols[newCode[0]] = t.symbols[256]

	conflictingTwoByteCode := int(codeStart[2])
	for i := range int(t.nSymbols) {
		sym := t.symbols[int(codeBase)+i]
		length := sym.length()

		if length == 2 {
			hasConflict := false
			first2 := sym.first2()
			for k := 0; k < int(t.nSymbols); k++ {
				if k == i {
					continue
				}
				other := t.symbols[int(codeBase)+k]
				if other.length() > 1 && other.first2() == first2 {
					hasConflict = true
					break
				}
			}
			if !hasConflict {
				newCode[i] = uint8(t.suffixLim)
				t.suffixLim++
			} else {
				conflictingTwoByteCode--
				newCode[i] = uint8(conflictingTwoByteCode)
			}
		} else {
			lengthIdx := int(length - 1)
			newCode[i] = codeStart[lengthIdx]
			codeStart[lengthIdx]++
		}

		sym.setCodeLen(uint32(newCode[i]), length)
		t.symbols[int(newCode[i])] = sym
	}
}

// rebuildIndices reconstructs byteCodes, shortCodes, and hashTab from the
// finalized symbols[0:nSymbols). It is the counterpart to finalize that
// Load uses, since Dump only carries the logical symbol list and not the
// derived acceleration structures. Idempotent: a no-op once accelReady.
func (t *Table) rebuildIndices() {
	if t.accelReady {
		return
	}
	for i := range 256 {
		t.byteCodes[i] = packCodeLength(codeMask, 1)
	}
	empty := symbol{icl: iclFree}
	for i := range hashTabSize {
		t.hashTab[i] = empty
	}

	for i := range int(t.nSymbols) {
		sym := t.symbols[i]
		if sym.length() == 1 {
			t.byteCodes[sym.first()] = packCodeLength(uint16(i), 1)
		}
	}

	for i := range 65536 {
		t.shortCodes[i] = t.byteCodes[i&mask8]
	}

	for i := range int(t.nSymbols) {
		sym := t.symbols[i]
		if sym.length() == 2 {
			t.shortCodes[sym.first2()] = packCodeLength(uint16(i), 2)
		}
	}

	for i := range int(t.nSymbols) {
		sym := t.symbols[i]
		if sym.length() >= 3 {
			_ = t.hashInsert(sym)
		}
	}

	t.accelReady = true
}

// Len reports the number of learned symbols in the table (0..255). It does
// not count the 256 implicit single-byte escape fallbacks.
func (t *Table) Len() int { return int(t.nSymbols) }

// Symbol returns the length-1..8 byte payload assigned to code, and
// reports whether code names a learned symbol (as opposed to the escape
// code or an unassigned slot).
func (t *Table) Symbol(code byte) (payload []byte, ok bool) {
	if code == escapeCode || int(code) >= int(t.nSymbols) {
		return nil, false
	}
	sym := t.symbols[code]
	length := sym.length()
	out := make([]byte, length)
	for i := range out {
		out[i] = byte(sym.val >> (8 * uint(i)))
	}
	return out, true
}

// chooseVariant picks the two encode-loop strategy flags based on the
// trained symbol length histogram. Thresholds are empirically tuned; they
// only affect speed, never correctness, since encodeChunk's slow path
// handles every case the fast paths skip.
func chooseVariant(t *Table) (noSuffixOpt, avoidBranch bool) {
	if 100*int(t.lenHisto[1]) > 65*int(t.nSymbols) && 100*int(t.suffixLim) > 95*int(t.lenHisto[1]) {
		return true, false
	}
	if (t.lenHisto[0] > 24 && t.lenHisto[0] < 92) &&
		(t.lenHisto[0] < 43 || t.lenHisto[6]+t.lenHisto[7] < 29) &&
		(t.lenHisto[0] < 72 || t.lenHisto[2] < 72) {
		avoidBranch = true
	}
	return
}
