package fsst

// Encode compresses input into a code stream, greedily choosing the
// longest matching symbol at every position and falling back to an escape
// byte (0xFF) followed by the literal byte wherever the table has no
// match. The result is deterministic: the same table always encodes the
// same input to the same bytes. Input is processed in 511-byte chunks and
// a match never extends past the end of its chunk.
//
// buf, if non-nil and large enough, is reused for the output; otherwise a
// new buffer is allocated. The returned slice may alias buf or may not.
// Output length never exceeds 2*len(input).
func (t *Table) Encode(buf, input []byte) []byte {
	if t.encBuf == nil {
		if !t.accelReady {
			t.rebuildIndices()
		}
		t.noSuffixOpt, t.avoidBranch = chooseVariant(t)
		t.encBuf = make([]byte, chunkSize+chunkPadding)
	}

	if buf == nil || cap(buf) < 2*len(input)+outputPadding {
		buf = make([]byte, 2*len(input)+outputPadding)
	} else {
		buf = buf[:cap(buf)]
	}

	outPos := 0
	chunkBuf := t.encBuf
	byteLim := uint8(t.nSymbols) - uint8(t.lenHisto[0])

	for start := 0; start < len(input); {
		n := min(len(input)-start, chunkSize)
		copy(chunkBuf[:n], input[start:start+n])
		chunkBuf[n] = 0 // zero terminator + padding, so unaligned loads near the end are safe
		outPos = t.encodeChunk(buf, outPos, chunkBuf, n, byteLim)
		start += n
	}
	return buf[:outPos]
}

// EncodeAll compresses input and returns a freshly allocated code stream.
func (t *Table) EncodeAll(input []byte) []byte {
	return t.Encode(nil, input)
}

// encodeChunk compresses buf[:end] (plus its trailing zero/padding bytes),
// appending codes to dst starting at dstPos, and returns the new position.
//
// Match order (fastest first):
//  1. optional branchless 2-byte unique-prefix path (noSuffixOpt)
//  2. 3-8 byte hash-table match
//  3. 2-byte short-code path
//  4. 1-byte match or escape
func (t *Table) encodeChunk(dst []byte, dstPos int, buf []byte, end int, byteLim uint8) int {
	position := 0

	for position < end {
		word := loadLE64(buf[position:])
		code := t.shortCodes[uint16(word&mask16)]
		if position+1 == end {
			// last byte of the chunk: a 2-byte code would cover the terminator
			code = t.byteCodes[uint8(word)]
		}

		if t.noSuffixOpt && uint8(code) < uint8(t.suffixLim) {
			dst[dstPos] = uint8(code)
			dstPos++
			position += 2
			continue
		}

		prefix24 := word & mask24
		idx := prefixHash(prefix24) & (hashTabSize - 1)
		hashSymbol := t.hashTab[idx]
		escapeByte := uint8(word)

		symbolMask := ^uint64(0) >> hashSymbol.ignoredBits()
		maskedWord := word & symbolMask

		switch {
		case hashSymbol.icl < iclFree && hashSymbol.val == maskedWord && position+int(hashSymbol.length()) <= end:
			dst[dstPos] = uint8(hashSymbol.code())
			dstPos++
			position += int(hashSymbol.length())
		case t.avoidBranch:
			outputCode := uint8(code)
			dst[dstPos] = outputCode
			dstPos++
			if (code & codeBase) != 0 {
				dst[dstPos] = escapeByte
				dstPos++
			}
			position += int(code >> lenBits)
		case uint8(code) < byteLim:
			dst[dstPos] = uint8(code)
			dstPos++
			position += 2
		default:
			outputCode := uint8(code)
			dst[dstPos] = outputCode
			dstPos++
			if (code & codeBase) != 0 {
				dst[dstPos] = escapeByte
				dstPos++
			}
			position++
		}
	}
	return dstPos
}
