package fsst

import (
	"encoding/binary"
	"fmt"
)

// Decode expands a code stream produced by Encode (with this same Table,
// or an equivalent one loaded from the same Dump) back into its original
// bytes.
//
// buf, if non-nil, is reused (its length reset to 0, capacity kept) for
// the output; otherwise a new buffer is allocated. Decode reports
// ErrMalformedCodeStream, wrapped with the byte offset into src at which
// the problem was found, if src ends with a bare escape byte or contains a
// code with no assigned symbol.
func (t *Table) Decode(buf, src []byte) ([]byte, error) {
	if !t.decReady {
		for code := uint16(0); code < t.nSymbols; code++ {
			sym := t.symbols[code]
			t.decLen[code] = byte(sym.length())
			t.decSymbol[code] = sym.val
		}
		t.decReady = true
	}

	if buf == nil {
		buf = make([]byte, 0, len(src)*4+8)
	} else {
		buf = buf[:0]
	}

	bufPos := 0
	srcPos := 0
	bufCap := cap(buf)
	if bufCap > 0 {
		buf = buf[:bufCap]
	}

	for srcPos < len(src) {
		code := src[srcPos]

		if code == escapeCode {
			if srcPos+1 >= len(src) {
				return nil, fmt.Errorf("fsst: code stream ends with a bare escape at offset %d: %w", srcPos, ErrMalformedCodeStream)
			}
			if bufPos >= bufCap {
				buf, bufCap = growDecodeBuf(buf, bufCap, bufPos, bufPos+1)
			}
			buf[bufPos] = src[srcPos+1]
			bufPos++
			srcPos += 2
			continue
		}

		length := int(t.decLen[code])
		if length == 0 {
			return nil, fmt.Errorf("fsst: code %d at offset %d has no assigned symbol: %w", code, srcPos, ErrMalformedCodeStream)
		}
		value := t.decSymbol[code]

		if bufPos+length > bufCap {
			buf, bufCap = growDecodeBuf(buf, bufCap, bufPos, bufPos+length)
		}

		switch length {
		case 1:
			buf[bufPos] = byte(value)
		case 2:
			binary.LittleEndian.PutUint16(buf[bufPos:], uint16(value))
		case 3:
			binary.LittleEndian.PutUint16(buf[bufPos:], uint16(value))
			buf[bufPos+2] = byte(value >> 16)
		case 4:
			binary.LittleEndian.PutUint32(buf[bufPos:], uint32(value))
		case 5:
			binary.LittleEndian.PutUint32(buf[bufPos:], uint32(value))
			buf[bufPos+4] = byte(value >> 32)
		case 6:
			binary.LittleEndian.PutUint32(buf[bufPos:], uint32(value))
			binary.LittleEndian.PutUint16(buf[bufPos+4:], uint16(value>>32))
		case 7:
			binary.LittleEndian.PutUint32(buf[bufPos:], uint32(value))
			binary.LittleEndian.PutUint16(buf[bufPos+4:], uint16(value>>32))
			buf[bufPos+6] = byte(value >> 48)
		case 8:
			binary.LittleEndian.PutUint64(buf[bufPos:], value)
		}
		bufPos += length
		srcPos++
	}
	return buf[:bufPos], nil
}

func growDecodeBuf(buf []byte, bufCap, used, need int) ([]byte, int) {
	newCap := max(bufCap*2, need)
	newBuf := make([]byte, newCap)
	copy(newBuf, buf[:used])
	return newBuf, newCap
}

// DecodeAll expands src and returns a freshly allocated byte slice.
func (t *Table) DecodeAll(src []byte) ([]byte, error) {
	return t.Decode(nil, src)
}
