package fsst

import "errors"

// Sentinel errors returned by Load and Decode. Callers should compare with
// errors.Is, since both are typically wrapped with positional context.
var (
	// ErrMalformedDump is returned by Load when the dump bytes violate the
	// grammar in Dump's doc comment: truncated data, a symbol length outside
	// 1..8, or more than 255 symbols declared.
	ErrMalformedDump = errors.New("fsst: malformed table dump")

	// ErrDuplicateSymbol is returned by Load when two entries in the dump
	// have identical payloads. Encoding determinism assumes every symbol in
	// a table is distinct, so duplicates are rejected rather than silently
	// collapsed.
	ErrDuplicateSymbol = errors.New("fsst: duplicate symbol in dump")

	// ErrMalformedCodeStream is returned by Decode when a code stream ends
	// with a bare escape byte, or a code indexes a table slot with no
	// assigned symbol.
	ErrMalformedCodeStream = errors.New("fsst: malformed code stream")
)
