// Package fsst implements FSST (Fast Static Symbol Table), a compression
// codec for short, dictionary-like byte strings: log lines, columnar string
// values, comments, URLs. It learns a table of up to 255 variable-length
// symbols (1-8 bytes each) from a sample of representative input, then
// encodes arbitrary strings by replacing matched symbols with single-byte
// codes. One code value, 0xFF, is reserved: it prefixes a single literal
// byte that the table could not match.
//
// # Overview
//
// A Table is produced once by Train and is then immutable: it can be shared
// across goroutines and reused by any number of Encode/Decode calls without
// locking. Training is the expensive step; encoding and decoding are not.
//
// # When to use FSST
//
//   - Structured or repetitive short strings: JSON fragments, CSV fields,
//     log lines, URLs, timestamps.
//   - Workloads that need random access to individual compressed strings
//     rather than a single contiguous stream (FSST never needs more than
//     one string's worth of context to decode).
//   - Workloads where decompression speed dominates: the decoder is a
//     table-indexed memory copy of at most 8 bytes per code.
//
// # When not to use FSST
//
//   - Binary or already-compressed data.
//   - Data without shared substrings across records (nothing to learn).
//   - One-off strings, where the cost of training exceeds any savings.
//
// Typical compression ratios are 1.5x-3x on structured text, trading a
// lower ratio than gzip/zstd for much faster, allocation-light decoding and
// a small (a few hundred bytes to a few KB) serialized table. See
// BenchmarkCompareZstd for a measured comparison rather than an assertion.
//
// # Basic usage
//
//	samples := [][]byte{
//	    []byte(`{"id":123,"name":"Alice"}`),
//	    []byte(`{"id":456,"name":"Bob"}`),
//	}
//	table := fsst.Train(samples)
//
//	code := table.Encode(nil, []byte(`{"id":789,"name":"Carol"}`))
//	plain, err := table.Decode(nil, code)
//
//	dump := table.Dump()
//	restored, err := fsst.Load(dump)
//
// # Non-goals
//
// Streaming compression across string boundaries, tables larger than 255
// symbols, Unicode-aware matching, online retraining, and any form of CLI,
// logging, or configuration surface at this layer: those are a caller's
// concern, not the codec's.
package fsst
