// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package huffman builds and walks static (non-canonical) Huffman trees over
// a byte alphabet. A tree is persisted verbatim as a flat array of nodes
// rather than reconstructed from code lengths, so encoder and decoder always
// agree on shape without a canonicalization pass.
package huffman

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "huffman: " + string(e) }

var (
	// ErrEmptyInput is returned by Tabulate when given no bytes: an empty
	// alphabet has no tree to construct, so there is nothing to compress.
	ErrEmptyInput error = Error("input is empty")

	// ErrEmptyAlphabet is returned by BuildTree when given no tokens; a
	// Huffman tree needs at least one symbol to encode anything. In
	// practice Tabulate's ErrEmptyInput check already guards against this
	// by the time BuildTree runs.
	ErrEmptyAlphabet error = Error("alphabet is empty")
)

// noChild marks an absent child or parent link in a Node.
const noChild = -1

// Token records how many times Symbol occurred in the source data.
type Token struct {
	Symbol byte
	Weight uint64
}

// Tabulate counts the occurrences of each byte value in data and returns one
// Token per distinct value seen, ordered by ascending Symbol. It fails with
// ErrEmptyInput if data has no bytes, since there is then no alphabet to
// build a tree over.
func Tabulate(data []byte) ([]Token, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	var counts [256]uint64
	for _, b := range data {
		counts[b]++
	}
	toks := make([]Token, 0, 256)
	for i, c := range counts {
		if c > 0 {
			toks = append(toks, Token{Symbol: byte(i), Weight: c})
		}
	}
	return toks, nil
}
