// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package format reads and writes the front of a huffzip container: a text
// banner identifying the format version, followed by the persisted Huffman
// tree and frequency table. The bit-count field and the packed payload that
// follow the header are written and read by package huffzip.
package format

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/dsnet/huffzip/huffman"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "format: " + string(e) }

var (
	// ErrUnknownMagic is returned when a stream's banner line doesn't match
	// any known format version.
	ErrUnknownMagic error = Error("unrecognized magic banner")

	// ErrTooManySymbols is returned if a frequency table names more than
	// 256 distinct byte values — not achievable honestly, but guarded
	// against a corrupt or adversarial stream.
	ErrTooManySymbols error = Error("more than 256 distinct symbols")

	// ErrWeightOverflow is returned by WriteHeader for a V2 header when a
	// token's weight doesn't fit the portable format's 32-bit weight field.
	// Use the legacy (v1) format for inputs this large.
	ErrWeightOverflow error = Error("frequency too large for the portable format")

	// ErrCorruptTree is returned when a persisted tree's node count doesn't
	// match 2n-1 (or 1) for the recorded alphabet size n, when that
	// alphabet size is zero or negative, or when node links are internally
	// inconsistent.
	ErrCorruptTree error = Error("corrupt tree: node count doesn't match alphabet size")
)

// Version identifies which on-disk layout a Header uses.
type Version int

const (
	// V1 is the legacy, host-native-width layout: every integer field
	// (tree links and frequencies) is a little-endian signed/unsigned
	// 64-bit value, matching the original tool as run on a little-endian
	// 64-bit host — overwhelmingly the common case, and the reason this
	// package doesn't attempt to detect or emulate other native widths.
	V1 Version = iota
	// V2 is the portable layout: every integer field is a fixed
	// little-endian 32-bit value, regardless of host architecture.
	V2
)

const (
	magicV1 = "huffman zipped file version 1\n"
	magicV2 = "huffman zipped file version 2\n"
)

// Header is the decoded banner, tree, and frequency table read from the
// front of a huffzip stream, everything that precedes the packed payload.
type Header struct {
	Version Version
	Nodes   []huffman.Node
	Tokens  []huffman.Token
}

// WriteHeader writes hdr's banner, tree, and frequency table to w.
func WriteHeader(w io.Writer, hdr Header) error {
	if len(hdr.Tokens) > 256 {
		return ErrTooManySymbols
	}
	if _, err := io.WriteString(w, magicString(hdr.Version)); err != nil {
		return err
	}
	switch hdr.Version {
	case V1:
		return writeBodyV1(w, hdr.Nodes, hdr.Tokens)
	case V2:
		return writeBodyV2(w, hdr.Nodes, hdr.Tokens)
	default:
		return Error("unknown format version")
	}
}

func magicString(v Version) string {
	if v == V2 {
		return magicV2
	}
	return magicV1
}

// ReadHeader reads a banner, tree, and frequency table from r, determining
// the format version from the banner itself.
func ReadHeader(r io.Reader) (Header, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	line, err := br.ReadString('\n')
	if err != nil {
		return Header{}, err
	}

	var hdr Header
	switch line {
	case magicV1:
		hdr.Version = V1
		hdr.Nodes, hdr.Tokens, err = readBodyV1(br)
	case magicV2:
		hdr.Version = V2
		hdr.Nodes, hdr.Tokens, err = readBodyV2(br)
	default:
		return Header{}, ErrUnknownMagic
	}
	if err != nil {
		return Header{}, err
	}
	if err := validateTree(hdr.Nodes, len(hdr.Tokens)); err != nil {
		return Header{}, err
	}
	return hdr, nil
}

// validateTree reports whether nodes has the shape a tree over n tokens must
// have: the expected node count, every leaf within the first n slots, every
// internal node with both children present and pointing back to it, and (for
// n>1) a rootless final node.
func validateTree(nodes []huffman.Node, n int) error {
	if len(nodes) != treeSize(n) {
		return ErrCorruptTree
	}
	if n <= 1 {
		return nil
	}
	root := len(nodes) - 1
	if nodes[root].Parent != -1 {
		return ErrCorruptTree
	}
	for i, nd := range nodes {
		if nd.IsLeaf() {
			if i >= n {
				return ErrCorruptTree
			}
			continue
		}
		if nd.Left < 0 || int(nd.Left) >= len(nodes) || nd.Right < 0 || int(nd.Right) >= len(nodes) {
			return ErrCorruptTree
		}
		if nodes[nd.Left].Parent != int32(i) || nodes[nd.Right].Parent != int32(i) {
			return ErrCorruptTree
		}
	}
	return nil
}

func treeSize(n int) int {
	if n <= 1 {
		return n
	}
	return 2*n - 1
}

func writeBodyV1(w io.Writer, nodes []huffman.Node, tokens []huffman.Token) error {
	if err := binary.Write(w, binary.LittleEndian, int64(len(tokens))); err != nil {
		return err
	}
	for _, nd := range nodes {
		fields := [3]int64{int64(nd.Left), int64(nd.Right), int64(nd.Parent)}
		if err := binary.Write(w, binary.LittleEndian, fields); err != nil {
			return err
		}
	}
	for _, t := range tokens {
		if err := binary.Write(w, binary.LittleEndian, t.Symbol); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int64(t.Weight)); err != nil {
			return err
		}
	}
	return nil
}

func readBodyV1(r io.Reader) ([]huffman.Node, []huffman.Token, error) {
	var n int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil, err
	}
	if n <= 0 {
		return nil, nil, ErrCorruptTree
	}
	if n > 256 {
		return nil, nil, ErrTooManySymbols
	}

	nodes := make([]huffman.Node, treeSize(int(n)))
	for i := range nodes {
		var fields [3]int64
		if err := binary.Read(r, binary.LittleEndian, &fields); err != nil {
			return nil, nil, err
		}
		nodes[i] = huffman.Node{Left: int32(fields[0]), Right: int32(fields[1]), Parent: int32(fields[2])}
	}

	tokens := make([]huffman.Token, n)
	for i := range tokens {
		var sym byte
		var weight int64
		if err := binary.Read(r, binary.LittleEndian, &sym); err != nil {
			return nil, nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
			return nil, nil, err
		}
		tokens[i] = huffman.Token{Symbol: sym, Weight: uint64(weight)}
	}
	return nodes, tokens, nil
}

func writeBodyV2(w io.Writer, nodes []huffman.Node, tokens []huffman.Token) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(tokens))); err != nil {
		return err
	}
	for _, nd := range nodes {
		fields := [3]int32{nd.Left, nd.Right, nd.Parent}
		if err := binary.Write(w, binary.LittleEndian, fields); err != nil {
			return err
		}
	}
	for _, t := range tokens {
		if t.Weight > 1<<32-1 {
			return ErrWeightOverflow
		}
		if err := binary.Write(w, binary.LittleEndian, t.Symbol); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(t.Weight)); err != nil {
			return err
		}
	}
	return nil
}

func readBodyV2(r io.Reader) ([]huffman.Node, []huffman.Token, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return nil, nil, ErrCorruptTree
	}
	if n > 256 {
		return nil, nil, ErrTooManySymbols
	}

	nodes := make([]huffman.Node, treeSize(int(n)))
	for i := range nodes {
		var fields [3]int32
		if err := binary.Read(r, binary.LittleEndian, &fields); err != nil {
			return nil, nil, err
		}
		nodes[i] = huffman.Node{Left: fields[0], Right: fields[1], Parent: fields[2]}
	}

	tokens := make([]huffman.Token, n)
	for i := range tokens {
		var sym byte
		var weight uint32
		if err := binary.Read(r, binary.LittleEndian, &sym); err != nil {
			return nil, nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
			return nil, nil, err
		}
		tokens[i] = huffman.Token{Symbol: sym, Weight: uint64(weight)}
	}
	return nodes, tokens, nil
}
