// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package huffzip implements a static Huffman byte compressor: it tabulates
// the frequency of every byte value in the input, builds a Huffman tree over
// the result, and packs the input as a sequence of prefix codes preceded by
// that tree so a decoder can walk it back to the original bytes.
package huffzip

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"runtime"

	"github.com/dsnet/huffzip/bitio"
	"github.com/dsnet/huffzip/format"
	"github.com/dsnet/huffzip/huffman"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "huffzip: " + string(e) }

var (
	// ErrCorrupt is returned when the packed payload walks off the
	// persisted tree (a bit sequence with no matching child at some node),
	// when the recorded bit count is negative, or when a single-symbol
	// stream's repeat count doesn't fit in an int.
	ErrCorrupt error = Error("corrupt payload")

	// ErrTrailingPartialCode is returned when the payload's recorded bit
	// count is exhausted mid-code: decoding stopped part-way down the tree
	// instead of back at the root.
	ErrTrailingPartialCode error = Error("payload ends mid-code")
)

// errRecover converts a panic carrying an error (or re-panics anything else)
// into *err, so a multi-step operation can abort on its first fault by
// panicking instead of threading an error check through every step.
func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

// Compress reads all of r, and writes a portable (format.V2) huffzip stream
// representing it to w.
func Compress(r io.Reader, w io.Writer) error {
	return CompressVersion(r, w, format.V2)
}

// CompressVersion is like Compress but lets the caller pick the on-disk
// integer width: format.V1 for byte-for-byte compatibility with hosts that
// expect the legacy native-width layout, format.V2 for the portable one.
func CompressVersion(r io.Reader, w io.Writer, version format.Version) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}

	tokens, err := huffman.Tabulate(data)
	if err != nil {
		return err
	}
	nodes, err := huffman.BuildTree(tokens)
	if err != nil {
		return err
	}
	if err := format.WriteHeader(w, format.Header{Version: version, Nodes: nodes, Tokens: tokens}); err != nil {
		return err
	}

	// The bit count that precedes the payload can only be known once the
	// payload has been produced, and w need not support seeking back to
	// patch it in place (unlike the original tool's file-backed output).
	// So the payload is built in memory first, and the header's bit-count
	// field and the payload are both written to w only afterward.
	var payload bytes.Buffer
	var bitCount int64
	if len(tokens) > 1 {
		codes := huffman.BuildCodes(nodes, tokens)
		bitCount, err = packPayload(&payload, data, codes)
		if err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, bitCount); err != nil {
		return err
	}
	_, err = w.Write(payload.Bytes())
	return err
}

// packPayload bit-packs every byte of data as its Code into w, returning the
// number of bits written. It panics on the first bitio write failure and
// recovers it into the named return, rather than checking an error at every
// byte of what can be a very long loop.
func packPayload(w io.Writer, data []byte, codes map[byte]huffman.Code) (bitCount int64, err error) {
	defer errRecover(&err)

	bw := bitio.NewWriter(w)
	for _, b := range data {
		c := codes[b]
		if err := bw.WriteFixed(int64(c.Bits), int(c.Len)); err != nil {
			panic(err)
		}
	}
	bitCount = bw.Position()
	if err := bw.Flush(); err != nil {
		panic(err)
	}
	return bitCount, nil
}

// Decompress reads a huffzip stream (either format version) from r and
// writes the original data to w.
func Decompress(r io.Reader, w io.Writer) error {
	// format.ReadHeader buffers ahead of the banner line it parses, so the
	// same *bufio.Reader must be reused for everything that follows or
	// whatever it already buffered past the header would be lost.
	br0 := bufio.NewReader(r)
	hdr, err := format.ReadHeader(br0)
	if err != nil {
		return err
	}

	var bitCount int64
	if err := binary.Read(br0, binary.LittleEndian, &bitCount); err != nil {
		return err
	}
	if bitCount < 0 {
		return ErrCorrupt
	}

	if len(hdr.Tokens) == 1 {
		tok := hdr.Tokens[0]
		count := int(tok.Weight)
		if count < 0 {
			return ErrCorrupt
		}
		_, err := w.Write(bytes.Repeat([]byte{tok.Symbol}, count))
		return err
	}

	return walkTree(bitio.NewReader(br0), w, hdr, bitCount)
}

// walkTree decodes bitCount payload bits against hdr's tree, writing each
// decoded byte to w as it's found. It panics on the first corrupt bit or
// write failure and recovers it into the named return, rather than checking
// an error at every step down what can be a very deep, very long walk.
func walkTree(br *bitio.Reader, w io.Writer, hdr format.Header, bitCount int64) (err error) {
	defer errRecover(&err)

	root := int32(len(hdr.Nodes) - 1)
	pos := root
	var read int64
	for ; read < bitCount; read++ {
		bit, err := br.ReadBool()
		if err != nil {
			panic(err)
		}

		nd := hdr.Nodes[pos]
		if bit {
			if nd.Right < 0 {
				panic(ErrCorrupt)
			}
			pos = nd.Right
		} else {
			if nd.Left < 0 {
				panic(ErrCorrupt)
			}
			pos = nd.Left
		}

		if hdr.Nodes[pos].IsLeaf() {
			if _, err := w.Write([]byte{hdr.Tokens[pos].Symbol}); err != nil {
				panic(err)
			}
			pos = root
		}
	}
	if pos != root {
		return ErrTrailingPartialCode
	}
	return nil
}
