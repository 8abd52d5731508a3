// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// +build ignore

// Generates skewed.bin, a test file whose byte values follow a Zipf
// distribution. Static Huffman coding benefits from skewed byte frequencies
// (a handful of values dominate, so they earn very short codes) the same way
// LZ77-based formats benefit from long-range repetition, so this replaces
// the repeat-heavy generator formats like DEFLATE are tested against.
package main

import (
	"io/ioutil"
	"math/rand"
)

const (
	name = "skewed.bin"
	size = 1 << 18
)

func main() {
	r := rand.New(rand.NewSource(0))
	// s>1 skews sharply toward the low end of [0,255]; v shifts where that
	// low end sits so byte 0 isn't the only one ever chosen.
	z := rand.NewZipf(r, 1.5, 3, 255)

	b := make([]byte, size)
	for i := range b {
		b[i] = byte(z.Uint64())
	}
	if err := ioutil.WriteFile(name, b, 0664); err != nil {
		panic(err)
	}
}
