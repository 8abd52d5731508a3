// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string into a most-significant-bit
// first byte stream, the packing order used throughout this module.
//
// The format consists of tokens separated by whitespace; a '#' begins a
// comment that runs to the end of its line. A token of the form "[01]{1,64}"
// is a literal bit-string, its left-most bit written to the stream first.
// A token of the form "D<n>:<v>" or "H<n>:<v>" is an n-bit unsigned integer
// given in decimal or hexadecimal, written most-significant-bit first. A
// token of the form "X:<hex>" is a run of literal bytes, which may only
// appear while the stream is byte-aligned. Any token may be followed by a
// "*<n>" quantifier to repeat it n times. If the resulting stream does not
// end on a byte boundary, it is padded with zero bits.
//
// Example:
//	1 0011 D11:255 X:0011       # four groups combine into one byte-aligned stream
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		toks = append(toks, strings.Fields(s)...)
	}

	var bw bitBuffer
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			tt, tn := t[:i], t[i+1:]
			n, err := strconv.Atoi(tn)
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = tt, n
		}

		switch {
		case reBin.MatchString(t):
			var v uint64
			for _, b := range t {
				v <<= 1
				v |= uint64(b - '0')
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			tb, tn, tv := t[0], t[1:i], t[i+1:]

			base := 10
			if tb == 'H' {
				base = 16
			}
			n, err1 := strconv.Atoi(tn)
			v, err2 := strconv.ParseUint(tv, base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits(v, uint(n))
			}
		case reRaw.MatchString(t):
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			b = bytes.Repeat(b, rep)
			if err := bw.WriteRaw(b); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}
	return bw.Bytes(), nil
}

// bitBuffer is a minimal most-significant-bit-first byte accumulator, used
// here to avoid depending on the package under test.
type bitBuffer struct {
	b []byte
	n int // valid bits in the last byte of b, in [0, 8)
}

func (b *bitBuffer) WriteRaw(buf []byte) error {
	if b.n != 0 {
		return errors.New("testutil: raw bytes token requires byte alignment")
	}
	b.b = append(b.b, buf...)
	return nil
}

func (b *bitBuffer) WriteBits(v uint64, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		if b.n == 0 {
			b.b = append(b.b, 0x00)
		}
		bit := byte(v>>uint(i)) & 1
		b.b[len(b.b)-1] |= bit << uint(7-b.n)
		b.n = (b.n + 1) % 8
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
