// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares huffzip's ratio and speed against general-purpose
// compressors over the same input files.
package bench

import (
	"bytes"
	"hash/crc32"
	"io"
	"io/ioutil"
	"runtime"
	"testing"

	"github.com/dsnet/golib/hashutil"
)

// Encoder wraps up w as a compressing writer for one codec.
type Encoder func(w io.Writer) io.WriteCloser

// Decoder wraps up r as a decompressing reader for one codec.
type Decoder func(r io.Reader) io.ReadCloser

// Codec names a registered (Encoder, Decoder) pair.
type Codec struct {
	Name string
	Enc  Encoder
	Dec  Decoder
}

// Result holds one codec's measurements against one input file.
type Result struct {
	Name        string
	RawSize     int64
	CompSize    int64
	EncRateMBps float64
	DecRateMBps float64
}

// Ratio returns the compression ratio (raw/compressed); larger is better.
func (r Result) Ratio() float64 {
	if r.CompSize == 0 {
		return 0
	}
	return float64(r.RawSize) / float64(r.CompSize)
}

// Run compresses and decompresses input with codec, verifies the round
// trip, and benchmarks both directions.
func Run(codec Codec, input []byte) (Result, error) {
	var buf bytes.Buffer
	wr := codec.Enc(&buf)
	if _, err := wr.Write(input); err != nil {
		return Result{}, err
	}
	if err := wr.Close(); err != nil {
		return Result{}, err
	}
	compressed := append([]byte(nil), buf.Bytes()...)

	rd := codec.Dec(bytes.NewReader(compressed))
	got, err := ioutil.ReadAll(rd)
	if err != nil {
		return Result{}, err
	}
	if err := rd.Close(); err != nil {
		return Result{}, err
	}
	if !bytes.Equal(got, input) {
		return Result{}, Error("round trip mismatch for codec " + codec.Name)
	}

	res := Result{
		Name:        codec.Name,
		RawSize:     int64(len(input)),
		CompSize:    int64(len(compressed)),
		EncRateMBps: benchEncode(codec.Enc, input),
		DecRateMBps: benchDecode(codec.Dec, compressed, len(input)),
	}
	return res, nil
}

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "bench: " + string(e) }

func benchEncode(enc Encoder, input []byte) float64 {
	result := testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			wr := enc(ioutil.Discard)
			if _, err := wr.Write(input); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err := wr.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(len(input)))
		}
	})
	return ratePerSec(result)
}

func benchDecode(dec Decoder, compressed []byte, rawSize int) float64 {
	result := testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			rd := dec(bytes.NewReader(compressed))
			n, err := io.Copy(ioutil.Discard, rd)
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err := rd.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(n)
		}
	})
	return ratePerSec(result)
}

func ratePerSec(r testing.BenchmarkResult) float64 {
	if r.N == 0 || r.T == 0 {
		return 0
	}
	secs := r.T.Seconds() / float64(r.N)
	return (float64(r.Bytes) / (1 << 20)) / secs
}

// CheckCRCCombine is a self-check run once before benchmarking: it splits
// input into two halves, CRCs each half separately, combines them with
// hashutil.CombineCRC32, and confirms the result matches the CRC of the
// whole input. A working combine is what would let a future chunked/
// parallel encoder checksum its chunks independently.
func CheckCRCCombine(input []byte) error {
	mid := len(input) / 2
	h1, h2 := input[:mid], input[mid:]

	crcWhole := crc32.ChecksumIEEE(input)
	crc1 := crc32.ChecksumIEEE(h1)
	crc2 := crc32.ChecksumIEEE(h2)
	combined := hashutil.CombineCRC32(crc32.IEEE, crc1, crc2, int64(len(h2)))

	if combined != crcWhole {
		return Error("CRC combine self-check failed")
	}
	return nil
}
