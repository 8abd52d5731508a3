// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// +build ignore

// Benchmark tool to compare huffzip's ratio and throughput against
// general-purpose compressors over the same input file.
//
// Example usage:
//	$ go run main.go -file testdata/skewed.bin
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"

	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/xz"

	dstrconv "github.com/dsnet/golib/strconv"

	"github.com/dsnet/huffzip/huffzip"
	"github.com/dsnet/huffzip/internal/tool/bench"
)

var file = flag.String("file", "", "input file to benchmark (required)")

func main() {
	log.SetFlags(0)
	flag.Parse()
	if *file == "" {
		log.Fatal("bench: -file is required")
	}

	input, err := ioutil.ReadFile(*file)
	if err != nil {
		log.Fatal(err)
	}

	if err := bench.CheckCRCCombine(input); err != nil {
		log.Fatal(err)
	}

	codecs := []bench.Codec{
		{
			Name: "huffzip",
			Enc:  func(w io.Writer) io.WriteCloser { return &huffzipWriter{w: w} },
			Dec:  func(r io.Reader) io.ReadCloser { return huffzipReader(r) },
		},
		{
			Name: "flate",
			Enc: func(w io.Writer) io.WriteCloser {
				fw, err := flate.NewWriter(w, flate.DefaultCompression)
				if err != nil {
					panic(err)
				}
				return fw
			},
			Dec: func(r io.Reader) io.ReadCloser { return flate.NewReader(r) },
		},
		{
			Name: "xz",
			Enc: func(w io.Writer) io.WriteCloser {
				xw, err := xz.NewWriter(w)
				if err != nil {
					panic(err)
				}
				return xw
			},
			Dec: func(r io.Reader) io.ReadCloser {
				xr, err := xz.NewReader(r)
				if err != nil {
					panic(err)
				}
				return ioutil.NopCloser(xr)
			},
		},
	}

	fmt.Printf("input: %s (%s)\n\n", *file, formatSize(int64(len(input))))
	fmt.Printf("%-10s%12s%12s%12s%14s\n", "codec", "ratio", "comp size", "enc MB/s", "dec MB/s")
	for _, c := range codecs {
		res, err := bench.Run(c, input)
		if err != nil {
			log.Fatalf("%s: %v", c.Name, err)
		}
		fmt.Printf("%-10s%12.2f%12s%12.2f%14.2f\n",
			res.Name, res.Ratio(), formatSize(res.CompSize), res.EncRateMBps, res.DecRateMBps)
	}
}

func formatSize(n int64) string {
	return dstrconv.FormatPrefix(float64(n), dstrconv.Base1024, 2)
}

// huffzipWriter buffers everything written to it and compresses it as one
// shot on Close, since huffzip.Compress operates on a whole io.Reader rather
// than a streaming io.Writer.
type huffzipWriter struct {
	w   io.Writer
	buf []byte
}

func (hw *huffzipWriter) Write(p []byte) (int, error) {
	hw.buf = append(hw.buf, p...)
	return len(p), nil
}

func (hw *huffzipWriter) Close() error {
	return huffzip.Compress(bytes.NewReader(hw.buf), hw.w)
}

// huffzipReader runs Decompress in the background and streams its output
// through a pipe, for the same reason huffzipWriter buffers: the package
// works on a whole io.Reader/io.Writer pair rather than incremental chunks.
func huffzipReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(huffzip.Decompress(r, pw))
	}()
	return pr
}
