// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command hzip compresses and decompresses files using static Huffman
// coding.
//
// Usage:
//	hzip -c [-legacy] [-o output] input
//	hzip -d [-o output] input
//
// With neither input nor -o given, hzip reads from stdin and writes to
// stdout.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/dsnet/huffzip/format"
	"github.com/dsnet/huffzip/huffman"
	"github.com/dsnet/huffzip/huffzip"
)

var (
	compress   = flag.Bool("c", false, "compress the input")
	decompress = flag.Bool("d", false, "decompress the input")
	legacy     = flag.Bool("legacy", false, "write the legacy, host-native-width format instead of the portable one (compress only)")
	output     = flag.String("o", "", "output file path (default: stdout)")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("hzip: ")
	flag.Parse()

	if *compress == *decompress {
		log.Fatal("exactly one of -c or -d must be given")
	}

	in, err := openInput(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	out, cleanup, err := createOutput(*output)
	if err != nil {
		log.Fatal(err)
	}

	if *compress {
		err = runCompress(in, out)
	} else {
		err = huffzip.Decompress(in, out)
	}
	cleanup(err)
	if err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}

func runCompress(in io.Reader, out io.Writer) error {
	if *legacy {
		return huffzip.CompressVersion(in, out, format.V1)
	}
	return huffzip.Compress(in, out)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// createOutput opens the destination for writing. If it is a regular file
// (not stdout), the returned cleanup func closes it and, if runErr is
// non-nil, removes it — so a failed run doesn't leave a corrupt partial
// file behind under the requested name.
func createOutput(path string) (io.Writer, func(runErr error), error) {
	if path == "" {
		return os.Stdout, func(error) {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func(runErr error) {
		cerr := f.Close()
		if runErr != nil || cerr != nil {
			os.Remove(path)
		}
	}
	return f, cleanup, nil
}

func exitCode(err error) int {
	switch err {
	case huffzip.ErrCorrupt, huffzip.ErrTrailingPartialCode,
		format.ErrUnknownMagic, format.ErrCorruptTree, format.ErrTooManySymbols,
		huffman.ErrEmptyInput:
		return 1
	default:
		return 2
	}
}
