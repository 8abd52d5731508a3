package huffman

// Code is a symbol's bit pattern: the low Len bits of Bits hold the code,
// most-significant bit first — the same convention bitio.Writer.WriteFixed
// uses, so a code can be emitted with a single WriteFixed(code.Bits, code.Len).
type Code struct {
	Bits uint64
	Len  uint8
}

// BuildCodes derives each token's Code by walking nodes from its leaf up to
// the root and recording, at each step, which child of its parent it was:
// 0 for Left, 1 for Right. The walk naturally produces the bits in
// leaf-to-root order, so they are reversed before being stored, giving each
// Code its bits in the root-to-leaf (transmission) order.
//
// For a single-token tree (len(nodes)==1, no edges to walk), every symbol
// gets the zero-length Code{0, 0}: huffzip never transmits per-symbol bits
// for a one-symbol alphabet, so no real code is needed.
func BuildCodes(nodes []Node, tokens []Token) map[byte]Code {
	codes := make(map[byte]Code, len(tokens))
	if len(nodes) == 1 {
		for _, t := range tokens {
			codes[t.Symbol] = Code{}
		}
		return codes
	}

	for i, t := range tokens {
		var bits uint64
		var length uint8
		pos := int32(i)
		for nodes[pos].Parent != noChild {
			parent := nodes[pos].Parent
			var bit uint64
			if nodes[parent].Right == pos {
				bit = 1
			}
			bits = (bits << 1) | bit
			length++
			pos = parent
		}
		codes[t.Symbol] = Code{Bits: reverseBits(bits, length), Len: length}
	}
	return codes
}

// reverseBits reverses the order of the low n bits of v.
func reverseBits(v uint64, n uint8) uint64 {
	var r uint64
	for i := uint8(0); i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}
