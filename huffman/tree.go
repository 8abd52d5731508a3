package huffman

import "container/heap"

// Node is one entry of a persisted Huffman tree: a flat array where indices
// 0..n-1 are leaves (one per Token, in the order BuildTree was given) and
// indices n..2n-2 are internal nodes created during construction, with the
// final element (for n>1) the root. Left, Right, and Parent hold noChild
// (-1) where there is no such link; Weight is never persisted, only used
// while building.
type Node struct {
	Left, Right, Parent int32
	Weight              uint64
}

// IsLeaf reports whether n is a leaf node.
func (n Node) IsLeaf() bool { return n.Left == noChild && n.Right == noChild }

// BuildTree constructs a static Huffman tree over tokens by repeatedly
// merging the two lowest-weight roots of the growing forest, using a
// container/heap min-heap exactly as a textbook Huffman construction would.
// Ties in weight are broken by the lower original token index, so the same
// input always produces the same tree.
//
// For a single token, BuildTree returns a single node carrying that token's
// weight and no children — a tree isn't needed to encode one symbol.
func BuildTree(tokens []Token) ([]Node, error) {
	n := len(tokens)
	if n == 0 {
		return nil, ErrEmptyAlphabet
	}
	if n == 1 {
		return []Node{{Left: noChild, Right: noChild, Parent: noChild, Weight: tokens[0].Weight}}, nil
	}

	nodes := make([]Node, 2*n-1)
	for i, t := range tokens {
		nodes[i] = Node{Left: noChild, Right: noChild, Parent: noChild, Weight: t.Weight}
	}

	h := &nodeHeap{nodes: nodes}
	h.idx = make([]int, n)
	for i := range h.idx {
		h.idx[i] = i
	}
	heap.Init(h)

	for next := n; next < len(nodes); next++ {
		i1 := heap.Pop(h).(int)
		i2 := heap.Pop(h).(int)

		nodes[i1].Parent = int32(next)
		nodes[i2].Parent = int32(next)
		nodes[next] = Node{
			Left:   int32(i1),
			Right:  int32(i2),
			Parent: noChild,
			Weight: nodes[i1].Weight + nodes[i2].Weight,
		}
		heap.Push(h, next)
	}
	return nodes, nil
}

// nodeHeap is a container/heap min-heap over node indices, ordered by
// weight and, to break ties deterministically, by index.
type nodeHeap struct {
	nodes []Node
	idx   []int
}

func (h *nodeHeap) Len() int { return len(h.idx) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.idx[i], h.idx[j]
	if h.nodes[a].Weight != h.nodes[b].Weight {
		return h.nodes[a].Weight < h.nodes[b].Weight
	}
	return a < b
}

func (h *nodeHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *nodeHeap) Push(x interface{}) { h.idx = append(h.idx, x.(int)) }

func (h *nodeHeap) Pop() interface{} {
	old := h.idx
	n := len(old)
	x := old[n-1]
	h.idx = old[:n-1]
	return x
}
