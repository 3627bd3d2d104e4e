package compress

import (
	"container/heap"
	"sort"
)

type huffNode struct {
	freq        int
	sym         byte
	isLeaf      bool
	left, right *huffNode
}

type nodeHeap []*huffNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].freq < h[j].freq }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(*huffNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// huffmanLengths returns the Huffman code length for every distinct
// byte in data. A single-symbol lane still gets a length-1 code so
// encode/decode remains symmetric.
func huffmanLengths(data []byte) map[byte]int {
	freq := map[byte]int{}
	for _, b := range data {
		freq[b]++
	}
	lens := map[byte]int{}
	switch len(freq) {
	case 0:
		return lens
	case 1:
		for b := range freq {
			lens[b] = 1
		}
		return lens
	}

	h := &nodeHeap{}
	heap.Init(h)
	for b, f := range freq {
		heap.Push(h, &huffNode{freq: f, sym: b, isLeaf: true})
	}
	for h.Len() > 1 {
		a := heap.Pop(h).(*huffNode)
		b := heap.Pop(h).(*huffNode)
		heap.Push(h, &huffNode{freq: a.freq + b.freq, left: a, right: b})
	}
	root := heap.Pop(h).(*huffNode)

	var walk func(n *huffNode, depth int)
	walk = func(n *huffNode, depth int) {
		if n.isLeaf {
			if depth == 0 {
				depth = 1
			}
			lens[n.sym] = depth
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)
	return lens
}

// canonicalCodes derives canonical Huffman codes from a length
// assignment, so a decoder that only stores code lengths on disk can
// reconstruct the exact same codes the encoder used.
func canonicalCodes(lens map[byte]int) map[byte]uint64 {
	type entry struct {
		sym byte
		ln  int
	}
	list := make([]entry, 0, len(lens))
	for s, l := range lens {
		list = append(list, entry{s, l})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ln != list[j].ln {
			return list[i].ln < list[j].ln
		}
		return list[i].sym < list[j].sym
	})

	codes := map[byte]uint64{}
	var code uint64
	prevLen := 0
	for _, e := range list {
		code <<= uint(e.ln - prevLen)
		codes[e.sym] = code
		code++
		prevLen = e.ln
	}
	return codes
}
