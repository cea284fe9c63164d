package repositories

import "container/heap"

// scoredDocument pairs a candidate with its distance from the query and its
// insertion sequence, which breaks distance ties.
type scoredDocument struct {
	index    int // position in insertion order
	distance float64
}

// squaredEuclidean returns the squared L2 distance between two vectors of
// equal length. Squared distance preserves the ordering of true Euclidean
// distance, so the sqrt is skipped.
func squaredEuclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// candidateHeap is a max-heap of the k best candidates seen so far; the
// worst candidate sits at the root so it can be evicted cheaply.
type candidateHeap []scoredDocument

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance > h[j].distance
	}
	// On equal distance the later insertion is the worse candidate.
	return h[i].index > h[j].index
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(scoredDocument))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// worseThan reports whether candidate c ranks after the heap root.
func (h candidateHeap) worseThan(c scoredDocument) bool {
	root := h[0]
	if c.distance != root.distance {
		return c.distance > root.distance
	}
	return c.index > root.index
}

// selectNearest scans candidate distances (indexed in insertion order) and
// returns the indices of the k nearest, ascending by distance with ties
// broken by insertion order. A single bounded heap keeps the scan at
// O(n log k) regardless of corpus size.
func selectNearest(distances []float64, k int) []int {
	if k <= 0 || len(distances) == 0 {
		return nil
	}

	h := make(candidateHeap, 0, k)
	for i, d := range distances {
		c := scoredDocument{index: i, distance: d}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		if h.worseThan(c) {
			continue
		}
		h[0] = c
		heap.Fix(&h, 0)
	}

	// Drain the heap worst-first, filling the result back to front.
	result := make([]int, len(h))
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(scoredDocument).index
	}
	return result
}
