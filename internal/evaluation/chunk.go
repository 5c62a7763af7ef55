package evaluation

// Chunk splits items into consecutive groups of at most size elements, preserving order.
// A non-positive size yields a single group holding every item.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func sampleCounts[T any](chunks [][]T) []int {
	counts := make([]int, len(chunks))
	for i, c := range chunks {
		counts[i] = len(c)
	}
	return counts
}
