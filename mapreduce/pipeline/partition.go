package pipeline

// Partition splits items into n contiguous slices. Every slice but the last
// holds len(items)/n items and the last one takes the remainder, so with fewer
// items than slices all but the last are empty. Concatenating the slices in
// order gives back items.
func Partition[T any](items []T, n int) [][]T {
	if n < 1 {
		return nil
	}
	parts := make([][]T, n)
	chunk := len(items) / n
	for i := range parts {
		start := i * chunk
		end := start + chunk
		if i == n-1 {
			end = len(items)
		}
		parts[i] = items[start:end:end]
	}
	return parts
}
