package utils

// RecordFootprint is the approximate number of bytes one token costs while it
// moves through the pipeline: the input string, its record and its share of
// the grouped and final stores.
const RecordFootprint = 128

// MemoryCapacity estimates a record capacity from the host memory that is free
// or held by reclaimable buffers, keeping half of it in reserve. It is a
// heuristic: the page cache is not counted and cgroup limits are ignored, so
// callers opt into it explicitly. It returns 0 (unbounded) when the memory
// cannot be determined on this platform.
func MemoryCapacity() (int, error) {
	free, err := freeMemory()
	if err != nil || free == 0 {
		return 0, err
	}
	return int(free / 2 / RecordFootprint), nil
}
