package utils

import "testing"

func TestMemoryCapacity(t *testing.T) {
	capacity, err := MemoryCapacity()
	if err != nil {
		t.Fatal(err)
	}
	if capacity < 0 {
		t.Fatalf("capacity %d is negative", capacity)
	}
}
