//go:build linux

package utils

import "golang.org/x/sys/unix"

// freeMemory returns the free and buffer RAM in bytes
func freeMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * uint64(info.Unit), nil
}
