//go:build amd64

package fastpath

import "github.com/klauspost/cpuid/v2"

var wordScanSupported = cpuid.CPU.Supports(cpuid.SSE2)

func firstNonZero(b []byte) int {
	if !wordScanSupported {
		return firstNonZeroPortable(b)
	}
	n := len(b)
	i := 0
	for ; i+8 <= n; i += 8 {
		w := uint64(b[i]) | uint64(b[i+1])<<8 | uint64(b[i+2])<<16 | uint64(b[i+3])<<24 |
			uint64(b[i+4])<<32 | uint64(b[i+5])<<40 | uint64(b[i+6])<<48 | uint64(b[i+7])<<56
		if w != 0 {
			for j := 0; j < 8; j++ {
				if b[i+j] != 0 {
					return i + j
				}
			}
		}
	}
	for ; i < n; i++ {
		if b[i] != 0 {
			return i
		}
	}
	return n
}

func firstNonZeroPortable(b []byte) int {
	for i, c := range b {
		if c != 0 {
			return i
		}
	}
	return len(b)
}
