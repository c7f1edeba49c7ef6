package utils

import (
	"syscall"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Zero-Alloc Conversions
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b exposes the bytes of a string without copying.
// ⚠️ The result must never be mutated.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting — Cold-Path Diagnostics Only
///////////////////////////////////////////////////////////////////////////////

// Utoa renders v in decimal. One backing allocation for the result string,
// no fmt machinery. Cold paths only (log lines, panic messages).
func Utoa(v uint64) string {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

// Itoa is the signed companion of Utoa.
func Itoa(v int) string {
	if v < 0 {
		return "-" + Utoa(uint64(-v))
	}
	return Utoa(uint64(v))
}

///////////////////////////////////////////////////////////////////////////////
// Raw Stderr Writer
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to file descriptor 2, bypassing buffered
// I/O. The write itself does not allocate; callers own any concatenation
// cost. Never call from hot loops.
//
//go:nosplit
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = syscall.Write(2, S2b(msg))
}
