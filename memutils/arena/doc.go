// Package arena provides the raw memory region handed to the heap at boot.
//
// An Arena is a byte slice paired with the 32-bit address of its first byte.
// Everything that touches the region goes through bounds-checked accessors
// keyed by Addr, so a bad address produces ErrOutOfBounds instead of a fault.
// Multi-byte values are little-endian, matching the i386 targets the kernel
// runs on.
//
// Address 0 is reserved as Null and can never be inside an Arena.
//
// Arenas are not safe for concurrent use.
package arena
