//go:build !unix

package arena

// Mmap falls back to a Go-heap buffer where anonymous mappings are not available
func Mmap(base Addr, size int) (*Arena, error) {
	return New(base, size)
}
