//go:build unix

package arena

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Mmap backs a new arena of size bytes at base with an anonymous private mapping, the closest
// hosted equivalent of a physical RAM region handed over by a bootloader. Close unmaps it.
func Mmap(base Addr, size int) (*Arena, error) {
	if size <= 0 {
		return nil, errors.Newf("arena: cannot map %d bytes", size)
	}
	if err := checkPlacement(base, size); err != nil {
		return nil, err
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "arena: mmap %d bytes", size)
	}

	return &Arena{
		base: base,
		data: data,
		release: func() error {
			err := unix.Munmap(data)
			if errors.Is(err, unix.EINVAL) {
				// Treat double-unmap as no-op for callers.
				return nil
			}
			return err
		},
	}, nil
}
