package memutils

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// CheckedAdd adds two 32-bit quantities, returning OverflowError if the sum does not fit in 32 bits
func CheckedAdd[T Number](left, right T, name string) (uint32, error) {
	sum := uint64(left) + uint64(right)
	if sum > math.MaxUint32 {
		return 0, cerrors.Wrapf(OverflowError, "%s is %d + %d", name, uint64(left), uint64(right))
	}
	return uint32(sum), nil
}

// CheckRegion verifies that a region of size bytes can hold at least minimum bytes
func CheckRegion[T Number](size, minimum T, name string) error {
	if size < minimum {
		return cerrors.Wrapf(RegionTooSmallError, "%s is %d, need at least %d", name, uint64(size), uint64(minimum))
	}
	return nil
}
