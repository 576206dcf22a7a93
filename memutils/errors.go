package memutils

import "github.com/pkg/errors"

// OverflowError is returned from CheckedAdd or other methods if an address or size computation would
// leave the 32-bit address space
var OverflowError error = errors.New("address arithmetic overflows 32 bits")

// RegionTooSmallError is returned from CheckRegion if a region cannot hold the requested number of bytes
var RegionTooSmallError error = errors.New("region is too small")
