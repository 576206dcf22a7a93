package kheap

import (
	"github.com/OmichronAgain/novos/memutils"
	"github.com/OmichronAgain/novos/memutils/frame"
)

// AddStatistics sums this heap's statistics into stats. The heap counts as one block; payloads
// of occupied blocks are allocation bytes and every frame, the end frame included, is header
// bytes.
func (h *Heap) AddStatistics(stats *memutils.Statistics) {
	if !h.Initialized() {
		return
	}

	stats.BlockCount++
	stats.BlockBytes += h.Size()
	stats.HeaderBytes += frame.Size

	_, _ = h.walk(func(block BlockDescriptor) bool {
		stats.HeaderBytes += frame.Size
		if !block.Free {
			stats.AllocationCount++
			stats.AllocationBytes += int(block.PayloadSize)
		}
		return true
	})
}

// AddDetailedStatistics sums this heap's statistics into stats, recording the payload size of
// every occupied block as an allocation and of every free block as an unused range
func (h *Heap) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	if !h.Initialized() {
		return
	}

	stats.BlockCount++
	stats.BlockBytes += h.Size()
	stats.HeaderBytes += frame.Size

	_, _ = h.walk(func(block BlockDescriptor) bool {
		stats.HeaderBytes += frame.Size
		if block.Free {
			stats.AddUnusedRange(int(block.PayloadSize))
		} else {
			stats.AddAllocation(int(block.PayloadSize))
		}
		return true
	})
}

// AllocationCount returns the number of occupied blocks
func (h *Heap) AllocationCount() int {
	var count int
	_, _ = h.walk(func(block BlockDescriptor) bool {
		if !block.Free {
			count++
		}
		return true
	})
	return count
}

// FreeRegionsCount returns the number of free blocks. Adjacent free blocks count separately
// until Consolidate merges them.
func (h *Heap) FreeRegionsCount() int {
	var count int
	_, _ = h.walk(func(block BlockDescriptor) bool {
		if block.Free {
			count++
		}
		return true
	})
	return count
}

// SumFreeSize returns the total payload bytes of all free blocks
func (h *Heap) SumFreeSize() int {
	var sum int
	_, _ = h.walk(func(block BlockDescriptor) bool {
		if block.Free {
			sum += int(block.PayloadSize)
		}
		return true
	})
	return sum
}

// IsEmpty returns true if no block is occupied
func (h *Heap) IsEmpty() bool {
	return h.AllocationCount() == 0
}
