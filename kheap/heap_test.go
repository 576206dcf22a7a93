package kheap_test

import (
	"slices"
	"testing"

	"github.com/OmichronAgain/novos/kheap"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/stretchr/testify/require"
)

const (
	heapBase arena.Addr = 0x100000
	heapSize            = 1024
)

func newArena(t *testing.T) *arena.Arena {
	mem, err := arena.New(heapBase, heapSize)
	require.NoError(t, err)
	return mem
}

func newHeap(t *testing.T, options kheap.CreateOptions) (*kheap.Heap, *arena.Arena) {
	mem := newArena(t)
	heap := kheap.New(nil, mem, options)
	heap.Init(heapBase, heapSize)
	require.True(t, heap.Initialized())
	return heap, mem
}

func blocks(heap *kheap.Heap) []kheap.BlockDescriptor {
	return slices.Collect(heap.Describe())
}

func TestHeapInit(t *testing.T) {
	heap, mem := newHeap(t, kheap.CreateOptions{})

	require.Equal(t, heapBase, heap.Start())
	require.Equal(t, heapBase+heapSize-frame.Size, heap.End())
	require.Equal(t, heapSize, heap.Size())

	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: heapSize - frame.Size, PayloadSize: heapSize - 2*frame.Size, Next: heap.End(), Free: true},
	}, blocks(heap))

	end, err := frame.Read(mem, heap.End())
	require.NoError(t, err)
	require.True(t, end.IsEnd())
	require.False(t, end.Free)
	require.NoError(t, end.Check())

	require.NoError(t, heap.Validate())
}

func TestHeapInitRejectsBadRegions(t *testing.T) {
	mem := newArena(t)

	heap := kheap.New(nil, mem, kheap.CreateOptions{})
	heap.Init(arena.Null, heapSize)
	require.False(t, heap.Initialized())

	// anything from one frame up to one byte short of two would put the end frame on top
	// of the head frame, so the smallest region Init accepts is two frames
	heap.Init(heapBase, frame.Size)
	require.False(t, heap.Initialized())
	heap.Init(heapBase, 2*frame.Size-1)
	require.False(t, heap.Initialized())

	heap.Init(heapBase+1000, 100)
	require.False(t, heap.Initialized())

	require.Equal(t, arena.Null, heap.Allocate(1))
	require.Empty(t, blocks(heap))
	require.NoError(t, heap.Validate())

	heap.Init(heapBase, 2*frame.Size)
	require.True(t, heap.Initialized())
	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: frame.Size, PayloadSize: 0, Next: heapBase + frame.Size, Free: true},
	}, blocks(heap))
	require.Equal(t, heapBase+frame.Size, heap.Allocate(0))
}

func TestHeapInitOnlyOnce(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})
	ptr := heap.Allocate(100)

	heap.Init(heapBase, 512)
	require.Equal(t, heapBase+heapSize-frame.Size, heap.End())
	require.Equal(t, heapSize, heap.Size())
	require.Len(t, blocks(heap), 2)
	require.False(t, blocks(heap)[0].Free)

	heap.Free(ptr)
	require.Len(t, blocks(heap), 1)
}

func TestUninitializedHeap(t *testing.T) {
	heap := kheap.New(nil, newArena(t), kheap.CreateOptions{})

	require.False(t, heap.Initialized())
	require.Equal(t, arena.Null, heap.Allocate(0))
	require.Equal(t, arena.Null, heap.Allocate(100))
	heap.Free(arena.Null)
	heap.Consolidate()
	require.Empty(t, blocks(heap))
	require.True(t, heap.IsEmpty())
	require.NoError(t, heap.Destroy())
}

func TestNewWithoutArena(t *testing.T) {
	require.Panics(t, func() {
		kheap.New(nil, nil, kheap.CreateOptions{})
	})
}

func TestAllocateSplits(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})

	first := heap.Allocate(100)
	require.Equal(t, heapBase+frame.Size, first)

	second := heap.Allocate(50)
	require.Equal(t, first+100+frame.Size, second)

	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: 109, PayloadSize: 100, Next: heapBase + 109, Free: false},
		{Address: heapBase + 109, Size: 59, PayloadSize: 50, Next: heapBase + 168, Free: false},
		{Address: heapBase + 168, Size: 847, PayloadSize: 838, Next: heap.End(), Free: true},
	}, blocks(heap))
	require.NoError(t, heap.Validate())
}

func TestAllocateSplitThreshold(t *testing.T) {
	// the only block is 1015 bytes: a request leaving exactly one frame's worth of slack
	// cannot be split
	heap, _ := newHeap(t, kheap.CreateOptions{})
	ptr := heap.Allocate(heapSize - 3*frame.Size)
	require.Equal(t, heapBase+frame.Size, ptr)
	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: 1015, PayloadSize: 1006, Next: heap.End(), Free: false},
	}, blocks(heap))
	require.Equal(t, arena.Null, heap.Allocate(0))

	// one byte less and the remainder gets a frame of its own with one byte of payload
	heap, _ = newHeap(t, kheap.CreateOptions{})
	ptr = heap.Allocate(heapSize - 3*frame.Size - 1)
	require.Equal(t, heapBase+frame.Size, ptr)
	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: 1005, PayloadSize: 996, Next: heapBase + 1005, Free: false},
		{Address: heapBase + 1005, Size: 10, PayloadSize: 1, Next: heap.End(), Free: true},
	}, blocks(heap))
	require.Equal(t, heapBase+1005+frame.Size, heap.Allocate(1))
}

func TestAllocateExactFit(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})
	require.Equal(t, arena.Null, heap.Allocate(heapSize-2*frame.Size+1))

	ptr := heap.Allocate(heapSize - 2*frame.Size)
	require.Equal(t, heapBase+frame.Size, ptr)
	require.Len(t, blocks(heap), 1)
	require.Equal(t, arena.Null, heap.Allocate(0))
}

func TestAllocateFirstFit(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})

	a := heap.Allocate(40)
	b := heap.Allocate(200)
	c := heap.Allocate(40)
	require.NotEqual(t, arena.Null, c)

	heap.Free(b)
	heap.Free(a)

	// a merged into b, so the first free block is the 249 byte one at a
	require.Equal(t, a, heap.Allocate(10))
	require.Equal(t, a+10+frame.Size, heap.Allocate(10))
}

func TestFreeMergesForward(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})

	a := heap.Allocate(100)
	b := heap.Allocate(100)
	require.Len(t, blocks(heap), 3)

	heap.Free(a)
	require.Len(t, blocks(heap), 3)
	require.Equal(t, 2, heap.FreeRegionsCount())

	heap.Free(b)
	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: 109, PayloadSize: 100, Next: heapBase + 109, Free: true},
		{Address: heapBase + 109, Size: 906, PayloadSize: 897, Next: heap.End(), Free: true},
	}, blocks(heap))
	require.NoError(t, heap.Validate())
}

func TestFreeDoesNotMergeBackward(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})

	a := heap.Allocate(100)
	b := heap.Allocate(100)
	c := heap.Allocate(100)

	heap.Free(a)
	heap.Free(b)
	// a only merges forward, and b was still live when a was freed
	require.Len(t, blocks(heap), 4)
	require.Equal(t, 3, heap.FreeRegionsCount())

	heap.Free(c)
	require.Len(t, blocks(heap), 3)
}

func TestFreeNullAndDoubleFree(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})

	heap.Free(arena.Null)
	require.Len(t, blocks(heap), 1)

	a := heap.Allocate(100)
	heap.Allocate(100)
	heap.Free(a)
	before := blocks(heap)

	heap.Free(a)
	require.Equal(t, before, blocks(heap))
	require.NoError(t, heap.Validate())
}

func TestConsolidate(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})

	var ptrs []arena.Addr
	for i := 0; i < 5; i++ {
		ptrs = append(ptrs, heap.Allocate(50))
	}
	for _, ptr := range ptrs[:4] {
		heap.Free(ptr)
	}
	require.Equal(t, 5, heap.FreeRegionsCount())

	heap.Consolidate()
	require.Equal(t, []kheap.BlockDescriptor{
		{Address: heapBase, Size: 236, PayloadSize: 227, Next: heapBase + 236, Free: true},
		{Address: heapBase + 236, Size: 59, PayloadSize: 50, Next: heapBase + 295, Free: false},
		{Address: heapBase + 295, Size: 720, PayloadSize: 711, Next: heap.End(), Free: true},
	}, blocks(heap))

	after := blocks(heap)
	heap.Consolidate()
	require.Equal(t, after, blocks(heap))

	heap.Free(ptrs[4])
	heap.Consolidate()
	require.Len(t, blocks(heap), 1)
	require.Equal(t, heapSize-2*frame.Size, heap.SumFreeSize())
}

func TestConsolidateOnFailure(t *testing.T) {
	fill := func(heap *kheap.Heap) {
		a := heap.Allocate(100)
		b := heap.Allocate(100)
		heap.Free(a)
		heap.Free(b)
	}

	heap, _ := newHeap(t, kheap.CreateOptions{})
	fill(heap)
	require.Equal(t, arena.Null, heap.Allocate(1000))

	heap, _ = newHeap(t, kheap.CreateOptions{Flags: kheap.CreateConsolidateOnFailure})
	fill(heap)
	require.Equal(t, heapBase+frame.Size, heap.Allocate(1000))
	require.Len(t, blocks(heap), 1)
	require.Equal(t, arena.Null, heap.Allocate(1000))
}

func TestHeapScenario(t *testing.T) {
	heap, _ := newHeap(t, kheap.CreateOptions{})
	require.Equal(t, uint32(1006), blocks(heap)[0].PayloadSize)

	ptr := heap.Allocate(100)
	require.NotEqual(t, arena.Null, ptr)
	all := blocks(heap)
	require.Len(t, all, 2)
	require.Equal(t, uint32(897), all[1].PayloadSize)
	require.True(t, all[1].Free)

	require.Equal(t, arena.Null, heap.Allocate(2000))

	heap.Free(ptr)
	all = blocks(heap)
	require.Len(t, all, 1)
	require.Equal(t, uint32(1006), all[0].PayloadSize)
	require.True(t, all[0].Free)
}
