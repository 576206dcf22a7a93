package kheap

import (
	"github.com/OmichronAgain/novos/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BlockJsonData populates a json object with the heap's totals
func (h *Heap) BlockJsonData(json *jwriter.ObjectState) {
	var stats memutils.DetailedStatistics
	stats.Clear()
	h.AddDetailedStatistics(&stats)

	json.Name("Start").String(h.head.String())
	json.Name("TotalBytes").Int(h.Size())
	json.Name("UnusedBytes").Int(stats.UnusedBytes())
	json.Name("HeaderBytes").Int(stats.HeaderBytes)
	json.Name("Allocations").Int(stats.AllocationCount)
	json.Name("UnusedRanges").Int(stats.UnusedRangeCount)
	json.Name("LargestUnusedRange").Int(stats.LargestUnusedRange())
}

// PrintDetailedMap writes a json object with the heap's totals and one entry per block
func (h *Heap) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	h.BlockJsonData(&objState)

	arrayState := objState.Name("Blocks").Array()
	defer arrayState.End()

	for block := range h.Describe() {
		obj := arrayState.Object()

		obj.Name("Offset").Int(int(block.Address - h.head))
		obj.Name("Address").String(block.Address.String())
		obj.Name("Size").Int(int(block.Size))
		obj.Name("PayloadSize").Int(int(block.PayloadSize))
		obj.Name("Next").String(block.Next.String())
		obj.Name("Free").Bool(block.Free)

		if requested, ok := h.RequestedSize(block.Pointer()); ok && !block.Free {
			obj.Name("RequestedSize").Int(int(requested))
		}

		obj.End()
	}
}

// BuildStatsString returns the detailed map as a json document
func (h *Heap) BuildStatsString() string {
	writer := jwriter.NewWriter()
	h.PrintDetailedMap(&writer)
	return string(writer.Bytes())
}
