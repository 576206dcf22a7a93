// Package boot is the kernel's entry point. It paints the screen, brings up the serial line,
// hands the heap its region exactly once and then runs the main loop.
package boot

import (
	"context"
	"io"
	"os"

	"github.com/OmichronAgain/novos/console"
	"github.com/OmichronAgain/novos/kheap"
	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

// Machine is the state of a booted kernel
type Machine struct {
	cfg    Config
	logger *slog.Logger
	exit   func(code int)

	Screen *console.Screen
	Serial *console.Serial
	Memory *arena.Arena
	Heap   *kheap.Heap

	cursor int
	glyph  byte
	halted bool
}

// Boot brings the machine up: the screen is filled with X on red, the serial line is
// initialized and the heap is given its region. Serial output goes to serialOut. exit is
// called by Halt and defaults to os.Exit.
func Boot(cfg Config, serialOut io.Writer, exit func(code int)) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exit == nil {
		exit = os.Exit
	}

	m := &Machine{
		cfg:    cfg,
		exit:   exit,
		Screen: console.NewScreen(),
		Serial: console.NewSerial(cfg.Port, serialOut),
		glyph:  'a',
	}

	m.Screen.Fill('X', console.Black, console.Red)
	m.Screen.SetColor(console.White, console.Red)

	if err := m.Serial.Init(cfg.BaudRate); err != nil {
		return nil, err
	}

	level, _ := cfg.Level()
	m.logger = slog.New(slog.NewTextHandler(m.Serial, &slog.HandlerOptions{Level: level}))

	var err error
	base := arena.Addr(cfg.HeapBase)
	if cfg.UseMmap {
		m.Memory, err = arena.Mmap(base, cfg.HeapSize)
	} else {
		m.Memory, err = arena.New(base, cfg.HeapSize)
	}
	if err != nil {
		return nil, errors.Wrap(err, "boot: heap region")
	}

	m.Heap = kheap.New(m.logger.With(slog.String("component", "kheap")), m.Memory, kheap.CreateOptions{
		Flags: kheap.CreateTrackAllocations | kheap.CreateConsolidateOnFailure,
		Sink:  console.Tee(m.Serial, m.Screen),
		Abort: m.Halt,
	})
	m.Heap.Init(base, uint32(cfg.HeapSize))
	if !m.Heap.Initialized() {
		_ = m.Memory.Close()
		return nil, errors.Newf("boot: heap rejected region %s+%d", base, cfg.HeapSize)
	}

	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "Machine booted",
		slog.String("port", cfg.Port.String()),
		slog.Int("baud", m.Serial.Baud()),
		slog.String("heapStart", m.Heap.Start().String()),
		slog.Int("heapSize", m.Heap.Size()),
		slog.Bool("mmap", cfg.UseMmap),
	)

	return m, nil
}

// Logger returns the machine's structured log, which is written to the serial line
func (m *Machine) Logger() *slog.Logger {
	return m.logger
}

// Halted reports whether Halt has been called
func (m *Machine) Halted() bool {
	return m.halted
}

// Halt stops the machine. It paints a panic banner on the screen, reports over serial and
// calls the exit function with status 1. The heap calls it when it finds itself corrupted.
func (m *Machine) Halt() {
	m.halted = true

	m.Screen.SetColor(console.White, console.Red)
	m.Screen.Println("")
	m.Screen.Println("*** KERNEL PANIC: system halted ***")
	m.Serial.Println("*** KERNEL PANIC: system halted ***")

	m.logger.LogAttrs(context.Background(), slog.LevelError, "Machine halted")
	m.exit(1)
}

// Run exercises the heap, writes its map to the serial line and then runs the main loop
func (m *Machine) Run(ctx context.Context) error {
	if err := m.exerciseHeap(); err != nil {
		return err
	}

	m.Heap.Dump(m.Serial)
	if m.cfg.DumpJSON {
		m.Serial.Println(m.statsJSON())
	}

	for i := 0; m.cfg.Iterations <= 0 || i < m.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelInfo, "Main loop stopped", slog.Int("iterations", i))
			return nil
		}
		m.tick()
	}

	return m.Serial.Err()
}

// tick transmits the banner and walks the current glyph one cell across the screen. Each
// time it wraps, the glyph advances.
func (m *Machine) tick() {
	m.Serial.Output([]byte(m.cfg.Banner))

	m.cursor++
	if m.cursor >= console.Width*console.Height {
		m.cursor = 0
		m.glyph++
	}
	_ = m.Screen.PutIndex(m.cursor, rune(m.glyph), console.Black, console.Red)
}

// exerciseHeap runs a short allocate, write, free and consolidate cycle and checks the heap
// comes back to a single free block
func (m *Machine) exerciseHeap() error {
	ptrs := make([]arena.Addr, 0, 4)
	for _, size := range []uint32{uint32(len(m.cfg.Banner)), 100, 64, 256} {
		ptr := m.Heap.Allocate(size)
		if ptr == arena.Null {
			m.logger.LogAttrs(context.Background(), slog.LevelWarn, "Heap exercise allocation failed", slog.Int("size", int(size)))
			continue
		}
		ptrs = append(ptrs, ptr)
	}

	if len(ptrs) > 0 {
		payload, err := m.Heap.Payload(ptrs[0])
		if err != nil {
			return errors.Wrap(err, "boot: heap exercise")
		}
		copy(payload, m.cfg.Banner)
	}

	if err := m.Heap.Validate(); err != nil {
		return errors.Wrap(err, "boot: heap exercise")
	}

	// free every other block first so the sweep has something to merge
	for i := 1; i < len(ptrs); i += 2 {
		m.Heap.Free(ptrs[i])
	}
	for i := 0; i < len(ptrs); i += 2 {
		m.Heap.Free(ptrs[i])
	}
	m.Heap.Consolidate()

	if m.Heap.AllocationCount() != 0 || m.Heap.FreeRegionsCount() != 1 {
		return errors.Newf("boot: heap exercise left %d allocations in %d free regions",
			m.Heap.AllocationCount(), m.Heap.FreeRegionsCount())
	}

	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "Heap exercise complete",
		slog.Int("allocations", len(ptrs)),
		slog.Int("free", m.Heap.SumFreeSize()),
	)
	return nil
}

func (m *Machine) statsJSON() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Port").String(m.cfg.Port.String())
	obj.Name("Baud").Int(m.Serial.Baud())
	obj.Name("Flags").String(m.Heap.Flags().String())
	m.Heap.PrintDetailedMap(obj.Name("Heap"))
	obj.End()

	return string(writer.Bytes())
}

// Close tears the machine down, reporting any allocations that were never freed
func (m *Machine) Close() error {
	err := m.Heap.Destroy()
	return errors.CombineErrors(err, m.Memory.Close())
}

// Main is the whole boot: Boot, Run, then Close
func Main(ctx context.Context, cfg Config, serialOut io.Writer, exit func(code int)) (err error) {
	m, err := Boot(cfg, serialOut, exit)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, m.Close())
	}()

	return m.Run(ctx)
}
