// Package console holds the text outputs the kernel brings up at boot: the
// VGA text buffer and the serial line. Both implement Sink, the minimal
// print interface the heap uses for its diagnostics.
package console

import "strconv"

//go:generate mockgen -destination ../internal/mocks/mock_sink.go -package mocks github.com/OmichronAgain/novos/console Sink

// Sink accepts raw text and unsigned integers rendered in decimal or hexadecimal.
// Implementations cannot fail; output that cannot be delivered is dropped.
type Sink interface {
	Print(s string)
	Println(s string)
	PrintDec(v uint32)
	PrintlnDec(v uint32)
	PrintHex(v uint32)
	PrintlnHex(v uint32)
}

// FormatDec renders v in decimal with no padding
func FormatDec(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

// FormatHex renders v as 0x followed by lowercase hex digits with no padding
func FormatHex(v uint32) string {
	return "0x" + strconv.FormatUint(uint64(v), 16)
}

// formatter implements Sink on top of a single string writer
type formatter struct {
	out func(s string)
}

func (f formatter) Print(s string)      { f.out(s) }
func (f formatter) Println(s string)    { f.out(s + "\n") }
func (f formatter) PrintDec(v uint32)   { f.out(FormatDec(v)) }
func (f formatter) PrintlnDec(v uint32) { f.out(FormatDec(v) + "\n") }
func (f formatter) PrintHex(v uint32)   { f.out(FormatHex(v)) }
func (f formatter) PrintlnHex(v uint32) { f.out(FormatHex(v) + "\n") }

type teeSink []Sink

// Tee returns a Sink that duplicates everything to each of sinks in order
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

func (t teeSink) Print(s string) {
	for _, sink := range t {
		sink.Print(s)
	}
}

func (t teeSink) Println(s string) {
	for _, sink := range t {
		sink.Println(s)
	}
}

func (t teeSink) PrintDec(v uint32) {
	for _, sink := range t {
		sink.PrintDec(v)
	}
}

func (t teeSink) PrintlnDec(v uint32) {
	for _, sink := range t {
		sink.PrintlnDec(v)
	}
}

func (t teeSink) PrintHex(v uint32) {
	for _, sink := range t {
		sink.PrintHex(v)
	}
}

func (t teeSink) PrintlnHex(v uint32) {
	for _, sink := range t {
		sink.PrintlnHex(v)
	}
}

// Discard is a Sink that drops everything
var Discard Sink = formatter{out: func(string) {}}
