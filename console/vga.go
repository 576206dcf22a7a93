package console

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"
)

const (
	// Width and Height are the dimensions of the VGA text mode buffer in character cells
	Width  = 80
	Height = 25

	// TextBufferAddr is where the text buffer lives in physical memory
	TextBufferAddr = 0xb8000
)

// Color is one of the 16 VGA text mode colors
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

var colorMapping = map[Color]string{
	Black:      "Black",
	Blue:       "Blue",
	Green:      "Green",
	Cyan:       "Cyan",
	Red:        "Red",
	Magenta:    "Magenta",
	Brown:      "Brown",
	LightGray:  "LightGray",
	DarkGray:   "DarkGray",
	LightBlue:  "LightBlue",
	LightGreen: "LightGreen",
	LightCyan:  "LightCyan",
	LightRed:   "LightRed",
	Pink:       "Pink",
	Yellow:     "Yellow",
	White:      "White",
}

func (c Color) String() string {
	return colorMapping[c]
}

// Cell packs a CP437 character and its colors the way the hardware expects: the character
// in the low byte, the foreground in bits 8-11 and the background in bits 12-15
func Cell(ch byte, fg, bg Color) uint16 {
	return uint16(ch) | uint16(fg&0x0f)<<8 | uint16(bg&0x0f)<<12
}

// ErrOffScreen is returned when a cell position falls outside the buffer
var ErrOffScreen = errors.New("vga: position off screen")

// Screen emulates the 80x25 VGA text buffer. Text written through the Sink methods goes
// to the cursor position, wraps at the right edge and scrolls at the bottom.
type Screen struct {
	formatter
	cells  [Width * Height]uint16
	row    int
	col    int
	fg, bg Color
}

// NewScreen returns a blank screen printing light gray on black
func NewScreen() *Screen {
	s := &Screen{fg: LightGray, bg: Black}
	s.formatter = formatter{out: s.writeString}
	s.Clear()
	return s
}

// encodeRune maps r to code page 437, substituting '?' for anything without a glyph
func encodeRune(r rune) byte {
	if b, ok := charmap.CodePage437.EncodeRune(r); ok {
		return b
	}
	return '?'
}

// SetColor changes the colors used for subsequent text
func (s *Screen) SetColor(fg, bg Color) {
	s.fg = fg
	s.bg = bg
}

// Clear blanks the screen with the current colors and homes the cursor
func (s *Screen) Clear() {
	s.Fill(' ', s.fg, s.bg)
	s.row, s.col = 0, 0
}

// Fill sets every cell to ch in the given colors. The cursor does not move.
func (s *Screen) Fill(ch rune, fg, bg Color) {
	cell := Cell(encodeRune(ch), fg, bg)
	for i := range s.cells {
		s.cells[i] = cell
	}
}

// PutIndex writes ch at linear cell index (y*Width + x)
func (s *Screen) PutIndex(index int, ch rune, fg, bg Color) error {
	if index < 0 || index >= len(s.cells) {
		return errors.Wrapf(ErrOffScreen, "index %d", index)
	}
	s.cells[index] = Cell(encodeRune(ch), fg, bg)
	return nil
}

// Put writes ch at column x, row y
func (s *Screen) Put(x, y int, ch rune, fg, bg Color) error {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return errors.Wrapf(ErrOffScreen, "(%d, %d)", x, y)
	}
	return s.PutIndex(y*Width+x, ch, fg, bg)
}

// CellAt returns the raw cell at column x, row y
func (s *Screen) CellAt(x, y int) uint16 {
	return s.cells[y*Width+x]
}

// Cursor returns the current column and row
func (s *Screen) Cursor() (int, int) {
	return s.col, s.row
}

// Row decodes row y back to UTF-8, keeping trailing blanks
func (s *Screen) Row(y int) string {
	var b strings.Builder
	b.Grow(Width)
	for x := 0; x < Width; x++ {
		b.WriteRune(charmap.CodePage437.DecodeByte(byte(s.cells[y*Width+x])))
	}
	return b.String()
}

// Render writes the whole screen to w, one line per row with trailing blanks trimmed
func (s *Screen) Render(w io.Writer) error {
	for y := 0; y < Height; y++ {
		if _, err := io.WriteString(w, strings.TrimRight(s.Row(y), " ")+"\n"); err != nil {
			return errors.Wrap(err, "vga: render")
		}
	}
	return nil
}

func (s *Screen) writeString(str string) {
	for _, r := range str {
		s.writeRune(r)
	}
}

func (s *Screen) writeRune(r rune) {
	switch r {
	case '\n':
		s.newline()
		return
	case '\r':
		s.col = 0
		return
	}

	s.cells[s.row*Width+s.col] = Cell(encodeRune(r), s.fg, s.bg)
	s.col++
	if s.col == Width {
		s.newline()
	}
}

func (s *Screen) newline() {
	s.col = 0
	if s.row < Height-1 {
		s.row++
		return
	}

	copy(s.cells[:], s.cells[Width:])
	blank := Cell(' ', s.fg, s.bg)
	for i := (Height - 1) * Width; i < len(s.cells); i++ {
		s.cells[i] = blank
	}
}
