package frame_test

import (
	"testing"

	"github.com/OmichronAgain/novos/memutils/arena"
	"github.com/OmichronAgain/novos/memutils/frame"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestFrameLayout(t *testing.T) {
	require.Equal(t, 9, frame.Size)

	var b [frame.Size]byte
	frame.New(0x11223344, true).Encode(b[:])

	require.Equal(t, [frame.Size]byte{
		0x44, 0x33, 0x22, 0x11, // next
		0x01,       // is_free
		0x6b, 0x4a, // signature_start
		0x79, 0x00, // signature_end
	}, b)
}

func TestFrameRead(t *testing.T) {
	mem, err := arena.FromBytes(0x1000, []byte{0xff, 0x00, 0x10, 0x00, 0x00, 0x00, 0x6b, 0x4a, 0x79, 0x00})
	require.NoError(t, err)

	f, err := frame.Read(mem, 0x1001)
	require.NoError(t, err)
	require.Equal(t, frame.Frame{
		Next:           0x1000,
		Free:           false,
		SignatureStart: frame.SignatureStart,
		SignatureEnd:   frame.SignatureEnd,
	}, f)
	require.NoError(t, f.Check())
	require.False(t, f.IsEnd())

	// one byte short of a whole frame
	_, err = frame.Read(mem, 0x1002)
	require.True(t, errors.Is(err, arena.ErrOutOfBounds))
}

func TestFrameCheck(t *testing.T) {
	f := frame.New(arena.Null, false)
	require.True(t, f.IsEnd())
	require.NoError(t, f.Check())

	f.SignatureEnd = 0x4a6b
	require.True(t, errors.Is(f.Check(), frame.ErrBadSignature))

	f = frame.New(0x2000, true)
	f.SignatureStart = 0
	require.True(t, errors.Is(f.Check(), frame.ErrBadSignature))
}

func TestFrameFieldWrites(t *testing.T) {
	mem, err := arena.New(0x1000, 32)
	require.NoError(t, err)

	require.NoError(t, frame.Write(mem, 0x1004, frame.New(0x1010, false)))

	// stomp the start signature, then update the other fields
	require.NoError(t, mem.PutUint16(0x1004+5, 0xffff))
	require.NoError(t, frame.SetNext(mem, 0x1004, 0x1018))
	require.NoError(t, frame.SetFree(mem, 0x1004, true))

	f, err := frame.Read(mem, 0x1004)
	require.NoError(t, err)
	require.Equal(t, arena.Addr(0x1018), f.Next)
	require.True(t, f.Free)
	require.Equal(t, uint16(0xffff), f.SignatureStart)
	require.Error(t, f.Check())
}

func TestFrameOutOfBounds(t *testing.T) {
	mem, err := arena.New(0x1000, 16)
	require.NoError(t, err)

	_, err = frame.Read(mem, 0x1008)
	require.True(t, errors.Is(err, arena.ErrOutOfBounds))

	err = frame.Write(mem, 0x1008, frame.New(arena.Null, false))
	require.True(t, errors.Is(err, arena.ErrOutOfBounds))

	require.NoError(t, frame.Write(mem, 0x1007, frame.New(arena.Null, false)))
}
