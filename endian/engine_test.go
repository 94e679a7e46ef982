package endian

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/arloliu/objbase/format"
	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
		require.Equal(format.BigEndian, NativeOrder())
	case 0x02:
		require.Equal(binary.LittleEndian, result)
		require.Equal(format.LittleEndian, NativeOrder())
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestForOrder(t *testing.T) {
	t.Run("little", func(t *testing.T) {
		engine, err := ForOrder(format.LittleEndian)
		require.NoError(t, err)
		require.Equal(t, GetLittleEndianEngine(), engine)
		require.Equal(t, format.LittleEndian, OrderOf(engine))
	})

	t.Run("big", func(t *testing.T) {
		engine, err := ForOrder(format.BigEndian)
		require.NoError(t, err)
		require.Equal(t, GetBigEndianEngine(), engine)
		require.Equal(t, format.BigEndian, OrderOf(engine))
	})

	t.Run("unknown", func(t *testing.T) {
		engine, err := ForOrder(format.ByteOrder(0x7f))
		require.Error(t, err)
		require.Nil(t, engine)
	})
}

func TestIsNative(t *testing.T) {
	require.NotEqual(t, IsNative(GetLittleEndianEngine()), IsNative(GetBigEndianEngine()))
}

func TestSignedHelpers(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := AppendInt16(engine, nil, -2)
		require.Len(t, buf, 2)
		require.Equal(t, int16(-2), Int16(engine, buf))

		buf = AppendInt64(engine, nil, math.MinInt64)
		require.Len(t, buf, 8)
		require.Equal(t, int64(math.MinInt64), Int64(engine, buf))
	}

	le := AppendInt16(GetLittleEndianEngine(), nil, 0x0102)
	be := AppendInt16(GetBigEndianEngine(), nil, 0x0102)
	require.Equal(t, []byte{0x02, 0x01}, le)
	require.Equal(t, []byte{0x01, 0x02}, be)
}
