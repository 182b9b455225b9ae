package process_test

import (
	"encoding/binary"
	"testing"

	"gosight/process"
	"gosight/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

// chain: 0x10000+0x08 -> 0x20000, 0x20000+0x30 -> 0x30000, value at 0x30000+0x10
func chainImage(t *testing.T) *process_blob.Image {
	t.Helper()
	img := process_blob.NewImage()
	for _, base := range []process.ProcessMemoryAddress{0x10000, 0x20000, 0x30000} {
		require.NoError(t, img.Map(base, 0x100, "rw-p"))
	}
	require.NoError(t, img.Poke(0x10008, u64(0x20000)))
	require.NoError(t, img.Poke(0x20030, u64(0x30000)))
	require.NoError(t, img.Poke(0x30010, binary.LittleEndian.AppendUint32(nil, 1234)))
	return img
}

func TestReadPath(t *testing.T) {
	img := chainImage(t)

	v, err := process.ReadPath[uint32](img, 0x10000, 0x08, 0x30, 0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), v)

	addr, err := process.ResolvePath(img, 0x10000, 0x08, 0x30, 0x10)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x30010), addr)
}

func TestReadPath_NoOffsetsReadsBase(t *testing.T) {
	img := chainImage(t)
	v, err := process.ReadPath[uint64](img, 0x10008)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x20000), v)
}

func TestResolvePath_NullHop(t *testing.T) {
	img := chainImage(t)
	_, err := process.ResolvePath(img, 0x10000, 0x40, 0x10)
	assert.ErrorIs(t, err, process.ErrInvalidPointer)
}

func TestResolvePath_UnmappedHop(t *testing.T) {
	img := chainImage(t)
	_, err := process.ResolvePath(img, 0x90000, 0x08, 0x10)
	assert.Error(t, err)
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "0x140000000", process.ProcessMemoryAddress(0x140000000).ToString())
	assert.True(t, process.ProcessMemoryAddress(0).IsNull())
	assert.Equal(t, process.ProcessMemoryAddress(0x1010), process.ProcessMemoryAddress(0x1000).Add(0x10))
}
