package alloc

import (
	"bytes"
	"testing"

	"github.com/segalloc/segalloc/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	h, err := New(region.NewMemory())
	require.NoError(t, err)

	a := h.Alloc(32)
	b := h.Alloc(64)
	require.NotEqual(t, NilPtr, a)
	require.NotEqual(t, NilPtr, b)
	h.Free(a)

	var buf bytes.Buffer
	require.NoError(t, h.Dump(&buf))

	report, err := LoadDump(&buf)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Blocks)

	var sawFree, sawAlloc bool
	for _, blk := range report.Blocks {
		if blk.Alloc {
			sawAlloc = true
		} else {
			sawFree = true
		}
	}
	assert.True(t, sawFree)
	assert.True(t, sawAlloc)
}

func TestLoadDumpRejectsBadMagic(t *testing.T) {
	_, err := LoadDump(bytes.NewReader([]byte("NOTADUMPMAGIC000")))
	assert.Error(t, err)
}

func TestLoadDumpRejectsCorruptedChecksum(t *testing.T) {
	h, err := New(region.NewMemory())
	require.NoError(t, err)
	h.Alloc(16)

	var buf bytes.Buffer
	require.NoError(t, h.Dump(&buf))

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err = LoadDump(bytes.NewReader(corrupted))
	assert.Error(t, err)
}
