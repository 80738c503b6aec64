package region

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySbrkGrows(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Init())

	off, err := m.Sbrk(16)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, 16, m.HeapHi())

	off, err = m.Sbrk(32)
	require.NoError(t, err)
	assert.Equal(t, 16, off)
	assert.Equal(t, 48, m.HeapHi())
}

func TestMemoryBytesReflectsGrowth(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Init())
	_, err := m.Sbrk(8)
	require.NoError(t, err)
	assert.Len(t, m.Bytes(), 8)
}

func TestMemoryRespectsLimit(t *testing.T) {
	m := NewMemory()
	m.Limit = 16
	require.NoError(t, m.Init())

	_, err := m.Sbrk(16)
	require.NoError(t, err)

	_, err = m.Sbrk(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderExhausted))
}

func TestMemoryNegativeSbrk(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Init())
	_, err := m.Sbrk(-1)
	assert.Error(t, err)
}

func TestMemoryInitResetsState(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Init())
	_, err := m.Sbrk(64)
	require.NoError(t, err)
	require.NoError(t, m.Init())
	assert.Equal(t, 0, m.HeapHi())
}

func TestMemoryHeapLoIsZero(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, 0, m.HeapLo())
}
