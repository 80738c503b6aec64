// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bufiox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWriterMallocThenFlush(t *testing.T) {
	var dst bytes.Buffer
	w := NewDefaultWriter(&dst)

	buf, err := w.Malloc(5)
	require.NoError(t, err)
	copy(buf, "hello")

	buf, err = w.Malloc(5)
	require.NoError(t, err)
	copy(buf, ", wor")

	require.NoError(t, w.Flush())
	assert.Equal(t, "hello, wor", dst.String())
}

func TestDefaultWriterMallocLargerThanDefaultBufSize(t *testing.T) {
	var dst bytes.Buffer
	w := NewDefaultWriter(&dst)

	// force acquireSlow by asking for more than defaultBufSize at once
	n := defaultBufSize + 128
	buf, err := w.Malloc(n)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = byte(i)
	}
	require.NoError(t, w.Flush())
	require.Equal(t, n, dst.Len())
	got := dst.Bytes()
	for i := 0; i < n; i++ {
		require.Equal(t, byte(i), got[i])
	}
}

func TestDefaultWriterNegativeMalloc(t *testing.T) {
	w := NewDefaultWriter(&bytes.Buffer{})
	_, err := w.Malloc(-1)
	assert.ErrorIs(t, err, errNegativeCount)
}

func TestDefaultWriterFlushIsIdempotentWhenEmpty(t *testing.T) {
	var dst bytes.Buffer
	w := NewDefaultWriter(&dst)
	require.NoError(t, w.Flush())
	assert.Equal(t, 0, dst.Len())
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, errors.New("boom") }

func TestDefaultWriterStickyErrorAfterFailedFlush(t *testing.T) {
	w := NewDefaultWriter(errWriter{})
	_, err := w.Malloc(4)
	require.NoError(t, err)

	err = w.Flush()
	assert.Error(t, err)

	_, err = w.Malloc(1)
	assert.Error(t, err, "Malloc must keep returning the sticky error after a failed Flush")
}
