package zero_test

import (
	"bytes"
	"testing"

	"github.com/btcsuite/txcompiler/internal/zero"
	"github.com/stretchr/testify/require"
)

func makeOneBytes(n int) []byte {
	return bytes.Repeat([]byte{1}, n)
}

func TestBytes(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 31, 32, 33, 127, 128, 129, 255, 256, 257,
		511, 512, 513} {

		b := makeOneBytes(n)
		zero.Bytes(b)
		require.Equal(t, make([]byte, n), b, "n=%d", n)
	}
}

func TestBytea32(t *testing.T) {
	t.Parallel()

	var b [32]byte
	copy(b[:], makeOneBytes(32))
	zero.Bytea32(&b)
	require.Equal(t, [32]byte{}, b)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	k1, k2 := makeOneBytes(32), makeOneBytes(32)
	keys := map[int][]byte{1: k1, 2: k2}
	zero.Keys(keys)

	require.Empty(t, keys)
	require.Equal(t, make([]byte, 32), k1)
	require.Equal(t, make([]byte, 32), k2)
}
