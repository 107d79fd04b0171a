package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpack_Swap(t *testing.T) {
	data := packU64s(TagSwap, 1_000_000, 990_000)

	ix, err := Unpack(data)
	require.NoError(t, err)
	require.NotNil(t, ix.Swap)
	assert.Equal(t, uint64(1_000_000), ix.Swap.Amount)
	assert.Equal(t, uint64(990_000), ix.Swap.Limit)
}

func TestRoundTrip(t *testing.T) {
	cases := []Instruction{
		{Swap: &Swap{Amount: 1, Limit: 2}},
		{Route: &Route{Amount: 10, FirstLimit: 20, SecondLimit: 30}},
		{AddLiquidity: &AddLiquidity{DeltaS: 7, DeltaA: 8, DeltaB: 9}},
		{RemoveLiquidity: &RemoveLiquidity{LPT: 42}},
	}
	for _, want := range cases {
		data, err := want.Pack()
		require.NoError(t, err)

		got, err := Unpack(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestUnpack_UnknownTag(t *testing.T) {
	_, err := Unpack([]byte{4, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	_, err = Unpack([]byte{255})
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestUnpack_Truncated(t *testing.T) {
	_, err := Unpack(nil)
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	// Every prefix shorter than the full field span must fail.
	full, err := Instruction{Route: &Route{Amount: 1, FirstLimit: 2, SecondLimit: 3}}.Pack()
	require.NoError(t, err)
	for n := 1; n < len(full); n++ {
		_, err := Unpack(full[:n])
		assert.ErrorIs(t, err, ErrInvalidInstruction, "prefix length %d", n)
	}
}

func TestUnpack_IgnoresTrailingBytes(t *testing.T) {
	data := packU64s(TagRemoveLiquidity, 42)
	data = append(data, 0xde, 0xad)

	ix, err := Unpack(data)
	require.NoError(t, err)
	require.NotNil(t, ix.RemoveLiquidity)
	assert.Equal(t, uint64(42), ix.RemoveLiquidity.LPT)
}

func TestPack_EmptyInstruction(t *testing.T) {
	_, err := Instruction{}.Pack()
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}
