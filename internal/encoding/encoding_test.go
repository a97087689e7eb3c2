package encoding

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
)

func testContext(t *testing.T) *heengine.Context {
	t.Helper()
	cfg, err := params.NewConfig(10, 8, []int{10}, params.HEParamsLiteral{
		LogN:             13,
		LogQ:             []int{55, 45},
		LogP:             []int{55},
		PlaintextModulus: 65537,
	}, false, 8)
	require.NoError(t, err)
	ctx, err := heengine.NewContext(cfg)
	require.NoError(t, err)
	return ctx
}

func TestIntegerEncoderRoundTrip(t *testing.T) {
	ctx := testContext(t)
	ie := NewIntegerEncoder(ctx)

	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(65536),
		new(big.Int).Exp(big.NewInt(2), big.NewInt(200), nil),
	}
	for _, want := range cases {
		pt := ctx.NewPlaintext(ctx.MaxLevel())
		require.NoError(t, ie.Encode(want, pt))
		got, err := ie.Decode(pt)
		require.NoError(t, err)
		require.Equal(t, 0, want.Cmp(got))
	}
}

func TestIntegerEncoderRejectsNegative(t *testing.T) {
	ctx := testContext(t)
	ie := NewIntegerEncoder(ctx)
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	err := ie.Encode(big.NewInt(-1), pt)
	require.Error(t, err)
}

func TestIntegerEncoderEncodeUint64(t *testing.T) {
	ctx := testContext(t)
	ie := NewIntegerEncoder(ctx)
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	require.NoError(t, ie.EncodeUint64(424242, pt))
	got, err := ie.Decode(pt)
	require.NoError(t, err)
	require.Equal(t, uint64(424242), got.Uint64())
}

func TestStringEncoderRoundTrip(t *testing.T) {
	ctx := testContext(t)
	se := NewStringEncoder(ctx, 8)

	items := [][]byte{
		[]byte("alpha-record"),
		[]byte("bravo-record"),
		[]byte("charlie-rec."),
	}
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	require.NoError(t, se.Encode(items, pt))

	itemLen := len(items[0])
	for i, want := range items {
		got, err := se.Decode(pt, itemLen, i*itemLen)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestStringEncoderRejectsOversizePayload(t *testing.T) {
	ctx := testContext(t)
	se := NewStringEncoder(ctx, 8)
	huge := make([]byte, se.MaxBytesPerPlaintext()+1)
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	err := se.Encode([][]byte{huge}, pt)
	require.Error(t, err)
}

func TestStringEncoderNumItemsPerPlaintext(t *testing.T) {
	ctx := testContext(t)
	se := NewStringEncoder(ctx, 8)
	require.Equal(t, 0, se.NumItemsPerPlaintext(se.MaxBytesPerPlaintext()+1))
	require.Greater(t, se.NumItemsPerPlaintext(8), 0)
}
