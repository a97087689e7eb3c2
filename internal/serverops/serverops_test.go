package serverops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bfvpir/internal/encoding"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
)

func testContext(t *testing.T) (*params.Config, *heengine.Context) {
	t.Helper()
	cfg, err := params.NewConfig(10, 0, []int{10}, params.HEParamsLiteral{
		LogN:             13,
		LogQ:             []int{55, 45},
		LogP:             []int{55},
		PlaintextModulus: 65537,
	}, false, 8)
	require.NoError(t, err)
	ctx, err := heengine.NewContext(cfg)
	require.NoError(t, err)
	return cfg, ctx
}

// galoisElementSet builds the {N/2^j+1} set ObliviousExpansion needs for
// l levels of splitting.
func galoisElementSet(ctx *heengine.Context, l int) []uint64 {
	N := ctx.N()
	els := make([]uint64, l)
	for j := 0; j < l; j++ {
		els[j] = ctx.GaloisElement(N/(1<<uint(j)) + 1)
	}
	return els
}

func TestObliviousExpansionSingleElementIsNoOp(t *testing.T) {
	_, ctx := testContext(t)
	sk, pk := ctx.KeyPair()
	gks := ctx.GenGaloisKeys(sk, galoisElementSet(ctx, params.CeilLog2(1)))
	eval := ctx.NewEvaluator(nil, gks)

	ie := encoding.NewIntegerEncoder(ctx)
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	require.NoError(t, ie.EncodeUint64(7, pt))
	encryptor := ctx.NewEncryptor(pk)
	ct, err := encryptor.Encrypt(pt)
	require.NoError(t, err)

	out, err := ObliviousExpansion(eval, eval, ctx, ct, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)

	decryptor := ctx.NewDecryptor(sk)
	got, err := ie.Decode(decryptor.Decrypt(out[0]))
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.Uint64())
}

// TestObliviousExpansionSplitsIntoRequestedCount expands the packed
// polynomial 3x^3+2x^2+x+42 into n=4 ciphertexts; the i-th must decrypt
// to coefficient i of the input, scaled by n.
func TestObliviousExpansionSplitsIntoRequestedCount(t *testing.T) {
	_, ctx := testContext(t)
	sk, pk := ctx.KeyPair()
	const n = 4
	gks := ctx.GenGaloisKeys(sk, galoisElementSet(ctx, params.CeilLog2(n)))
	eval := ctx.NewEvaluator(nil, gks)

	input := []uint64{42, 1, 2, 3}
	coeffs := make([]uint64, ctx.N())
	copy(coeffs, input)
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	encoder := ctx.NewEncoder()
	require.NoError(t, encoder.Encode(coeffs, pt))
	encryptor := ctx.NewEncryptor(pk)
	ct, err := encryptor.Encrypt(pt)
	require.NoError(t, err)

	out, err := ObliviousExpansion(eval, eval, ctx, ct, n)
	require.NoError(t, err)
	require.Len(t, out, n)

	decryptor := ctx.NewDecryptor(sk)
	want := []uint64{168, 4, 8, 12}
	got := make([]uint64, ctx.N())
	for i, c := range out {
		require.Equal(t, ct.Level(), c.Level())
		require.NoError(t, encoder.Decode(decryptor.Decrypt(c), got))
		require.Equal(t, want[i], got[0], "coefficient %d", i)
	}
}

func TestSubstitutePowerXPreservesLevel(t *testing.T) {
	_, ctx := testContext(t)
	sk, pk := ctx.KeyPair()
	galEl := ctx.GaloisElement(ctx.N() + 1)
	gks := ctx.GenGaloisKeys(sk, []uint64{galEl})
	eval := ctx.NewEvaluator(nil, gks)

	ie := encoding.NewIntegerEncoder(ctx)
	pt := ctx.NewPlaintext(ctx.MaxLevel())
	require.NoError(t, ie.EncodeUint64(99, pt))
	encryptor := ctx.NewEncryptor(pk)
	ct, err := encryptor.Encrypt(pt)
	require.NoError(t, err)

	out, err := SubstitutePowerX(eval, ct, galEl)
	require.NoError(t, err)
	require.Equal(t, ct.Level(), out.Level())
}

func TestSubstitutePowerXRejectsMissingGaloisKey(t *testing.T) {
	_, ctx := testContext(t)
	_, pk := ctx.KeyPair()
	eval := ctx.NewEvaluator(nil, nil)

	pt := ctx.NewPlaintext(ctx.MaxLevel())
	encryptor := ctx.NewEncryptor(pk)
	ct, err := encryptor.Encrypt(pt)
	require.NoError(t, err)

	_, err = SubstitutePowerX(eval, ct, ctx.GaloisElement(ctx.N()+1))
	require.Error(t, err)
}
