package database_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"bfvpir/internal/client"
	"bfvpir/internal/database"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/server"
)

func buildContext(t *testing.T, logN int, logQ, logP []int) (*params.Config, *heengine.Context) {
	t.Helper()
	cfg, ctx := buildContextN(t, 100, 256, params.CalculateDimensions(100, 1), logN, logQ, logP, false)
	return cfg, ctx
}

func buildContextN(t *testing.T, numItems, bytesPerItem int, dims []int, logN int, logQ, logP []int, useCtMult bool) (*params.Config, *heengine.Context) {
	t.Helper()
	cfg, err := params.NewConfig(numItems, bytesPerItem, dims, params.HEParamsLiteral{
		LogN:             logN,
		LogQ:             logQ,
		LogP:             logP,
		PlaintextModulus: 65537,
	}, useCtMult, 8)
	require.NoError(t, err)
	ctx, err := heengine.NewContext(cfg)
	require.NoError(t, err)
	return cfg, ctx
}

// TestRetrieveIntegersDimension1 covers the db=100 integers, D=1 scenario.
func TestRetrieveIntegersDimension1(t *testing.T) {
	cfg, ctx := buildContextN(t, 100, 0, params.CalculateDimensions(100, 1), 13, []int{55, 45}, []int{55}, false)

	values := make([]*big.Int, 100)
	for i := range values {
		values[i] = big.NewInt(int64(i) * 3)
	}
	db, err := database.NewFromIntegers(cfg, ctx, values)
	require.NoError(t, err)

	c := client.New(cfg, ctx)
	target := 42
	req, err := c.CreateRequest([]int{target})
	require.NoError(t, err)

	srv := server.New(cfg, ctx, db)
	resp, err := srv.ProcessRequest(req)
	require.NoError(t, err)

	out, err := c.ProcessResponse(resp, []int{target}, false, 0)
	require.NoError(t, err)
	got := new(big.Int).SetBytes(out[0])
	require.Equal(t, 0, got.Cmp(values[target]))
}

// TestRetrieveIntegersDimension3 covers the db=82 integers, D=3 scenario,
// exercising the reencoding (Variant B) path.
func TestRetrieveIntegersDimension3(t *testing.T) {
	cfg, ctx := buildContextN(t, 82, 0, params.CalculateDimensions(82, 3), 13, []int{45, 35}, []int{35}, false)

	values := make([]*big.Int, 82)
	for i := range values {
		values[i] = big.NewInt(int64(i)*int64(i) + 7)
	}
	db, err := database.NewFromIntegers(cfg, ctx, values)
	require.NoError(t, err)

	c := client.New(cfg, ctx)
	targets := []int{0, 40, 81}
	req, err := c.CreateRequest(targets)
	require.NoError(t, err)

	srv := server.New(cfg, ctx, db)
	resp, err := srv.ProcessRequest(req)
	require.NoError(t, err)

	out, err := c.ProcessResponse(resp, targets, false, 0)
	require.NoError(t, err)
	for i, idx := range targets {
		got := new(big.Int).SetBytes(out[i])
		require.Equal(t, 0, got.Cmp(values[idx]), "index %d", idx)
	}
}

// TestRetrieveBytesCiphertextMultiplication covers Variant A: ct x ct
// multiply with relinearisation, on a byte-record database.
func TestRetrieveBytesCiphertextMultiplication(t *testing.T) {
	const numItems, bytesPerItem, logN, bitsPerCoeff = 16, 64, 13, 8
	itemsPerPlaintext := params.ItemsPerPlaintextFor(1<<logN, bitsPerCoeff, bytesPerItem)
	numPt := params.NumPlaintextsFor(numItems, itemsPerPlaintext)
	cfg, ctx := buildContextN(t, numItems, bytesPerItem, params.CalculateDimensions(numPt, 2), logN, []int{55, 45}, []int{55}, true)

	items := make([][]byte, 16)
	for i := range items {
		items[i] = make([]byte, 64)
		for j := range items[i] {
			items[i][j] = byte(i + j)
		}
	}
	db, err := database.NewFromBytes(cfg, ctx, items)
	require.NoError(t, err)

	c := client.New(cfg, ctx)
	target := 5
	req, err := c.CreateRequest([]int{target})
	require.NoError(t, err)
	require.NotNil(t, req.RelinKey)

	srv := server.New(cfg, ctx, db)
	resp, err := srv.ProcessRequest(req)
	require.NoError(t, err)

	out, err := c.ProcessResponse(resp, []int{target}, true, 64)
	require.NoError(t, err)
	require.Equal(t, items[target], out[0])
}

func TestMultiplyRejectsWrongSelectionVectorSize(t *testing.T) {
	cfg, ctx := buildContext(t, 13, []int{55, 45}, []int{55})
	values := make([]*big.Int, cfg.NumItems)
	for i := range values {
		values[i] = big.NewInt(int64(i))
	}
	db, err := database.NewFromIntegers(cfg, ctx, values)
	require.NoError(t, err)

	_, err = db.Multiply(nil, nil, false, nil)
	require.Error(t, err)
}
