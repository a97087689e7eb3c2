package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateDimensionsBalanced(t *testing.T) {
	dims := CalculateDimensions(100, 1)
	require.Equal(t, []int{100}, dims)

	dims = CalculateDimensions(100, 2)
	require.Len(t, dims, 2)
	prod := dims[0] * dims[1]
	require.GreaterOrEqual(t, prod, 100)

	dims = CalculateDimensions(82, 3)
	require.Len(t, dims, 3)
	prod = dims[0] * dims[1] * dims[2]
	require.GreaterOrEqual(t, prod, 82)
}

func TestCalculateIndicesRoundTrip(t *testing.T) {
	dims := []int{5, 4, 3}
	total := 1
	for _, d := range dims {
		total *= d
	}
	seen := make(map[int]bool)
	for flat := 0; flat < total; flat++ {
		idx := CalculateIndices(dims, flat)
		require.Len(t, idx, len(dims))
		recomposed := 0
		for k := range dims {
			recomposed = recomposed*dims[k] + idx[k]
		}
		require.Equal(t, flat, recomposed)
		seen[flat] = true
	}
	require.Len(t, seen, total)
}

func TestNewConfigRejectsBadInputs(t *testing.T) {
	he := HEParamsLiteral{LogN: 13, PlaintextModulus: 65537}

	_, err := NewConfig(0, 8, []int{10}, he, false, 8)
	require.Error(t, err)

	_, err = NewConfig(10, 8, nil, he, false, 8)
	require.Error(t, err)

	_, err = NewConfig(10, 8, []int{0}, he, false, 8)
	require.Error(t, err)

	_, err = NewConfig(10, 8, []int{10}, HEParamsLiteral{LogN: 3, PlaintextModulus: 65537}, false, 8)
	require.NoError(t, err)

	_, err = NewConfig(10, 100, []int{10}, HEParamsLiteral{LogN: 3, PlaintextModulus: 65537}, false, 8)
	require.Error(t, err)
}

func TestNewConfigDerivedFields(t *testing.T) {
	he := HEParamsLiteral{LogN: 13, PlaintextModulus: 65537}
	dims := CalculateDimensions(100, 2)
	cfg, err := NewConfig(100, 256, dims, he, false, 8)
	require.NoError(t, err)

	require.Equal(t, 100, cfg.NumItems)
	require.Positive(t, cfg.ItemsPerPlaintext())
	require.Equal(t, (100+cfg.ItemsPerPlaintext()-1)/cfg.ItemsPerPlaintext(), cfg.NumPlaintexts())
	require.Equal(t, dims[0]+dims[1], cfg.DimSum())
	require.Equal(t, 1<<13, cfg.N())
}

func TestNewConfigIntegerMode(t *testing.T) {
	he := HEParamsLiteral{LogN: 13, PlaintextModulus: 65537}
	dims := CalculateDimensions(82, 3)
	cfg, err := NewConfig(82, 0, dims, he, false, 8)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.ItemsPerPlaintext())
	require.Equal(t, 82, cfg.NumPlaintexts())
}

func TestCalculateItemOffset(t *testing.T) {
	he := HEParamsLiteral{LogN: 13, PlaintextModulus: 65537}
	dims := CalculateDimensions(100, 1)
	cfg, err := NewConfig(100, 256, dims, he, false, 8)
	require.NoError(t, err)

	ipp := cfg.ItemsPerPlaintext()
	offset := cfg.CalculateItemOffset(ipp + 3)
	require.Equal(t, 3*256, offset)
}

func TestNextPowerOfTwoAndCeilLog2(t *testing.T) {
	require.Equal(t, 1, NextPowerOfTwo(0))
	require.Equal(t, 1, NextPowerOfTwo(1))
	require.Equal(t, 4, NextPowerOfTwo(3))
	require.Equal(t, 8, NextPowerOfTwo(8))

	require.Equal(t, 0, CeilLog2(1))
	require.Equal(t, 3, CeilLog2(8))
	require.Equal(t, 4, CeilLog2(9))
}
