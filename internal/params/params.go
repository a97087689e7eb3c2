// Package params fixes the HE parameters and derives hypercube dimensions,
// items-per-plaintext and bits-per-coefficient from the full set of
// PIR-level knobs.
package params

import (
	"bfvpir/internal/pirerr"
)

// HEParamsLiteral mirrors bgv.ParametersLiteral closely enough to build one
// from it; kept separate so internal/params has no hard lattigo import and
// internal/heengine owns the actual translation.
type HEParamsLiteral struct {
	LogN             int
	LogQ             []int
	LogP             []int
	PlaintextModulus uint64
}

// Config is the immutable PIR parameters record.
type Config struct {
	NumItems                    int
	BytesPerItem                int // 0 => integer mode
	Dimensions                  []int
	BitsPerCoeff                int
	UseCiphertextMultiplication bool
	HE                          HEParamsLiteral

	// derived, cached at construction
	itemsPerPlaintext int
	numPlaintexts     int
	dimSum            int
}

// NewConfig validates its inputs and constructs a Config.
func NewConfig(numItems, bytesPerItem int, dimensions []int, he HEParamsLiteral, useCtMult bool, bitsPerCoeff int) (*Config, error) {
	if numItems <= 0 {
		return nil, pirerr.Invalid("num_items must be positive, got %d", numItems)
	}
	if len(dimensions) == 0 {
		return nil, pirerr.Invalid("dimensions must have at least one entry")
	}
	for _, d := range dimensions {
		if d < 1 {
			return nil, pirerr.Invalid("dimension entries must be >= 1, got %d", d)
		}
	}
	n := 1 << uint(he.LogN)
	if n&(n-1) != 0 {
		return nil, pirerr.Invalid("poly_modulus_degree must be a power of two")
	}
	if bitsPerCoeff <= 0 {
		bitsPerCoeff = CeilLog2(int(he.PlaintextModulus)+1) - 1 // floor(log2 t)
	}

	cfg := &Config{
		NumItems:                    numItems,
		BytesPerItem:                bytesPerItem,
		Dimensions:                  append([]int(nil), dimensions...),
		BitsPerCoeff:                bitsPerCoeff,
		UseCiphertextMultiplication: useCtMult,
		HE:                          he,
	}
	cfg.itemsPerPlaintext = cfg.computeItemsPerPlaintext(n)
	if cfg.itemsPerPlaintext <= 0 {
		return nil, pirerr.Invalid("item size %d exceeds max bytes per plaintext", bytesPerItem)
	}
	cfg.numPlaintexts = (numItems + cfg.itemsPerPlaintext - 1) / cfg.itemsPerPlaintext

	prod := 1
	for _, d := range cfg.Dimensions {
		prod *= d
		cfg.dimSum += d
	}
	if prod < cfg.numPlaintexts {
		return nil, pirerr.Invalid("dimensions %v (product %d) too small for %d plaintexts", cfg.Dimensions, prod, cfg.numPlaintexts)
	}
	return cfg, nil
}

func (c *Config) computeItemsPerPlaintext(n int) int {
	return ItemsPerPlaintextFor(n, c.BitsPerCoeff, c.BytesPerItem)
}

func (c *Config) maxBytesPerPlaintextFor(n int) int {
	return (n * c.BitsPerCoeff) / 8
}

// ItemsPerPlaintextFor computes items_per_plaintext ahead of constructing a
// Config, so callers can size the hypercube dimensions against the number
// of plaintexts (not the raw item count) before dimensions are known -
// dimensions being a required NewConfig input rather than something it
// derives itself.
func ItemsPerPlaintextFor(n, bitsPerCoeff, bytesPerItem int) int {
	if bytesPerItem == 0 {
		return 1
	}
	max := (n * bitsPerCoeff) / 8
	if bytesPerItem > max {
		return 0
	}
	return max / bytesPerItem
}

// NumPlaintextsFor is ⌈numItems / itemsPerPlaintext⌉, the database size
// CalculateDimensions should be called on for a multi-item-per-plaintext
// (string/byte mode) database.
func NumPlaintextsFor(numItems, itemsPerPlaintext int) int {
	if itemsPerPlaintext <= 0 {
		return 0
	}
	return (numItems + itemsPerPlaintext - 1) / itemsPerPlaintext
}

// ItemsPerPlaintext is the number of items packed into one plaintext.
func (c *Config) ItemsPerPlaintext() int { return c.itemsPerPlaintext }

// MaxBytesPerPlaintext is ⌊N·bits_per_coeff/8⌋.
func (c *Config) MaxBytesPerPlaintext() int {
	return c.maxBytesPerPlaintextFor(1 << uint(c.HE.LogN))
}

// NumPlaintexts is num_pt = ⌈num_items / items_per_plaintext⌉.
func (c *Config) NumPlaintexts() int { return c.numPlaintexts }

// DimSum is Σ dᵢ.
func (c *Config) DimSum() int { return c.dimSum }

// N returns the poly_modulus_degree.
func (c *Config) N() int { return 1 << uint(c.HE.LogN) }

// CalculateDimensions implements a near-balanced factorisation:
// dᵢ = ceil(dbsize^(1/i)) applied iteratively from i=D down to 1,
// updating dbsize <- ceil(dbsize/dᵢ) each step.
func CalculateDimensions(dbSize, d int) []int {
	if d <= 0 {
		return nil
	}
	dims := make([]int, d)
	remaining := dbSize
	for i := d; i >= 1; i-- {
		di := ceilRoot(remaining, i)
		dims[d-i] = di
		remaining = (remaining + di - 1) / di
	}
	return dims
}

// CalculateIndices returns per-dimension coordinates for flatIndex, computed
// by successive division/mod in the same order as dims:
// results[k] = (idx / Π_{j>k} dims[j]) mod dims[k].
func CalculateIndices(dims []int, flatIndex int) []int {
	n := len(dims)
	suffix := make([]int, n+1)
	suffix[n] = 1
	for k := n - 1; k >= 0; k-- {
		suffix[k] = suffix[k+1] * dims[k]
	}
	out := make([]int, n)
	for k := 0; k < n; k++ {
		out[k] = (flatIndex / suffix[k+1]) % dims[k]
	}
	return out
}

// CalculateItemOffset returns the byte offset of flatIndex's item within
// its plaintext.
func (c *Config) CalculateItemOffset(flatIndex int) int {
	return (flatIndex % c.itemsPerPlaintext) * c.BytesPerItem
}
