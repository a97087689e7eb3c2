// Package encoding holds the integer/biguint encoder and the string
// encoder: two concrete implementations of a common capability, rather
// than a generic type-indexed registry.
package encoding

import (
	"math/big"

	"bfvpir/internal/heengine"
	"bfvpir/internal/pirerr"
)

// IntegerEncoder packs a non-negative big.Int into plaintext coefficients
// using base = plain_modulus, via a divrem/Horner round trip.
type IntegerEncoder struct {
	ctx       *heengine.Context
	encoder   *heengine.Encoder
	plainMod  uint64
	polyCount int
}

// NewIntegerEncoder builds an IntegerEncoder bound to ctx's plaintext
// modulus and ring degree.
func NewIntegerEncoder(ctx *heengine.Context) *IntegerEncoder {
	return &IntegerEncoder{
		ctx:       ctx,
		encoder:   ctx.NewEncoder(),
		plainMod:  ctx.PlaintextModulus(),
		polyCount: ctx.N(),
	}
}

// Encode writes the base-t expansion of x into pt's coefficients
// [0, ceil(log_t x)), always resizing the destination to the full ring
// degree regardless of value size; a trimmed-size encoding is not required
// for correctness and callers must not assume either size.
func (e *IntegerEncoder) Encode(x *big.Int, pt *heengine.Plaintext) error {
	if x.Sign() < 0 {
		return pirerr.Invalid("IntegerEncoder.Encode: value must be non-negative")
	}
	coeffs := make([]uint64, e.polyCount)
	mod := new(big.Int).SetUint64(e.plainMod)
	rem := new(big.Int)
	v := new(big.Int).Set(x)
	i := 0
	for v.Sign() != 0 {
		if i >= e.polyCount {
			return pirerr.Invalid("IntegerEncoder.Encode: value does not fit in %d coefficients", e.polyCount)
		}
		v.DivMod(v, mod, rem)
		coeffs[i] = rem.Uint64()
		i++
	}
	return e.encoder.Encode(coeffs, pt)
}

// Decode computes Σ pt[i]·tⁱ via Horner's method, the exact inverse of
// Encode.
func (e *IntegerEncoder) Decode(pt *heengine.Plaintext) (*big.Int, error) {
	coeffs := make([]uint64, e.polyCount)
	if err := e.encoder.Decode(pt, coeffs); err != nil {
		return nil, err
	}
	mod := new(big.Int).SetUint64(e.plainMod)
	result := new(big.Int)
	coeffVal := new(big.Int)
	for i := len(coeffs) - 1; i >= 0; i-- {
		result.Mul(result, mod)
		coeffVal.SetUint64(coeffs[i])
		result.Add(result, coeffVal)
	}
	return result, nil
}

// EncodeUint64 is the fast path for values that fit a machine word.
func (e *IntegerEncoder) EncodeUint64(x uint64, pt *heengine.Plaintext) error {
	return e.Encode(new(big.Int).SetUint64(x), pt)
}
