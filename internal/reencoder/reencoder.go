// Package reencoder decomposes a ciphertext's polynomial coefficients into
// E plaintext "digits" and recomposes them, re-expressing a digit
// decomposition over lattigo's CRT-represented ring.Poly.
package reencoder

import (
	"math/bits"

	"github.com/tuneinsight/lattigo/v6/ring"

	"bfvpir/internal/heengine"
	"bfvpir/internal/pirerr"
)

// Reencoder computes the expansion ratio E for the bound Context and
// encodes/decodes ciphertexts to/from plaintext digits.
type Reencoder struct {
	ctx         *heengine.Context
	ringQ       *ring.Ring
	coeffCount  int
	ptBitsPerCo int
	ptBitmask   uint64
}

// New builds a Reencoder bound to ctx.
func New(ctx *heengine.Context, ringQ *ring.Ring, coeffCount int) *Reencoder {
	bpc := bitLen(ctx.PlaintextModulus()) - 1
	return &Reencoder{
		ctx:         ctx,
		ringQ:       ringQ,
		coeffCount:  coeffCount,
		ptBitsPerCo: bpc,
		ptBitmask:   (uint64(1) << uint(bpc)) - 1,
	}
}

func bitLen(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// localExpansionRatio is ceil(log2(qi) / bpc) for one CRT prime.
func (r *Reencoder) localExpansionRatio(qi uint64) int {
	qiBits := bits.Len64(qi)
	return (qiBits + r.ptBitsPerCo - 1) / r.ptBitsPerCo
}

// ExpansionRatio is E = Σᵢ ceil(log2(qᵢ)/bpc) across CRT primes.
func (r *Reencoder) ExpansionRatio() int {
	e := 0
	for _, qi := range r.ringQ.Modulus {
		e += r.localExpansionRatio(qi)
	}
	return e
}

// Encode decomposes ct's polynomials into E·|ct| plaintexts, ordered
// (polyIndex, crtPrimeIndex, digit) with digit least-significant first.
func (r *Reencoder) Encode(ct *heengine.Ciphertext, polys []*ring.Poly) ([]*heengine.Plaintext, error) {
	n := r.ExpansionRatio() * len(polys)
	result := make([]*heengine.Plaintext, 0, n)
	enc := r.ctx.NewEncoder()

	for _, poly := range polys {
		for modIdx, qi := range r.ringQ.Modulus {
			local := r.localExpansionRatio(qi)
			shift := uint(0)
			for i := 0; i < local; i++ {
				coeffs := make([]uint64, r.coeffCount)
				for c := 0; c < r.coeffCount; c++ {
					coeffs[c] = (poly.Coeffs[modIdx][c] >> shift) & r.ptBitmask
				}
				pt := r.ctx.NewPlaintext(0)
				if err := enc.Encode(coeffs, pt); err != nil {
					return nil, pirerr.Wrap(err, "reencoder encode digit")
				}
				result = append(result, pt)
				shift += uint(r.ptBitsPerCo)
			}
		}
	}
	return result, nil
}

// Decode inverts Encode: sums pt[k] << (digit*bpc) per (poly, crtPrimeIndex,
// coeff). Requires len(pts) == ExpansionRatio()*polyCount.
func (r *Reencoder) Decode(pts []*heengine.Plaintext, polyCount int) ([]*ring.Poly, error) {
	e := r.ExpansionRatio()
	if len(pts) != e*polyCount {
		return nil, pirerr.Invalid("reencoder Decode: want %d plaintexts, got %d", e*polyCount, len(pts))
	}

	enc := r.ctx.NewEncoder()
	out := make([]*ring.Poly, polyCount)
	idx := 0
	for p := 0; p < polyCount; p++ {
		poly := ring.NewPoly(r.coeffCount, len(r.ringQ.Modulus)-1)
		for modIdx, qi := range r.ringQ.Modulus {
			local := r.localExpansionRatio(qi)
			shift := uint(0)
			for i := 0; i < local; i++ {
				coeffs := make([]uint64, r.coeffCount)
				if err := enc.Decode(pts[idx], coeffs); err != nil {
					return nil, pirerr.Wrap(err, "reencoder decode digit")
				}
				for c := 0; c < r.coeffCount; c++ {
					if shift == 0 {
						poly.Coeffs[modIdx][c] = coeffs[c]
					} else {
						poly.Coeffs[modIdx][c] += coeffs[c] << shift
					}
				}
				idx++
				shift += uint(r.ptBitsPerCo)
			}
		}
		out[p] = poly
	}
	return out, nil
}
