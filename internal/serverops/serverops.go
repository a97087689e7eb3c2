// Package serverops implements substitute_power_x, multiply_power_of_x and
// oblivious_expansion: the three ciphertext-algebra primitives the server
// orchestrator composes, built over this module's heengine.Evaluator
// surface.
package serverops

import (
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/pirerr"
)

// GaloisEvaluator is the subset of heengine.Evaluator oblivious_expansion
// and substitute_power_x need.
type GaloisEvaluator interface {
	ApplyGalois(ct *heengine.Ciphertext, galEl uint64) (*heengine.Ciphertext, error)
	Add(a, b *heengine.Ciphertext, out *heengine.Ciphertext) error
	Sub(a, b *heengine.Ciphertext, out *heengine.Ciphertext) error
	NewCiphertextLike(ct *heengine.Ciphertext) *heengine.Ciphertext
}

// MonomialEvaluator is implemented by heengine.Context-bound helpers that
// can shift a ciphertext's polynomials by x^k without any key material.
type MonomialEvaluator interface {
	MultiplyPowerOfX(ct *heengine.Ciphertext, k int) *heengine.Ciphertext
}

// SubstitutePowerX applies the ring automorphism x -> x^galEl to every
// polynomial of ct. galEl is the Galois element of the automorphism as
// returned by ctx.GaloisElement(k), i.e. k reduced mod 2N.
func SubstitutePowerX(eval GaloisEvaluator, ct *heengine.Ciphertext, galEl uint64) (*heengine.Ciphertext, error) {
	out, err := eval.ApplyGalois(ct, galEl)
	if err != nil {
		return nil, pirerr.InvalidWrap(err, "substitute_power_x(%d)", galEl)
	}
	return out, nil
}

// ObliviousExpansion is the Angel et al. expansion algorithm: given a
// ciphertext encrypting n nonzero coefficients at arbitrary positions,
// returns n ciphertexts where the i-th encrypts coefficient i times
// 2^ceil(log2(n)).
func ObliviousExpansion(gEval GaloisEvaluator, mEval MonomialEvaluator, ctx *heengine.Context, packed *heengine.Ciphertext, n int) ([]*heengine.Ciphertext, error) {
	l := params.CeilLog2(n)
	N := ctx.N()

	ciphers := []*heengine.Ciphertext{packed}
	for j := 0; j < l; j++ {
		galEl := ctx.GaloisElement(N/(1<<uint(j)) + 1)
		newCiphers := make([]*heengine.Ciphertext, 0, len(ciphers)*2)
		for _, c := range ciphers {
			subst, err := SubstitutePowerX(gEval, c, galEl)
			if err != nil {
				return nil, err
			}

			c0 := gEval.NewCiphertextLike(c)
			if err := gEval.Add(c, subst, c0); err != nil {
				return nil, err
			}

			diff := gEval.NewCiphertextLike(c)
			if err := gEval.Sub(c, subst, diff); err != nil {
				return nil, err
			}
			c1 := mEval.MultiplyPowerOfX(diff, -(1 << uint(j)))

			newCiphers = append(newCiphers, c0, c1)
		}
		ciphers = newCiphers
	}

	if len(ciphers) > n {
		ciphers = ciphers[:n]
	}
	return ciphers, nil
}
