// Package heengine is a thin adapter over github.com/tuneinsight/lattigo/v6's
// BGV scheme (BGV is the RNS/NTT-friendly sibling of BFV lattigo ships).
// Other packages in this module take their scheme, key and ciphertext types
// from here; internal/database and internal/reencoder additionally import
// lattigo's ring package for direct polynomial access.
package heengine

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"

	"bfvpir/internal/params"
	"bfvpir/internal/pirerr"
)

// Plaintext and Ciphertext are re-exported so callers need not import
// lattigo's rlwe package.
type Plaintext = rlwe.Plaintext
type Ciphertext = rlwe.Ciphertext
type SecretKey = rlwe.SecretKey
type PublicKey = rlwe.PublicKey
type GaloisKey = rlwe.GaloisKey
type RelinearizationKey = rlwe.RelinearizationKey

// Context bundles the derived HE parameters so client and server pass one
// struct instead of several loose arguments.
type Context struct {
	Params bgv.Parameters
}

// NewContext builds a Context from the PIR Config's HE literal.
func NewContext(cfg *params.Config) (*Context, error) {
	lit := bgv.ParametersLiteral{
		LogN:             cfg.HE.LogN,
		LogQ:             cfg.HE.LogQ,
		LogP:             cfg.HE.LogP,
		PlaintextModulus: cfg.HE.PlaintextModulus,
	}
	p, err := bgv.NewParametersFromLiteral(lit)
	if err != nil {
		return nil, pirerr.Wrap(err, "construct HE parameters")
	}
	return &Context{Params: p}, nil
}

// N is the poly_modulus_degree.
func (c *Context) N() int { return c.Params.N() }

// PlaintextModulus is t.
func (c *Context) PlaintextModulus() uint64 { return c.Params.PlaintextModulus() }

// MaxLevel is the top of the ciphertext modulus chain.
func (c *Context) MaxLevel() int { return c.Params.MaxLevel() }

// KeyPair generates a fresh secret/public key pair.
func (c *Context) KeyPair() (*SecretKey, *PublicKey) {
	kgen := rlwe.NewKeyGenerator(c.Params)
	return kgen.GenKeyPairNew()
}

// GaloisElement returns the Galois element of the automorphism x -> x^k
// (k odd), reduced mod 2N (needed to build the {N/2^j+1} set a packed
// query's Galois keys require).
func (c *Context) GaloisElement(k int) uint64 {
	return uint64(k) & uint64(2*c.N()-1)
}

// GenGaloisKeys derives Galois keys for the given Galois elements.
func (c *Context) GenGaloisKeys(sk *SecretKey, galEls []uint64) []*GaloisKey {
	kgen := rlwe.NewKeyGenerator(c.Params)
	return kgen.GenGaloisKeysNew(galEls, sk)
}

// GenRelinearizationKey derives the relinearisation key used to collapse a
// size-3 ciphertext (post ct×ct multiply) back to size 2.
func (c *Context) GenRelinearizationKey(sk *SecretKey) *RelinearizationKey {
	kgen := rlwe.NewKeyGenerator(c.Params)
	return kgen.GenRelinearizationKeyNew(sk)
}

// NewEvaluator builds an Evaluator bound to the given key material. rlk may
// be nil (Variant B / oblivious-expansion-only evaluators do not need a
// relinearisation key).
func (c *Context) NewEvaluator(rlk *RelinearizationKey, gks []*GaloisKey) *Evaluator {
	evk := rlwe.NewMemEvaluationKeySet(rlk, gks...)
	return &Evaluator{inner: bgv.NewEvaluator(c.Params, evk, false), ctx: c}
}

// Evaluator wraps bgv.Evaluator with a named verb set (multiply_plain,
// multiply, relinearize_inplace, apply_galois_inplace), each wrapped so
// callers get a consistent, kind-tagged error.
type Evaluator struct {
	inner *bgv.Evaluator
	ctx   *Context
}

// MultiplyPlain is multiply_plain(ct, pt) from the §6 contract.
func (e *Evaluator) MultiplyPlain(ct *Ciphertext, pt *Plaintext, out *Ciphertext) error {
	if err := e.inner.Mul(ct, pt, out); err != nil {
		return pirerr.Wrap(err, "multiply_plain")
	}
	return nil
}

// Multiply is the ct×ct multiply verb, producing a size-3 ciphertext.
func (e *Evaluator) Multiply(a, b *Ciphertext, out *Ciphertext) error {
	if err := e.inner.Mul(a, b, out); err != nil {
		return pirerr.Wrap(err, "multiply")
	}
	return nil
}

// Add is the homomorphic-add verb used to accumulate partial dot products.
func (e *Evaluator) Add(a, b *Ciphertext, out *Ciphertext) error {
	if err := e.inner.Add(a, b, out); err != nil {
		return pirerr.Wrap(err, "add")
	}
	return nil
}

// Sub is used by multiply_power_of_x's c - substitute_power_x(c, g_j) step.
func (e *Evaluator) Sub(a, b *Ciphertext, out *Ciphertext) error {
	if err := e.inner.Sub(a, b, out); err != nil {
		return pirerr.Wrap(err, "sub")
	}
	return nil
}

// RelinearizeInplace collapses a size-3 ciphertext back to size 2.
func (e *Evaluator) RelinearizeInplace(ct *Ciphertext) error {
	if err := e.inner.Relinearize(ct, ct); err != nil {
		return pirerr.Wrap(err, "relinearize")
	}
	return nil
}

// ApplyGaloisInplace is substitute_power_x: applies x -> x^galEl to ct.
func (e *Evaluator) ApplyGaloisInplace(ct *Ciphertext, galEl uint64) error {
	if err := e.inner.Automorphism(ct, galEl, ct); err != nil {
		return pirerr.InvalidWrap(err, "apply_galois_inplace(%d): missing galois key", galEl)
	}
	return nil
}

// ApplyGalois is the non-mutating counterpart, returning a fresh ciphertext.
func (e *Evaluator) ApplyGalois(ct *Ciphertext, galEl uint64) (*Ciphertext, error) {
	out := e.NewCiphertextLike(ct)
	if err := e.inner.Automorphism(ct, galEl, out); err != nil {
		return nil, pirerr.InvalidWrap(err, "apply_galois(%d): missing galois key", galEl)
	}
	return out, nil
}

// NewCiphertextLike allocates a fresh ciphertext at ct's level and degree.
func (e *Evaluator) NewCiphertextLike(ct *Ciphertext) *Ciphertext {
	return bgv.NewCiphertext(e.ctx.Params, ct.Degree(), ct.Level())
}

// NewCiphertextFromPolys rewraps recomposed ring polynomials (e.g. the
// output of reencoder.Reencoder.Decode) as a ciphertext at level, the
// reverse of indexing a ciphertext's Value slice directly.
func (c *Context) NewCiphertextFromPolys(polys []*ring.Poly, level int) *Ciphertext {
	ct := bgv.NewCiphertext(c.Params, len(polys)-1, level)
	for i, p := range polys {
		ct.Value[i] = *p
	}
	return ct
}

// Encryptor/Decryptor wrap rlwe's directly; they need no spec-renaming
// since encrypt/decrypt already match §6's verbs one-to-one.
type Encryptor struct{ inner *rlwe.Encryptor }
type Decryptor struct{ inner *rlwe.Decryptor }

func (c *Context) NewEncryptor(pk *PublicKey) *Encryptor {
	return &Encryptor{inner: rlwe.NewEncryptor(c.Params, pk)}
}

func (c *Context) NewDecryptor(sk *SecretKey) *Decryptor {
	return &Decryptor{inner: rlwe.NewDecryptor(c.Params, sk)}
}

func (e *Encryptor) Encrypt(pt *Plaintext) (*Ciphertext, error) {
	ct, err := e.inner.EncryptNew(pt)
	if err != nil {
		return nil, pirerr.Wrap(err, "encrypt")
	}
	return ct, nil
}

func (d *Decryptor) Decrypt(ct *Ciphertext) *Plaintext {
	return d.inner.DecryptNew(ct)
}

// Encoder wraps bgv.Encoder; Encode/Decode operate on []uint64 slot
// vectors, the representation the integer and string encoders pack their
// coefficients into.
type Encoder struct {
	inner *bgv.Encoder
	ctx   *Context
}

func (c *Context) NewEncoder() *Encoder {
	return &Encoder{inner: bgv.NewEncoder(c.Params), ctx: c}
}

func (c *Context) NewPlaintext(level int) *Plaintext {
	return bgv.NewPlaintext(c.Params, level)
}

func (e *Encoder) Encode(coeffs []uint64, pt *Plaintext) error {
	if err := e.inner.Encode(coeffs, pt); err != nil {
		return pirerr.Wrap(err, "encode")
	}
	return nil
}

func (e *Encoder) Decode(pt *Plaintext, coeffs []uint64) error {
	if err := e.inner.Decode(pt, coeffs); err != nil {
		return pirerr.Wrap(err, "decode")
	}
	return nil
}

// MultiplyPowerOfX multiplies each polynomial of ct by x^k in
// Z_q[x]/(x^N+1): a cyclic left shift with wrap-around negation for k > 0
// (because x^N = -1), delegating to lattigo's own ring.MultByMonomial which
// implements exactly that shift-and-negate at the CRT level — no keys
// required, pure modular rearrangement.
func (e *Evaluator) MultiplyPowerOfX(ct *Ciphertext, k int) *Ciphertext {
	ringQ := e.ctx.Params.RingQ().AtLevel(ct.Level())
	out := e.NewCiphertextLike(ct)
	*out.MetaData = *ct.MetaData
	for i := range ct.Value {
		ringQ.MultByMonomial(&ct.Value[i], k, &out.Value[i])
	}
	return out
}

// Summarize is a debug-friendly one-liner for tracing ciphertext state
// after each operation.
func Summarize(ct *Ciphertext) string {
	return fmt.Sprintf("level=%d degree=%d", ct.Level(), ct.Degree())
}
