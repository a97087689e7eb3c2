// Package client builds packed selection-vector ciphertexts, issues
// Galois and relinearisation keys, and decodes responses.
package client

import (
	"math/big"

	"bfvpir/internal/encoding"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/pirerr"
	"bfvpir/internal/protocol"
	"bfvpir/internal/reencoder"
)

// reencodedCiphertextPolyCount is the ciphertext size the database's
// non-leaf reencoding levels always produce (fresh encryptions and
// multiply_plain outputs never grow past degree 1).
const reencodedCiphertextPolyCount = 2

// Client holds the key material and HE context needed to build requests
// and decode responses for one PIR session.
type Client struct {
	cfg *params.Config
	ctx *heengine.Context
	sk  *heengine.SecretKey
	pk  *heengine.PublicKey
}

// New generates a fresh key pair for cfg and returns a Client bound to it.
func New(cfg *params.Config, ctx *heengine.Context) *Client {
	sk, pk := ctx.KeyPair()
	return &Client{cfg: cfg, ctx: ctx, sk: sk, pk: pk}
}

// CreateRequest builds packed selection-vector ciphertexts for the given
// flat indices, plus the Galois and (when Variant A is in use)
// relinearisation keys the server will need.
func (c *Client) CreateRequest(indices []int) (*protocol.Request, error) {
	N := c.ctx.N()
	dims := c.cfg.Dimensions
	dimSum := c.cfg.DimSum()

	queries := make([]protocol.Query, len(indices))
	for qi, idx := range indices {
		if idx < 0 || idx >= c.cfg.NumItems {
			return nil, pirerr.Invalid("index %d out of range [0,%d)", idx, c.cfg.NumItems)
		}
		ptIndex := idx / c.cfg.ItemsPerPlaintext()
		q, err := c.createQueryFor(ptIndex, dims, dimSum, N)
		if err != nil {
			return nil, err
		}
		queries[qi] = q
	}

	galEls := make([]uint64, params.CeilLog2(N))
	for j := range galEls {
		galEls[j] = c.ctx.GaloisElement(N/(1<<uint(j)) + 1)
	}
	gks := c.ctx.GenGaloisKeys(c.sk, galEls)

	req := &protocol.Request{Queries: queries, GaloisKeys: gks}
	if c.cfg.UseCiphertextMultiplication {
		req.RelinKey = c.ctx.GenRelinearizationKey(c.sk)
	}
	return req, nil
}

// createQueryFor computes per-dimension coordinates, places each
// dimension's "hot" slot into the right plaintext (splitting at
// poly_modulus_degree boundaries), and bakes m⁻¹ mod t into each hot
// coefficient.
func (c *Client) createQueryFor(ptIndex int, dims []int, dimSum, N int) (protocol.Query, error) {
	indices := params.CalculateIndices(dims, ptIndex)
	remDims := append([]int(nil), dims...)
	remIndices := indices

	numCiphertexts := dimSum/N + 1
	encoder := c.ctx.NewEncoder()
	encryptor := c.ctx.NewEncryptor(c.pk)

	q := protocol.Query{Ciphertexts: make([]*heengine.Ciphertext, 0, numCiphertexts)}
	offset := 0
	plainMod := c.ctx.PlaintextModulus()

	for cIdx := 0; cIdx < numCiphertexts; cIdx++ {
		if cIdx == numCiphertexts-1 && dimSum%N == 0 {
			// dim_sum mod N == 0: the last plaintext is entirely zero
			// and need not be sent.
			break
		}
		coeffs := make([]uint64, N)

		for len(remIndices) > 0 {
			if remIndices[0]+offset >= N {
				// no more slots in this polynomial; carry the remainder of
				// this dimension's coordinate and width into the next one
				remIndices[0] -= N - offset
				remDims[0] -= N - offset
				offset = 0
				break
			}

			var m int
			if cIdx < numCiphertexts-1 {
				m = N
			} else {
				m = params.NextPowerOfTwo(dimSum % N)
			}

			inv, err := modInverse(uint64(m), plainMod)
			if err != nil {
				return protocol.Query{}, pirerr.Wrap(err, "invert m=%d mod t=%d", m, plainMod)
			}
			coeffs[remIndices[0]+offset] = inv

			offset += remDims[0]
			remIndices = remIndices[1:]
			remDims = remDims[1:]

			if offset >= N {
				offset -= N
				break
			}
		}

		pt := c.ctx.NewPlaintext(c.ctx.MaxLevel())
		if err := encoder.Encode(coeffs, pt); err != nil {
			return protocol.Query{}, pirerr.Wrap(err, "encode packed query plaintext %d", cIdx)
		}
		ct, err := encryptor.Encrypt(pt)
		if err != nil {
			return protocol.Query{}, err
		}
		q.Ciphertexts = append(q.Ciphertexts, ct)
	}
	return q, nil
}

// modInverse computes m⁻¹ mod t, failing with Internal when gcd(m,t) != 1.
func modInverse(m, t uint64) (uint64, error) {
	mi := new(big.Int).SetUint64(m % t)
	ti := new(big.Int).SetUint64(t)
	inv := new(big.Int).ModInverse(mi, ti)
	if inv == nil {
		return 0, pirerr.New(pirerr.Internal, "no modular inverse", nil)
	}
	return inv.Uint64(), nil
}

// ProcessResponse decrypts each reply and decodes it via the integer or
// string encoder, slicing out the item at calculate_item_offset(idx).
// useStrings selects the decoder. Variant B replies below the top
// dimension arrive as E·|ct| reencoded ciphertexts per level folded into
// the response; foldReply runs the reencoder's decrypt-decode chain
// until one ciphertext remains before the final decode.
func (c *Client) ProcessResponse(resp *protocol.Response, indices []int, useStrings bool, itemSize int) ([][]byte, error) {
	if len(resp.Replies) != len(indices) {
		return nil, pirerr.Invalid("response has %d replies, expected %d", len(resp.Replies), len(indices))
	}
	decryptor := c.ctx.NewDecryptor(c.sk)

	var reenc *reencoder.Reencoder
	if !c.cfg.UseCiphertextMultiplication {
		reenc = reencoder.New(c.ctx, c.ctx.Params.RingQ(), c.ctx.N())
	}

	out := make([][]byte, len(indices))
	if useStrings {
		se := encoding.NewStringEncoder(c.ctx, c.cfg.BitsPerCoeff)
		for i, reply := range resp.Replies {
			final, err := c.foldReply(reenc, reply.Ciphertexts, decryptor)
			if err != nil {
				return nil, pirerr.InvalidWrap(err, "reply %d", i)
			}
			offset := c.cfg.CalculateItemOffset(indices[i])
			bytes, err := se.Decode(decryptor.Decrypt(final), itemSize, offset)
			if err != nil {
				return nil, err
			}
			out[i] = bytes
		}
		return out, nil
	}

	ie := encoding.NewIntegerEncoder(c.ctx)
	for i, reply := range resp.Replies {
		final, err := c.foldReply(reenc, reply.Ciphertexts, decryptor)
		if err != nil {
			return nil, pirerr.InvalidWrap(err, "reply %d", i)
		}
		v, err := ie.Decode(decryptor.Decrypt(final))
		if err != nil {
			return nil, err
		}
		out[i] = v.Bytes()
	}
	return out, nil
}

// foldReply repeatedly decrypts and reencoder.Decodes a reply's
// ciphertexts, each pass recomposing every
// reenc.ExpansionRatio()*reencodedCiphertextPolyCount decrypted digits
// back into one ciphertext, until a single ciphertext remains ready for
// the final decrypt + integer/string decode. Variant A replies (len 1,
// reenc nil) pass through untouched.
func (c *Client) foldReply(reenc *reencoder.Reencoder, cts []*heengine.Ciphertext, decryptor *heengine.Decryptor) (*heengine.Ciphertext, error) {
	if len(cts) == 0 {
		return nil, pirerr.Invalid("empty reply")
	}
	for len(cts) > 1 {
		if reenc == nil {
			return nil, pirerr.Invalid("reply has %d ciphertexts but no reencoder to fold them", len(cts))
		}
		group := reenc.ExpansionRatio() * reencodedCiphertextPolyCount
		if group == 0 || len(cts)%group != 0 {
			return nil, pirerr.Invalid("reply length %d is not a multiple of the reencoder group size %d", len(cts), group)
		}

		next := make([]*heengine.Ciphertext, len(cts)/group)
		for g := range next {
			digits := make([]*heengine.Plaintext, group)
			for i := 0; i < group; i++ {
				digits[i] = decryptor.Decrypt(cts[g*group+i])
			}
			polys, err := reenc.Decode(digits, reencodedCiphertextPolyCount)
			if err != nil {
				return nil, err
			}
			next[g] = c.ctx.NewCiphertextFromPolys(polys, c.ctx.MaxLevel())
		}
		cts = next
	}
	return cts[0], nil
}

// PublicKey exposes the client's public key for out-of-band distribution
// (e.g. a demo that hands it to the server in-process).
func (c *Client) PublicKey() *heengine.PublicKey { return c.pk }
