// Package database holds the hypercube of encoded plaintexts and runs the
// recursive multi-dimensional dot product against a selection vector, in
// both algorithmic variants: ciphertext-ciphertext multiply plus
// relinearize, or ciphertext-plaintext only via digit reencoding.
package database

import (
	"math/big"

	"github.com/tuneinsight/lattigo/v6/ring"

	"bfvpir/internal/encoding"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/pirerr"
	"bfvpir/internal/reencoder"
)

// Database holds the hypercube of encoded plaintexts. Populated once at
// construction via NewFromIntegers/NewFromBytes; read-only thereafter — no
// mutex is needed because nothing mutates it after New* returns.
type Database struct {
	cfg        *params.Config
	ctx        *heengine.Context
	plaintexts []*heengine.Plaintext
}

// NewFromIntegers populates the database in integer mode: one raw value
// per plaintext.
func NewFromIntegers(cfg *params.Config, ctx *heengine.Context, values []*big.Int) (*Database, error) {
	if len(values) != cfg.NumItems {
		return nil, pirerr.Invalid("database size %d does not match params num_items %d", len(values), cfg.NumItems)
	}
	ie := encoding.NewIntegerEncoder(ctx)
	pts := make([]*heengine.Plaintext, len(values))
	for i, v := range values {
		pt := ctx.NewPlaintext(ctx.MaxLevel())
		if err := ie.Encode(v, pt); err != nil {
			return nil, pirerr.InvalidWrap(err, "encode database item %d", i)
		}
		pts[i] = pt
	}
	return finish(cfg, ctx, pts)
}

// NewFromBytes populates the database in string mode: items_per_plaintext
// items are concatenated into each plaintext.
func NewFromBytes(cfg *params.Config, ctx *heengine.Context, items [][]byte) (*Database, error) {
	if len(items) != cfg.NumItems {
		return nil, pirerr.Invalid("database size %d does not match params num_items %d", len(items), cfg.NumItems)
	}
	se := encoding.NewStringEncoder(ctx, cfg.BitsPerCoeff)
	itemsPerPt := cfg.ItemsPerPlaintext()
	pts := make([]*heengine.Plaintext, cfg.NumPlaintexts())
	for i := range pts {
		start := i * itemsPerPt
		end := start + itemsPerPt
		if end > len(items) {
			end = len(items)
		}
		pt := ctx.NewPlaintext(ctx.MaxLevel())
		if err := se.Encode(items[start:end], pt); err != nil {
			return nil, pirerr.InvalidWrap(err, "encode database plaintext %d", i)
		}
		pts[i] = pt
	}
	return finish(cfg, ctx, pts)
}

func finish(cfg *params.Config, ctx *heengine.Context, pts []*heengine.Plaintext) (*Database, error) {
	// No NTT-form or coefficient-form conversion is done here: in both
	// variants every entry keeps the form heengine's encoder produced.
	if !cfg.UseCiphertextMultiplication {
		_ = ctx
	}
	return &Database{cfg: cfg, ctx: ctx, plaintexts: pts}, nil
}

// Evaluator is the subset of heengine.Evaluator the dot product needs.
type Evaluator interface {
	MultiplyPlain(ct *heengine.Ciphertext, pt *heengine.Plaintext, out *heengine.Ciphertext) error
	Multiply(a, b *heengine.Ciphertext, out *heengine.Ciphertext) error
	Add(a, b *heengine.Ciphertext, out *heengine.Ciphertext) error
	RelinearizeInplace(ct *heengine.Ciphertext) error
	NewCiphertextLike(ct *heengine.Ciphertext) *heengine.Ciphertext
}

// Multiply runs the recursive dot product of sv against the database.
// relinKeysProvided selects whether Variant A relinearises after each
// ct×ct multiply; reenc is required (non-nil) iff
// !cfg.UseCiphertextMultiplication, selecting Variant B.
func (db *Database) Multiply(sv []*heengine.Ciphertext, eval Evaluator, relinKeysProvided bool, reenc *reencoder.Reencoder) ([]*heengine.Ciphertext, error) {
	if len(sv) != db.cfg.DimSum() {
		return nil, pirerr.Invalid("selection vector size %d does not match dim_sum %d", len(sv), db.cfg.DimSum())
	}

	m := &multiplier{
		db:                db.plaintexts,
		sv:                sv,
		eval:              eval,
		reenc:             reenc,
		relinKeysProvided: relinKeysProvided,
		expRatio:          1,
	}
	if reenc != nil {
		m.expRatio = reenc.ExpansionRatio()
	}
	m.cursor = 0
	return m.multiply(db.cfg.Dimensions, 0, 0)
}

// multiplier is the Go counterpart of DatabaseMultiplier: the database
// cursor is a plain field threaded through recursive calls instead of a
// class-scoped C++ iterator, since Go closures capture by reference anyway.
type multiplier struct {
	db                []*heengine.Plaintext
	sv                []*heengine.Ciphertext
	eval              Evaluator
	reenc             *reencoder.Reencoder
	relinKeysProvided bool
	expRatio          int
	cursor            int
}

// multiply mirrors DatabaseMultiplier::multiply(dimensions, selection_vector_it, depth).
// svOffset is the start of this recursion level's selection-vector slice.
func (m *multiplier) multiply(dims []int, svOffset int, depth int) ([]*heengine.Ciphertext, error) {
	thisDim := dims[0]
	remaining := dims[1:]

	var result []*heengine.Ciphertext
	firstPass := true

	for i := 0; i < thisDim; i++ {
		if m.cursor >= len(m.db) {
			break // ragged last row: unused selection-vector slots are zero
		}
		var tempCt []*heengine.Ciphertext
		if len(remaining) == 0 {
			// base case: ct×pt multiply against the database
			out := m.eval.NewCiphertextLike(m.sv[svOffset+i])
			if err := m.eval.MultiplyPlain(m.sv[svOffset+i], m.db[m.cursor], out); err != nil {
				return nil, err
			}
			m.cursor++
			tempCt = []*heengine.Ciphertext{out}
		} else {
			lower, err := m.multiply(remaining, svOffset+thisDim, depth+1)
			if err != nil {
				return nil, err
			}
			if m.reenc == nil {
				out := m.eval.NewCiphertextLike(lower[0])
				if err := m.eval.Multiply(lower[0], m.sv[svOffset+i], out); err != nil {
					return nil, err
				}
				if m.relinKeysProvided {
					if err := m.eval.RelinearizeInplace(out); err != nil {
						return nil, err
					}
				}
				tempCt = []*heengine.Ciphertext{out}
			} else {
				tempCt = make([]*heengine.Ciphertext, 0, len(lower)*m.expRatio*(lower[0].Degree()+1))
				for _, ct := range lower {
					digits, err := m.reenc.Encode(ct, ringPolys(ct))
					if err != nil {
						return nil, err
					}
					for _, pt := range digits {
						out := m.eval.NewCiphertextLike(m.sv[svOffset+i])
						if err := m.eval.MultiplyPlain(m.sv[svOffset+i], pt, out); err != nil {
							return nil, err
						}
						tempCt = append(tempCt, out)
					}
				}
			}
		}

		if firstPass {
			result = tempCt
			firstPass = false
		} else {
			for j := range result {
				if err := m.eval.Add(result[j], tempCt[j], result[j]); err != nil {
					return nil, err
				}
			}
		}
	}

	return result, nil
}

// ringPolys extracts the ring.Poly slice backing a ciphertext's Q-form
// components, the shape reencoder.Encode needs; kept here so database
// doesn't need to know lattigo's ciphertext field layout beyond this one
// accessor.
func ringPolys(ct *heengine.Ciphertext) []*ring.Poly {
	polys := make([]*ring.Poly, ct.Degree()+1)
	for i := range polys {
		polys[i] = &ct.Value[i]
	}
	return polys
}
