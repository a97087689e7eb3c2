// Package server runs expansion -> DB multiply -> response assembly for
// each query in a request.
package server

import (
	"log"

	"bfvpir/internal/database"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/pirerr"
	"bfvpir/internal/protocol"
	"bfvpir/internal/reencoder"
	"bfvpir/internal/serverops"
)

// Debug gates verbose per-query tracing.
var Debug = false

// Server orchestrates oblivious expansion and database multiply over an
// immutable Database.
type Server struct {
	cfg *params.Config
	ctx *heengine.Context
	db  *database.Database
}

// New binds a Server to a previously-populated, read-only Database.
func New(cfg *params.Config, ctx *heengine.Context, db *database.Database) *Server {
	return &Server{cfg: cfg, ctx: ctx, db: db}
}

// ProcessRequest runs each query in req through oblivious expansion and
// Database.Multiply, returning one reply per query. A single bad query
// fails the whole response, since the response envelope is atomic.
func (s *Server) ProcessRequest(req *protocol.Request) (*protocol.Response, error) {
	relin := req.RelinKey
	eval := s.ctx.NewEvaluator(relin, req.GaloisKeys)

	var reenc *reencoder.Reencoder
	if !s.cfg.UseCiphertextMultiplication {
		reenc = reencoder.New(s.ctx, s.ctx.Params.RingQ(), s.ctx.N())
	}

	replies := make([]protocol.Reply, len(req.Queries))
	for qi, q := range req.Queries {
		if Debug {
			log.Printf("[DEBUG] processing query %d (%d packed ciphertexts)", qi, len(q.Ciphertexts))
		}

		sv, err := s.expand(eval, q)
		if err != nil {
			return nil, pirerr.InvalidWrap(err, "query %d: oblivious expansion", qi)
		}

		out, err := s.db.Multiply(sv, eval, s.cfg.UseCiphertextMultiplication && relin != nil, reenc)
		if err != nil {
			return nil, pirerr.Wrap(err, "query %d: database multiply", qi)
		}
		replies[qi] = protocol.Reply{Ciphertexts: out}
	}

	return &protocol.Response{Replies: replies}, nil
}

// expand runs oblivious expansion on each packed ciphertext of q,
// concatenating outputs and truncating to dim_sum.
func (s *Server) expand(eval *heengine.Evaluator, q protocol.Query) ([]*heengine.Ciphertext, error) {
	dimSum := s.cfg.DimSum()
	N := s.ctx.N()

	sv := make([]*heengine.Ciphertext, 0, dimSum)
	for i, packed := range q.Ciphertexts {
		n := N
		if remaining := dimSum - len(sv); remaining < N {
			n = params.NextPowerOfTwo(remaining)
		}
		if n == 0 {
			break
		}
		expanded, err := serverops.ObliviousExpansion(eval, eval, s.ctx, packed, n)
		if err != nil {
			return nil, pirerr.InvalidWrap(err, "expand packed ciphertext %d", i)
		}
		sv = append(sv, expanded...)
	}
	if len(sv) > dimSum {
		sv = sv[:dimSum]
	}
	if len(sv) != dimSum {
		return nil, pirerr.Invalid("expansion produced %d slots, want %d", len(sv), dimSum)
	}
	return sv, nil
}
