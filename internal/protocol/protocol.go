// Package protocol holds the in-memory request/response envelope shapes
// exchanged between client and server, JSON-tagged for forward
// compatibility with a wire encoding even though actual transport stays
// out of scope here.
package protocol

import "bfvpir/internal/heengine"

// Query is one packed selection-vector request: up to ceil(dim_sum/N)
// ciphertexts.
type Query struct {
	Ciphertexts []*heengine.Ciphertext `json:"ciphertexts"`
}

// Request is the full payload sent client -> server: a batch of queries
// plus the key material needed to evaluate them.
type Request struct {
	Queries    []Query                     `json:"queries"`
	GaloisKeys []*heengine.GaloisKey       `json:"-"`
	RelinKey   *heengine.RelinearizationKey `json:"-"`
	ParamsHash string                      `json:"params_hash"`
}

// Reply is one query's result: length 1 for Variant A, (E·2)^(D-1) for
// Variant B (each non-leaf level reencodes a size-2 ciphertext into
// E digits per polynomial component before the next ct×pt multiply).
type Reply struct {
	Ciphertexts []*heengine.Ciphertext `json:"ciphertexts"`
}

// Response is the full payload sent server -> client.
type Response struct {
	Replies []Reply `json:"replies"`
}
