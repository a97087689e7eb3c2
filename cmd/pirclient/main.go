// Command pirclient demos the reencoding path (ciphertext x plaintext
// only, no relinearisation key): a database of big integers, a batch of
// several indices in one request, decoded back through the integer
// encoder. Like cmd/pirserver, client and server run in one process since
// transport is out of scope.
package main

import (
	"log"
	"math/big"

	"bfvpir/internal/client"
	"bfvpir/internal/database"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/server"
)

func main() {
	const numItems = 82

	dims := params.CalculateDimensions(numItems, 3)
	log.Printf("[INFO] dimensions for %d items: %v", numItems, dims)

	cfg, err := params.NewConfig(numItems, 0, dims, params.HEParamsLiteral{
		LogN:             13,
		LogQ:             []int{45, 35},
		LogP:             []int{35},
		PlaintextModulus: 65537,
	}, false, 8)
	if err != nil {
		log.Fatalf("[ERROR] build config: %v", err)
	}

	ctx, err := heengine.NewContext(cfg)
	if err != nil {
		log.Fatalf("[ERROR] build HE context: %v", err)
	}

	values := make([]*big.Int, numItems)
	for i := range values {
		values[i] = big.NewInt(int64(i) * int64(i) + 1)
	}

	db, err := database.NewFromIntegers(cfg, ctx, values)
	if err != nil {
		log.Fatalf("[ERROR] build database: %v", err)
	}

	c := client.New(cfg, ctx)
	targets := []int{0, 17, 81}
	req, err := c.CreateRequest(targets)
	if err != nil {
		log.Fatalf("[ERROR] create request: %v", err)
	}
	log.Printf("[INFO] request built: %d queries", len(req.Queries))

	srv := server.New(cfg, ctx, db)
	resp, err := srv.ProcessRequest(req)
	if err != nil {
		log.Fatalf("[ERROR] process request: %v", err)
	}

	out, err := c.ProcessResponse(resp, targets, false, 0)
	if err != nil {
		log.Fatalf("[ERROR] process response: %v", err)
	}

	for i, idx := range targets {
		got := new(big.Int).SetBytes(out[i])
		log.Printf("[INFO] item[%d] = %s (want %s)", idx, got.String(), values[idx].String())
		if got.Cmp(values[idx]) != 0 {
			log.Fatalf("[ERROR] mismatch at index %d: got %s want %s", idx, got.String(), values[idx].String())
		}
	}
	log.Println("[INFO] all retrieved items match source values")
}
