// Command pirserver is a single-process demo of the PIR flow: it builds a
// Database, has an in-process Client build a request against it, runs the
// request through a Server, and decodes the reply. Client and server share
// one address space since wire transport is out of scope here.
package main

import (
	"log"

	"bfvpir/internal/client"
	"bfvpir/internal/database"
	"bfvpir/internal/genrecords"
	"bfvpir/internal/heengine"
	"bfvpir/internal/params"
	"bfvpir/internal/server"
)

func main() {
	const (
		numItems     = 100
		bytesPerItem = 256
		targetIndex  = 37
		logN         = 14
		bitsPerCoeff = 8
	)

	itemsPerPlaintext := params.ItemsPerPlaintextFor(1<<logN, bitsPerCoeff, bytesPerItem)
	numPt := params.NumPlaintextsFor(numItems, itemsPerPlaintext)
	dims := params.CalculateDimensions(numPt, 2)
	log.Printf("[INFO] dimensions for %d items (%d plaintexts): %v", numItems, numPt, dims)

	cfg, err := params.NewConfig(numItems, bytesPerItem, dims, params.HEParamsLiteral{
		LogN:             logN,
		LogQ:             []int{55, 45, 45},
		LogP:             []int{55},
		PlaintextModulus: 65537,
	}, true, bitsPerCoeff)
	if err != nil {
		log.Fatalf("[ERROR] build config: %v", err)
	}

	ctx, err := heengine.NewContext(cfg)
	if err != nil {
		log.Fatalf("[ERROR] build HE context: %v", err)
	}

	records, err := genrecords.Generate(numItems, bytesPerItem)
	if err != nil {
		log.Fatalf("[ERROR] generate records: %v", err)
	}
	log.Printf("[DEBUG] sample record[%d] = %s", targetIndex, records[targetIndex])

	db, err := database.NewFromBytes(cfg, ctx, records)
	if err != nil {
		log.Fatalf("[ERROR] build database: %v", err)
	}
	log.Printf("[INFO] database ready: %d plaintexts", cfg.NumPlaintexts())

	c := client.New(cfg, ctx)
	req, err := c.CreateRequest([]int{targetIndex})
	if err != nil {
		log.Fatalf("[ERROR] create request: %v", err)
	}
	log.Printf("[INFO] request built: %d quer(y/ies), %d galois keys", len(req.Queries), len(req.GaloisKeys))

	srv := server.New(cfg, ctx, db)
	resp, err := srv.ProcessRequest(req)
	if err != nil {
		log.Fatalf("[ERROR] process request: %v", err)
	}
	log.Printf("[INFO] response ready: %d repl(y/ies)", len(resp.Replies))

	out, err := c.ProcessResponse(resp, []int{targetIndex}, true, bytesPerItem)
	if err != nil {
		log.Fatalf("[ERROR] process response: %v", err)
	}

	log.Printf("[INFO] retrieved item %d: %s", targetIndex, out[0])
	if string(out[0]) != string(records[targetIndex]) {
		log.Fatalf("[ERROR] mismatch: retrieved item does not match source record")
	}
	log.Println("[INFO] retrieved record matches source exactly")
}
