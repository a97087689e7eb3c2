package encoding

import (
	"bfvpir/internal/heengine"
	"bfvpir/internal/pirerr"
)

// StringEncoder packs a byte sequence into plaintext coefficients at a
// configurable bits-per-coefficient width, streaming bits MSB-first.
type StringEncoder struct {
	ctx       *heengine.Context
	encoder   *heengine.Encoder
	polyCount int
	bpc       int
}

// NewStringEncoder builds a StringEncoder with the given bits-per-coeff
// width (0 selects floor(log2(plain_modulus)), matching the reference's
// default of log2(plain_modulus)).
func NewStringEncoder(ctx *heengine.Context, bitsPerCoeff int) *StringEncoder {
	if bitsPerCoeff <= 0 {
		bitsPerCoeff = bitLen(ctx.PlaintextModulus()) - 1
	}
	return &StringEncoder{
		ctx:       ctx,
		encoder:   ctx.NewEncoder(),
		polyCount: ctx.N(),
		bpc:       bitsPerCoeff,
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

// MaxBytesPerPlaintext is max_bytes_per_plaintext() = floor(N*bpc/8).
func (e *StringEncoder) MaxBytesPerPlaintext() int {
	return (e.polyCount * e.bpc) / 8
}

// NumItemsPerPlaintext is num_items_per_plaintext(item_size): 0 if item_size
// exceeds the max, else floor(max/item_size).
func (e *StringEncoder) NumItemsPerPlaintext(itemSize int) int {
	max := e.MaxBytesPerPlaintext()
	if itemSize > max || itemSize <= 0 {
		return 0
	}
	return max / itemSize
}

// Encode concatenates items and encodes the result, failing with
// InvalidArgument if the total exceeds max_bytes_per_plaintext.
func (e *StringEncoder) Encode(items [][]byte, pt *heengine.Plaintext) error {
	total := 0
	for _, it := range items {
		total += len(it)
	}
	if total > e.MaxBytesPerPlaintext() {
		return pirerr.Invalid("StringEncoder.Encode: %d bytes exceeds max %d", total, e.MaxBytesPerPlaintext())
	}

	numCoeff := (total*8 + e.bpc - 1) / e.bpc
	if numCoeff == 0 {
		numCoeff = 1
	}
	coeffs := make([]uint64, e.polyCount)

	coeffIndex := 0
	coeffBits := e.bpc
	for _, item := range items {
		for _, c0 := range item {
			c := c0
			remainBits := 8
			for remainBits > 0 {
				n := min(coeffBits, remainBits)
				coeffs[coeffIndex] <<= uint(n)
				coeffs[coeffIndex] |= uint64(c >> (8 - n))
				c <<= uint(n)
				coeffBits -= n
				remainBits -= n
				if coeffBits <= 0 {
					coeffIndex++
					coeffBits = e.bpc
				}
			}
		}
	}
	if coeffIndex < len(coeffs) {
		coeffs[coeffIndex] <<= uint(coeffBits)
	}

	return e.encoder.Encode(coeffs, pt)
}

// Decode extracts length bytes starting at bit offset offset*8, reversing
// the Encode bit stream.
func (e *StringEncoder) Decode(pt *heengine.Plaintext, length, offset int) ([]byte, error) {
	coeffs := make([]uint64, e.polyCount)
	if err := e.encoder.Decode(pt, coeffs); err != nil {
		return nil, err
	}

	// Skip `offset` bytes worth of bits first by computing how many whole
	// coefficients and leftover bits that consumes, then stream the
	// requested length the same way the reference streams the whole
	// plaintext.
	skipBits := offset * 8
	result := make([]byte, length)
	resultIndex := 0
	remainBits := 8

	coeffIndex := skipBits / e.bpc
	bitsIntoCoeff := skipBits % e.bpc
	coeffBits := e.bpc - bitsIntoCoeff

	for resultIndex < length && coeffIndex < len(coeffs) {
		for coeffBits > 0 && resultIndex < length {
			n := min(coeffBits, remainBits)
			shift := coeffBits - n
			result[resultIndex] <<= uint(n)
			result[resultIndex] |= byte((coeffs[coeffIndex] >> uint(shift)) & ((1 << uint(n)) - 1))

			coeffBits -= n
			remainBits -= n
			if remainBits <= 0 {
				resultIndex++
				remainBits = 8
			}
		}
		coeffIndex++
		coeffBits = e.bpc
	}
	return result, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
