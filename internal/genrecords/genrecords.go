// Package genrecords produces synthetic fixed-size byte records for the
// cmd/ demos: small JSON records padded out to a target byte size so every
// item encodes to the same plaintext layout.
package genrecords

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

var malwareClasses = []string{"Trojan", "Worm", "Ransomware", "Backdoor", "Spyware"}
var malwareFamilies = []string{"Emotet", "WannaCry", "Ryuk", "AgentTesla", "Pegasus"}
var threatLevels = []string{"Low", "Medium", "High", "Critical"}

// Record is a small malware-intel-style struct padded out to a target byte
// size so every item encodes to the same plaintext layout.
type Record struct {
	MD5           string `json:"md5"`
	MalwareClass  string `json:"malware_class"`
	MalwareFamily string `json:"malware_family"`
	AVDetects     int    `json:"av_detects"`
	ThreatLevel   string `json:"threat_level"`
	Padding       string `json:"padding,omitempty"`
}

// fakeHash returns a deterministic hex string of the requested length,
// derived from prefix+index so records are reproducible across runs
// without needing a seeded RNG.
func fakeHash(prefix string, i int, length int) string {
	if length <= 0 {
		return ""
	}
	base := prefix + strconv.Itoa(i)
	hash := sha256.Sum256([]byte(base))
	hexStr := hex.EncodeToString(hash[:])
	for len(hexStr) < length {
		base += "x"
		h := sha256.Sum256([]byte(base))
		hexStr += hex.EncodeToString(h[:])
	}
	return hexStr[:length]
}

// Generate builds n byte records, each padded to exactly maxLen bytes of
// JSON, for use as Database items in NewFromBytes.
func Generate(n, maxLen int) ([][]byte, error) {
	records := make([][]byte, n)
	for i := 0; i < n; i++ {
		rec, err := generateOne(i, maxLen)
		if err != nil {
			return nil, fmt.Errorf("generate record %d: %w", i, err)
		}
		records[i] = rec
	}
	return records, nil
}

func generateOne(i, maxLen int) ([]byte, error) {
	base := Record{
		MalwareClass:  malwareClasses[i%len(malwareClasses)],
		MalwareFamily: malwareFamilies[i%len(malwareFamilies)],
		AVDetects:     (i % 50) + 1,
		ThreatLevel:   threatLevels[i%len(threatLevels)],
	}
	baseBytes, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	const md5Len = 32
	remaining := maxLen - len(baseBytes) - md5Len
	if remaining < 0 {
		return nil, fmt.Errorf("maxLen %d too small for base record of %d bytes plus md5", maxLen, len(baseBytes))
	}

	final := Record{
		MD5:           fakeHash("md5", i, md5Len),
		MalwareClass:  base.MalwareClass,
		MalwareFamily: base.MalwareFamily,
		AVDetects:     base.AVDetects,
		ThreatLevel:   base.ThreatLevel,
		Padding:       fakeHash("pad", i, remaining),
	}
	out, err := json.Marshal(final)
	if err != nil {
		return nil, err
	}
	if len(out) < maxLen {
		pad := make([]byte, maxLen-len(out))
		for i := range pad {
			pad[i] = ' '
		}
		out = append(out, pad...)
	}
	return out[:maxLen], nil
}
