package audit

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"
)

// Fingerprinter maps a token to a value that can be logged safely.
type Fingerprinter func(token string) string

const (
	DefaultFingerprintType = "default"
	BearerFingerprintType  = "bearer"
)

var fingerprintRegistry = map[string]Fingerprinter{
	DefaultFingerprintType: func(_ string) string {
		return "(n/a)"
	},
}

func RegisterFingerprinter(tokenType string, fn Fingerprinter) {
	fingerprintRegistry[tokenType] = fn
}

// RegisteredFingerprinterTypes returns the sorted token types with a fingerprinter.
func RegisteredFingerprinterTypes() []string {
	types := make([]string, 0, len(fingerprintRegistry))
	for t := range fingerprintRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func CalculateFingerprint(tokenType, token string) string {
	fn, ok := fingerprintRegistry[tokenType]
	if !ok {
		fn = fingerprintRegistry[DefaultFingerprintType]
	}
	return fn(token)
}

func init() {
	RegisterFingerprinter(BearerFingerprintType, calculateSHA256Fingerprint)
}

func calculateSHA256Fingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}
