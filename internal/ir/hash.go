package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content hashes. The version suffix allows a future
// algorithm migration.
const (
	DomainRelease = "docket/release/v1"
	DomainDoc     = "docket/doc/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ReleaseFingerprint hashes a fact stream together with its era request.
// encoding/json emits struct fields in declaration order and map keys
// sorted, so equal inputs always hash equally.
func ReleaseFingerprint(g PackageGraph, era map[string]string) (string, error) {
	data, err := json.Marshal(struct {
		Graph PackageGraph      `json:"graph"`
		Era   map[string]string `json:"era"`
	}{g, era})
	if err != nil {
		return "", fmt.Errorf("ReleaseFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRelease, data), nil
}

// DocHash identifies a doc comment's text. Text is NFC normalized first so
// that visually identical comments compare equal.
func DocHash(text string) string {
	return hashWithDomain(DomainDoc, []byte(norm.NFC.String(text)))
}
