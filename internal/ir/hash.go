package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainArtifact = "querygen/artifact/v1"
	DomainCases    = "querygen/cases/v1"
	DomainCatalog  = "querygen/catalog/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ArtifactHash identifies the bytes of a generated artifact.
func ArtifactHash(data []byte) string {
	return hashWithDomain(DomainArtifact, data)
}

// CaseSetHash identifies an enumerated case sequence, order included.
func CaseSetHash(cases []GenerationCase) (string, error) {
	canonical, err := MarshalCanonical(cases)
	if err != nil {
		return "", fmt.Errorf("CaseSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCases, canonical), nil
}

// CatalogHash identifies a template catalog by its template names and bodies.
func CatalogHash(entries map[string]any) (string, error) {
	canonical, err := MarshalCanonical(entries)
	if err != nil {
		return "", fmt.Errorf("CatalogHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCatalog, canonical), nil
}
