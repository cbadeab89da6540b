package tinkoff

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

const (
	// passwordField carries the secret key into the signature input. It is
	// appended to a private copy of the field list, so it never appears in
	// the payload and never crosses the wire.
	passwordField = "Password"

	// tokenField is where the computed signature is injected before
	// transmission.
	tokenField = "Token"
)

// signExcludedFields are never part of the signature input, even when
// present in the payload: the two nested-data fields and the token itself.
// The gateway defines exactly these three names; the list is deliberately
// not generalized to other complex fields.
var signExcludedFields = []string{"DATA", "Receipt", tokenField}

// Signer computes the signature token the gateway recomputes and compares
// on its side. A signer is stateless apart from the immutable credential
// and is safe for concurrent use.
type Signer struct {
	credential Credential
}

// NewSigner creates a signer for the given credential.
func NewSigner(credential Credential) *Signer {
	return &Signer{credential: credential}
}

// GenerateToken derives the signature for a payload:
// take every field except DATA, Receipt and Token, add the secret key under
// the Password name, sort the names byte-wise, concatenate the canonical
// string forms of the values in that order and return the lowercase hex
// SHA-256 of the result. Identical field sets always produce identical
// tokens. The payload itself is not modified.
func (s *Signer) GenerateToken(payload *Payload) string {
	pairs := make([]Field, 0, payload.Len()+1)
	for _, f := range payload.Fields() {
		if signExcluded(f.Name) {
			continue
		}
		pairs = append(pairs, f)
	}
	pairs = append(pairs, Field{Name: passwordField, Value: s.credential.SecretKey()})

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Name < pairs[j].Name
	})

	var input strings.Builder
	for _, f := range pairs {
		input.WriteString(formatValue(f.Value))
	}

	sum := sha256.Sum256([]byte(input.String()))
	return hex.EncodeToString(sum[:])
}

func signExcluded(name string) bool {
	for _, excluded := range signExcludedFields {
		if name == excluded {
			return true
		}
	}
	return false
}
