package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer signs claims and lists the keys a signature may be checked against.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)

	// VerificationKeys returns the current key first, then any retired ones.
	VerificationKeys() []any

	SigningMethod() jwt.SigningMethod
}

// HMACSigner signs with HS256 and the server secret. Tokens signed with a
// retired secret still verify, so the secret can be rotated without
// signing everybody out.
type HMACSigner struct {
	current []byte
	retired [][]byte
}

func NewHMACSigner(secret string, retired ...string) *HMACSigner {
	h := &HMACSigner{current: []byte(secret)}
	for _, r := range retired {
		if r != "" && r != secret {
			h.retired = append(h.retired, []byte(r))
		}
	}
	return h
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(h.SigningMethod(), claims).SignedString(h.current)
	if err != nil {
		return "", errors.Wrap(err, "HMACSigner.Sign")
	}
	return signed, nil
}

func (h *HMACSigner) VerificationKeys() []any {
	keys := make([]any, 0, 1+len(h.retired))
	keys = append(keys, h.current)
	for _, r := range h.retired {
		keys = append(keys, r)
	}
	return keys
}

func (h *HMACSigner) SigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
