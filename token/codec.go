package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/pkg/errors"
)

// Codec turns claims into signed strings and back. It has no notion of
// token types or principals; those live in Manager.
type Codec struct {
	signer  Signer
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithCodecNowFunc sets the clock used to check exp (primarily for testing)
func WithCodecNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(signer Signer, options ...CodecOption) *Codec {
	c := &Codec{signer: signer}
	for _, opt := range options {
		opt(c)
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c
}

// Encode signs claims.
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Codec.Encode")
	}
	return signed, nil
}

// Decode verifies raw and fills claims. Every failure (bad signature,
// malformed structure, expired) is reported as ErrInvalidToken.
func (c *Codec) Decode(raw string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.SigningMethod().Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	)
	for _, key := range c.signer.VerificationKeys() {
		parsed, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			continue
		}
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return apperrors.Wrapf(apperrors.ErrInvalidToken, "Codec.Decode: %s", apperrors.ErrTokenExpired)
			}
			return apperrors.Wrapf(apperrors.ErrInvalidToken, "Codec.Decode: %s", err)
		}
		if !parsed.Valid {
			return apperrors.Wrapf(apperrors.ErrInvalidToken, "Codec.Decode")
		}
		return nil
	}
	return apperrors.Wrapf(apperrors.ErrInvalidToken, "Codec.Decode: %s", jwt.ErrTokenSignatureInvalid)
}
