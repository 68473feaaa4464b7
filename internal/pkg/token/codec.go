// Package token encodes and decodes the signed, expiring claim sets used as
// access and verification tokens. The codec is stateless; it depends only on
// the signing secret fixed at startup.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies claim sets with a shared secret.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	parser *jwt.Parser
}

// NewCodec builds a codec for the given secret and algorithm identifier.
// Only HMAC algorithms are supported.
func NewCodec(secret, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", algorithm)
	}
	return &Codec{
		secret: []byte(secret),
		method: method,
		// Expiry is checked by callers, not the codec: the verification-link
		// flow re-checks exp against the clock itself, and login tokens are
		// validated at the HTTP boundary.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{algorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Issue signs the supplied claims with an absolute expiry of now + ttl.
// Caller-supplied claim keys pass through unchanged; the caller's map is
// not modified.
func (c *Codec) Issue(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	signed := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		signed[k] = v
	}
	signed["exp"] = time.Now().UTC().Add(ttl).Unix()
	t := jwt.NewWithClaims(c.method, signed)
	return t.SignedString(c.secret)
}

// Decode verifies the signature and structure of a token and returns its
// claims. It does NOT reject expired tokens.
func (c *Codec) Decode(tokenStr string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := c.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("token: decode: %w", err)
	}
	return claims, nil
}

// ExpiresAt extracts the exp claim as a time. The second return is false
// when the claim is missing or malformed.
func ExpiresAt(claims jwt.MapClaims) (time.Time, bool) {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Subject extracts the sub claim. The second return is false when the claim
// is missing or empty.
func Subject(claims jwt.MapClaims) (string, bool) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}
