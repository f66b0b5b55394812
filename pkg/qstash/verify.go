package qstash

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signatureIssuer = "Upstash"

var (
	ErrMissingSignature = errors.New("missing upstash signature")
	ErrInvalidSignature = errors.New("invalid upstash signature")
)

type signatureClaims struct {
	jwt.RegisteredClaims
	Body string `json:"body"`
}

// Verifier checks the Upstash-Signature header QStash attaches to every delivery.
type Verifier struct {
	keys   []string
	leeway time.Duration
}

func NewVerifier(currentSigningKey, nextSigningKey string) (*Verifier, error) {
	var keys []string
	for _, k := range []string{currentSigningKey, nextSigningKey} {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("at least one qstash signing key is required")
	}
	return &Verifier{keys: keys, leeway: 5 * time.Second}, nil
}

// Verify accepts the token when it is signed by the current or the next key, was
// issued by Upstash and carries the hash of body. destination is matched against
// the subject claim when non-empty.
func (v *Verifier) Verify(signature string, body []byte, destination string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}

	var lastErr error
	for _, key := range v.keys {
		err := v.verifyWithKey(signature, body, destination, key)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrInvalidSignature, lastErr)
}

func (v *Verifier) verifyWithKey(signature string, body []byte, destination, key string) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signatureIssuer),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if destination != "" {
		opts = append(opts, jwt.WithSubject(destination))
	}

	var claims signatureClaims
	if _, err := jwt.ParseWithClaims(signature, &claims, func(*jwt.Token) (any, error) {
		return []byte(key), nil
	}, opts...); err != nil {
		return err
	}

	if strings.TrimRight(claims.Body, "=") != BodyHash(body) {
		return errors.New("body hash mismatch")
	}
	return nil
}

// BodyHash is the unpadded base64url SHA-256 digest QStash puts in the body claim.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
