// Package jwk implements the narrow JWK subset this module needs to route
// key material to the BBS+ backend: kty "OKP", crv "Bls12381G2", with
// public octets in x and optional secret octets in d.
package jwk

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	bbs "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"

	"github.com/Cybersecurity-LINKS/json-proof-token/encoding"
	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
)

const (
	ktyOKP        = "OKP"
	crvBls12381G2 = "Bls12381G2"
)

// JWK is the OKP/Bls12381G2 subset of RFC 7517. Fields are ordered to match
// the field order most JWK producers in the wild emit (kty first), but this
// type is never itself signed, so field order is cosmetic here — unlike
// header.Header, which is.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	D   string `json:"d,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
}

// Parse decodes JSON bytes into a JWK and validates that (kty, crv) is the
// supported subset.
func Parse(b []byte) (*JWK, error) {
	var k JWK
	if err := json.Unmarshal(b, &k); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	if k.Kty != ktyOKP || k.Crv != crvBls12381G2 {
		return nil, fmt.Errorf("%w: kty=%q crv=%q", errs.ErrUnsupportedKeyType, k.Kty, k.Crv)
	}
	return &k, nil
}

// MarshalJSON serializes the JWK. Field order follows the struct
// declaration above via encoding/json's own struct-field ordering, which is
// stable and requires no ordered map.
func (k *JWK) MarshalJSON() ([]byte, error) {
	type alias JWK
	b, err := json.Marshal((*alias)(k))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return b, nil
}

// PublicOctets returns the decoded public key octets from x.
func (k *JWK) PublicOctets() ([]byte, error) {
	return encoding.B64Decode(k.X)
}

// SecretOctets returns the decoded secret scalar octets from d, or
// errs.ErrMissingSecret if the JWK carries no secret material.
func (k *JWK) SecretOctets() ([]byte, error) {
	if k.D == "" {
		return nil, errs.ErrMissingSecret
	}
	return encoding.B64Decode(k.D)
}

// NewPublic builds a public-only JWK from raw public key octets.
func NewPublic(x []byte) *JWK {
	return &JWK{Kty: ktyOKP, Crv: crvBls12381G2, X: encoding.B64Encode(x)}
}

// NewKeyPair builds a JWK carrying both public and secret octets.
func NewKeyPair(x, d []byte) *JWK {
	return &JWK{Kty: ktyOKP, Crv: crvBls12381G2, X: encoding.B64Encode(x), D: encoding.B64Encode(d)}
}

// GenerateKeyPair generates a fresh BBS+ keypair and returns it as a JWK
// carrying both x and d. This is not part of the distilled spec's JWK
// subset (parse/serialize only) but is a supplement grounded on the
// backend's own GenerateKeyPair/Marshal helpers, useful to issuers and to
// tests that need a real keypair without hand-rolling one.
func GenerateKeyPair(rand io.Reader) (*JWK, error) {
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCrypto, err)
	}

	pub, priv, err := bbs.GenerateKeyPair(sha256.New, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCrypto, err)
	}

	pubBytes, err := pub.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCrypto, err)
	}

	privBytes, err := priv.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCrypto, err)
	}

	return NewKeyPair(pubBytes, privBytes), nil
}
