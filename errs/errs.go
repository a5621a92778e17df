// Package errs defines the closed set of error kinds surfaced by every
// public operation in this module. Callers should compare against these
// sentinels with errors.Is; call sites wrap them with additional context
// via fmt.Errorf's %w verb.
package errs

import "errors"

var (
	// ErrUnsupportedKeyType is returned when a JWK's (kty, crv) pair is
	// outside the OKP/Bls12381G2 subset this module implements.
	ErrUnsupportedKeyType = errors.New("unsupported jwk key type")

	// ErrUnsupportedAlg is returned when an alg string is not one of the
	// four JPA suite identifiers this module recognizes.
	ErrUnsupportedAlg = errors.New("unsupported jpa algorithm")

	// ErrAlgMismatch is returned when an issuer alg and a presentation alg
	// are paired inconsistently, or a proof alg appears where a signing
	// alg is required (or vice versa).
	ErrAlgMismatch = errors.New("algorithm mismatch")

	// ErrMissingAlg is returned when a header object has no "alg" field.
	ErrMissingAlg = errors.New("header missing alg")

	// ErrHeaderMalformed is returned for header JSON that fails to parse
	// or violates a structural requirement other than a missing/unknown alg.
	ErrHeaderMalformed = errors.New("header malformed")

	// ErrMissingSecret is returned when a signing operation is requested
	// against a JWK with no "d" (secret octets).
	ErrMissingSecret = errors.New("jwk missing secret octets")

	// ErrBadDisclosure is returned for out-of-range, duplicate, or
	// otherwise invalid disclosure indices.
	ErrBadDisclosure = errors.New("invalid disclosure indices")

	// ErrUnknownClaim is returned when a JPT presentation names a claim
	// path absent from the issuer header's claims array.
	ErrUnknownClaim = errors.New("unknown claim path")

	// ErrCompactMalformed is returned for wire-format parse failures.
	ErrCompactMalformed = errors.New("compact serialization malformed")

	// ErrEncoding is returned for base64url or JSON encode/decode
	// failures at the core layer.
	ErrEncoding = errors.New("encoding error")

	// ErrCrypto is returned when the BBS+ backend fails while signing or
	// deriving a proof (malformed key material, internal backend error, and
	// so on).
	ErrCrypto = errors.New("crypto backend failure")

	// ErrInvalidProof is returned when a signature or proof does not
	// verify. The verification path reports every backend failure this
	// way, so malformed proof or public key octets also yield
	// ErrInvalidProof rather than ErrCrypto.
	ErrInvalidProof = errors.New("invalid proof")
)
