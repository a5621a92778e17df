// Package header implements the typed, order-preserving view over Issuer
// and Presentation protected headers described in the JWP draft. Field
// order matters here in a way it does not for jwk.JWK: the header's exact
// serialized bytes are cryptographically bound into the signature/proof, so
// this package never re-canonicalizes a header's bytes once they exist —
// Bytes always returns the byte slice captured at construction or parse
// time, never a freshly recomputed encoding.
package header

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwk"
)

// Well-known field names, per the data model.
const (
	FieldTyp             = "typ"
	FieldAlg             = "alg"
	FieldKid             = "kid"
	FieldCid             = "cid"
	FieldIss             = "iss"
	FieldClaims          = "claims"
	FieldProofJWK        = "proof_jwk"
	FieldNonce           = "nonce"
	FieldAud             = "aud"
	FieldIat             = "iat"
	FieldPresentationJWK = "presentation_jwk"
)

// Header is a JSON object with a mandatory "alg" field, preserving
// insertion order for every field it holds (known or unknown).
type Header struct {
	om  *orderedmap.OrderedMap[string, interface{}]
	raw []byte
}

// Parse decodes raw header bytes, preserving their field order, and
// validates the presence and shape of "alg". The returned Header's Bytes()
// always returns exactly raw, unmodified.
func Parse(raw []byte) (*Header, error) {
	om := orderedmap.New[string, interface{}]()
	if err := json.Unmarshal(raw, om); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrHeaderMalformed, err)
	}

	h := &Header{om: om, raw: append([]byte(nil), raw...)}
	if _, err := h.Alg(); err != nil {
		return nil, err
	}
	return h, nil
}

// Bytes returns the exact serialized header bytes, never recomputed.
func (h *Header) Bytes() []byte {
	return h.raw
}

// Alg returns the header's alg field, failing with ErrMissingAlg if absent
// or ErrUnsupportedAlg if not a recognized JPA suite name.
func (h *Header) Alg() (jpa.Alg, error) {
	v, ok := h.om.Get(FieldAlg)
	if !ok {
		return "", errs.ErrMissingAlg
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: alg is not a string", errs.ErrHeaderMalformed)
	}
	return jpa.ParseAlg(s)
}

func (h *Header) getString(field string) (string, bool) {
	v, ok := h.om.Get(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Typ returns the "typ" field, if present.
func (h *Header) Typ() (string, bool) { return h.getString(FieldTyp) }

// Kid returns the "kid" field, if present.
func (h *Header) Kid() (string, bool) { return h.getString(FieldKid) }

// Cid returns the "cid" field, if present.
func (h *Header) Cid() (string, bool) { return h.getString(FieldCid) }

// Iss returns the "iss" field, if present.
func (h *Header) Iss() (string, bool) { return h.getString(FieldIss) }

// Nonce returns the "nonce" field, if present.
func (h *Header) Nonce() (string, bool) { return h.getString(FieldNonce) }

// Aud returns the "aud" field, if present.
func (h *Header) Aud() (string, bool) { return h.getString(FieldAud) }

// Iat returns the "iat" field as an int64, if present.
func (h *Header) Iat() (int64, bool, error) {
	v, ok := h.om.Get(FieldIat)
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: iat not an integer", errs.ErrHeaderMalformed)
		}
		return i, true, nil
	case float64:
		return int64(n), true, nil
	default:
		return 0, false, fmt.Errorf("%w: iat has unexpected type", errs.ErrHeaderMalformed)
	}
}

// Claims returns the "claims" array, if present, as a slice of paths in
// their original order.
func (h *Header) Claims() ([]string, bool, error) {
	v, ok := h.om.Get(FieldClaims)
	if !ok {
		return nil, false, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false, fmt.Errorf("%w: claims is not an array", errs.ErrHeaderMalformed)
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false, fmt.Errorf("%w: claims[%d] is not a string", errs.ErrHeaderMalformed, i)
		}
		out[i] = s
	}
	return out, true, nil
}

func (h *Header) getJWK(field string) (*jwk.JWK, bool, error) {
	v, ok := h.om.Get(field)
	if !ok {
		return nil, false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", errs.ErrHeaderMalformed, err)
	}
	k, err := jwk.Parse(b)
	if err != nil {
		return nil, false, err
	}
	return k, true, nil
}

// ProofJWK returns the "proof_jwk" field, if present.
func (h *Header) ProofJWK() (*jwk.JWK, bool, error) { return h.getJWK(FieldProofJWK) }

// PresentationJWK returns the "presentation_jwk" field, if present.
func (h *Header) PresentationJWK() (*jwk.JWK, bool, error) { return h.getJWK(FieldPresentationJWK) }

// Extra returns an arbitrary field by name, for round-trip access to
// unknown fields the typed accessors above don't cover.
func (h *Header) Extra(field string) (interface{}, bool) {
	return h.om.Get(field)
}

// Builder assembles a Header field by field, in insertion order, then
// freezes it into an immutable Header via Build.
type Builder struct {
	om *orderedmap.OrderedMap[string, interface{}]
}

// NewBuilder starts a header builder. Fields are inserted in the order
// this Builder's methods are called.
func NewBuilder() *Builder {
	return &Builder{om: orderedmap.New[string, interface{}]()}
}

// Set inserts or overwrites a field.
func (b *Builder) Set(field string, value interface{}) *Builder {
	b.om.Set(field, value)
	return b
}

// SetAlg sets "alg".
func (b *Builder) SetAlg(alg jpa.Alg) *Builder { return b.Set(FieldAlg, string(alg)) }

// SetTyp sets "typ".
func (b *Builder) SetTyp(typ string) *Builder { return b.Set(FieldTyp, typ) }

// SetKid sets "kid".
func (b *Builder) SetKid(kid string) *Builder { return b.Set(FieldKid, kid) }

// SetCid sets "cid".
func (b *Builder) SetCid(cid string) *Builder { return b.Set(FieldCid, cid) }

// SetIss sets "iss".
func (b *Builder) SetIss(iss string) *Builder { return b.Set(FieldIss, iss) }

// SetClaims sets "claims".
func (b *Builder) SetClaims(paths []string) *Builder { return b.Set(FieldClaims, paths) }

// SetProofJWK sets "proof_jwk" to the public portion of k.
func (b *Builder) SetProofJWK(k *jwk.JWK) *Builder {
	return b.Set(FieldProofJWK, jwk.NewPublic(mustPublicOctets(k)))
}

// SetNonce sets "nonce".
func (b *Builder) SetNonce(nonce string) *Builder { return b.Set(FieldNonce, nonce) }

// SetAud sets "aud".
func (b *Builder) SetAud(aud string) *Builder { return b.Set(FieldAud, aud) }

// SetIat sets "iat".
func (b *Builder) SetIat(iat int64) *Builder { return b.Set(FieldIat, iat) }

// SetPresentationJWK sets "presentation_jwk" to the public portion of k.
func (b *Builder) SetPresentationJWK(k *jwk.JWK) *Builder {
	return b.Set(FieldPresentationJWK, jwk.NewPublic(mustPublicOctets(k)))
}

func mustPublicOctets(k *jwk.JWK) []byte {
	octets, err := k.PublicOctets()
	if err != nil {
		// PublicOctets only fails on malformed base64, which cannot happen
		// for a JWK this package itself constructed or already validated.
		panic(err)
	}
	return octets
}

// Build serializes the accumulated fields into an immutable Header,
// validating "alg" as Parse would.
func (b *Builder) Build() (*Header, error) {
	raw, err := json.Marshal(b.om)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrHeaderMalformed, err)
	}
	return Parse(raw)
}

// NewNonce generates a fresh random nonce suitable for a presentation
// header's "nonce" field, or a verifier-side challenge.
func NewNonce() string {
	return uuid.NewString()
}

// NewClaimsID generates a fresh random identifier suitable for an issuer
// header's "cid" field.
func NewClaimsID() string {
	return uuid.NewString()
}
