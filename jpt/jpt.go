// Package jpt implements the JSON Proof Token layer: it flattens a JSON
// claims tree into an ordered payload vector for jwp.Issued/jwp.Presented,
// tracks the parallel claim-path list in the issuer header's "claims"
// field, and reconstructs a partial claims tree from a verified
// presentation's disclosed payloads.
package jpt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Cybersecurity-LINKS/json-proof-token/encoding"
	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
	"github.com/Cybersecurity-LINKS/json-proof-token/header"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwk"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwp"
)

// HeaderExtras carries the issuer header fields that are not derived from
// the claims tree itself: alg is mandatory, everything else is optional.
// Claims and ProofJWK are populated by Issue and should not be set here.
type HeaderExtras struct {
	Alg jpa.Alg
	Typ string
	Kid string
	Cid string
	Iss string
}

// Issue flattens claimsJSON, builds the issuer header (claims paths in
// flatten order, proof_jwk set to signingKey's public portion), and signs
// the resulting payload vector.
func Issue(table jpa.Table, claimsJSON []byte, extras HeaderExtras, signingKey *jwk.JWK) (*jwp.Issued, error) {
	leaves, err := Flatten(claimsJSON)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(leaves))
	payloads := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		paths[i] = leaf.Path
		b, err := encoding.CanonicalJSON(leaf.Value)
		if err != nil {
			return nil, err
		}
		payloads[i] = b
	}

	b := header.NewBuilder().SetAlg(extras.Alg)
	if extras.Typ != "" {
		b = b.SetTyp(extras.Typ)
	}
	if extras.Kid != "" {
		b = b.SetKid(extras.Kid)
	}
	cid := extras.Cid
	if cid == "" {
		cid = header.NewClaimsID()
	}
	b = b.SetCid(cid)
	if extras.Iss != "" {
		b = b.SetIss(extras.Iss)
	}
	b = b.SetClaims(paths).SetProofJWK(signingKey)

	h, err := b.Build()
	if err != nil {
		return nil, err
	}

	return jwp.New(table, h, payloads, signingKey)
}

// Present resolves disclosedPaths against issued's header claims list and
// delegates to jwp.Present. Unknown paths fail with errs.ErrUnknownClaim.
func Present(issued *jwp.Issued, presentationHeader *header.Header, disclosedPaths []string,
	publicKey *jwk.JWK) (*jwp.Presented, error) {
	paths, present, err := issued.Header().Claims()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("%w: issuer header has no claims list", errs.ErrHeaderMalformed)
	}

	pathIndex := make(map[string]int, len(paths))
	for i, p := range paths {
		pathIndex[p] = i
	}

	indices := make([]int, 0, len(disclosedPaths))
	for _, p := range disclosedPaths {
		idx, ok := pathIndex[p]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownClaim, p)
		}
		indices = append(indices, idx)
	}

	return jwp.Present(issued, presentationHeader, indices, publicKey)
}

// PresentByIndex is the index-addressed sibling of Present, for callers
// that already know payload positions rather than claim paths.
func PresentByIndex(issued *jwp.Issued, presentationHeader *header.Header, disclosedIndices []int,
	publicKey *jwk.JWK) (*jwp.Presented, error) {
	return jwp.Present(issued, presentationHeader, disclosedIndices, publicKey)
}

// VerifyAndReconstruct verifies presented and, on success, rebuilds the
// partial claims tree from its disclosed payloads, mapping payload indices
// back to paths via the issuer header's claims list.
func VerifyAndReconstruct(presented *jwp.Presented, publicKey *jwk.JWK) (map[string]interface{}, error) {
	if err := presented.Verify(publicKey); err != nil {
		return nil, err
	}

	paths, present, err := presented.IssuerHeader().Claims()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("%w: issuer header has no claims list", errs.ErrHeaderMalformed)
	}

	var leaves []Leaf
	for _, ip := range presented.DisclosedPayloads() {
		if ip.Index >= len(paths) {
			return nil, fmt.Errorf("%w: disclosed index %d has no claim path", errs.ErrHeaderMalformed, ip.Index)
		}

		var value interface{}
		if err := decodeLeafValue(ip.Octets, &value); err != nil {
			return nil, err
		}

		leaves = append(leaves, Leaf{Path: paths[ip.Index], Value: value})
	}

	return Unflatten(leaves)
}

func decodeLeafValue(octets []byte, out *interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(octets))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return nil
}
