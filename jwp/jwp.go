// Package jwp implements the JWP state machine: an Issued proof over a full
// ordered payload vector, and the one-way transition to a Presented proof
// that discloses only a chosen subset of that vector. There is no reverse
// transition, and a Presented value cannot itself be re-presented — the
// BBS+ proof-of-knowledge rerandomization that a fresh presentation
// requires can only start from the original signature, which only an
// Issued value carries.
package jwp

import (
	"fmt"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
	"github.com/Cybersecurity-LINKS/json-proof-token/header"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwk"
)

// Issued is an issuer-signed proof over a full, ordered payload vector.
type Issued struct {
	table    jpa.Table
	header   *header.Header
	payloads [][]byte
	proof    []byte
}

// New signs payloads under h (whose alg must be a signing suite) with
// signingKey, and returns the resulting Issued JWP.
func New(table jpa.Table, h *header.Header, payloads [][]byte, signingKey *jwk.JWK) (*Issued, error) {
	alg, err := h.Alg()
	if err != nil {
		return nil, err
	}
	if !alg.IsSigningSuite() {
		return nil, fmt.Errorf("%w: %q is not a signing suite", errs.ErrAlgMismatch, alg)
	}

	if claims, present, err := h.Claims(); err != nil {
		return nil, err
	} else if present && len(claims) != len(payloads) {
		return nil, fmt.Errorf("%w: header.claims has %d entries, payloads has %d",
			errs.ErrHeaderMalformed, len(claims), len(payloads))
	}

	secret, err := signingKey.SecretOctets()
	if err != nil {
		return nil, err
	}

	suite, err := table.Lookup(alg)
	if err != nil {
		return nil, err
	}

	proof, err := suite.Sign(secret, h.Bytes(), payloads)
	if err != nil {
		return nil, err
	}

	return &Issued{table: table, header: h, payloads: payloads, proof: proof}, nil
}

// IssuedFromParts reconstructs an Issued JWP from its already-parsed parts,
// without (re-)signing. Used by the compact codec when decoding.
func IssuedFromParts(table jpa.Table, h *header.Header, payloads [][]byte, proof []byte) (*Issued, error) {
	alg, err := h.Alg()
	if err != nil {
		return nil, err
	}
	if !alg.IsSigningSuite() {
		return nil, fmt.Errorf("%w: %q is not a signing suite", errs.ErrAlgMismatch, alg)
	}
	for i, p := range payloads {
		if p == nil {
			return nil, fmt.Errorf("%w: payload %d is null in an issued jwp", errs.ErrCompactMalformed, i)
		}
	}
	return &Issued{table: table, header: h, payloads: payloads, proof: proof}, nil
}

// Verify checks the issuer's signature. If publicKey is nil, the public key
// is taken from the header's proof_jwk field.
func (j *Issued) Verify(publicKey *jwk.JWK) error {
	pub, err := j.resolvePublicKey(publicKey)
	if err != nil {
		return err
	}

	alg, err := j.header.Alg()
	if err != nil {
		return err
	}
	suite, err := j.table.Lookup(alg)
	if err != nil {
		return err
	}

	pubOctets, err := pub.PublicOctets()
	if err != nil {
		return err
	}

	return suite.Verify(pubOctets, j.header.Bytes(), j.payloads, j.proof)
}

func (j *Issued) resolvePublicKey(publicKey *jwk.JWK) (*jwk.JWK, error) {
	if publicKey != nil {
		return publicKey, nil
	}
	k, ok, err := j.header.ProofJWK()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no public key given and header has no proof_jwk", errs.ErrHeaderMalformed)
	}
	return k, nil
}

// Payloads returns the full ordered payload vector.
func (j *Issued) Payloads() [][]byte { return j.payloads }

// Header returns the issuer protected header.
func (j *Issued) Header() *header.Header { return j.header }

// Proof returns the opaque BBS+ signature octets.
func (j *Issued) Proof() []byte { return j.proof }

// Table returns the algorithm dispatch table this Issued value was built
// with, so that Present can reuse it without the caller threading it
// through separately.
func (j *Issued) Table() jpa.Table { return j.table }

// Presented is a holder-derived proof disclosing a chosen subset of an
// Issued JWP's payloads.
type Presented struct {
	table              jpa.Table
	issuerHeader       *header.Header
	presentationHeader *header.Header
	payloads           [][]byte // disclosed positions populated, hidden positions nil
	disclosed          []int    // sorted ascending
	proof              []byte
}

// Present derives a presentation proof from issued, disclosing exactly the
// payloads at disclosedIndices. publicKey is the issuer's public key, bound
// into the presentation proof by the backend; if nil it is resolved from
// the issuer header's proof_jwk.
func Present(issued *Issued, presentationHeader *header.Header, disclosedIndices []int,
	publicKey *jwk.JWK) (*Presented, error) {
	issuerAlg, err := issued.header.Alg()
	if err != nil {
		return nil, err
	}
	presentationAlg, err := presentationHeader.Alg()
	if err != nil {
		return nil, err
	}
	wantProofAlg, err := jpa.ProofSuiteFor(issuerAlg)
	if err != nil {
		return nil, err
	}
	if presentationAlg != wantProofAlg {
		return nil, fmt.Errorf("%w: issuer alg %q requires presentation alg %q, got %q",
			errs.ErrAlgMismatch, issuerAlg, wantProofAlg, presentationAlg)
	}

	n := len(issued.payloads)
	disclosed, err := jpa.NormalizeDisclosed(disclosedIndices, n)
	if err != nil {
		return nil, err
	}

	pub, err := issued.resolvePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	pubOctets, err := pub.PublicOctets()
	if err != nil {
		return nil, err
	}

	suite, err := issued.table.Lookup(presentationAlg)
	if err != nil {
		return nil, err
	}

	proof, err := suite.DeriveProof(pubOctets, issued.header.Bytes(), presentationHeader.Bytes(),
		issued.payloads, disclosed, issued.proof)
	if err != nil {
		return nil, err
	}

	payloadsOut := make([][]byte, n)
	for _, idx := range disclosed {
		payloadsOut[idx] = issued.payloads[idx]
	}

	return &Presented{
		table:              issued.table,
		issuerHeader:       issued.header,
		presentationHeader: presentationHeader,
		payloads:           payloadsOut,
		disclosed:          disclosed,
		proof:              proof,
	}, nil
}

// PresentedFromParts reconstructs a Presented JWP from its already-parsed
// parts, without (re-)deriving. Used by the compact codec when decoding.
func PresentedFromParts(table jpa.Table, issuerHeader, presentationHeader *header.Header,
	payloads [][]byte, proof []byte) (*Presented, error) {
	issuerAlg, err := issuerHeader.Alg()
	if err != nil {
		return nil, err
	}
	presentationAlg, err := presentationHeader.Alg()
	if err != nil {
		return nil, err
	}
	wantProofAlg, err := jpa.ProofSuiteFor(issuerAlg)
	if err != nil {
		return nil, err
	}
	if presentationAlg != wantProofAlg {
		return nil, fmt.Errorf("%w: issuer alg %q requires presentation alg %q, got %q",
			errs.ErrAlgMismatch, issuerAlg, wantProofAlg, presentationAlg)
	}

	var disclosed []int
	for i, p := range payloads {
		if p != nil {
			disclosed = append(disclosed, i)
		}
	}

	return &Presented{
		table:              table,
		issuerHeader:       issuerHeader,
		presentationHeader: presentationHeader,
		payloads:           payloads,
		disclosed:          disclosed,
		proof:              proof,
	}, nil
}

// Verify checks the presentation proof. If publicKey is nil, the public key
// is taken from the issuer header's proof_jwk field.
func (p *Presented) Verify(publicKey *jwk.JWK) error {
	pub, err := p.resolvePublicKey(publicKey)
	if err != nil {
		return err
	}
	pubOctets, err := pub.PublicOctets()
	if err != nil {
		return err
	}

	presentationAlg, err := p.presentationHeader.Alg()
	if err != nil {
		return err
	}
	suite, err := p.table.Lookup(presentationAlg)
	if err != nil {
		return err
	}

	disclosed := make(map[int][]byte, len(p.disclosed))
	for _, idx := range p.disclosed {
		disclosed[idx] = p.payloads[idx]
	}

	return suite.VerifyProof(pubOctets, p.issuerHeader.Bytes(), p.presentationHeader.Bytes(),
		disclosed, len(p.payloads), p.proof)
}

func (p *Presented) resolvePublicKey(publicKey *jwk.JWK) (*jwk.JWK, error) {
	if publicKey != nil {
		return publicKey, nil
	}
	k, ok, err := p.issuerHeader.ProofJWK()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no public key given and issuer header has no proof_jwk", errs.ErrHeaderMalformed)
	}
	return k, nil
}

// DisclosedIndices returns the sorted set of disclosed payload indices.
func (p *Presented) DisclosedIndices() []int { return append([]int(nil), p.disclosed...) }

// DisclosedPayloads returns the disclosed (index, payload) pairs in
// ascending index order.
func (p *Presented) DisclosedPayloads() []IndexedPayload {
	out := make([]IndexedPayload, len(p.disclosed))
	for i, idx := range p.disclosed {
		out[i] = IndexedPayload{Index: idx, Octets: p.payloads[idx]}
	}
	return out
}

// IndexedPayload pairs a disclosed payload's position with its octets.
type IndexedPayload struct {
	Index  int
	Octets []byte
}

// Payloads returns the full payload vector, with hidden positions nil.
func (p *Presented) Payloads() [][]byte { return p.payloads }

// IssuerHeader returns the issuer protected header.
func (p *Presented) IssuerHeader() *header.Header { return p.issuerHeader }

// PresentationHeader returns the presentation protected header.
func (p *Presented) PresentationHeader() *header.Header { return p.presentationHeader }

// Proof returns the opaque presentation proof octets.
func (p *Presented) Proof() []byte { return p.proof }

// Table returns the algorithm dispatch table this Presented value was
// built with.
func (p *Presented) Table() jpa.Table { return p.table }
