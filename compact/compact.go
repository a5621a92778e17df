// Package compact implements the dot/tilde-separated wire serialization
// for Issued and Presented JWPs, per the grammar:
//
//	issued    := b64u(issuer_header) "." payloads "." b64u(proof)
//	presented := b64u(issuer_header) "." b64u(presentation_header) "." payloads "." b64u(proof)
//	payloads  := payload ( "~" payload )*
//	payload   := b64u(octets) | ""         ; empty string means null
//
// DecodeIssued and DecodePresented each check the dot count of their own
// form (2 for issued, 3 for presented) and reject any other count; there
// is no single decoder that picks the form from the token. The codec never
// re-canonicalizes header bytes, it only ever emits the exact bytes
// already stored in the header model.
package compact

import (
	"fmt"
	"strings"

	"github.com/Cybersecurity-LINKS/json-proof-token/encoding"
	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
	"github.com/Cybersecurity-LINKS/json-proof-token/header"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwp"
)

const (
	dotIssued    = 2
	dotPresented = 3
)

// EncodeIssued serializes an Issued JWP to its compact form.
func EncodeIssued(issued *jwp.Issued) string {
	return strings.Join([]string{
		encoding.B64Encode(issued.Header().Bytes()),
		encodePayloads(issued.Payloads()),
		encoding.B64Encode(issued.Proof()),
	}, ".")
}

// DecodeIssued parses a compact issued-form token. table supplies the crypto
// suites needed for any later Verify call.
func DecodeIssued(table jpa.Table, token string) (*jwp.Issued, error) {
	parts := strings.Split(token, ".")
	if len(parts) != dotIssued+1 {
		return nil, fmt.Errorf("%w: expected %d dots, got %d", errs.ErrCompactMalformed, dotIssued, len(parts)-1)
	}

	headerBytes, err := encoding.B64Decode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: issuer header: %v", errs.ErrCompactMalformed, err)
	}
	h, err := header.Parse(headerBytes)
	if err != nil {
		return nil, err
	}

	alg, err := h.Alg()
	if err != nil {
		return nil, err
	}
	if !alg.IsSigningSuite() {
		return nil, fmt.Errorf("%w: issued form carries proof alg %q", errs.ErrAlgMismatch, alg)
	}

	payloads, err := decodePayloads(parts[1], false)
	if err != nil {
		return nil, err
	}

	proof, err := encoding.B64Decode(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: proof: %v", errs.ErrCompactMalformed, err)
	}

	return jwp.IssuedFromParts(table, h, payloads, proof)
}

// EncodePresented serializes a Presented JWP to its compact form.
func EncodePresented(presented *jwp.Presented) string {
	return strings.Join([]string{
		encoding.B64Encode(presented.IssuerHeader().Bytes()),
		encoding.B64Encode(presented.PresentationHeader().Bytes()),
		encodePayloads(presented.Payloads()),
		encoding.B64Encode(presented.Proof()),
	}, ".")
}

// DecodePresented parses a compact presented-form token.
func DecodePresented(table jpa.Table, token string) (*jwp.Presented, error) {
	parts := strings.Split(token, ".")
	if len(parts) != dotPresented+1 {
		return nil, fmt.Errorf("%w: expected %d dots, got %d", errs.ErrCompactMalformed, dotPresented, len(parts)-1)
	}

	issuerHeaderBytes, err := encoding.B64Decode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: issuer header: %v", errs.ErrCompactMalformed, err)
	}
	issuerHeader, err := header.Parse(issuerHeaderBytes)
	if err != nil {
		return nil, err
	}

	presentationHeaderBytes, err := encoding.B64Decode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: presentation header: %v", errs.ErrCompactMalformed, err)
	}
	presentationHeader, err := header.Parse(presentationHeaderBytes)
	if err != nil {
		return nil, err
	}

	presentationAlg, err := presentationHeader.Alg()
	if err != nil {
		return nil, err
	}
	if !presentationAlg.IsProofSuite() {
		return nil, fmt.Errorf("%w: presented form carries signing alg %q", errs.ErrAlgMismatch, presentationAlg)
	}

	payloads, err := decodePayloads(parts[2], true)
	if err != nil {
		return nil, err
	}

	proof, err := encoding.B64Decode(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: proof: %v", errs.ErrCompactMalformed, err)
	}

	return jwp.PresentedFromParts(table, issuerHeader, presentationHeader, payloads, proof)
}

func encodePayloads(payloads [][]byte) string {
	tokens := make([]string, len(payloads))
	for i, p := range payloads {
		if p == nil {
			tokens[i] = ""
			continue
		}
		tokens[i] = encoding.B64Encode(p)
	}
	return strings.Join(tokens, "~")
}

// decodePayloads splits the tilde-joined payload token list. allowEmpty
// permits an empty token to mean a hidden/null payload — valid only in the
// presented form; an empty token in the issued form is malformed.
func decodePayloads(field string, allowEmpty bool) ([][]byte, error) {
	tokens := strings.Split(field, "~")
	out := make([][]byte, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			if !allowEmpty {
				return nil, fmt.Errorf("%w: empty payload token in issued form at position %d",
					errs.ErrCompactMalformed, i)
			}
			out[i] = nil
			continue
		}
		octets, err := encoding.B64Decode(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: payload %d: %v", errs.ErrCompactMalformed, i, err)
		}
		out[i] = octets
	}
	return out, nil
}
