// Package jpa implements the JSON Proof Algorithms dispatcher: a closed
// enumeration of alg identifiers and a data-driven table mapping each to a
// Suite that knows how to sign, verify, derive a presentation proof, and
// verify one. Keeping the table data-driven (string -> Suite) rather than a
// hard-wired switch is deliberate: the JPA draft is still evolving and may
// rename or add suites, and callers should be able to swap the table
// without touching dispatch logic.
package jpa

import (
	"fmt"
	"sort"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
)

// Alg is a JPA algorithm identifier.
type Alg string

const (
	BLS12381SHA256        Alg = "BLS12381-SHA256"
	BLS12381SHAKE256      Alg = "BLS12381-SHAKE256"
	BLS12381SHA256Proof   Alg = "BLS12381-SHA256-PROOF"
	BLS12381SHAKE256Proof Alg = "BLS12381-SHAKE256-PROOF"
)

// ParseAlg validates that s is one of the four recognized suite names.
func ParseAlg(s string) (Alg, error) {
	switch Alg(s) {
	case BLS12381SHA256, BLS12381SHAKE256, BLS12381SHA256Proof, BLS12381SHAKE256Proof:
		return Alg(s), nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedAlg, s)
	}
}

// IsSigningSuite reports whether a is an issuer signing suite.
func (a Alg) IsSigningSuite() bool {
	return a == BLS12381SHA256 || a == BLS12381SHAKE256
}

// IsProofSuite reports whether a is a presentation proof suite.
func (a Alg) IsProofSuite() bool {
	return a == BLS12381SHA256Proof || a == BLS12381SHAKE256Proof
}

// ProofSuiteFor returns the presentation proof suite paired with a signing
// suite, sharing its hash family. It errs.ErrAlgMismatch if signing is not
// itself a signing suite.
func ProofSuiteFor(signing Alg) (Alg, error) {
	switch signing {
	case BLS12381SHA256:
		return BLS12381SHA256Proof, nil
	case BLS12381SHAKE256:
		return BLS12381SHAKE256Proof, nil
	default:
		return "", fmt.Errorf("%w: %q is not a signing suite", errs.ErrAlgMismatch, signing)
	}
}

// SigningSuiteFor returns the issuer signing suite paired with a proof
// suite, the inverse of ProofSuiteFor.
func SigningSuiteFor(proof Alg) (Alg, error) {
	switch proof {
	case BLS12381SHA256Proof:
		return BLS12381SHA256, nil
	case BLS12381SHAKE256Proof:
		return BLS12381SHAKE256, nil
	default:
		return "", fmt.Errorf("%w: %q is not a proof suite", errs.ErrAlgMismatch, proof)
	}
}

// Suite is the contract a crypto backend must satisfy for a given alg, per
// the crypto backend contract: sign, verify, derive_proof, verify_proof.
// Header byte arguments are always the exact wire bytes used at
// serialization time, never a re-canonicalization.
type Suite interface {
	// Sign computes a BBS+ signature over payloads, with issuerHeaderBytes
	// bound as the signature's header input.
	Sign(secretOctets, issuerHeaderBytes []byte, payloads [][]byte) (proofOctets []byte, err error)

	// Verify checks a signature produced by Sign.
	Verify(publicOctets, issuerHeaderBytes []byte, payloads [][]byte, proofOctets []byte) error

	// DeriveProof derives a presentation proof over the disclosed subset of
	// payloads, bound to both headers and the issuer's signature.
	DeriveProof(publicOctets, issuerHeaderBytes, presentationHeaderBytes []byte, payloads [][]byte,
		disclosedIndices []int, issuerProofOctets []byte) (presentationProofOctets []byte, err error)

	// VerifyProof checks a presentation proof produced by DeriveProof.
	// disclosed maps each disclosed index to its payload octets.
	VerifyProof(publicOctets, issuerHeaderBytes, presentationHeaderBytes []byte,
		disclosed map[int][]byte, totalCount int, presentationProofOctets []byte) error
}

// Table maps an Alg to the Suite implementing it.
type Table map[Alg]Suite

// Lookup returns the suite registered for alg, or errs.ErrUnsupportedAlg.
func (t Table) Lookup(alg Alg) (Suite, error) {
	s, ok := t[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedAlg, alg)
	}
	return s, nil
}

// NormalizeDisclosed sorts disclosed indices ascending, verifies there are
// no duplicates, and that every index lies within [0, totalCount). This
// implements the tie-break/validation policy from the crypto dispatcher
// contract, shared by every suite implementation.
func NormalizeDisclosed(disclosedIndices []int, totalCount int) ([]int, error) {
	out := append([]int(nil), disclosedIndices...)
	sort.Ints(out)

	for i, idx := range out {
		if idx < 0 || idx >= totalCount {
			return nil, fmt.Errorf("%w: index %d out of range [0,%d)", errs.ErrBadDisclosure, idx, totalCount)
		}
		if i > 0 && out[i-1] == idx {
			return nil, fmt.Errorf("%w: duplicate index %d", errs.ErrBadDisclosure, idx)
		}
	}

	return out, nil
}
