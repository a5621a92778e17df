// Package bbsplus adapts the aries-framework-go BBS+ primitive
// (bbs12381g2pub) to the jpa.Suite contract, and realizes all four JPA
// suites from that single SHA-256-only backend.
//
// The backend has no notion of a signature "header" distinct from its
// message vector, unlike the BBS ciphersuites the JPA draft targets. This
// package bridges that gap by prepending the header bytes to the message
// vector as an always-disclosed message at index 0 (see prependHeader),
// and shifting caller-supplied disclosure indices by one to compensate.
// This also sidesteps the backend's refusal to derive a proof with zero
// revealed messages: the header message is always revealed, so an
// all-hidden disclosure set is still backed by one non-empty reveal.
//
// The backend hashes to scalars with SHA-256 only. The SHAKE-256 suite pair
// is realized by pre-hashing every message (including the prepended
// header) through SHAKE-256 before handing bytes to the backend; the
// SHA-256 suite pair passes bytes through unmodified. This keeps the two
// hash families byte-disjoint even though a single backend implementation
// serves both.
package bbsplus

import (
	"fmt"
	"sort"

	bbs "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
	"golang.org/x/crypto/sha3"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
)

// shakeDigestSize is the SHAKE-256 output length used to pre-hash messages
// for the SHAKE suites; 64 bytes matches the BBS SHAKE-256 ciphersuite's
// expand_message output length convention.
const shakeDigestSize = 64

// suite implements jpa.Suite for one (backend, hashFamily) pair.
type suite struct {
	backend *bbs.BBSG2Pub
	shake   bool // true selects the SHAKE-256 pre-hash path
}

// Table returns a jpa.Table with all four JPA suites wired to a shared
// bbs12381g2pub backend instance.
func Table() jpa.Table {
	backend := bbs.New()
	return jpa.Table{
		jpa.BLS12381SHA256:        &suite{backend: backend, shake: false},
		jpa.BLS12381SHAKE256:      &suite{backend: backend, shake: true},
		jpa.BLS12381SHA256Proof:   &suite{backend: backend, shake: false},
		jpa.BLS12381SHAKE256Proof: &suite{backend: backend, shake: true},
	}
}

func shakeSum256(b []byte) []byte {
	out := make([]byte, shakeDigestSize)
	h := sha3.NewShake256()
	_, _ = h.Write(b)
	_, _ = h.Read(out)
	return out
}

func (s *suite) hash(b []byte) []byte {
	if !s.shake {
		return b
	}
	return shakeSum256(b)
}

// prependHeader builds the backend message vector: header bytes first
// (always revealed), followed by every payload, each individually hashed
// per the suite's hash family.
func (s *suite) prependHeader(headerBytes []byte, payloads [][]byte) [][]byte {
	out := make([][]byte, 0, len(payloads)+1)
	out = append(out, s.hash(headerBytes))
	for _, p := range payloads {
		out = append(out, s.hash(p))
	}
	return out
}

// shiftUp adds one to every index, to account for the prepended header
// message occupying index 0 in the backend's message vector.
func shiftUp(indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = idx + 1
	}
	return out
}

func (s *suite) Sign(secretOctets, issuerHeaderBytes []byte, payloads [][]byte) ([]byte, error) {
	messages := s.prependHeader(issuerHeaderBytes, payloads)

	sig, err := s.backend.Sign(messages, secretOctets)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCrypto, err)
	}
	return sig, nil
}

func (s *suite) Verify(publicOctets, issuerHeaderBytes []byte, payloads [][]byte, proofOctets []byte) error {
	messages := s.prependHeader(issuerHeaderBytes, payloads)

	if err := s.backend.Verify(messages, proofOctets, publicOctets); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidProof, err)
	}
	return nil
}

func (s *suite) DeriveProof(publicOctets, issuerHeaderBytes, presentationHeaderBytes []byte, payloads [][]byte,
	disclosedIndices []int, issuerProofOctets []byte) ([]byte, error) {
	messages := s.prependHeader(issuerHeaderBytes, payloads)

	// The header message at index 0 is always revealed; caller indices are
	// relative to payloads only, so shift them up by one.
	revealed := append([]int{0}, shiftUp(disclosedIndices)...)

	proof, err := s.backend.DeriveProof(messages, issuerProofOctets, s.hash(presentationHeaderBytes),
		publicOctets, revealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCrypto, err)
	}
	return proof, nil
}

func (s *suite) VerifyProof(publicOctets, issuerHeaderBytes, presentationHeaderBytes []byte,
	disclosed map[int][]byte, totalCount int, presentationProofOctets []byte) error {
	// Reconstruct the revealed-message vector in ascending index order:
	// the header message at position 0, then every disclosed payload at
	// its shifted position, in the same order DeriveProof revealed them.
	revealed := make([][]byte, 0, len(disclosed)+1)
	revealed = append(revealed, s.hash(issuerHeaderBytes))

	indices := make([]int, 0, len(disclosed))
	for idx := range disclosed {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		revealed = append(revealed, s.hash(disclosed[idx]))
	}

	if err := s.backend.VerifyProof(revealed, presentationProofOctets, s.hash(presentationHeaderBytes),
		publicOctets); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidProof, err)
	}
	return nil
}
