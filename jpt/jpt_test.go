package jpt_test

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cybersecurity-LINKS/json-proof-token/compact"
	"github.com/Cybersecurity-LINKS/json-proof-token/crypto/bbsplus"
	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
	"github.com/Cybersecurity-LINKS/json-proof-token/header"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpt"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwk"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwp"
)

const claimsJSON = `{"name":"Alice","age":30}`

func issueClaims(t *testing.T) (*jwk.JWK, *jwk.JWK, jpa.Table) {
	t.Helper()
	table := bbsplus.Table()
	key, err := jwk.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	pub := jwk.NewPublic(mustPub(t, key))
	return key, pub, table
}

func mustPub(t *testing.T, k *jwk.JWK) []byte {
	t.Helper()
	b, err := k.PublicOctets()
	require.NoError(t, err)
	return b
}

// S1: full disclosure.
func TestScenarioFullDisclosure(t *testing.T) {
	key, pub, table := issueClaims(t)

	issued, err := jpt.Issue(table, []byte(claimsJSON), jpt.HeaderExtras{Alg: jpa.BLS12381SHA256}, key)
	require.NoError(t, err)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce(header.NewNonce()).Build()
	require.NoError(t, err)

	presented, err := jpt.Present(issued, ph, []string{"name", "age"}, pub)
	require.NoError(t, err)

	tree, err := jpt.VerifyAndReconstruct(presented, pub)
	require.NoError(t, err)
	require.Equal(t, "Alice", tree["name"])
	require.Equal(t, json.Number("30"), tree["age"])
}

// S2: selective disclosure.
func TestScenarioSelectiveDisclosure(t *testing.T) {
	key, pub, table := issueClaims(t)

	issued, err := jpt.Issue(table, []byte(claimsJSON), jpt.HeaderExtras{Alg: jpa.BLS12381SHA256}, key)
	require.NoError(t, err)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce(header.NewNonce()).Build()
	require.NoError(t, err)

	presented, err := jpt.Present(issued, ph, []string{"name"}, pub)
	require.NoError(t, err)

	tree, err := jpt.VerifyAndReconstruct(presented, pub)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"name": "Alice"}, tree)
}

// S3: empty disclosure.
func TestScenarioEmptyDisclosure(t *testing.T) {
	key, pub, table := issueClaims(t)

	issued, err := jpt.Issue(table, []byte(claimsJSON), jpt.HeaderExtras{Alg: jpa.BLS12381SHA256}, key)
	require.NoError(t, err)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce(header.NewNonce()).Build()
	require.NoError(t, err)

	presented, err := jpt.Present(issued, ph, nil, pub)
	require.NoError(t, err)

	tree, err := jpt.VerifyAndReconstruct(presented, pub)
	require.NoError(t, err)
	require.Empty(t, tree)

	token := compact.EncodePresented(presented)
	require.Contains(t, token, "~") // payload segments still separated
}

// S4: tampered proof.
func TestScenarioTamperedProof(t *testing.T) {
	key, pub, table := issueClaims(t)

	issued, err := jpt.Issue(table, []byte(claimsJSON), jpt.HeaderExtras{Alg: jpa.BLS12381SHA256}, key)
	require.NoError(t, err)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce(header.NewNonce()).Build()
	require.NoError(t, err)

	presented, err := jpt.Present(issued, ph, []string{"name"}, pub)
	require.NoError(t, err)

	tamperedProof := append([]byte(nil), presented.Proof()...)
	tamperedProof[len(tamperedProof)-1] ^= 0xFF

	tampered, err := jwp.PresentedFromParts(table, presented.IssuerHeader(), presented.PresentationHeader(),
		presented.Payloads(), tamperedProof)
	require.NoError(t, err)

	_, err = jpt.VerifyAndReconstruct(tampered, pub)
	require.ErrorIs(t, err, errs.ErrInvalidProof)
}

// S5: wrong suite at present time.
func TestScenarioWrongSuite(t *testing.T) {
	key, pub, table := issueClaims(t)

	issued, err := jpt.Issue(table, []byte(claimsJSON), jpt.HeaderExtras{Alg: jpa.BLS12381SHA256}, key)
	require.NoError(t, err)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHAKE256Proof).SetNonce(header.NewNonce()).Build()
	require.NoError(t, err)

	_, err = jpt.Present(issued, ph, []string{"name"}, pub)
	require.ErrorIs(t, err, errs.ErrAlgMismatch)
}

// S6: malformed compact input.
func TestScenarioMalformedCompact(t *testing.T) {
	_, err := compact.DecodeIssued(bbsplus.Table(), "just.onepart")
	require.ErrorIs(t, err, errs.ErrCompactMalformed)
}

func TestPresentUnknownClaimPath(t *testing.T) {
	key, pub, table := issueClaims(t)

	issued, err := jpt.Issue(table, []byte(claimsJSON), jpt.HeaderExtras{Alg: jpa.BLS12381SHA256}, key)
	require.NoError(t, err)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce(header.NewNonce()).Build()
	require.NoError(t, err)

	_, err = jpt.Present(issued, ph, []string{"nickname"}, pub)
	require.ErrorIs(t, err, errs.ErrUnknownClaim)
}
