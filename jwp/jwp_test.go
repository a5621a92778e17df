package jwp_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cybersecurity-LINKS/json-proof-token/crypto/bbsplus"
	"github.com/Cybersecurity-LINKS/json-proof-token/header"
	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwk"
	"github.com/Cybersecurity-LINKS/json-proof-token/jwp"
)

func issueFixture(t *testing.T) (*jwp.Issued, *jwk.JWK) {
	t.Helper()
	key, err := jwk.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	h, err := header.NewBuilder().
		SetAlg(jpa.BLS12381SHA256).
		SetClaims([]string{"name", "age"}).
		SetProofJWK(key).
		Build()
	require.NoError(t, err)

	payloads := [][]byte{[]byte(`"Alice"`), []byte(`30`)}

	issued, err := jwp.New(bbsplus.Table(), h, payloads, key)
	require.NoError(t, err)
	return issued, key
}

func TestIssuedSignAndVerify(t *testing.T) {
	issued, key := issueFixture(t)
	require.NoError(t, issued.Verify(nil))

	pub := jwk.NewPublic(mustPub(t, key))
	require.NoError(t, issued.Verify(pub))
}

func TestPresentFullDisclosure(t *testing.T) {
	issued, key := issueFixture(t)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce("n1").Build()
	require.NoError(t, err)

	presented, err := jwp.Present(issued, ph, []int{0, 1}, jwk.NewPublic(mustPub(t, key)))
	require.NoError(t, err)
	require.NoError(t, presented.Verify(nil))
	require.Equal(t, []int{0, 1}, presented.DisclosedIndices())
}

func TestPresentSelectiveDisclosure(t *testing.T) {
	issued, key := issueFixture(t)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce("n1").Build()
	require.NoError(t, err)

	presented, err := jwp.Present(issued, ph, []int{0}, jwk.NewPublic(mustPub(t, key)))
	require.NoError(t, err)
	require.NoError(t, presented.Verify(nil))

	payloads := presented.Payloads()
	require.Equal(t, []byte(`"Alice"`), payloads[0])
	require.Nil(t, payloads[1])
}

func TestPresentEmptyDisclosure(t *testing.T) {
	issued, key := issueFixture(t)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce("n1").Build()
	require.NoError(t, err)

	presented, err := jwp.Present(issued, ph, nil, jwk.NewPublic(mustPub(t, key)))
	require.NoError(t, err)
	require.NoError(t, presented.Verify(nil))
	require.Empty(t, presented.DisclosedIndices())
	for _, p := range presented.Payloads() {
		require.Nil(t, p)
	}
}

func TestPresentRejectsAlgMismatch(t *testing.T) {
	issued, key := issueFixture(t)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHAKE256Proof).SetNonce("n1").Build()
	require.NoError(t, err)

	_, err = jwp.Present(issued, ph, []int{0}, jwk.NewPublic(mustPub(t, key)))
	require.Error(t, err)
}

func TestPresentRejectsDuplicateAndOutOfRange(t *testing.T) {
	issued, key := issueFixture(t)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce("n1").Build()
	require.NoError(t, err)

	_, err = jwp.Present(issued, ph, []int{0, 0}, jwk.NewPublic(mustPub(t, key)))
	require.Error(t, err)

	_, err = jwp.Present(issued, ph, []int{5}, jwk.NewPublic(mustPub(t, key)))
	require.Error(t, err)
}

func TestTamperedProofFailsVerification(t *testing.T) {
	issued, key := issueFixture(t)

	ph, err := header.NewBuilder().SetAlg(jpa.BLS12381SHA256Proof).SetNonce("n1").Build()
	require.NoError(t, err)

	presented, err := jwp.Present(issued, ph, []int{0}, jwk.NewPublic(mustPub(t, key)))
	require.NoError(t, err)

	tampered := append([]byte(nil), presented.Proof()...)
	tampered[len(tampered)-1] ^= 0xFF

	table := bbsplus.Table()
	corrupted, err := jwp.PresentedFromParts(table, presented.IssuerHeader(), presented.PresentationHeader(),
		presented.Payloads(), tampered)
	require.NoError(t, err)
	require.Error(t, corrupted.Verify(nil))
}

func mustPub(t *testing.T, k *jwk.JWK) []byte {
	t.Helper()
	b, err := k.PublicOctets()
	require.NoError(t, err)
	return b
}
