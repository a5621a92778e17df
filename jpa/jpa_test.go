package jpa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cybersecurity-LINKS/json-proof-token/jpa"
)

func TestParseAlg(t *testing.T) {
	a, err := jpa.ParseAlg("BLS12381-SHA256")
	require.NoError(t, err)
	require.True(t, a.IsSigningSuite())
	require.False(t, a.IsProofSuite())

	_, err = jpa.ParseAlg("RS256")
	require.Error(t, err)
}

func TestProofSuiteFor(t *testing.T) {
	p, err := jpa.ProofSuiteFor(jpa.BLS12381SHA256)
	require.NoError(t, err)
	require.Equal(t, jpa.BLS12381SHA256Proof, p)

	p, err = jpa.ProofSuiteFor(jpa.BLS12381SHAKE256)
	require.NoError(t, err)
	require.Equal(t, jpa.BLS12381SHAKE256Proof, p)

	_, err = jpa.ProofSuiteFor(jpa.BLS12381SHA256Proof)
	require.Error(t, err)
}

func TestNormalizeDisclosedSorts(t *testing.T) {
	out, err := jpa.NormalizeDisclosed([]int{2, 0, 1}, 3)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, out)
}

func TestNormalizeDisclosedRejectsDuplicate(t *testing.T) {
	_, err := jpa.NormalizeDisclosed([]int{0, 0}, 3)
	require.Error(t, err)
}

func TestNormalizeDisclosedRejectsOutOfRange(t *testing.T) {
	_, err := jpa.NormalizeDisclosed([]int{3}, 3)
	require.Error(t, err)
}
