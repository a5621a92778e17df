package jpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cybersecurity-LINKS/json-proof-token/jpt"
)

func TestFlattenFlatObject(t *testing.T) {
	leaves, err := jpt.Flatten([]byte(`{"name":"Alice","age":30}`))
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	require.Equal(t, "name", leaves[0].Path)
	require.Equal(t, "age", leaves[1].Path)
}

func TestFlattenNested(t *testing.T) {
	leaves, err := jpt.Flatten([]byte(`{"address":{"city":"Turin","zip":"10100"},"friends":["Bob","Carol"]}`))
	require.NoError(t, err)

	paths := make([]string, len(leaves))
	for i, l := range leaves {
		paths[i] = l.Path
	}
	require.Equal(t, []string{"address.city", "address.zip", "friends[0]", "friends[1]"}, paths)
}

func TestFlattenDropsEmptyContainers(t *testing.T) {
	leaves, err := jpt.Flatten([]byte(`{"name":"Alice","tags":[],"meta":{}}`))
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, "name", leaves[0].Path)
}

func TestUnflattenRebuildsSparseTree(t *testing.T) {
	tree, err := jpt.Unflatten([]jpt.Leaf{
		{Path: "address.city", Value: "Turin"},
		{Path: "friends[0]", Value: "Bob"},
	})
	require.NoError(t, err)

	addr, ok := tree["address"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Turin", addr["city"])

	friends, ok := tree["friends"].([]interface{})
	require.True(t, ok)
	require.Equal(t, "Bob", friends[0])
}
