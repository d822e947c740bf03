package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetStoreAddAndMembers(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	require.NoError(t, store.AddMembers(ctx, "facet:brand:acme", 1, 2, 3))
	// Adding an existing member twice has no extra effect.
	require.NoError(t, store.AddMembers(ctx, "facet:brand:acme", 2))

	count, err := store.Cardinality(ctx, "facet:brand:acme")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	ids, err := store.Members(ctx, "facet:brand:acme")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
}

func TestMemorySetStoreUnionAndIntersect(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	require.NoError(t, store.AddMembers(ctx, "a", 1, 2, 3))
	require.NoError(t, store.AddMembers(ctx, "b", 2, 3, 4))

	count, err := store.UnionStore(ctx, "u", time.Minute, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	count, err = store.InterStore(ctx, "i", time.Minute, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ids, err := store.Members(ctx, "i")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, ids)
}

func TestMemorySetStoreZeroKeyCombinations(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	count, err := store.UnionStore(ctx, "u", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = store.InterStore(ctx, "i", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Intersecting with a missing key yields the empty set.
	require.NoError(t, store.AddMembers(ctx, "a", 1, 2))
	count, err = store.InterStore(ctx, "i", time.Minute, "a", "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemorySetStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.AddMembers(ctx, "a", 1))
	_, err := store.UnionStore(ctx, "temp", time.Minute, "a")
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "temp")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)

	ok, err = store.Exists(ctx, "temp")
	require.NoError(t, err)
	assert.False(t, ok, "temp key must expire")

	// The source set has no TTL and survives.
	ok, err = store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemorySetStoreStringMembers(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	require.NoError(t, store.AddValues(ctx, "knownValues:color", "red", "dark_blue"))
	require.NoError(t, store.AddValues(ctx, "knownValues:color", "red"))

	values, err := store.Values(ctx, "knownValues:color")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"red", "dark_blue"}, values)

	// Numeric and string members share one representation.
	require.NoError(t, store.AddMembers(ctx, "facet:color:red", 7))
	ids, err := store.Members(ctx, "facet:color:red")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}

func TestMemorySetStoreValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	_, ok, err := store.GetValue(ctx, "cache:x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetValue(ctx, "cache:x", `[1,2,3]`, time.Minute))

	value, ok, err := store.GetValue(ctx, "cache:x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2,3]`, value)
}

func TestMemorySetStoreDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySetStore()

	require.NoError(t, store.AddMembers(ctx, "facet:brand:acme", 1))
	require.NoError(t, store.AddMembers(ctx, "facet:color:red", 1))
	require.NoError(t, store.AddMembers(ctx, "knownValues:color", 1))

	require.NoError(t, store.DeleteByPattern(ctx, "facet:*"))

	assert.Empty(t, store.Keys("facet:*"))
	assert.Len(t, store.Keys("knownValues:*"), 1)
}
