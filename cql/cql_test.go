package cql_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworld/archon/cql"
	"github.com/quillworld/archon/types"
)

var testComponents = map[string]types.ComponentID{
	"Position": 0,
	"Velocity": 1,
	"Health":   2,
}

func resolve(name string) (types.ComponentID, error) {
	id, ok := testComponents[name]
	if !ok {
		return 0, eris.Errorf("component %q is not registered", name)
	}
	return id, nil
}

func sig(vals ...int) []types.ComponentID {
	out := make([]types.ComponentID, len(vals))
	for i, v := range vals {
		out[i] = types.ComponentID(v)
	}
	return out
}

func TestParseContains(t *testing.T) {
	f, err := cql.Parse("CONTAINS(Position, Velocity)", resolve)
	require.NoError(t, err)
	assert.True(t, f.MatchesSignature(sig(0, 1, 2)))
	assert.False(t, f.MatchesSignature(sig(0, 2)))
}

func TestParseExact(t *testing.T) {
	f, err := cql.Parse("EXACT(Position)", resolve)
	require.NoError(t, err)
	assert.True(t, f.MatchesSignature(sig(0)))
	assert.False(t, f.MatchesSignature(sig(0, 1)))
}

func TestParseAll(t *testing.T) {
	f, err := cql.Parse("ALL()", resolve)
	require.NoError(t, err)
	assert.True(t, f.MatchesSignature(sig()))
	assert.True(t, f.MatchesSignature(sig(2)))
}

func TestParseOperatorsAndGrouping(t *testing.T) {
	f, err := cql.Parse("EXACT(Position) | (CONTAINS(Velocity) & !CONTAINS(Health))", resolve)
	require.NoError(t, err)
	assert.True(t, f.MatchesSignature(sig(0)))
	assert.True(t, f.MatchesSignature(sig(1)))
	assert.True(t, f.MatchesSignature(sig(0, 1)))
	assert.False(t, f.MatchesSignature(sig(1, 2)))
	assert.False(t, f.MatchesSignature(sig(2)))
}

func TestParseNot(t *testing.T) {
	f, err := cql.Parse("!CONTAINS(Position)", resolve)
	require.NoError(t, err)
	assert.True(t, f.MatchesSignature(sig(1, 2)))
	assert.False(t, f.MatchesSignature(sig(0)))
}

func TestParseErrors(t *testing.T) {
	_, err := cql.Parse("CONTAINS(Unknown)", resolve)
	assert.Error(t, err)

	_, err = cql.Parse("BOGUS(Position)", resolve)
	assert.Error(t, err)

	_, err = cql.Parse("", resolve)
	assert.Error(t, err)
}
