package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func navSchema() Schema {
	return Schema{
		{
			Key:   "nav",
			Label: "Navigation",
			Leaves: []Leaf{
				{Key: "dashboard", Label: "Dashboard", Default: true},
				{Key: "settings", Label: "Settings", Default: false},
			},
		},
	}
}

func TestDefaultStateFlatten(t *testing.T) {
	schema := navSchema()
	state := DefaultState(schema)

	flat, err := Flatten(state, schema)
	require.NoError(t, err)
	assert.Equal(t, Flat{"nav.dashboard": true, "nav.settings": false}, flat)
}

func TestToggleLeafDoesNotMutateOriginal(t *testing.T) {
	schema := navSchema()
	state := DefaultState(schema)

	next, err := ToggleLeaf(state, "nav.settings")
	require.NoError(t, err)

	nextFlat, err := Flatten(next, schema)
	require.NoError(t, err)
	assert.Equal(t, Flat{"nav.dashboard": true, "nav.settings": true}, nextFlat)

	// The original state must be untouched.
	originalFlat, err := Flatten(state, schema)
	require.NoError(t, err)
	assert.Equal(t, Flat{"nav.dashboard": true, "nav.settings": false}, originalFlat)
}

func TestSetLeafDoesNotMutateOriginal(t *testing.T) {
	schema := DefaultSchema()
	state := DefaultState(schema)

	next, err := SetLeaf(state, "analytics.sms.sentiment", false)
	require.NoError(t, err)

	got, err := GetLeaf(next, "analytics.sms.sentiment")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = GetLeaf(state, "analytics.sms.sentiment")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRoundTripStateFlatState(t *testing.T) {
	schema := DefaultSchema()
	state := DefaultState(schema)

	// Perturb a handful of leaves so the state is not all-defaults.
	for _, path := range []string{"nav.settings", "analytics.voice.duration", "admin.user_management"} {
		if _, err := GetLeaf(state, path); err != nil {
			continue
		}
		var err error
		state, err = ToggleLeaf(state, path)
		require.NoError(t, err)
	}

	flat, err := Flatten(state, schema)
	require.NoError(t, err)
	assert.Equal(t, state, Unflatten(flat, schema))
}

func TestRoundTripFlatStateFlat(t *testing.T) {
	schema := DefaultSchema()

	flat := make(Flat)
	for i, path := range schema.LeafPaths() {
		flat[path] = i%2 == 0
	}

	state := Unflatten(flat, schema)
	got, err := Flatten(state, schema)
	require.NoError(t, err)
	assert.Equal(t, flat, got)
}

func TestUnflattenFillsMissingWithLeafDefaults(t *testing.T) {
	schema := navSchema()

	// Only one of the two leaves present; the other falls back to its own
	// declared default, not a fixed global one.
	state := Unflatten(Flat{"nav.settings": true}, schema)

	dashboard, err := GetLeaf(state, "nav.dashboard")
	require.NoError(t, err)
	assert.True(t, dashboard, "nav.dashboard defaults to true")

	settings, err := GetLeaf(state, "nav.settings")
	require.NoError(t, err)
	assert.True(t, settings)
}

func TestUnflattenIgnoresUnknownKeys(t *testing.T) {
	schema := navSchema()
	state := Unflatten(Flat{"nav.dashboard": false, "legacy.export": true}, schema)

	flat, err := Flatten(state, schema)
	require.NoError(t, err)
	assert.Equal(t, Flat{"nav.dashboard": false, "nav.settings": false}, flat)

	_, err = GetLeaf(state, "legacy.export")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestToggleUnknownPathFails(t *testing.T) {
	state := DefaultState(navSchema())

	_, err := ToggleLeaf(state, "nav.reports")
	assert.ErrorIs(t, err, ErrUnknownPath)

	_, err = SetLeaf(state, "billing.invoices", true)
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestGetLeafPathNotFound(t *testing.T) {
	state := DefaultState(navSchema())

	_, err := GetLeaf(state, "nav.missing")
	assert.ErrorIs(t, err, ErrPathNotFound)

	// Intermediate segment resolving to a leaf instead of a subtree.
	_, err = GetLeaf(state, "nav.dashboard.widgets")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestFlattenDetectsSchemaStateDesync(t *testing.T) {
	// State built from an older schema missing the settings leaf.
	stale := State{"nav": State{"dashboard": true}}

	_, err := Flatten(stale, navSchema())
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestDefaultSchemaLeafPathsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, path := range DefaultSchema().LeafPaths() {
		assert.False(t, seen[path], "duplicate leaf path %s", path)
		seen[path] = true
	}
	assert.NotEmpty(t, seen)
}
