package registry_test

import (
	"testing"

	"github.com/mlindqvist/rankexpr/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCallsLookup(t *testing.T) {
	repo := registry.DefaultCalls()

	spec, ok := repo.Lookup("pow")
	require.True(t, ok)
	assert.Equal(t, 2, spec.Arity)

	spec, ok = repo.Lookup("sin")
	require.True(t, ok)
	assert.Equal(t, 1, spec.Arity)

	_, ok = repo.Lookup("nope")
	assert.False(t, ok)
}
