package registry_test

import (
	"testing"

	"github.com/mlindqvist/rankexpr/ast"
	"github.com/mlindqvist/rankexpr/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pad(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func TestDefaultOperatorsMaxSize(t *testing.T) {
	repo := registry.DefaultOperators()
	assert.Equal(t, 2, repo.MaxSize())
}

func TestDefaultOperatorsLongestPrefixMatch(t *testing.T) {
	repo := registry.DefaultOperators()

	op, consumed, ok := repo.Create(pad("==x", repo.MaxSize()))
	require.True(t, ok)
	assert.Equal(t, "Eq", op.Name)
	assert.Equal(t, 2, consumed)

	// Single '=' is not a registered operator, so a following char must
	// not accidentally produce a 2-byte match.
	op, consumed, ok = repo.Create(pad("=x", repo.MaxSize()))
	assert.False(t, ok)
	assert.Zero(t, consumed)
	_ = op

	op, consumed, ok = repo.Create(pad("+2", repo.MaxSize()))
	require.True(t, ok)
	assert.Equal(t, "Add", op.Name)
	assert.Equal(t, 1, consumed)
}

func TestDefaultOperatorsNoMatch(t *testing.T) {
	repo := registry.DefaultOperators()
	_, _, ok := repo.Create(pad("?", repo.MaxSize()))
	assert.False(t, ok)
}

func TestPowIsRightAssociative(t *testing.T) {
	repo := registry.DefaultOperators()
	op, _, ok := repo.Create(pad("^2", repo.MaxSize()))
	require.True(t, ok)
	assert.True(t, op.RightAssoc)
}
