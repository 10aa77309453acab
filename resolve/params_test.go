package resolve_test

import (
	"testing"

	"github.com/mlindqvist/rankexpr/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplicitParamsResolve(t *testing.T) {
	p, err := resolve.NewExplicitParams([]string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 0, p.Resolve("a"))
	assert.Equal(t, 1, p.Resolve("b"))
	assert.Equal(t, resolve.Undef, p.Resolve("c"))
	assert.False(t, p.Implicit())
	assert.Equal(t, []string{"a", "b"}, p.Names())
}

func TestExplicitParamsRejectsDuplicates(t *testing.T) {
	_, err := resolve.NewExplicitParams([]string{"a", "a"})
	assert.Error(t, err)
}

func TestImplicitParamsDiscoversInOrder(t *testing.T) {
	p := resolve.NewImplicitParams()

	assert.Equal(t, 0, p.Resolve("x"))
	assert.Equal(t, 1, p.Resolve("y"))
	assert.Equal(t, 0, p.Resolve("x")) // repeat returns same id
	assert.True(t, p.Implicit())
	assert.Equal(t, []string{"x", "y"}, p.Names())
}
