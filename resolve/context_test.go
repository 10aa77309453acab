package resolve_test

import (
	"testing"

	"github.com/mlindqvist/rankexpr/resolve"
	"github.com/stretchr/testify/assert"
)

func TestResolveLetNameInnermostWins(t *testing.T) {
	ctx := resolve.NewContext(resolve.NewImplicitParams(), nil)
	ctx.PushLetBinding("x") // i=0 -> -1
	ctx.PushLetBinding("y") // i=1 -> -2
	ctx.PushLetBinding("x") // i=2 -> -3, shadows the first x

	assert.Equal(t, -3, ctx.ResolveLetName("x"))
	assert.Equal(t, -2, ctx.ResolveLetName("y"))
	assert.Equal(t, resolve.Undef, ctx.ResolveLetName("z"))

	ctx.PopLetBinding() // drop innermost x
	assert.Equal(t, -1, ctx.ResolveLetName("x"))
}

func TestResolveFallsThroughToParams(t *testing.T) {
	ctx := resolve.NewContext(resolve.NewImplicitParams(), nil)
	ctx.PushLetBinding("x")

	assert.Equal(t, -1, ctx.Resolve("x"))
	assert.Equal(t, 0, ctx.Resolve("a")) // falls through to implicit params
}

func TestStackPushPopIsolatesScopes(t *testing.T) {
	root := resolve.NewContext(resolve.NewImplicitParams(), nil)
	root.PushLetBinding("x")
	stack := resolve.NewStack(root)

	lambdaParams, _ := resolve.NewExplicitParams([]string{"v"})
	stack.Push(resolve.NewContext(lambdaParams, nil))

	// Inside the lambda, the outer let-binding "x" is invisible.
	assert.Equal(t, resolve.Undef, stack.Current().ResolveLetName("x"))
	assert.Equal(t, 0, stack.Current().Resolve("v"))

	stack.Pop()
	assert.Equal(t, -1, stack.Current().ResolveLetName("x"))
}

func TestStackPopRootIsNoop(t *testing.T) {
	root := resolve.NewContext(resolve.NewImplicitParams(), nil)
	stack := resolve.NewStack(root)
	stack.Pop()
	assert.Same(t, root, stack.Current())
}
