package component

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestComponentKinds(t *testing.T) {
	assert.True(t, TransformComponent.Kind().Valid())
	assert.NotEqual(t, TransformComponent.Kind().ID(), VelocityComponent.Kind().ID())
	assert.Equal(t, "component.Transform", TransformComponent.Kind().String())
	assert.Equal(t, "*int", NewComponent[*int]().Kind().String())

	var zero ComponentKind[Transform]
	assert.False(t, zero.Valid())
	assert.Equal(t, "invalid", zero.String())
}

func TestMoverBox(t *testing.T) {
	bb := Mover{HalfExtent: 4}.Box(cp.Vector{X: 10, Y: 20})
	assert.Equal(t, 6.0, bb.L)
	assert.Equal(t, 16.0, bb.B)
	assert.Equal(t, 14.0, bb.R)
	assert.Equal(t, 24.0, bb.T)
}
