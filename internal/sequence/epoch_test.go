package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEpoch_ZeroValue(t *testing.T) {
	var e Epoch

	assert.Equal(t, Tag(0), e.Current())
	assert.False(t, e.Stale(0))
}

func TestEpoch_NextSupersedes(t *testing.T) {
	var e Epoch

	first := e.Next()
	second := e.Next()

	assert.Greater(t, second, first)
	assert.True(t, e.Stale(first))
	assert.False(t, e.Stale(second))
	assert.Equal(t, second, e.Current())
}

func TestEpoch_CopiesAreIndependent(t *testing.T) {
	var e Epoch
	tag := e.Next()

	snapshot := e
	e.Next()

	assert.False(t, snapshot.Stale(tag))
	assert.True(t, e.Stale(tag))
}
