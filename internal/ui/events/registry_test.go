package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_EmitInOrder(t *testing.T) {
	var r Registry[int]
	var got []string
	r.Add(func(v int) { got = append(got, "a") })
	r.Add(func(v int) { got = append(got, "b") })
	r.Add(func(v int) { got = append(got, "c") })

	r.Emit(1)
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestRegistry_RemovedListenerNeverCalled(t *testing.T) {
	var r Registry[int]
	calls := 0
	remove := r.Add(func(int) { calls++ })

	r.Emit(360)
	remove()
	r.Emit(420)
	r.Emit(800)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	var r Registry[string]
	first := r.Add(func(string) {})
	r.Add(func(string) {})

	first()
	first()
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ListenerMayRemoveItselfDuringEmit(t *testing.T) {
	var r Registry[int]
	calls := 0
	var remove func()
	remove = r.Add(func(int) {
		calls++
		remove()
	})

	r.Emit(1)
	r.Emit(2)
	assert.Equal(t, 1, calls)
}

func TestRegistry_RepeatedConstructionDoesNotGrow(t *testing.T) {
	var r Registry[int]
	for i := 0; i < 50; i++ {
		remove := r.Add(func(int) {})
		remove()
	}
	assert.Equal(t, 0, r.Len())
}
