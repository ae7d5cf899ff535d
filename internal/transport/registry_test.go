package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(ctx context.Context, payload string) (string, error) { return payload, nil }

func TestRegistryInvoke(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterProcedure("echo", echo))

	got, err := r.Invoke(context.Background(), "echo", `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterProcedure("echo", echo))
	assert.EqualError(t, r.RegisterProcedure("echo", echo), "procedure already registered: echo")
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.RegisterProcedure("", echo))
	assert.Error(t, r.RegisterProcedure("x", nil))
	assert.Empty(t, r.Names())
}

func TestRegistryUnknown(t *testing.T) {
	_, err := NewRegistry().Invoke(context.Background(), "nope", "")
	assert.ErrorIs(t, err, ErrUnknownProcedure)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"getTodos", "addTodo", "moveTodo"} {
		require.NoError(t, r.RegisterProcedure(n, echo))
	}
	assert.Equal(t, []string{"addTodo", "getTodos", "moveTodo"}, r.Names())
}
