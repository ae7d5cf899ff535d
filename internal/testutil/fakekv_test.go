package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeKVRecordsWrites(t *testing.T) {
	ctx := context.Background()
	kv := NewFakeKV()
	kv.Seed("a", "seeded")

	require.NoError(t, kv.Set(ctx, "b", "1"))
	require.NoError(t, kv.Set(ctx, "b", "2"))

	assert.Equal(t, []Write{{Key: "b", Value: "1"}, {Key: "b", Value: "2"}}, kv.Writes())
	assert.Equal(t, map[string]string{"a": "seeded", "b": "2"}, kv.Data())
}

func TestFakeKVErrorInjection(t *testing.T) {
	ctx := context.Background()
	kv := NewFakeKV()
	boom := errors.New("boom")

	kv.SetErrFor["x"] = boom
	assert.ErrorIs(t, kv.Set(ctx, "x", "v"), boom)
	assert.NoError(t, kv.Set(ctx, "y", "v"))

	kv.SetFailure(boom)
	assert.ErrorIs(t, kv.Set(ctx, "y", "w"), boom)
	kv.SetFailure(nil)

	kv.GetErr = boom
	_, _, err := kv.Get(ctx, "y")
	assert.ErrorIs(t, err, boom)
}
