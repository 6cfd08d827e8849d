package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticStore_Get(t *testing.T) {
	store := NewStaticStore(&Workspace{Name: "demo", Namespace: "demo-ns"})

	ws, err := store.Get(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", ws.Name)
	assert.Equal(t, "demo-ns", ws.Namespace)
}

func TestStaticStore_GetMissing(t *testing.T) {
	store := NewStaticStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticStore_AddReplaces(t *testing.T) {
	store := NewStaticStore(&Workspace{Name: "demo", Namespace: "old-ns"})
	store.Add(&Workspace{Name: "demo", Namespace: "new-ns"})

	ws, err := store.Get(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "new-ns", ws.Namespace)
}
