package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhasebe-app/muhasebe_backend/internal/adapters/storage"
)

func TestLocalStore_SaveAndRead(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("jpeg-bytes")
	ref, digest, err := store.Save(content, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, digest+".jpg", ref)
	assert.Len(t, digest, 64)

	read, err := store.Read(ref)
	require.NoError(t, err)
	assert.Equal(t, content, read)
}

func TestLocalStore_IdenticalContentDeduplicates(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ref1, digest1, err := store.Save([]byte("same"), "image/png")
	require.NoError(t, err)
	ref2, digest2, err := store.Save([]byte("same"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, ref1, ref2)
	assert.Equal(t, digest1, digest2)
}

func TestLocalStore_RejectsPathLikeReferences(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("../outside.jpg")
	assert.Error(t, err)
}
