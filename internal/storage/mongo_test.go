package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosplus/storefront/internal/domain"
)

// Needs a live server, e.g. MONGO_TEST_URI=mongodb://localhost:27017
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()

	client, err := ConnectMongo(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = DisconnectMongo(client) })

	db := client.Database("videosplus_test_" + uuid.NewString()[:8])
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	store := NewMongoStore(db, "documents", testDefaults(), nil)
	key := "metadata/videosplus-data.json"

	doc, missing, err := store.FetchDocument(ctx, key)
	require.NoError(t, err)
	assert.True(t, missing.Missing)
	assert.Len(t, doc.Users, 1)

	first, err := store.StoreDocument(ctx, key, doc, missing)
	require.NoError(t, err)
	assert.Equal(t, "1", first.Tag)

	_, err = store.StoreDocument(ctx, key, doc, missing)
	assert.ErrorIs(t, err, ErrVersionConflict)

	doc.Videos = append(doc.Videos, domain.Video{ID: "v1", Title: "Intro"})
	second, err := store.StoreDocument(ctx, key, doc, first)
	require.NoError(t, err)
	assert.Equal(t, "2", second.Tag)

	_, err = store.StoreDocument(ctx, key, doc, first)
	assert.ErrorIs(t, err, ErrVersionConflict)

	third, err := store.StoreDocument(ctx, key, doc, Version{})
	require.NoError(t, err)
	assert.Equal(t, "3", third.Tag)

	got, version, err := store.FetchDocument(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, third, version)
	require.Len(t, got.Videos, 1)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}
