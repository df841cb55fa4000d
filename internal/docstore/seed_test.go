package docstore_test

import (
	"context"
	"testing"

	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaults(t *testing.T) {
	docs := docstore.NewMemoryStore()

	require.NoError(t, docstore.SeedDefaults(context.TODO(), docs))

	ids, err := docs.IDs(context.TODO(), docstore.CollectionActionTypes)
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}

func TestSeedDefaultsPreservesExisting(t *testing.T) {
	docs := docstore.NewMemoryStore()

	require.NoError(t, docs.Insert(context.TODO(), docstore.CollectionActionTypes, docstore.Document{
		"id": "at-wipe", "name": "Deep Wipe", "defaultDurationMinutes": 30,
	}))

	require.NoError(t, docstore.SeedDefaults(context.TODO(), docs))

	doc, err := docs.Get(context.TODO(), docstore.CollectionActionTypes, "at-wipe")
	require.NoError(t, err)
	assert.Equal(t, "Deep Wipe", doc["name"])
}
