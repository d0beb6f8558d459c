package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/types"
)

func testSession(name string) *Session {
	return &Session{
		Name: name,
		Entities: []*types.Entity{
			{Name: "Honda Civic", Type: "COMPONENT", Confidence: 0.9},
			{Name: "engine", Type: "SPECIFICATION", Confidence: 0.8},
		},
		Relationships: []*types.Relationship{
			{Source: "Honda Civic", Target: "engine", Type: "contains", Confidence: 0.9},
		},
		Clusters: []*types.EntityCluster{
			{
				ID:        "cluster-1",
				Canonical: "Honda Civic",
				Members:   []*types.Entity{{Name: "Honda Civic", Type: "COMPONENT", Confidence: 0.9}},
			},
		},
	}
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load round trip", func(t *testing.T) {
		store, err := Open("", nil)
		require.NoError(t, err)
		defer store.Close()

		session := testSession("default")
		require.NoError(t, store.Save(ctx, session))
		assert.False(t, session.SavedAt.IsZero())

		loaded, err := store.Load(ctx, "default")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "default", loaded.Name)
		assert.Equal(t, session.Entities, loaded.Entities)
		assert.Equal(t, session.Relationships, loaded.Relationships)
		assert.Equal(t, session.Clusters, loaded.Clusters)
	})

	t.Run("load missing returns nil", func(t *testing.T) {
		store, err := Open("", nil)
		require.NoError(t, err)
		defer store.Close()

		loaded, err := store.Load(ctx, "never-saved")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		store, err := Open("", nil)
		require.NoError(t, err)
		defer store.Close()

		assert.Error(t, store.Save(ctx, &Session{}))
		assert.Error(t, store.Save(ctx, nil))
		_, err = store.Load(ctx, "  ")
		assert.Error(t, err)
		assert.Error(t, store.Delete(ctx, ""))
	})

	t.Run("delete removes session", func(t *testing.T) {
		store, err := Open("", nil)
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Save(ctx, testSession("gone")))
		require.NoError(t, store.Delete(ctx, "gone"))

		loaded, err := store.Load(ctx, "gone")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// Deleting again is a no-op.
		require.NoError(t, store.Delete(ctx, "gone"))
	})

	t.Run("list returns names in order", func(t *testing.T) {
		store, err := Open("", nil)
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Save(ctx, testSession("beta")))
		require.NoError(t, store.Save(ctx, testSession("alpha")))

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta"}, names)
	})

	t.Run("survives reopen", func(t *testing.T) {
		dir := t.TempDir()

		store, err := Open(dir, nil)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, testSession("durable")))
		require.NoError(t, store.Close())

		reopened, err := Open(dir, nil)
		require.NoError(t, err)
		defer reopened.Close()

		loaded, err := reopened.Load(ctx, "durable")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Len(t, loaded.Entities, 2)
		assert.Len(t, loaded.Relationships, 1)
	})

	t.Run("canceled context", func(t *testing.T) {
		store, err := Open("", nil)
		require.NoError(t, err)
		defer store.Close()

		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, store.Save(canceled, testSession("nope")))
		_, err = store.Load(canceled, "nope")
		assert.Error(t, err)
	})
}
