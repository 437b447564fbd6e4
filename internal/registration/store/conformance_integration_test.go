//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"vanadium/internal/registration/models"
	"vanadium/internal/registration/store"
	"vanadium/pkg/platform/sentinel"
)

func payload(p string) models.Record {
	return models.Record{Payload: json.RawMessage(p)}
}

// testStoreConformance runs the contract every backend must satisfy:
// identifier uniqueness, non-creating update, identifier reuse after remove,
// and single-winner semantics under concurrent inserts.
func testStoreConformance(t *testing.T, st store.Store) {
	ctx := context.Background()

	t.Run("insert generates an identifier when none is supplied", func(t *testing.T) {
		id, err := st.Insert(ctx, "", payload(`{"Form":"NVRA"}`))
		require.NoError(t, err)
		assert.False(t, id.IsNil())

		stored, err := st.Lookup(ctx, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Form":"NVRA"}`, string(stored.Payload))
	})

	t.Run("insert with a claimed identifier conflicts without overwriting", func(t *testing.T) {
		id, err := st.Insert(ctx, "txn-conflict", payload(`{"v":1}`))
		require.NoError(t, err)

		_, err = st.Insert(ctx, id, payload(`{"v":2}`))
		require.ErrorIs(t, err, sentinel.ErrConflict)

		stored, err := st.Lookup(ctx, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(stored.Payload))
	})

	t.Run("lookup of an unknown identifier reports absence", func(t *testing.T) {
		_, err := st.Lookup(ctx, "txn-unknown")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update replaces in place and never creates", func(t *testing.T) {
		id, err := st.Insert(ctx, "", payload(`{"v":1}`))
		require.NoError(t, err)

		require.NoError(t, st.Update(ctx, id, payload(`{"v":2}`)))
		stored, err := st.Lookup(ctx, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(stored.Payload))

		err = st.Update(ctx, "txn-never-created", payload(`{}`))
		require.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = st.Lookup(ctx, "txn-never-created")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("remove frees the identifier for reuse", func(t *testing.T) {
		id, err := st.Insert(ctx, "txn-reuse", payload(`{"v":1}`))
		require.NoError(t, err)

		require.NoError(t, st.Remove(ctx, id))
		_, err = st.Lookup(ctx, id)
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		require.ErrorIs(t, st.Remove(ctx, id), sentinel.ErrNotFound)

		reclaimed, err := st.Insert(ctx, id, payload(`{"v":2}`))
		require.NoError(t, err)
		assert.Equal(t, id, reclaimed)
	})

	t.Run("concurrent inserts of one identifier have a single winner", func(t *testing.T) {
		const attempts = 16
		var g errgroup.Group
		var winners atomic.Int32
		for i := 0; i < attempts; i++ {
			g.Go(func() error {
				_, err := st.Insert(ctx, "txn-contended", payload(`{}`))
				if err == nil {
					winners.Add(1)
					return nil
				}
				if errors.Is(err, sentinel.ErrConflict) {
					return nil
				}
				return err
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(1), winners.Load())
	})
}
