package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		store := NewSessionStore()
		session := NewSession(1, "user", "Имя")

		store.Set(1, session)

		got, ok := store.Get(1)
		require.True(t, ok)
		assert.Same(t, session, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := NewSessionStore()
		got, ok := store.Get(404)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("SetReplacesExisting", func(t *testing.T) {
		store := NewSessionStore()
		old := NewSession(1, "", "")
		old.CasinoName = "Старое казино"
		store.Set(1, old)

		replacement := NewSession(1, "", "")
		store.Set(1, replacement)

		got, ok := store.Get(1)
		require.True(t, ok)
		assert.Same(t, replacement, got)
		assert.Equal(t, StageCasinoName, got.Stage)
	})

	t.Run("Delete", func(t *testing.T) {
		store := NewSessionStore()
		store.Set(1, NewSession(1, "", ""))
		store.Delete(1)

		_, ok := store.Get(1)
		assert.False(t, ok)

		// Удаление несуществующей сессии не паникует
		store.Delete(404)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		store := NewSessionStore()
		var wg sync.WaitGroup
		for i := int64(0); i < 50; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				store.Set(userID, NewSession(userID, "", ""))
				store.Get(userID)
				store.Delete(userID)
			}(i)
		}
		wg.Wait()
	})
}
