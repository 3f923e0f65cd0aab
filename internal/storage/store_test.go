package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scam-report-bot/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db)
}

func sampleReport() domain.Report {
	return domain.Report{
		UserID:      42,
		Username:    "victim",
		FirstName:   "Иван",
		CasinoName:  "Mega888",
		CasinoLink:  "www.mega888.com",
		AmountLost:  "5000",
		Description: "Не выводят выигрыш",
		Screenshots: []string{"file-1", "file-2"},
	}
}

func TestStore_Reports(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		store := newTestStore(t)

		created, err := store.CreateReport(ctx, sampleReport())
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.WithinDuration(t, time.Now().UTC(), created.CreatedAt, time.Second)

		got, err := store.ReportByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.UserID, got.UserID)
		assert.Equal(t, created.Username, got.Username)
		assert.Equal(t, created.CasinoName, got.CasinoName)
		assert.Equal(t, created.CasinoLink, got.CasinoLink)
		assert.Equal(t, created.AmountLost, got.AmountLost)
		assert.Equal(t, created.Description, got.Description)
		assert.Equal(t, created.Screenshots, got.Screenshots)
		assert.Zero(t, got.ChannelMessageID)
	})

	t.Run("CreateRequiresNameAndDescription", func(t *testing.T) {
		store := newTestStore(t)

		r := sampleReport()
		r.CasinoName = ""
		_, err := store.CreateReport(ctx, r)
		assert.Error(t, err)

		r = sampleReport()
		r.Description = ""
		_, err = store.CreateReport(ctx, r)
		assert.Error(t, err)
	})

	t.Run("OptionalFieldsEmpty", func(t *testing.T) {
		store := newTestStore(t)

		r := sampleReport()
		r.Username = ""
		r.CasinoLink = ""
		r.AmountLost = ""
		r.Screenshots = nil

		created, err := store.CreateReport(ctx, r)
		require.NoError(t, err)

		got, err := store.ReportByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Username)
		assert.Empty(t, got.CasinoLink)
		assert.Empty(t, got.AmountLost)
		assert.Empty(t, got.Screenshots)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.ReportByID(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetChannelMessage", func(t *testing.T) {
		store := newTestStore(t)
		created, err := store.CreateReport(ctx, sampleReport())
		require.NoError(t, err)

		require.NoError(t, store.SetChannelMessage(ctx, created.ID, 777))

		got, err := store.ReportByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 777, got.ChannelMessageID)

		assert.ErrorIs(t, store.SetChannelMessage(ctx, 404, 777), ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newTestStore(t)
		created, err := store.CreateReport(ctx, sampleReport())
		require.NoError(t, err)

		require.NoError(t, store.DeleteReport(ctx, created.ID))

		_, err = store.ReportByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, store.DeleteReport(ctx, created.ID), ErrNotFound)
	})
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, r := range []domain.Report{
		{UserID: 1, CasinoName: "Mega888", CasinoLink: "www.mega888.com", Description: "d"},
		{UserID: 2, CasinoName: "Lucky Palace", CasinoLink: "lucky.bet", Description: "d"},
		{UserID: 3, CasinoName: "MEGA Spin", Description: "d"},
	} {
		_, err := store.CreateReport(ctx, r)
		require.NoError(t, err)
	}

	t.Run("ByNameCaseInsensitive", func(t *testing.T) {
		found, err := store.SearchReports(ctx, "mega")
		require.NoError(t, err)
		require.Len(t, found, 2)
		// Новые репорты первыми
		assert.Equal(t, "MEGA Spin", found[0].CasinoName)
		assert.Equal(t, "Mega888", found[1].CasinoName)
	})

	t.Run("ByNameNoMatch", func(t *testing.T) {
		found, err := store.SearchReports(ctx, "jackpot")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("ByLink", func(t *testing.T) {
		found, err := store.ReportsByLink(ctx, "LUCKY.BET")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Lucky Palace", found[0].CasinoName)
	})

	t.Run("AllReports", func(t *testing.T) {
		all, err := store.AllReports(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "MEGA Spin", all[0].CasinoName)
	})

	t.Run("Stats", func(t *testing.T) {
		_, err := store.CreateReport(ctx, domain.Report{UserID: 4, CasinoName: "Mega888", Description: "d"})
		require.NoError(t, err)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Total)
		require.NotEmpty(t, stats.TopCasinos)
		assert.Equal(t, "Mega888", stats.TopCasinos[0].Name)
		assert.Equal(t, 2, stats.TopCasinos[0].Count)
	})
}

func TestStore_Bans(t *testing.T) {
	ctx := context.Background()

	t.Run("BanAndCheck", func(t *testing.T) {
		store := newTestStore(t)

		banned, err := store.IsBanned(ctx, 42)
		require.NoError(t, err)
		assert.False(t, banned)

		require.NoError(t, store.BanUser(ctx, 42, 1, "спам"))

		banned, err = store.IsBanned(ctx, 42)
		require.NoError(t, err)
		assert.True(t, banned)
	})

	t.Run("RepeatedBanUpdatesReason", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.BanUser(ctx, 42, 1, "первая причина"))
		require.NoError(t, store.BanUser(ctx, 42, 1, "вторая причина"))

		list, err := store.BannedUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "вторая причина", list[0].Reason)
	})

	t.Run("Unban", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.BanUser(ctx, 42, 1, ""))
		require.NoError(t, store.UnbanUser(ctx, 42))

		banned, err := store.IsBanned(ctx, 42)
		require.NoError(t, err)
		assert.False(t, banned)

		assert.ErrorIs(t, store.UnbanUser(ctx, 42), ErrNotFound)
	})

	t.Run("BannedUsersList", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.BanUser(ctx, 1, 100, "причина"))
		require.NoError(t, store.BanUser(ctx, 2, 100, ""))

		list, err := store.BannedUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, b := range list {
			assert.Equal(t, int64(100), b.BannedBy)
			assert.False(t, b.BannedAt.IsZero())
		}
	})
}

func TestStore_Chats(t *testing.T) {
	ctx := context.Background()

	t.Run("UpsertAndList", func(t *testing.T) {
		store := newTestStore(t)

		require.NoError(t, store.UpsertChat(ctx, domain.ChatRecord{ChatID: 1, ChatType: "private", Title: "", Username: "user"}))
		require.NoError(t, store.UpsertChat(ctx, domain.ChatRecord{ChatID: -100, ChatType: "supergroup", Title: "Группа"}))

		chats, err := store.ListActiveChats(ctx)
		require.NoError(t, err)
		require.Len(t, chats, 2)
		assert.Equal(t, int64(1), chats[0].ChatID)
		assert.Equal(t, int64(-100), chats[1].ChatID)
		assert.True(t, chats[0].IsActive)
	})

	t.Run("DeactivateAndReactivate", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.UpsertChat(ctx, domain.ChatRecord{ChatID: 1, ChatType: "private"}))

		require.NoError(t, store.DeactivateChat(ctx, 1))

		chats, err := store.ListActiveChats(ctx)
		require.NoError(t, err)
		assert.Empty(t, chats)

		// Повторный upsert возвращает чат в аудиторию
		require.NoError(t, store.UpsertChat(ctx, domain.ChatRecord{ChatID: 1, ChatType: "private"}))
		chats, err = store.ListActiveChats(ctx)
		require.NoError(t, err)
		assert.Len(t, chats, 1)
	})

	t.Run("DeactivateMissingChat", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(t, store.DeactivateChat(ctx, 404))
	})
}
