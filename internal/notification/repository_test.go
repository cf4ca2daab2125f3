package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database and creates the notifications
// schema by hand. The production schema relies on Postgres-only defaults
// (uuid_generate_v4), so AutoMigrate is not usable against SQLite.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			ride_id TEXT,
			ride_title TEXT,
			ride_start_time DATETIME,
			ride_location TEXT,
			organizer_name TEXT,
			is_read BOOLEAN NOT NULL DEFAULT false,
			created_at DATETIME NOT NULL,
			send_at DATETIME NOT NULL,
			sent_at DATETIME,
			dedupe_key TEXT NOT NULL
		)`).Error)
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX idx_notifications_dedupe_key ON notifications (dedupe_key)`).Error)

	return db
}

func newStoredNotification(recipientID uuid.UUID, typ Type, dedupeKey string, createdAt time.Time) *Notification {
	return &Notification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       "Ride updated",
		Message:     "Details changed.",
		CreatedAt:   createdAt,
		SendAt:      createdAt,
		DedupeKey:   dedupeKey,
	}
}

func TestGORMRepository_CreateIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()
	recipientID := uuid.New()
	now := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

	first := newStoredNotification(recipientID, TypeEventUpdated, "r1:ride1:event_updated", now)
	inserted, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEqual(t, uuid.Nil, first.ID)

	// Same dedupe key: silently dropped, existing row untouched.
	duplicate := newStoredNotification(recipientID, TypeEventUpdated, "r1:ride1:event_updated", now.Add(time.Minute))
	inserted, err = repo.CreateIfAbsent(ctx, duplicate)
	require.NoError(t, err)
	assert.False(t, inserted)

	var count int64
	require.NoError(t, db.Model(&Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored Notification
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	assert.Equal(t, now, stored.CreatedAt.UTC())

	// A different key inserts normally.
	other := newStoredNotification(recipientID, TypeEventCancelled, "r1:ride1:event_cancelled", now)
	inserted, err = repo.CreateIfAbsent(ctx, other)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestGORMRepository_MarkSent_Monotonic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

	n := newStoredNotification(uuid.New(), TypeEventReminder, "k1", now)
	_, err := repo.CreateIfAbsent(ctx, n)
	require.NoError(t, err)

	require.NoError(t, repo.MarkSent(ctx, n.ID, now))

	// A second MarkSent must not move sent_at.
	require.NoError(t, repo.MarkSent(ctx, n.ID, now.Add(time.Hour)))

	var stored Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, now, stored.SentAt.UTC())
}

func TestGORMRepository_FindByID_OwnershipScoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	n := newStoredNotification(ownerID, TypeNewParticipant, "k1", time.Now().UTC())
	_, err := repo.CreateIfAbsent(ctx, n)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, n.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, found.ID)

	// Another user's ID behaves exactly like a nonexistent notification.
	_, err = repo.FindByID(ctx, n.ID, uuid.New())
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
}

func TestGORMRepository_GetByRecipient_NewestFirstAndPaginated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()
	recipientID := uuid.New()
	base := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		n := newStoredNotification(recipientID, TypeEventUpdated,
			fmt.Sprintf("k%d", i), base.Add(time.Duration(i)*time.Minute))
		_, err := repo.CreateIfAbsent(ctx, n)
		require.NoError(t, err)
	}
	// Another recipient's rows never leak in.
	other := newStoredNotification(uuid.New(), TypeEventUpdated, "other", base)
	_, err := repo.CreateIfAbsent(ctx, other)
	require.NoError(t, err)

	page1, pagination, err := repo.GetByRecipient(ctx, recipientID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, int64(5), pagination.TotalItems)
	assert.Equal(t, base.Add(4*time.Minute), page1[0].CreatedAt.UTC())
	assert.Equal(t, base.Add(3*time.Minute), page1[1].CreatedAt.UTC())

	page3, _, err := repo.GetByRecipient(ctx, recipientID, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, base, page3[0].CreatedAt.UTC())
}

func TestGORMRepository_ReadState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()
	recipientID := uuid.New()
	now := time.Now().UTC()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := newStoredNotification(recipientID, TypeEventUpdated, fmt.Sprintf("k%d", i), now)
		_, err := repo.CreateIfAbsent(ctx, n)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	count, err := repo.CountUnread(ctx, recipientID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, repo.MarkAsRead(ctx, ids[0], recipientID))
	// Marking an already-read notification is a no-op, not an error.
	require.NoError(t, repo.MarkAsRead(ctx, ids[0], recipientID))

	count, err = repo.CountUnread(ctx, recipientID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// A non-owner cannot mark someone else's notification.
	err = repo.MarkAsRead(ctx, ids[1], uuid.New())
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)

	updated, err := repo.MarkAllAsRead(ctx, recipientID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err = repo.CountUnread(ctx, recipientID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Repeat bulk mark touches nothing.
	updated, err = repo.MarkAllAsRead(ctx, recipientID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestGORMRepository_SnapshotSurvivesWithoutRide(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()
	recipientID := uuid.New()
	rideID := uuid.New()
	startTime := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	n := newStoredNotification(recipientID, TypeEventCancelled, "k1", time.Now().UTC())
	n.RideID = &rideID
	title := "Saturday Ride"
	n.RideTitle = &title
	n.RideStartTime = &startTime
	_, err := repo.CreateIfAbsent(ctx, n)
	require.NoError(t, err)

	// No rides table exists in this database at all; the notification still
	// reads back complete from its own columns.
	stored, err := repo.FindByID(ctx, n.ID, recipientID)
	require.NoError(t, err)
	require.NotNil(t, stored.RideTitle)
	assert.Equal(t, "Saturday Ride", *stored.RideTitle)
	require.NotNil(t, stored.RideStartTime)
	assert.Equal(t, startTime, stored.RideStartTime.UTC())
}
