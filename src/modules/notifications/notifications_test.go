package notifications

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func notify(t *testing.T, db *gorm.DB, recipientID, senderID uuid.UUID, kind string, postID *uuid.UUID, text string) *models.Notification {
	t.Helper()

	created, err := Notify(db, recipientID, senderID, kind, postID, text)
	require.NoError(t, err)
	return created
}

func TestNotifyDeduplicates(t *testing.T) {
	db := newTestDB(t)
	recipient := uuid.New()
	sender := uuid.New()
	postID := uuid.New()

	for i := 0; i < 3; i++ {
		notify(t, db, recipient, sender, models.NotificationLike, &postID, "")
	}

	var stored []models.Notification
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, recipient, stored[0].RecipientID)
	assert.Equal(t, sender, stored[0].SenderID)
	assert.Equal(t, models.NotificationLike, stored[0].Type)
}

func TestNotifyReturnsOnlyNewRecords(t *testing.T) {
	db := newTestDB(t)
	recipient := uuid.New()
	sender := uuid.New()
	postID := uuid.New()

	created := notify(t, db, recipient, sender, models.NotificationLike, &postID, "")
	require.NotNil(t, created)
	assert.Equal(t, recipient, created.RecipientID)

	// A refresh has nothing new for the caller to deliver.
	assert.Nil(t, notify(t, db, recipient, sender, models.NotificationLike, &postID, ""))
}

func TestNotifyLeavesDeliveryToCaller(t *testing.T) {
	db := newTestDB(t)
	recipient := uuid.New()
	sender := uuid.New()

	created := notify(t, db, recipient, sender, models.NotificationFollow, nil, "")
	require.NotNil(t, created)

	// Notify itself must not push anything: callers dispatch after their
	// transaction commits, so a rollback can never leak a phantom push.
	select {
	case leaked := <-stream:
		t.Fatalf("notification %s pushed before the caller committed", leaked.ID)
	default:
	}

	Dispatch(*created)
	select {
	case delivered := <-stream:
		assert.Equal(t, created.ID, delivered.ID)
	default:
		t.Fatal("dispatched notification never reached the stream")
	}
}

func TestNotifyRefreshBumpsTimestamp(t *testing.T) {
	db := newTestDB(t)
	recipient := uuid.New()
	sender := uuid.New()
	postID := uuid.New()

	notify(t, db, recipient, sender, models.NotificationLike, &postID, "")

	stale := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ?", recipient).
		Updates(map[string]interface{}{"created_at": stale, "is_read": true}).Error)

	notify(t, db, recipient, sender, models.NotificationLike, &postID, "")

	var stored models.Notification
	require.NoError(t, db.First(&stored, "recipient_id = ?", recipient).Error)
	assert.True(t, stored.CreatedAt.After(stale))
	// A refresh never resets the read state.
	assert.True(t, stored.IsRead)
}

func TestNotifySelfIsDropped(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()

	assert.Nil(t, notify(t, db, userID, userID, models.NotificationFollow, nil, ""))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestNotifyKeySeparatesPostsAndTypes(t *testing.T) {
	db := newTestDB(t)
	recipient := uuid.New()
	sender := uuid.New()
	first := uuid.New()
	second := uuid.New()

	notify(t, db, recipient, sender, models.NotificationLike, &first, "")
	notify(t, db, recipient, sender, models.NotificationLike, &second, "")
	notify(t, db, recipient, sender, models.NotificationComment, &first, "hi")
	notify(t, db, recipient, sender, models.NotificationFollow, nil, "")

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestRemoveFollowRequestNotice(t *testing.T) {
	db := newTestDB(t)
	recipient := uuid.New()
	sender := uuid.New()

	notify(t, db, recipient, sender, models.NotificationFollowRequest, nil, "")
	notify(t, db, recipient, sender, models.NotificationFollow, nil, "")

	require.NoError(t, RemoveFollowRequestNotice(db, recipient, sender))

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.NotificationFollow, remaining[0].Type)

	// Removing again is a no-op.
	require.NoError(t, RemoveFollowRequestNotice(db, recipient, sender))
}
