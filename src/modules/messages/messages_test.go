package messages

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
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

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestSend(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	message, err := Send(db, alice.ID, bob.ID, "  hey  ")
	require.NoError(t, err)
	assert.Equal(t, "hey", message.Content)
	assert.False(t, message.IsRead)

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendValidation(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := Send(db, alice.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, helpers.ErrValidation)

	_, err = Send(db, alice.ID, alice.ID, "hi")
	assert.ErrorIs(t, err, helpers.ErrInvalidOperation)

	_, err = Send(db, alice.ID, uuid.New(), "hi")
	assert.ErrorIs(t, err, helpers.ErrNotFound)
}

func TestMarkReadOnlyAffectsIncoming(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := Send(db, bob.ID, alice.ID, "first")
	require.NoError(t, err)
	_, err = Send(db, bob.ID, alice.ID, "second")
	require.NoError(t, err)
	outgoing, err := Send(db, alice.ID, bob.ID, "reply")
	require.NoError(t, err)

	require.NoError(t, markRead(db, alice.ID, bob.ID))

	var unread int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", alice.ID, false).
		Count(&unread).Error)
	assert.Equal(t, int64(0), unread)

	// Alice's own outgoing message stays unread for Bob.
	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", outgoing.ID).Error)
	assert.False(t, stored.IsRead)
}
