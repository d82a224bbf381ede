package feed

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

func createPost(t *testing.T, db *gorm.DB, ownerID uuid.UUID, archived bool) models.Post {
	t.Helper()

	post := models.Post{
		ID:         uuid.New(),
		UserID:     ownerID,
		MediaURL:   "https://cdn.example.com/p.jpg",
		IsArchived: archived,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func TestFeedExcludesArchivedPosts(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)

	live := createPost(t, db, bob.ID, false)
	createPost(t, db, bob.ID, true)
	ownArchived := createPost(t, db, alice.ID, true)

	views, err := FeedPosts(db, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, live.ID, views[0].Post.ID)

	// Even the viewer's own archived posts stay out of their feed.
	for _, v := range views {
		assert.NotEqual(t, ownArchived.ID, v.Post.ID)
	}
}

func TestFeedLimitedToFollowedAuthors(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)

	followed := createPost(t, db, bob.ID, false)
	own := createPost(t, db, alice.ID, false)
	createPost(t, db, carol.ID, false)

	views, err := FeedPosts(db, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, views, 2)

	got := []uuid.UUID{views[0].Post.ID, views[1].Post.ID}
	assert.ElementsMatch(t, []uuid.UUID{followed.ID, own.ID}, got)
}

func TestFollowedAuthorIDs(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)

	ids, err := FollowedAuthorIDs(db, alice.ID)
	require.NoError(t, err)

	// The viewer's own posts belong in their feed alongside followed authors.
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, ids)
	assert.NotContains(t, ids, carol.ID)
}
