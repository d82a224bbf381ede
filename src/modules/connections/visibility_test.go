package connection

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibely/src/core/helpers"
)

func TestCanViewPublicProfile(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)

	ok, err := CanView(db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewOwnPrivateProfile(t *testing.T) {
	db := newTestDB(t)
	bob := createUser(t, db, "bob", true)

	ok, err := CanView(db, bob.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewPrivateProfileAsStranger(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", true)

	ok, err := CanView(db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, RequireView(db, alice.ID, bob.ID), helpers.ErrPrivateProfile)
}

func TestCanViewPrivateProfileAsFollower(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", true)

	_, err := ToggleFollow(db, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, AcceptFollowRequest(db, bob.ID, alice.ID))

	ok, err := CanView(db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A pending request alone does not grant access.
	carol := createUser(t, db, "carol", false)
	_, err = ToggleFollow(db, carol.ID, bob.ID)
	require.NoError(t, err)

	ok, err = CanView(db, carol.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewMissingSubject(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice", false)

	_, err := CanView(db, alice.ID, uuid.New())
	assert.ErrorIs(t, err, helpers.ErrNotFound)
}
