package service

import (
	"context"
	"testing"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRequiresAdmin(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := e.user("bob@example.edu", false)

	_, err := e.admin.ListUsers(ctx, user)
	assert.ErrorIs(t, err, errorz.Unauthorized)
	assert.Equal(t, "Unauthorized: Admin access required", err.Error())

	_, err = e.admin.ListEvents(ctx, "")
	assert.ErrorIs(t, err, errorz.Unauthorized)

	assert.ErrorIs(t, e.admin.Ban(ctx, user, user, ""), errorz.Unauthorized)
	_, err = e.admin.Stats(ctx, user)
	assert.ErrorIs(t, err, errorz.Unauthorized)
}

func TestAdminCannotBanSelf(t *testing.T) {
	e := newEnv()
	admin := e.user("root@example.edu", true)

	err := e.admin.Ban(context.Background(), admin, admin, "")
	assert.Equal(t, errorz.ErrCannotBanSelf, err)
	assert.Equal(t, "Cannot ban yourself", err.Error())
	assert.False(t, e.db.users[admin].IsBanned)
}

func TestAdminBanAndUnban(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.user("root@example.edu", true)
	user := e.user("bob@example.edu", false)

	require.NoError(t, e.admin.Ban(ctx, user, admin, " spam "))
	banned := e.db.users[user]
	assert.True(t, banned.IsBanned)
	require.NotNil(t, banned.BannedBy)
	assert.Equal(t, admin, *banned.BannedBy)
	require.NotNil(t, banned.BanReason)
	assert.Equal(t, "spam", *banned.BanReason)
	require.NotNil(t, banned.BannedAt)
	assert.Equal(t, e.clock.Now(), *banned.BannedAt)

	require.NoError(t, e.admin.Unban(ctx, user, admin))
	unbanned := e.db.users[user]
	assert.False(t, unbanned.IsBanned)
	assert.Nil(t, unbanned.BannedAt)
	assert.Nil(t, unbanned.BannedBy)
	assert.Nil(t, unbanned.BanReason)

	assert.ErrorIs(t, e.admin.Ban(ctx, "6b0f7c59-3e4c-4d3c-9a55-000000000000", admin, ""), errorz.NotFound)
}

func TestBannedAdminLosesRights(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	root := e.user("root@example.edu", true)
	other := e.user("other@example.edu", true)

	require.NoError(t, e.admin.Ban(ctx, other, root, ""))
	assert.False(t, e.guard.IsAdmin(ctx, other))
	assert.ErrorIs(t, e.admin.Unban(ctx, other, other), errorz.Unauthorized)
}

func TestAdminGrantAndRevoke(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.user("root@example.edu", true)
	user := e.user("bob@example.edu", false)

	require.NoError(t, e.admin.GrantAdmin(ctx, user, admin))
	assert.True(t, e.guard.IsAdmin(ctx, user))

	err := e.admin.RevokeAdmin(ctx, admin, admin)
	assert.Equal(t, "Cannot revoke your own admin status", err.Error())
	assert.True(t, e.guard.IsAdmin(ctx, admin))

	require.NoError(t, e.admin.RevokeAdmin(ctx, user, admin))
	assert.False(t, e.guard.IsAdmin(ctx, user))
}

func TestAdminForceDeleteEvent(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.user("root@example.edu", true)
	owner := e.user("ann@example.edu", false)
	fan := e.user("bob@example.edu", false)

	event, err := e.events.Create(ctx, owner, e.form("Go meetup"), pngUpload(t, "poster.png", 32))
	require.NoError(t, err)
	_, err = e.favorites.Toggle(ctx, fan, event.ID)
	require.NoError(t, err)
	_, err = e.blasts.Create(ctx, event.ID, owner, dto.BlastForm{Content: "hi"})
	require.NoError(t, err)

	assert.ErrorIs(t, e.admin.ForceDeleteEvent(ctx, event.ID, fan), errorz.Unauthorized)
	require.NoError(t, e.admin.ForceDeleteEvent(ctx, event.ID, admin))

	_, err = e.events.Get(ctx, event.ID)
	assert.ErrorIs(t, err, errorz.NotFound)
	assert.Empty(t, e.db.blasts)
	assert.Zero(t, fakeFavorites{e.db}.count())
	assert.Empty(t, e.store.objects)

	assert.ErrorIs(t, e.admin.ForceDeleteEvent(ctx, event.ID, admin), errorz.NotFound)
}

func TestAdminListsAndStats(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.user("root@example.edu", true)
	owner := e.user("ann@example.edu", false)
	banned := e.user("spam@example.edu", false)

	event, err := e.events.Create(ctx, owner, e.form("Go meetup"), nil)
	require.NoError(t, err)
	_, err = e.blasts.Create(ctx, event.ID, owner, dto.BlastForm{Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, e.admin.Ban(ctx, banned, admin, ""))

	users, err := e.admin.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, banned, users[0].ID, "newest first")

	events, err := e.admin.ListEvents(ctx, admin)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ann@example.edu", events[0].Creator.Email)

	stats, err := e.admin.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, dto.AdminStats{Users: 3, BannedUsers: 1, Admins: 1, Events: 1, UpcomingEvents: 1, Blasts: 1}, *stats)
}
