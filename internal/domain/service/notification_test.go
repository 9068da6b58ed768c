package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasUnseenScenario(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a := e.user("a@example.edu", false)
	b := e.user("b@example.edu", false)

	unseen, err := e.notifications.HasUnseen(ctx, b)
	require.NoError(t, err)
	assert.False(t, unseen, "no favorites means nothing unseen")

	event, err := e.events.Create(ctx, a, e.form("E"), nil)
	require.NoError(t, err)
	_, err = e.favorites.Toggle(ctx, b, event.ID)
	require.NoError(t, err)

	unseen, err = e.notifications.HasUnseen(ctx, b)
	require.NoError(t, err)
	assert.False(t, unseen)

	e.clock.Advance(time.Minute)
	_, err = e.blasts.Create(ctx, event.ID, a, dto.BlastForm{Content: "first"})
	require.NoError(t, err)

	unseen, err = e.notifications.HasUnseen(ctx, b)
	require.NoError(t, err)
	assert.True(t, unseen, "never-read users compare against the epoch")

	e.clock.Advance(time.Minute)
	e.notifications.MarkSeen(ctx, b)
	unseen, err = e.notifications.HasUnseen(ctx, b)
	require.NoError(t, err)
	assert.False(t, unseen)

	e.clock.Advance(time.Minute)
	_, err = e.blasts.Create(ctx, event.ID, a, dto.BlastForm{Content: "second"})
	require.NoError(t, err)
	unseen, err = e.notifications.HasUnseen(ctx, b)
	require.NoError(t, err)
	assert.True(t, unseen)
}

func TestHasUnseenIsStrict(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a := e.user("a@example.edu", false)
	b := e.user("b@example.edu", false)

	event, err := e.events.Create(ctx, a, e.form("E"), nil)
	require.NoError(t, err)
	_, err = e.favorites.Toggle(ctx, b, event.ID)
	require.NoError(t, err)

	_, err = e.blasts.Create(ctx, event.ID, a, dto.BlastForm{Content: "same instant"})
	require.NoError(t, err)
	e.notifications.MarkSeen(ctx, b)

	unseen, err := e.notifications.HasUnseen(ctx, b)
	require.NoError(t, err)
	assert.False(t, unseen, "a blast at the watermark is seen")
}

func TestListForUser(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a := e.user("a@example.edu", false)
	b := e.user("b@example.edu", false)

	blasts, err := e.notifications.ListForUser(ctx, b)
	require.NoError(t, err)
	assert.NotNil(t, blasts)
	assert.Empty(t, blasts)

	saved, err := e.events.Create(ctx, a, e.form("Saved"), nil)
	require.NoError(t, err)
	ignored, err := e.events.Create(ctx, a, e.form("Ignored"), nil)
	require.NoError(t, err)
	_, err = e.favorites.Toggle(ctx, b, saved.ID)
	require.NoError(t, err)

	_, err = e.blasts.Create(ctx, saved.ID, a, dto.BlastForm{Content: "old"})
	require.NoError(t, err)
	_, err = e.blasts.Create(ctx, ignored.ID, a, dto.BlastForm{Content: "elsewhere"})
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	_, err = e.blasts.Create(ctx, saved.ID, a, dto.BlastForm{Content: "new"})
	require.NoError(t, err)

	blasts, err = e.notifications.ListForUser(ctx, b)
	require.NoError(t, err)
	require.Len(t, blasts, 2)
	assert.Equal(t, "new", blasts[0].Content)
	assert.Equal(t, "old", blasts[1].Content)
	assert.Equal(t, "Saved", blasts[0].Event.Title)
	assert.Equal(t, "a@example.edu", blasts[0].Creator.Email)
}

func TestMarkSeenSwallowsErrors(t *testing.T) {
	e := newEnv()
	b := e.user("b@example.edu", false)
	e.db.fail = errors.New("connection reset")

	assert.NotPanics(t, func() { e.notifications.MarkSeen(context.Background(), b) })
	assert.Empty(t, e.db.reads)
}

func TestSubscribeUsesFavorites(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a := e.user("a@example.edu", false)
	b := e.user("b@example.edu", false)

	event, err := e.events.Create(ctx, a, e.form("E"), nil)
	require.NoError(t, err)
	_, err = e.favorites.Toggle(ctx, b, event.ID)
	require.NoError(t, err)

	_, err = e.notifications.Subscribe(ctx, b)
	require.NoError(t, err)
	require.Len(t, e.feed.subscribed, 1)
	assert.Equal(t, []string{event.ID}, e.feed.subscribed[0])

	e.notifications.feed = nil
	_, err = e.notifications.Subscribe(ctx, b)
	assert.ErrorIs(t, err, ErrRealtimeDisabled)
}
