package forum

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/models"
)

func TestNotFound(t *testing.T) {
	fx := newFixture(t)
	const missing = 9999

	_, err := fx.svc.CreatePost(fx.ctx, NewPost{TopicID: missing, UserID: fx.users[0].ID, Body: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.svc.EditPost(fx.ctx, missing, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.svc.DeletePost(fx.ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = fx.svc.CreateTopic(fx.ctx, NewTopic{ForumID: missing, UserID: fx.users[0].ID, Title: "x", Body: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.svc.UpdateTopic(fx.ctx, missing, TopicChanges{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fx.svc.DeleteTopic(fx.ctx, missing), ErrNotFound)
	assert.ErrorIs(t, fx.svc.DeleteForum(fx.ctx, missing), ErrNotFound)
	assert.ErrorIs(t, fx.svc.DeleteSection(fx.ctx, missing), ErrNotFound)
	_, err = fx.svc.Profile(fx.ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	fx.requireConsistent()
}

func TestMissingAuthorRollsBackTopic(t *testing.T) {
	fx := newFixture(t)
	fm := fx.forums[0][0]

	_, _, err := fx.svc.CreateTopic(fx.ctx, NewTopic{ForumID: fm.ID, UserID: 9999, Title: "x", Body: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, fixtureTopics, fx.count(&models.Topic{}, "forum_id = ?", fm.ID))
	assert.Equal(t, fixtureTopics, fx.forum(fm.ID).TopicCount)
	fx.requireConsistent()
}

func TestClassify(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "23505"} {
		err := classify(fmt.Errorf("commit: %w", &pgconn.PgError{Code: code, Message: "could not serialize access"}))
		assert.ErrorIs(t, err, ErrConflict, code)
	}

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, error(other), classify(other))
	assert.Nil(t, classify(nil))

	wrapped := notFound("post", 1)
	assert.True(t, errors.Is(classify(wrapped), ErrNotFound))
}
