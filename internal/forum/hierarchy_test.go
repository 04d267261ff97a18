package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/models"
)

func TestCreateSectionAndForumAppend(t *testing.T) {
	fx := newFixture(t)

	sec, err := fx.svc.CreateSection(fx.ctx, "Another")
	require.NoError(t, err)
	assert.Equal(t, fixtureSections, sec.Order)

	fm, err := fx.svc.CreateForum(fx.ctx, fx.sections[1].ID, "Another", "")
	require.NoError(t, err)
	assert.Equal(t, fixtureForums, fm.Order)

	first, err := fx.svc.CreateForum(fx.ctx, sec.ID, "First", "")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)

	_, err = fx.svc.CreateForum(fx.ctx, 9999, "Orphan", "")
	assert.ErrorIs(t, err, ErrNotFound)
	fx.requireConsistent()
}

func TestDeleteForum(t *testing.T) {
	fx := newFixture(t)
	fm := fx.forums[0][0]

	require.NoError(t, fx.svc.DeleteForum(fx.ctx, fm.ID))

	assert.False(t, fx.exists(&models.Forum{}, fm.ID))
	for _, topic := range fx.topics[0][0] {
		assert.False(t, fx.exists(&models.Topic{}, topic.ID))
		assert.Equal(t, 0, fx.count(&models.Post{}, "topic_id = ?", topic.ID))
	}
	assert.Equal(t, 0, fx.forum(fx.forums[0][1].ID).Order)
	assert.Equal(t, 1, fx.forum(fx.forums[0][2].ID).Order)
	// other sections are untouched
	assert.Equal(t, 0, fx.forum(fx.forums[1][0].ID).Order)

	for _, u := range fx.users {
		cached, actual := fx.profilePostCount(u.ID)
		assert.Equal(t, fixturePostsPerUser-fixturePostsPerTopic, actual, u.Username)
		assert.Equal(t, actual, cached, u.Username)
	}
	fx.requireConsistent()
}

func TestDeleteMiddleForumKeepsOrderDense(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.svc.DeleteForum(fx.ctx, fx.forums[2][1].ID))

	assert.Equal(t, 0, fx.forum(fx.forums[2][0].ID).Order)
	assert.Equal(t, 1, fx.forum(fx.forums[2][2].ID).Order)
	fx.requireConsistent()
}

func TestDeleteSection(t *testing.T) {
	fx := newFixture(t)
	sec := fx.sections[0]

	require.NoError(t, fx.svc.DeleteSection(fx.ctx, sec.ID))

	assert.False(t, fx.exists(&models.Section{}, sec.ID))
	assert.Equal(t, 0, fx.count(&models.Forum{}, "section_id = ?", sec.ID))
	for f := range fx.forums[0] {
		for _, topic := range fx.topics[0][f] {
			assert.False(t, fx.exists(&models.Topic{}, topic.ID))
		}
	}
	assert.Equal(t, 0, fx.section(fx.sections[1].ID).Order)
	assert.Equal(t, 1, fx.section(fx.sections[2].ID).Order)

	for _, u := range fx.users {
		cached, actual := fx.profilePostCount(u.ID)
		assert.Equal(t, fixturePostsPerUser-fixturePostsInSection, actual, u.Username)
		assert.Equal(t, actual, cached, u.Username)
	}
	fx.requireConsistent()
}

func TestDeleteEverySection(t *testing.T) {
	fx := newFixture(t)

	// last first, then the remaining head
	require.NoError(t, fx.svc.DeleteSection(fx.ctx, fx.sections[2].ID))
	require.NoError(t, fx.svc.DeleteSection(fx.ctx, fx.sections[0].ID))
	assert.Equal(t, 0, fx.section(fx.sections[1].ID).Order)
	require.NoError(t, fx.svc.DeleteSection(fx.ctx, fx.sections[1].ID))

	assert.Equal(t, 0, fx.count(&models.Post{}, "1 = 1"))
	for _, u := range fx.users {
		cached, _ := fx.profilePostCount(u.ID)
		assert.Equal(t, 0, cached, u.Username)
	}
	fx.requireConsistent()
}
