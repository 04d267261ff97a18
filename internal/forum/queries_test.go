package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/models"
)

func TestPostsWithUserDetails(t *testing.T) {
	fx := newFixture(t)
	admin := fx.users[0]
	title := "Administrator"
	location := "Here"
	_, err := fx.svc.UpdateProfile(fx.ctx, admin.ID, ProfileChanges{Title: &title, Location: &location})
	require.NoError(t, err)

	topic := fx.topics[0][0][0]
	rows, err := fx.svc.PostsWithUserDetails(fx.ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, rows, fixturePostsPerTopic)

	profile, err := fx.svc.Profile(fx.ctx, admin.ID)
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, fx.posts[0][0][0][i].ID, row.ID)
		assert.Equal(t, i+1, row.NumInTopic)
		assert.Equal(t, admin.Username, row.UserUsername)
		assert.Equal(t, profile.Title, row.UserTitle)
		assert.Equal(t, profile.Avatar, row.UserAvatar)
		assert.Equal(t, profile.PostCount, row.UserPostCount)
		assert.Equal(t, profile.Location, row.UserLocation)
		assert.Equal(t, profile.Website, row.UserWebsite)
	}
}

func TestTopicDetails(t *testing.T) {
	fx := newFixture(t)
	topic := fx.topics[0][0][1]

	detail, err := fx.svc.TopicDetail(fx.ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, topic.ID, detail.ID)
	assert.Equal(t, fx.users[1].Username, detail.UserUsername)
	assert.Equal(t, fx.forums[0][0].Name, detail.ForumName)

	_, err = fx.svc.TopicDetail(fx.ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForumTopicsOrderedByActivity(t *testing.T) {
	fx := newFixture(t)
	fm := fx.forums[0][0]
	sticky := true
	_, err := fx.svc.UpdateTopic(fx.ctx, fx.topics[0][0][0].ID, TopicChanges{Sticky: &sticky})
	require.NoError(t, err)

	rows, err := fx.svc.ForumTopics(fx.ctx, fm.ID, false)
	require.NoError(t, err)
	require.Len(t, rows, fixtureTopics)
	assert.Equal(t, fx.topics[0][0][0].ID, rows[0].ID)
	assert.Equal(t, fx.topics[0][0][2].ID, rows[1].ID)
	assert.Equal(t, fx.topics[0][0][1].ID, rows[2].ID)
	assert.Equal(t, fm.Name, rows[0].ForumName)
}

func TestForumTopicsHidesHiddenTopics(t *testing.T) {
	fx := newFixture(t)
	fm := fx.forums[0][0]
	hidden := fx.topics[0][0][1]
	yes := true
	_, err := fx.svc.UpdateTopic(fx.ctx, hidden.ID, TopicChanges{Hidden: &yes})
	require.NoError(t, err)

	rows, err := fx.svc.ForumTopics(fx.ctx, fm.ID, false)
	require.NoError(t, err)
	require.Len(t, rows, fixtureTopics-1)
	for _, r := range rows {
		assert.NotEqual(t, hidden.ID, r.ID)
	}

	rows, err = fx.svc.ForumTopics(fx.ctx, fm.ID, true)
	require.NoError(t, err)
	assert.Len(t, rows, fixtureTopics)
}

func TestForumIndex(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.svc.DeleteSection(fx.ctx, fx.sections[0].ID))

	sections, err := fx.svc.ForumIndex(fx.ctx)
	require.NoError(t, err)
	require.Len(t, sections, fixtureSections-1)
	for i, sec := range sections {
		assert.Equal(t, i, sec.Order)
		assert.Equal(t, fx.sections[i+1].ID, sec.ID)
		require.Len(t, sec.Forums, fixtureForums)
		for j, f := range sec.Forums {
			assert.Equal(t, j, f.Order)
			assert.Equal(t, fixtureTopics, f.TopicCount)
			assert.Equal(t, fixturePostsPerForum, f.PostCount)
		}
	}
}

func TestProfile(t *testing.T) {
	fx := newEmptyFixture(t)
	user := fx.users[2]

	p, err := fx.svc.Profile(fx.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.Equal(t, 0, p.PostCount)
	assert.Zero(t, p.ID)
	// reading does not create the row
	assert.Zero(t, fx.count(&models.ForumProfile{}, "user_id = ?", user.ID))

	website := "https://example.com"
	p, err = fx.svc.UpdateProfile(fx.ctx, user.ID, ProfileChanges{Website: &website})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, website, p.Website)
	assert.Equal(t, 0, p.PostCount)
	assert.Equal(t, 1, fx.count(&models.ForumProfile{}, "user_id = ?", user.ID))

	again, err := fx.svc.Profile(fx.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, website, again.Website)

	_, err = fx.svc.UpdateProfile(fx.ctx, 9999, ProfileChanges{Website: &website})
	assert.ErrorIs(t, err, ErrNotFound)
}
