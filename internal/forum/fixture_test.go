package forum

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agora/internal/db"
	"agora/internal/models"
)

const (
	fixtureSections       = 3
	fixtureForums         = 3 // per section
	fixtureTopics         = 3 // per forum, topic k is started by users[k]
	fixturePostsPerTopic  = 3
	fixturePostsPerUser   = fixtureSections * fixtureForums * fixturePostsPerTopic
	fixturePostsPerForum  = fixtureTopics * fixturePostsPerTopic
	fixturePostsInSection = fixtureForums * fixturePostsPerTopic
)

// fixture is a forum with 3 sections of 3 forums of 3 topics of 3 posts,
// built through the Service with a clock that ticks one second per call,
// so creation order is posted_at order.
type fixture struct {
	t    *testing.T
	ctx  context.Context
	db   *gorm.DB
	svc  *Service
	now  time.Time
	step int

	users    []*models.User // admin, moderator, user
	sections []*models.Section
	forums   [][]*models.Forum
	topics   [][][]*models.Topic
	posts    [][][][]*models.Post
}

func (fx *fixture) clock() time.Time {
	fx.step++
	return fx.now.Add(time.Duration(fx.step) * time.Second)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newEmptyFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		t:   t,
		ctx: context.Background(),
		db:  openTestDB(t),
		now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	log := zaptest.NewLogger(t)
	require.NoError(t, db.SeedGroups(fx.db, log))
	fx.svc = NewService(fx.db,
		WithLogger(log),
		WithClock(fx.clock),
		WithRenderer(func(body string) string { return "<p>" + body + "</p>" }),
	)

	var admins, moderators models.Group
	require.NoError(t, fx.db.Where("name = ?", models.GroupAdmins).Take(&admins).Error)
	require.NoError(t, fx.db.Where("name = ?", models.GroupModerators).Take(&moderators).Error)
	for i, seed := range []struct {
		name   string
		groups []models.Group
	}{
		{"admin", []models.Group{admins}},
		{"moderator", []models.Group{moderators}},
		{"user", nil},
	} {
		u := &models.User{
			Username: seed.name,
			Email:    fmt.Sprintf("%s@example.com", seed.name),
			Password: "x",
			Groups:   seed.groups,
		}
		require.NoError(t, fx.db.Create(u).Error, "user %d", i)
		fx.users = append(fx.users, u)
	}
	return fx
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := newEmptyFixture(t)
	for s := 0; s < fixtureSections; s++ {
		sec, err := fx.svc.CreateSection(fx.ctx, fmt.Sprintf("Section %d", s))
		require.NoError(t, err)
		fx.sections = append(fx.sections, sec)
		fx.forums = append(fx.forums, nil)
		fx.topics = append(fx.topics, nil)
		fx.posts = append(fx.posts, nil)

		for f := 0; f < fixtureForums; f++ {
			fm, err := fx.svc.CreateForum(fx.ctx, sec.ID, fmt.Sprintf("Forum %d.%d", s, f), "")
			require.NoError(t, err)
			fx.forums[s] = append(fx.forums[s], fm)
			fx.topics[s] = append(fx.topics[s], nil)
			fx.posts[s] = append(fx.posts[s], nil)

			for k := 0; k < fixtureTopics; k++ {
				u := fx.users[k]
				topic, opening, err := fx.svc.CreateTopic(fx.ctx, NewTopic{
					ForumID: fm.ID,
					UserID:  u.ID,
					Title:   fmt.Sprintf("Topic %d.%d.%d", s, f, k),
					Body:    "Opening post.",
				})
				require.NoError(t, err)
				posts := []*models.Post{opening}
				for n := 1; n < fixturePostsPerTopic; n++ {
					p, err := fx.svc.CreatePost(fx.ctx, NewPost{
						TopicID: topic.ID,
						UserID:  u.ID,
						Body:    fmt.Sprintf("Reply %d.", n),
					})
					require.NoError(t, err)
					posts = append(posts, p)
				}
				fx.topics[s][f] = append(fx.topics[s][f], topic)
				fx.posts[s][f] = append(fx.posts[s][f], posts)
			}
		}
	}
	fx.requireConsistent()
	return fx
}

func (fx *fixture) forum(id uint) *models.Forum {
	fx.t.Helper()
	var f models.Forum
	require.NoError(fx.t, fx.db.Take(&f, id).Error)
	return &f
}

func (fx *fixture) topic(id uint) *models.Topic {
	fx.t.Helper()
	var t models.Topic
	require.NoError(fx.t, fx.db.Take(&t, id).Error)
	return &t
}

func (fx *fixture) post(id uint) *models.Post {
	fx.t.Helper()
	var p models.Post
	require.NoError(fx.t, fx.db.Take(&p, id).Error)
	return &p
}

func (fx *fixture) section(id uint) *models.Section {
	fx.t.Helper()
	var s models.Section
	require.NoError(fx.t, fx.db.Take(&s, id).Error)
	return &s
}

func (fx *fixture) exists(model any, id uint) bool {
	fx.t.Helper()
	var n int64
	require.NoError(fx.t, fx.db.Model(model).Where("id = ?", id).Count(&n).Error)
	return n > 0
}

func (fx *fixture) count(model any, query string, args ...any) int {
	fx.t.Helper()
	var n int64
	require.NoError(fx.t, fx.db.Model(model).Where(query, args...).Count(&n).Error)
	return int(n)
}

// profilePostCount returns the cached count and the real ordinary post count.
func (fx *fixture) profilePostCount(userID uint) (cached, actual int) {
	fx.t.Helper()
	var p models.ForumProfile
	require.NoError(fx.t, fx.db.Where("user_id = ?", userID).Take(&p).Error)
	return p.PostCount, fx.count(&models.Post{}, "user_id = ? AND meta = ?", userID, false)
}

func (fx *fixture) requireConsistent() {
	fx.t.Helper()
	violations, err := fx.svc.Verify(fx.ctx)
	require.NoError(fx.t, err)
	require.Empty(fx.t, violations)
}

func requireSameTime(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	require.True(t, want.Equal(*got), "want %s, got %s", want, *got)
}
