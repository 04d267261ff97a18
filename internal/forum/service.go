// Package forum keeps the cached aggregates of the Section → Forum → Topic →
// Post hierarchy consistent. Every exported mutation runs in a single
// database transaction and leaves counts, last-activity snapshots, position
// counters, ordering indices and user post counts correct when it commits.
package forum

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agora/internal/models"
)

// Renderer turns a raw post body into HTML.
type Renderer func(body string) string

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	render Renderer
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.render = r }
}

// WithClock replaces time.Now, mostly for tests that need strictly
// increasing timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:     db,
		log:    zap.NewNop(),
		render: func(body string) string { return body },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// transact runs fn in one transaction; any error rolls everything back.
func (s *Service) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return classify(s.db.WithContext(ctx).Transaction(fn))
}

// forUpdate locks the selected rows until the transaction ends.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockHierarchy locks the Forum row and then the Topic row. Every mutation
// takes locks in this order.
func lockHierarchy(tx *gorm.DB, topicID uint) (*models.Forum, *models.Topic, error) {
	var owner models.Topic
	if err := tx.Select("id", "forum_id").Take(&owner, topicID).Error; err != nil {
		return nil, nil, lookup(err, "topic", topicID)
	}
	// 版块可能已被并发删除，按不存在处理
	f, err := lockForum(tx, owner.ForumID)
	if err != nil {
		return nil, nil, err
	}
	var t models.Topic
	if err := forUpdate(tx).Take(&t, topicID).Error; err != nil {
		return nil, nil, lookup(err, "topic", topicID)
	}
	return f, &t, nil
}

func lockForum(tx *gorm.DB, forumID uint) (*models.Forum, error) {
	var f models.Forum
	if err := forUpdate(tx).Take(&f, forumID).Error; err != nil {
		return nil, lookup(err, "forum", forumID)
	}
	return &f, nil
}

func loadUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var u models.User
	if err := tx.Take(&u, userID).Error; err != nil {
		return nil, lookup(err, "user", userID)
	}
	return &u, nil
}

// saveTopicAggregates writes the cached columns of t.
func saveTopicAggregates(tx *gorm.DB, t *models.Topic) error {
	return tx.Model(t).
		Select("post_count", "metapost_count", "last_post_at", "last_user_id", "last_username").
		Updates(t).Error
}

// saveForumAggregates writes the cached columns of f.
func saveForumAggregates(tx *gorm.DB, f *models.Forum) error {
	return tx.Model(f).
		Select("topic_count", "post_count", "last_post_at", "last_topic_id", "last_topic_title", "last_user_id", "last_username").
		Updates(f).Error
}
