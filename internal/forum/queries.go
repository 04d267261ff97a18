package forum

import (
	"context"
	"time"

	"gorm.io/gorm"

	"agora/internal/models"
)

// PostDetail is a Post with its author's user and profile fields joined in.
type PostDetail struct {
	models.Post
	UserUsername   string    `json:"user_username"`
	UserDateJoined time.Time `json:"user_date_joined"`
	UserTitle      string    `json:"user_title"`
	UserAvatar     string    `json:"user_avatar"`
	UserPostCount  int       `json:"user_post_count"`
	UserLocation   string    `json:"user_location"`
	UserWebsite    string    `json:"user_website"`
}

// TopicDetail is a Topic with its creator's username and Forum name joined in.
type TopicDetail struct {
	models.Topic
	UserUsername string `json:"user_username"`
	ForumName    string `json:"forum_name"`
}

// ForumIndex lists every Section in order with its Forums in order.
func (s *Service) ForumIndex(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	err := s.db.WithContext(ctx).
		Preload("Forums", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Order("sort_order").
		Find(&sections).Error
	return sections, err
}

func (s *Service) Forum(ctx context.Context, forumID uint) (*models.Forum, error) {
	var f models.Forum
	if err := s.db.WithContext(ctx).Take(&f, forumID).Error; err != nil {
		return nil, lookup(err, "forum", forumID)
	}
	return &f, nil
}

func (s *Service) Post(ctx context.Context, postID uint) (*models.Post, error) {
	var p models.Post
	if err := s.db.WithContext(ctx).Take(&p, postID).Error; err != nil {
		return nil, lookup(err, "post", postID)
	}
	return &p, nil
}

func (s *Service) Topic(ctx context.Context, topicID uint) (*models.Topic, error) {
	var t models.Topic
	if err := s.db.WithContext(ctx).Take(&t, topicID).Error; err != nil {
		return nil, lookup(err, "topic", topicID)
	}
	return &t, nil
}

func (s *Service) topicDetails(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Topic{}).
		Select("topics.*, users.username AS user_username, forums.name AS forum_name").
		Joins("JOIN users ON users.id = topics.user_id").
		Joins("JOIN forums ON forums.id = topics.forum_id")
}

// TopicDetail loads a single Topic with user and forum details.
func (s *Service) TopicDetail(ctx context.Context, topicID uint) (*TopicDetail, error) {
	var rows []TopicDetail
	if err := s.topicDetails(ctx).Where("topics.id = ?", topicID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("topic", topicID)
	}
	return &rows[0], nil
}

// ForumTopics lists a Forum's Topics, sticky ones first, then by activity.
// Hidden Topics are left out unless includeHidden is set.
func (s *Service) ForumTopics(ctx context.Context, forumID uint, includeHidden bool) ([]TopicDetail, error) {
	var rows []TopicDetail
	q := s.topicDetails(ctx).Where("topics.forum_id = ?", forumID)
	if !includeHidden {
		q = q.Where("topics.hidden = ?", false)
	}
	err := q.
		Order("topics.sticky DESC, topics.last_post_at DESC, topics.id DESC").
		Scan(&rows).Error
	return rows, err
}

// PostsWithUserDetails lists a Topic's Posts in position order.
func (s *Service) PostsWithUserDetails(ctx context.Context, topicID uint) ([]PostDetail, error) {
	var rows []PostDetail
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(`posts.*,
			users.username AS user_username,
			users.created_at AS user_date_joined,
			COALESCE(forum_profiles.title, '') AS user_title,
			COALESCE(forum_profiles.avatar, '') AS user_avatar,
			COALESCE(forum_profiles.post_count, 0) AS user_post_count,
			COALESCE(forum_profiles.location, '') AS user_location,
			COALESCE(forum_profiles.website, '') AS user_website`).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN forum_profiles ON forum_profiles.user_id = posts.user_id").
		Where("posts.topic_id = ?", topicID).
		Order("posts.num_in_topic").
		Scan(&rows).Error
	return rows, err
}
