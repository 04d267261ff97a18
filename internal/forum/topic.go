package forum

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agora/internal/models"
)

// NewTopic describes a Topic together with its opening Post.
type NewTopic struct {
	ForumID     uint
	UserID      uint
	Title       string
	Description string
	Body        string
	Sticky      bool
	Locked      bool
	Emoticons   bool
	UserIP      string
}

// TopicChanges lists the Topic fields to update; nil fields are left alone.
type TopicChanges struct {
	Title       *string
	Description *string
	Locked      *bool
	Sticky      *bool
	Hidden      *bool
}

// CreateTopic creates a Topic and its opening Post in one transaction. The
// Forum's topic_count is incremented here and only here.
func (s *Service) CreateTopic(ctx context.Context, in NewTopic) (*models.Topic, *models.Post, error) {
	var (
		topic *models.Topic
		post  *models.Post
	)
	err := s.transact(ctx, func(tx *gorm.DB) error {
		f, err := lockForum(tx, in.ForumID)
		if err != nil {
			return err
		}
		u, err := loadUser(tx, in.UserID)
		if err != nil {
			return err
		}

		topic = &models.Topic{
			ForumID:     f.ID,
			UserID:      u.ID,
			Title:       in.Title,
			Description: in.Description,
			Sticky:      in.Sticky,
			Locked:      in.Locked,
			StartedAt:   s.now(),
		}
		if err := tx.Create(topic).Error; err != nil {
			return err
		}
		f.TopicCount++

		post, err = s.appendPost(tx, f, topic, u, NewPost{
			TopicID:   topic.ID,
			UserID:    u.ID,
			Body:      in.Body,
			Emoticons: in.Emoticons,
			UserIP:    in.UserIP,
		})
		if err != nil {
			return err
		}
		if err := saveTopicAggregates(tx, topic); err != nil {
			return err
		}
		return saveForumAggregates(tx, f)
	})
	if err != nil {
		return nil, nil, err
	}
	return topic, post, nil
}

// UpdateTopic applies ch. A title change is copied into the Forum's
// last_topic_title when the Topic holds the Forum's last Post.
func (s *Service) UpdateTopic(ctx context.Context, topicID uint, ch TopicChanges) (*models.Topic, error) {
	var topic *models.Topic
	err := s.transact(ctx, func(tx *gorm.DB) error {
		f, t, err := lockHierarchy(tx, topicID)
		if err != nil {
			return err
		}
		if ch.Title != nil {
			t.Title = *ch.Title
		}
		if ch.Description != nil {
			t.Description = *ch.Description
		}
		if ch.Locked != nil {
			t.Locked = *ch.Locked
		}
		if ch.Sticky != nil {
			t.Sticky = *ch.Sticky
		}
		if ch.Hidden != nil {
			t.Hidden = *ch.Hidden
		}
		if err := tx.Model(t).
			Select("title", "description", "locked", "sticky", "hidden").
			Updates(t).Error; err != nil {
			return err
		}
		topic = t

		if ch.Title != nil && t.HoldsLastPostOf(f) && f.LastTopicTitle != t.Title {
			return tx.Model(f).UpdateColumn("last_topic_title", t.Title).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// DeleteTopic removes a Topic with all of its Posts and recomputes the
// owning Forum.
func (s *Service) DeleteTopic(ctx context.Context, topicID uint) error {
	return s.transact(ctx, func(tx *gorm.DB) error {
		f, t, err := lockHierarchy(tx, topicID)
		if err != nil {
			return err
		}
		if err := s.removeTopics(tx, []uint{t.ID}); err != nil {
			return err
		}
		if err := tx.Model(f).
			UpdateColumn("post_count", gorm.Expr("post_count - ?", t.PostCount)).Error; err != nil {
			return err
		}
		return s.recomputeForum(tx, f.ID)
	})
}

// removeTopics is the batch cascade shared by Topic, Forum and Section
// deletion. Per-Post hooks are skipped: user post counts are decremented
// once per user and no per-Post recompute happens. Callers restore the
// Forum aggregates, or delete the Forum.
func (s *Service) removeTopics(tx *gorm.DB, topicIDs []uint) error {
	if len(topicIDs) == 0 {
		return nil
	}
	counts, err := ordinaryPostsByUser(tx, topicIDs)
	if err != nil {
		return err
	}
	deltas := make(map[uint]int, len(counts))
	for userID, n := range counts {
		deltas[userID] = -n
	}
	if err := adjustPostCounts(tx, deltas); err != nil {
		return err
	}

	posts := tx.Where("topic_id IN ?", topicIDs).Delete(&models.Post{})
	if posts.Error != nil {
		return posts.Error
	}
	if err := tx.Where("id IN ?", topicIDs).Delete(&models.Topic{}).Error; err != nil {
		return err
	}
	s.log.Debug("removed topics",
		zap.Uints("topic_ids", topicIDs),
		zap.Int64("posts", posts.RowsAffected),
		zap.Int("authors", len(deltas)))
	return nil
}
