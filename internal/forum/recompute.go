package forum

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agora/internal/models"
)

func usernameOf(tx *gorm.DB, userID uint) (string, error) {
	var u models.User
	if err := tx.Select("id", "username").Take(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", invariant("post author %d does not exist", userID)
		}
		return "", err
	}
	return u.Username, nil
}

// recomputeTopic rescans the Topic's Posts and rewrites its counts and
// last-activity snapshot. A Topic left without Posts is deleted and pruned
// is reported true; the caller then owes the Forum a recompute.
func (s *Service) recomputeTopic(tx *gorm.DB, topicID uint) (pruned bool, err error) {
	var t models.Topic
	if err := tx.Take(&t, topicID).Error; err != nil {
		return false, lookup(err, "topic", topicID)
	}

	var rows []struct {
		Meta bool
		N    int
	}
	if err := tx.Model(&models.Post{}).
		Select("meta, COUNT(*) AS n").
		Where("topic_id = ?", topicID).
		Group("meta").
		Scan(&rows).Error; err != nil {
		return false, err
	}
	t.PostCount, t.MetapostCount = 0, 0
	for _, r := range rows {
		if r.Meta {
			t.MetapostCount = r.N
		} else {
			t.PostCount = r.N
		}
	}

	if t.PostCount+t.MetapostCount == 0 {
		if err := tx.Delete(&models.Topic{}, topicID).Error; err != nil {
			return false, err
		}
		s.log.Info("pruned empty topic", zap.Uint("topic_id", topicID), zap.Uint("forum_id", t.ForumID))
		return true, nil
	}

	var last models.Post
	if err := tx.Where("topic_id = ?", topicID).
		Order("posted_at DESC, id DESC").
		Take(&last).Error; err != nil {
		return false, err
	}
	username, err := usernameOf(tx, last.UserID)
	if err != nil {
		return false, err
	}
	t.SetLastPost(&last, username)
	return false, saveTopicAggregates(tx, &t)
}

// recomputeForum rescans the Forum's Topics and the Posts under them. An
// empty Forum keeps existing with its last-activity snapshot cleared.
// post_count is not touched here; it is maintained incrementally.
func (s *Service) recomputeForum(tx *gorm.DB, forumID uint) error {
	var f models.Forum
	if err := tx.Take(&f, forumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invariant("recompute of missing forum %d", forumID)
		}
		return err
	}

	var topics int64
	if err := tx.Model(&models.Topic{}).Where("forum_id = ?", forumID).Count(&topics).Error; err != nil {
		return err
	}
	f.TopicCount = int(topics)

	if topics == 0 {
		f.ClearLastPost()
		return saveForumAggregates(tx, &f)
	}

	var last []models.Post
	if err := tx.Model(&models.Post{}).
		Joins("JOIN topics ON topics.id = posts.topic_id").
		Where("topics.forum_id = ?", forumID).
		Order("posts.posted_at DESC, posts.id DESC").
		Limit(1).
		Find(&last).Error; err != nil {
		return err
	}
	if len(last) == 0 {
		// Topics without Posts only exist mid-transaction.
		f.ClearLastPost()
		return saveForumAggregates(tx, &f)
	}

	var t models.Topic
	if err := tx.Select("id", "title").Take(&t, last[0].TopicID).Error; err != nil {
		return err
	}
	username, err := usernameOf(tx, last[0].UserID)
	if err != nil {
		return err
	}
	f.SetLastPost(&t, &last[0], username)
	return saveForumAggregates(tx, &f)
}
