package forum

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agora/internal/models"
)

// NewPost describes a reply to an existing Topic.
type NewPost struct {
	TopicID   uint
	UserID    uint
	Body      string
	Meta      bool
	Emoticons bool
	UserIP    string
}

// DeletedPost reports what a Post deletion did to the hierarchy above it.
type DeletedPost struct {
	PostID      uint
	TopicID     uint
	ForumID     uint
	TopicPruned bool
}

// CreatePost appends a Post to its Topic and moves the Topic's and Forum's
// last-activity snapshot onto it.
func (s *Service) CreatePost(ctx context.Context, in NewPost) (*models.Post, error) {
	var post *models.Post
	err := s.transact(ctx, func(tx *gorm.DB) error {
		f, t, err := lockHierarchy(tx, in.TopicID)
		if err != nil {
			return err
		}
		u, err := loadUser(tx, in.UserID)
		if err != nil {
			return err
		}
		post, err = s.appendPost(tx, f, t, u, in)
		if err != nil {
			return err
		}
		if err := saveTopicAggregates(tx, t); err != nil {
			return err
		}
		return saveForumAggregates(tx, f)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// appendPost inserts the Post and applies the incremental updates to the
// in-memory Forum and Topic. A new Post is always the newest one, so no
// rescan is needed. The caller persists f and t.
func (s *Service) appendPost(tx *gorm.DB, f *models.Forum, t *models.Topic, u *models.User, in NewPost) (*models.Post, error) {
	pos, err := nextPosition(tx, t.ID)
	if err != nil {
		return nil, err
	}
	p := &models.Post{
		TopicID:    t.ID,
		UserID:     u.ID,
		Meta:       in.Meta,
		Body:       in.Body,
		BodyHTML:   s.render(in.Body),
		Emoticons:  in.Emoticons,
		NumInTopic: pos,
		PostedAt:   s.now(),
		UserIP:     in.UserIP,
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, err
	}

	if p.Meta {
		t.MetapostCount++
	} else {
		t.PostCount++
		f.PostCount++
		if err := adjustPostCount(tx, u.ID, 1); err != nil {
			return nil, err
		}
	}
	t.SetLastPost(p, u.Username)
	f.SetLastPost(t, p, u.Username)
	return p, nil
}

// EditPost replaces the body of a Post. Counts and last-activity snapshots
// never change on edit because posted_at does not.
func (s *Service) EditPost(ctx context.Context, postID uint, body string) (*models.Post, error) {
	var p models.Post
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).Take(&p, postID).Error; err != nil {
			return lookup(err, "post", postID)
		}
		editedAt := s.now()
		p.Body = body
		p.BodyHTML = s.render(body)
		p.EditedAt = &editedAt
		return tx.Model(&p).Select("body", "body_html", "edited_at").Updates(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost removes a Post, closes the gap in its Topic's positions and
// restores the cached aggregates above it. Deleting the only Post of a
// Topic deletes the Topic too.
func (s *Service) DeletePost(ctx context.Context, postID uint) (*DeletedPost, error) {
	var res *DeletedPost
	err := s.transact(ctx, func(tx *gorm.DB) (err error) {
		res, err = s.deletePost(tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) deletePost(tx *gorm.DB, postID uint) (*DeletedPost, error) {
	var owner models.Post
	if err := tx.Select("id", "topic_id").Take(&owner, postID).Error; err != nil {
		return nil, lookup(err, "post", postID)
	}
	f, t, err := lockHierarchy(tx, owner.TopicID)
	if err != nil {
		return nil, err
	}
	// 持锁后重新读取：并发删除可能已经先提交
	var p models.Post
	if err := forUpdate(tx).Where("topic_id = ?", t.ID).Take(&p, postID).Error; err != nil {
		return nil, lookup(err, "post", postID)
	}

	// Decide before the delete whether p is what the snapshots point at.
	topicLast := t.LastPostAt == nil || !p.PostedAt.Before(*t.LastPostAt)
	forumLast := t.HoldsLastPostOf(f) && (f.LastPostAt == nil || !p.PostedAt.Before(*f.LastPostAt))

	del := tx.Delete(&p)
	if del.Error != nil {
		return nil, del.Error
	}
	if del.RowsAffected == 0 {
		return nil, notFound("post", postID)
	}
	if p.Meta {
		t.MetapostCount--
	} else {
		t.PostCount--
		f.PostCount--
		if err := adjustPostCount(tx, p.UserID, -1); err != nil {
			return nil, err
		}
	}
	if err := repack(tx, t.ID, p.NumInTopic); err != nil {
		return nil, err
	}
	if err := saveTopicAggregates(tx, t); err != nil {
		return nil, err
	}
	if err := saveForumAggregates(tx, f); err != nil {
		return nil, err
	}

	res := &DeletedPost{PostID: p.ID, TopicID: t.ID, ForumID: f.ID}
	if topicLast || t.PostCount+t.MetapostCount <= 0 {
		if res.TopicPruned, err = s.recomputeTopic(tx, t.ID); err != nil {
			return nil, err
		}
	}
	if res.TopicPruned || forumLast {
		if err := s.recomputeForum(tx, f.ID); err != nil {
			return nil, err
		}
	}
	s.log.Debug("deleted post",
		zap.Uint("post_id", p.ID),
		zap.Uint("topic_id", t.ID),
		zap.Bool("topic_pruned", res.TopicPruned),
		zap.Bool("forum_recomputed", res.TopicPruned || forumLast))
	return res, nil
}
