package forum

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agora/internal/models"
)

// CreateSection appends a Section after the existing ones.
func (s *Service) CreateSection(ctx context.Context, name string) (*models.Section, error) {
	var sec *models.Section
	err := s.transact(ctx, func(tx *gorm.DB) error {
		order, err := nextSectionOrder(tx)
		if err != nil {
			return err
		}
		sec = &models.Section{Name: name, Order: order}
		return tx.Create(sec).Error
	})
	if err != nil {
		return nil, err
	}
	return sec, nil
}

// CreateForum appends a Forum after the existing Forums of its Section.
func (s *Service) CreateForum(ctx context.Context, sectionID uint, name, description string) (*models.Forum, error) {
	var f *models.Forum
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var sec models.Section
		if err := forUpdate(tx).Take(&sec, sectionID).Error; err != nil {
			return lookup(err, "section", sectionID)
		}
		order, err := nextForumOrder(tx, sec.ID)
		if err != nil {
			return err
		}
		f = &models.Forum{SectionID: sec.ID, Name: name, Description: description, Order: order}
		return tx.Create(f).Error
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteForum removes a Forum with everything under it and closes the gap
// in its Section's ordering.
func (s *Service) DeleteForum(ctx context.Context, forumID uint) error {
	return s.transact(ctx, func(tx *gorm.DB) error {
		f, err := lockForum(tx, forumID)
		if err != nil {
			return err
		}
		if err := s.removeForums(tx, []uint{f.ID}); err != nil {
			return err
		}
		return closeForumGap(tx, f.SectionID, f.Order)
	})
}

// DeleteSection removes a Section with everything under it and closes the
// gap in the Section ordering.
func (s *Service) DeleteSection(ctx context.Context, sectionID uint) error {
	return s.transact(ctx, func(tx *gorm.DB) error {
		var sec models.Section
		if err := forUpdate(tx).Take(&sec, sectionID).Error; err != nil {
			return lookup(err, "section", sectionID)
		}
		// 按 id 顺序锁住所有子版块，与发帖时的加锁顺序一致
		var forumIDs []uint
		if err := forUpdate(tx).Model(&models.Forum{}).
			Where("section_id = ?", sec.ID).
			Order("id").
			Pluck("id", &forumIDs).Error; err != nil {
			return err
		}
		if err := s.removeForums(tx, forumIDs); err != nil {
			return err
		}
		if err := tx.Delete(&sec).Error; err != nil {
			return err
		}
		s.log.Info("deleted section", zap.Uint("section_id", sec.ID), zap.Int("forums", len(forumIDs)))
		return closeSectionGap(tx, sec.Order)
	})
}

func (s *Service) removeForums(tx *gorm.DB, forumIDs []uint) error {
	if len(forumIDs) == 0 {
		return nil
	}
	var topicIDs []uint
	if err := tx.Model(&models.Topic{}).Where("forum_id IN ?", forumIDs).Pluck("id", &topicIDs).Error; err != nil {
		return err
	}
	if err := s.removeTopics(tx, topicIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", forumIDs).Delete(&models.Forum{}).Error
}
