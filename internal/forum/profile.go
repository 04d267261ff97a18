package forum

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agora/internal/models"
)

// ProfileChanges lists the user-editable profile fields. post_count is
// owned by the ledger and cannot be edited.
type ProfileChanges struct {
	Title    *string
	Location *string
	Avatar   *string
	Website  *string
}

// Profile returns the user's forum profile. A user who has no profile row
// yet gets an empty, unsaved one; reads never insert.
func (s *Service) Profile(ctx context.Context, userID uint) (*models.ForumProfile, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadUser(db, userID); err != nil {
		return nil, err
	}
	var rows []models.ForumProfile
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.ForumProfile{UserID: userID}, nil
	}
	return &rows[0], nil
}

// UpdateProfile applies ch, creating the profile row first if needed.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, ch ProfileChanges) (*models.ForumProfile, error) {
	updates := map[string]any{}
	if ch.Title != nil {
		updates["title"] = *ch.Title
	}
	if ch.Location != nil {
		updates["location"] = *ch.Location
	}
	if ch.Avatar != nil {
		updates["avatar"] = *ch.Avatar
	}
	if ch.Website != nil {
		updates["website"] = *ch.Website
	}

	var p models.ForumProfile
	err := s.transact(ctx, func(tx *gorm.DB) error {
		if _, err := loadUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ForumProfile{UserID: userID}).Error; err != nil {
			return err
		}
		if err := forUpdate(tx).Where("user_id = ?", userID).Take(&p).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Take(&p, p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
