package forum

import (
	"gorm.io/gorm"

	"agora/internal/models"
)

// nextPosition returns the num_in_topic for a Post appended to the Topic.
func nextPosition(tx *gorm.DB, topicID uint) (int, error) {
	var last int
	err := tx.Model(&models.Post{}).
		Where("topic_id = ?", topicID).
		Select("COALESCE(MAX(num_in_topic), 0)").
		Scan(&last).Error
	return last + 1, err
}

// repack shifts every Post after the deleted position down by one so the
// Topic's positions stay 1..N.
func repack(tx *gorm.DB, topicID uint, deleted int) error {
	return tx.Model(&models.Post{}).
		Where("topic_id = ? AND num_in_topic > ?", topicID, deleted).
		UpdateColumn("num_in_topic", gorm.Expr("num_in_topic - 1")).Error
}
