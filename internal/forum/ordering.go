package forum

import (
	"gorm.io/gorm"

	"agora/internal/models"
)

// Sections are ordered globally and Forums within their Section. Both use a
// dense zero-based sort_order: new rows are appended and deleting a row
// closes the gap it leaves.

func nextSectionOrder(tx *gorm.DB) (int, error) {
	var n int64
	err := tx.Model(&models.Section{}).Count(&n).Error
	return int(n), err
}

func nextForumOrder(tx *gorm.DB, sectionID uint) (int, error) {
	var n int64
	err := tx.Model(&models.Forum{}).Where("section_id = ?", sectionID).Count(&n).Error
	return int(n), err
}

func closeSectionGap(tx *gorm.DB, order int) error {
	return tx.Model(&models.Section{}).
		Where("sort_order > ?", order).
		UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
}

func closeForumGap(tx *gorm.DB, sectionID uint, order int) error {
	return tx.Model(&models.Forum{}).
		Where("section_id = ? AND sort_order > ?", sectionID, order).
		UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
}
