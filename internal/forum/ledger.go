package forum

import (
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agora/internal/models"
)

// adjustPostCount applies delta to the user's cached ordinary post count.
// A positive delta upserts, so the first Post of a user creates the profile
// even when two of them race.
func adjustPostCount(tx *gorm.DB, userID uint, delta int) error {
	if delta == 0 {
		return nil
	}
	if delta > 0 {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"post_count": gorm.Expr("forum_profiles.post_count + ?", delta),
			}),
		}).Create(&models.ForumProfile{UserID: userID, PostCount: delta}).Error
	}
	res := tx.Model(&models.ForumProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("post_count", gorm.Expr("post_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invariant("user %d has posts but no forum profile", userID)
	}
	return nil
}

// adjustPostCounts applies a batch of deltas in user id order, so concurrent
// cascades lock profile rows in the same sequence.
func adjustPostCounts(tx *gorm.DB, deltas map[uint]int) error {
	ids := make([]uint, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := adjustPostCount(tx, id, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

// ordinaryPostsByUser counts the ordinary Posts each user has in the given Topics.
func ordinaryPostsByUser(tx *gorm.DB, topicIDs []uint) (map[uint]int, error) {
	var rows []struct {
		UserID uint
		N      int
	}
	err := tx.Model(&models.Post{}).
		Select("user_id, COUNT(*) AS n").
		Where("topic_id IN ? AND meta = ?", topicIDs, false).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.N
	}
	return counts, nil
}
