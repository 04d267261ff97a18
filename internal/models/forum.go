package models

import (
	"time"
)

// Forum belongs to a Section and caches facts about its Topics.
type Forum struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SectionID   uint    `gorm:"not null;index" json:"section_id"`
	Section     Section `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Order       int     `gorm:"column:sort_order;not null;default:0;index" json:"order"` // 分区内 0 开始的连续序号

	// 冗余字段，由 forum.Service 维护
	TopicCount     int        `gorm:"not null;default:0" json:"topic_count"`
	PostCount      int        `gorm:"not null;default:0" json:"post_count"`
	LastPostAt     *time.Time `json:"last_post_at"`
	LastTopicID    *uint      `json:"last_topic_id"`
	LastTopicTitle string     `gorm:"size:100" json:"last_topic_title"`
	LastUserID     *uint      `json:"last_user_id"`
	LastUsername   string     `gorm:"size:30" json:"last_username"`
}

// ClearLastPost resets the last-activity snapshot of an empty Forum.
func (f *Forum) ClearLastPost() {
	f.LastPostAt = nil
	f.LastTopicID = nil
	f.LastTopicTitle = ""
	f.LastUserID = nil
	f.LastUsername = ""
}

// SetLastPost points the last-activity snapshot at p, which lives in t.
func (f *Forum) SetLastPost(t *Topic, p *Post, username string) {
	postedAt := p.PostedAt
	topicID := t.ID
	userID := p.UserID
	f.LastPostAt = &postedAt
	f.LastTopicID = &topicID
	f.LastTopicTitle = t.Title
	f.LastUserID = &userID
	f.LastUsername = username
}
