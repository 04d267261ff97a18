package models

import (
	"time"
)

type Topic struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ForumID     uint      `gorm:"not null;index" json:"forum_id"`
	Forum       Forum     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"` // 发起人
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:100" json:"description"`
	Locked      bool      `gorm:"default:false" json:"locked"`
	Sticky      bool      `gorm:"default:false" json:"sticky"`
	Hidden      bool      `gorm:"default:false" json:"hidden"`
	StartedAt   time.Time `json:"started_at"`

	// 冗余字段：PostCount 只统计普通帖，MetapostCount 统计 meta 帖
	PostCount     int        `gorm:"not null;default:0" json:"post_count"`
	MetapostCount int        `gorm:"not null;default:0" json:"metapost_count"`
	LastPostAt    *time.Time `gorm:"index" json:"last_post_at"`
	LastUserID    *uint      `json:"last_user_id"`
	LastUsername  string     `gorm:"size:30" json:"last_username"`
}

// ClearLastPost resets the last-activity snapshot.
func (t *Topic) ClearLastPost() {
	t.LastPostAt = nil
	t.LastUserID = nil
	t.LastUsername = ""
}

// SetLastPost points the last-activity snapshot at p.
func (t *Topic) SetLastPost(p *Post, username string) {
	postedAt := p.PostedAt
	userID := p.UserID
	t.LastPostAt = &postedAt
	t.LastUserID = &userID
	t.LastUsername = username
}

// HoldsLastPostOf reports whether the Forum's last-activity snapshot points into this Topic.
func (t *Topic) HoldsLastPostOf(f *Forum) bool {
	return f.LastTopicID != nil && *f.LastTopicID == t.ID
}
