package models

import (
	"time"
)

type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TopicID    uint       `gorm:"not null;index;index:idx_topic_num,priority:1" json:"topic_id"`
	Topic      Topic      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Meta       bool       `gorm:"default:false;index" json:"meta"` // meta 帖（系统/管理通知），不计入 PostCount
	Body       string     `gorm:"type:text;not null" json:"body"`
	BodyHTML   string     `gorm:"type:text" json:"body_html"`
	Emoticons  bool       `gorm:"not null" json:"emoticons"`
	NumInTopic int        `gorm:"not null;default:0;index:idx_topic_num,priority:2" json:"num_in_topic"` // 1 开始的连续序号
	PostedAt   time.Time  `gorm:"not null;index" json:"posted_at"`
	EditedAt   *time.Time `json:"edited_at"`
	UserIP     string     `gorm:"size:45" json:"-"`
}
