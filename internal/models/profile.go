package models

// ForumProfile 用户论坛资料，与 User 一对一
type ForumProfile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title     string `gorm:"size:100" json:"title"`
	Location  string `gorm:"size:100" json:"location"`
	Avatar    string `gorm:"size:200" json:"avatar"`
	Website   string `gorm:"size:200" json:"website"`
	PostCount int    `gorm:"not null;default:0" json:"post_count"` // 普通帖总数，由 forum.Service 维护
}
