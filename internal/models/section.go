package models

// Section 论坛分区，顶层结构
type Section struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:100;not null" json:"name"`
	Order  int     `gorm:"column:sort_order;not null;default:0;index" json:"order"` // 0 开始的连续序号
	Forums []Forum `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"forums,omitempty"`
}
