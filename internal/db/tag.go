package db

// Tag 定义了标签模型，内容与新闻共用
type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null;index"`
	Slug string `gorm:"size:100;uniqueIndex;not null"`
}
