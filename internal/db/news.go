package db

import "time"

// NewsCategory 新闻分类，可挂在父分类下
type NewsCategory struct {
	ID       uint          `gorm:"primaryKey"`
	Name     string        `gorm:"size:100;not null;index"`
	Slug     string        `gorm:"size:100;uniqueIndex;not null"`
	ParentID *uint         `gorm:"index"`
	Parent   *NewsCategory `gorm:"constraint:OnDelete:SET NULL"`
}

// TableName 指定自定义表名。
func (NewsCategory) TableName() string {
	return "news_categories"
}

// News 新闻条目，Body 为 Markdown
type News struct {
	ID          uint          `gorm:"primaryKey"`
	Title       string        `gorm:"size:200;not null"`
	Slug        string        `gorm:"size:200;uniqueIndex;not null"`
	Body        string        `gorm:"type:text"`
	Image       string        `gorm:"size:255"`
	CategoryID  *uint         `gorm:"index"`
	Category    *NewsCategory `gorm:"constraint:OnDelete:SET NULL"`
	Tags        []Tag         `gorm:"many2many:news_tags;"`
	PublishedAt time.Time     `gorm:"not null;index"`
	UpdatedAt   time.Time
}

// TableName 指定自定义表名，避免复数化歧义。
func (News) TableName() string {
	return "news"
}
