package db

import "time"

// ContentRole 描述内容的展示角色，三者互斥
type ContentRole string

const (
	// RoleAttachment 挂在页面下的普通内容块
	RoleAttachment ContentRole = "attachment"
	// RoleStandalone 作为独立页面展示
	RoleStandalone ContentRole = "standalone"
	// RoleCarousel 出现在首页轮播
	RoleCarousel ContentRole = "carousel"
)

// ParseContentRole returns the role for raw, reporting false for unknown values.
func ParseContentRole(raw string) (ContentRole, bool) {
	switch ContentRole(raw) {
	case RoleAttachment, RoleStandalone, RoleCarousel:
		return ContentRole(raw), true
	}
	return "", false
}

// Content 页面内容，拥有有序的图片与文本块
type Content struct {
	ID          uint           `gorm:"primaryKey"`
	PageID      *string        `gorm:"size:36;index"`
	Page        *Page          `gorm:"constraint:OnDelete:CASCADE"`
	Title       string         `gorm:"size:200;not null;index"`
	Description string         `gorm:"type:text"`
	Slug        string         `gorm:"size:200;uniqueIndex;not null"`
	Role        ContentRole    `gorm:"size:20;not null;index"`
	Tags        []Tag          `gorm:"many2many:content_tags;"`
	Images      []ContentImage `gorm:"constraint:OnDelete:CASCADE"`
	Texts       []ContentText  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}

// ContentImage 内容图片，Image 保存媒体引用
type ContentImage struct {
	ID        uint   `gorm:"primaryKey"`
	ContentID uint   `gorm:"not null;index"`
	Image     string `gorm:"size:255;not null"`
	Text      string `gorm:"type:text"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time
}

// ContentText 内容文本块，Text 为清洗后的富文本
type ContentText struct {
	ID        uint   `gorm:"primaryKey"`
	ContentID uint   `gorm:"not null;index"`
	Text      string `gorm:"type:text"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time
}
