package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 页面模板取值
const (
	TemplateStandard   = "standard"
	TemplateHomepage   = "homepage"
	TemplateContact    = "contact"
	TemplateAdmissions = "admissions"
)

var templateLabels = map[string]string{
	TemplateStandard:   "Standard",
	TemplateHomepage:   "Homepage",
	TemplateContact:    "Contact",
	TemplateAdmissions: "Admissions",
}

// ValidTemplate reports whether t is a known page template.
func ValidTemplate(t string) bool {
	_, ok := templateLabels[t]
	return ok
}

// TemplateLabel returns the display label for a template value.
func TemplateLabel(t string) string {
	if label, ok := templateLabels[t]; ok {
		return label
	}
	return t
}

// Page represents a site page. Pages form a tree through ParentID; a nil
// parent marks a top-level page.
type Page struct {
	ID          string      `gorm:"primaryKey;size:36"`
	Title       string      `gorm:"size:200;not null;index"`
	Subtitle    string      `gorm:"size:200"`
	Slug        string      `gorm:"size:200;uniqueIndex;not null"`
	Template    string      `gorm:"size:50;not null"`
	IsPublished bool        `gorm:"not null;index"`
	ParentID    *string     `gorm:"size:36;index"`
	Parent      *Page       `gorm:"constraint:OnDelete:CASCADE"`
	Images      []PageImage `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate 在插入前分配 UUID 主键。
func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PageImage 页面直属的图片，按 SortOrder 升序展示
type PageImage struct {
	ID        uint   `gorm:"primaryKey"`
	PageID    string `gorm:"size:36;not null;index"`
	Image     string `gorm:"size:255;not null"`
	Text      string `gorm:"type:text"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time
}
