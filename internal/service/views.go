package service

import (
	"strings"
	"time"

	"github.com/collegecms/internal/db"
)

// MediaResolver 将存储的媒体引用转换为可访问的 URL。
type MediaResolver func(ref string) string

func (m MediaResolver) url(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if m == nil {
		return ref
	}
	return m(ref)
}

// TagView is the public shape of a tag.
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ImageView is an ordered image block of a page or content.
type ImageView struct {
	ID       uint   `json:"id"`
	Image    string `json:"image"`
	ImageURL string `json:"image_url"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
}

// TextView is an ordered text block of a content.
type TextView struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// ContentView 内容详情：标签、有序图片与有序文本
type ContentView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Role        db.ContentRole `json:"role"`
	IsPage      bool           `json:"isPage"`
	IsCarousel  bool           `json:"isCarousel"`
	Page        *string        `json:"page"`
	PageTitle   string         `json:"page_title,omitempty"`
	Tags        []TagView      `json:"tags"`
	Images      []ImageView    `json:"images"`
	Texts       []TextView     `json:"texts"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ContentListItem 列表投影，只带一张代表图
type ContentListItem struct {
	ID                  uint           `json:"id"`
	Title               string         `json:"title"`
	Slug                string         `json:"slug"`
	Description         string         `json:"description"`
	Role                db.ContentRole `json:"role"`
	IsPage              bool           `json:"isPage"`
	IsCarousel          bool           `json:"isCarousel"`
	Page                *string        `json:"page"`
	PageTitle           string         `json:"page_title,omitempty"`
	Tags                []TagView      `json:"tags"`
	RepresentativeImage *ImageView     `json:"representative_image"`
	CreatedAt           time.Time      `json:"created_at"`
}

// NavigationNode 导航树节点
type NavigationNode struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Slug     string           `json:"slug"`
	Children []NavigationNode `json:"children"`
}

// PageView 页面基础字段
type PageView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	Slug            string    `json:"slug"`
	Template        string    `json:"template"`
	TemplateDisplay string    `json:"template_display"`
	IsPublished     bool      `json:"is_published"`
	Parent          *string   `json:"parent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PageDetail 页面详情，附带内容、图片与已发布的子页面
type PageDetail struct {
	PageView
	Images   []ImageView      `json:"images"`
	Contents []ContentView    `json:"contents"`
	Children []NavigationNode `json:"children"`
}

// CategoryView 新闻分类
type CategoryView struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent *uint  `json:"parent"`
}

// NewsView 新闻；URL 与 ImageURL 由 handler 按请求 Host 补全为绝对地址
type NewsView struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Body        string        `json:"body"`
	BodyHTML    string        `json:"body_html"`
	Image       string        `json:"image"`
	ImageURL    string        `json:"image_url"`
	Category    *CategoryView `json:"category"`
	Tags        []TagView     `json:"tags"`
	PublishedAt time.Time     `json:"published_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	URL         string        `json:"url"`
}

// VideoView 视频，Source 为实际生效的来源
type VideoView struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	File      string    `json:"file"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func toTagViews(tags []db.Tag) []TagView {
	views := make([]TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, TagView{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
	return views
}

func toPageView(page db.Page) PageView {
	return PageView{
		ID:              page.ID,
		Title:           page.Title,
		Subtitle:        page.Subtitle,
		Slug:            page.Slug,
		Template:        page.Template,
		TemplateDisplay: db.TemplateLabel(page.Template),
		IsPublished:     page.IsPublished,
		Parent:          page.ParentID,
		CreatedAt:       page.CreatedAt,
		UpdatedAt:       page.UpdatedAt,
	}
}

func toCategoryView(category db.NewsCategory) CategoryView {
	return CategoryView{ID: category.ID, Name: category.Name, Slug: category.Slug, Parent: category.ParentID}
}

func toVideoView(video db.VideoURL) VideoView {
	return VideoView{
		ID:        video.ID,
		Title:     video.Title,
		URL:       video.URL,
		File:      video.File,
		Source:    video.Source(),
		CreatedAt: video.CreatedAt,
	}
}
