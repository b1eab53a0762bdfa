package main

import (
	"context"
	"fmt"
	"log"

	"github.com/collegecms/internal/config"
	"github.com/collegecms/internal/db"
	"github.com/collegecms/internal/service"
	"gorm.io/gorm"
)

// 示例数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseSource()); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成示例数据...")
	summary, err := seed(context.Background(), db.DB)
	if err != nil {
		log.Fatal("生成示例数据失败:", err)
	}
	fmt.Printf("示例数据生成完成：%d 个页面，%d 条内容，%d 个标签，%d 条新闻，%d 个视频\n",
		summary.Pages, summary.Contents, summary.Tags, summary.News, summary.Videos)
}

type seedSummary struct {
	Pages    int
	Contents int
	Tags     int
	News     int
	Videos   int
}

func boolPtr(v bool) *bool { return &v }

// seed 写入一套学院站点的示例数据，已有数据时跳过
func seed(ctx context.Context, gdb *gorm.DB) (seedSummary, error) {
	var summary seedSummary

	var existing int64
	if err := gdb.Model(&db.Page{}).Count(&existing).Error; err != nil {
		return summary, err
	}
	if existing > 0 {
		fmt.Println("页面已存在，跳过生成")
		return summary, nil
	}

	tags := service.NewTagService(gdb)
	tagIDs := make(map[string]uint)
	for _, name := range []string{"Admissions", "Research", "Campus Life", "Sports"} {
		tag, err := tags.Create(ctx, service.TagInput{Name: name})
		if err != nil {
			return summary, fmt.Errorf("create tag %s: %w", name, err)
		}
		tagIDs[name] = tag.ID
		summary.Tags++
	}

	pages := service.NewPageService(gdb, nil)
	tree := []service.PageInput{
		{
			Title:    "Home",
			Template: db.TemplateHomepage,
			Contents: []service.ContentInput{
				{
					Title:  "Welcome Carousel",
					Role:   string(db.RoleCarousel),
					TagIDs: []uint{tagIDs["Campus Life"]},
					Images: []service.ContentImageInput{
						{Image: "seed/campus-gate.jpg", Text: "Main gate", Order: 0},
						{Image: "seed/library.jpg", Text: "Library", Order: 1},
					},
				},
			},
		},
		{
			Title: "About",
			Children: []service.PageInput{
				{Title: "History"},
				{Title: "Leadership"},
				{Title: "Annual Report Draft", IsPublished: boolPtr(false)},
			},
			Contents: []service.ContentInput{
				{
					Title: "Our Mission",
					Texts: []service.ContentTextInput{{Text: "<p>Education that opens doors.</p>"}},
				},
			},
		},
		{
			Title:    "Admissions",
			Template: db.TemplateAdmissions,
			Children: []service.PageInput{
				{Title: "Undergraduate Admissions"},
				{Title: "Scholarships"},
			},
			Contents: []service.ContentInput{
				{Title: "How to Apply", TagIDs: []uint{tagIDs["Admissions"]}},
			},
		},
		{Title: "Contact", Template: db.TemplateContact},
	}
	for _, input := range tree {
		if _, err := pages.Create(ctx, input); err != nil {
			return summary, fmt.Errorf("create page %s: %w", input.Title, err)
		}
		summary.Pages += countPages(input)
		summary.Contents += countContents(input)
	}

	news := service.NewNewsService(gdb, nil)
	category, err := news.CreateCategory(ctx, service.CategoryInput{Name: "Announcements"})
	if err != nil {
		return summary, err
	}
	articles := []service.NewsInput{
		{Title: "Autumn Term Begins", Body: "Classes start on **1 September**.", CategoryID: &category.ID},
		{Title: "New Research Centre", Body: "The centre opens next month.", TagIDs: []uint{tagIDs["Research"]}},
	}
	for _, article := range articles {
		if _, err := news.Create(ctx, article); err != nil {
			return summary, fmt.Errorf("create news %s: %w", article.Title, err)
		}
		summary.News++
	}

	videos := service.NewVideoService(gdb, nil)
	if _, err := videos.Create(ctx, service.VideoInput{Title: "Campus Tour", URL: "https://www.youtube.com/watch?v=campus-tour"}); err != nil {
		return summary, fmt.Errorf("create video: %w", err)
	}
	summary.Videos++

	return summary, nil
}

func countPages(input service.PageInput) int {
	total := 1
	for _, child := range input.Children {
		total += countPages(child)
	}
	return total
}

func countContents(input service.PageInput) int {
	total := len(input.Contents)
	for _, child := range input.Children {
		total += countContents(child)
	}
	return total
}
