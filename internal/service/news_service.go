package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

var newsQuerySpec = QuerySpec{
	Table: "news",
	Filters: map[string]FilterField{
		"category": {Apply: filterNewsCategory},
		"tag":      {Apply: filterNewsTags},
	},
	SearchFields: []string{"title", "body"},
	OrderFields: map[string]string{
		"published_at": "published_at",
		"updated_at":   "updated_at",
		"title":        "title",
	},
	DefaultOrder: []string{"-published_at"},
}

var categoryQuerySpec = QuerySpec{
	Table: "news_categories",
	Filters: map[string]FilterField{
		"parent": {Column: "parent_id", Uint: true, Nullable: true},
	},
	SearchFields: []string{"name"},
	OrderFields: map[string]string{
		"name": "name",
		"slug": "slug",
	},
	DefaultOrder: []string{"name"},
}

// NewsInput 新闻入参。PublishedAt 为空时创建取当前时间，更新保持原值。
type NewsInput struct {
	Title       string
	Slug        string
	Body        string
	Image       string
	CategoryID  *uint
	TagIDs      []uint
	PublishedAt *time.Time
}

// CategoryInput 新闻分类入参
type CategoryInput struct {
	Name     string
	Slug     string
	ParentID *uint
}

// NewsService handles news articles and their categories.
type NewsService struct {
	db    *gorm.DB
	media MediaResolver
	now   func() time.Time
}

// NewNewsService creates a NewsService instance.
func NewNewsService(gdb *gorm.DB, media MediaResolver) *NewsService {
	return &NewsService{db: gdb, media: media, now: time.Now}
}

// List returns news, newest first by default.
func (s *NewsService) List(ctx context.Context, params ListParams) (ListResult[NewsView], error) {
	result, err := list[db.News](s.db.WithContext(ctx), newsQuerySpec, params, preloadNews)
	if err != nil {
		return ListResult[NewsView]{}, err
	}
	views := make([]NewsView, 0, len(result.Items))
	for _, news := range result.Items {
		views = append(views, s.view(news))
	}
	return ListResult[NewsView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Get returns a news article by slug.
func (s *NewsService) Get(ctx context.Context, slug string) (*NewsView, error) {
	news, err := s.findBySlug(preloadNews(s.db.WithContext(ctx)), slug)
	if err != nil {
		return nil, err
	}
	view := s.view(*news)
	return &view, nil
}

// Create publishes a news article.
func (s *NewsService) Create(ctx context.Context, input NewsInput) (*NewsView, error) {
	var slugValue string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		title, err := requireText("title", input.Title, 200)
		if err != nil {
			return err
		}
		if err := ensureCategoryExists(tx, input.CategoryID); err != nil {
			return err
		}
		tags, err := findTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		slugValue, err = assignSlug(tx, &db.News{}, input.Slug, title, newsSlugMaxLen, nil)
		if err != nil {
			return err
		}

		publishedAt := s.now()
		if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
			publishedAt = *input.PublishedAt
		}

		news := db.News{
			Title:       title,
			Slug:        slugValue,
			Body:        input.Body,
			Image:       strings.TrimSpace(input.Image),
			CategoryID:  input.CategoryID,
			PublishedAt: publishedAt,
		}
		if err := tx.Omit("Category", "Tags").Create(&news).Error; err != nil {
			return translateWriteError(err)
		}
		return tx.Model(&news).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, slugValue)
}

// Update applies a full update to the news identified by slug.
func (s *NewsService) Update(ctx context.Context, slug string, input NewsInput) (*NewsView, error) {
	var slugValue string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		news, err := s.findBySlug(tx, slug)
		if err != nil {
			return err
		}
		title, err := requireText("title", input.Title, 200)
		if err != nil {
			return err
		}
		if err := ensureCategoryExists(tx, input.CategoryID); err != nil {
			return err
		}
		tags, err := findTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		slugValue, err = refreshSlug(tx, &db.News{}, news.Slug, input.Slug, title, newsSlugMaxLen, news.ID)
		if err != nil {
			return err
		}

		news.Title = title
		news.Slug = slugValue
		news.Body = input.Body
		news.Image = strings.TrimSpace(input.Image)
		news.CategoryID = input.CategoryID
		news.Category = nil
		if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
			news.PublishedAt = *input.PublishedAt
		}
		if err := tx.Omit("Category", "Tags").Save(news).Error; err != nil {
			return translateWriteError(err)
		}
		return tx.Model(news).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, slugValue)
}

// Delete removes a news article and its tag associations.
func (s *NewsService) Delete(ctx context.Context, slug string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		news, err := s.findBySlug(tx, slug)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM news_tags WHERE news_id = ?", news.ID).Error; err != nil {
			return err
		}
		return tx.Delete(news).Error
	})
}

// ListCategories returns news categories matching params.
func (s *NewsService) ListCategories(ctx context.Context, params ListParams) (ListResult[CategoryView], error) {
	result, err := list[db.NewsCategory](s.db.WithContext(ctx), categoryQuerySpec, params, nil)
	if err != nil {
		return ListResult[CategoryView]{}, err
	}
	views := make([]CategoryView, 0, len(result.Items))
	for _, category := range result.Items {
		views = append(views, toCategoryView(category))
	}
	return ListResult[CategoryView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// GetCategory returns a single category.
func (s *NewsService) GetCategory(ctx context.Context, id uint) (*CategoryView, error) {
	category, err := findCategory(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	view := toCategoryView(*category)
	return &view, nil
}

// CreateCategory inserts a news category.
func (s *NewsService) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryView, error) {
	tx := s.db.WithContext(ctx)
	name, err := requireText("name", input.Name, 100)
	if err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if _, err := findCategory(tx, *input.ParentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, invalidField("parent", "parent category does not exist")
			}
			return nil, err
		}
	}
	slugValue, err := assignSlug(tx, &db.NewsCategory{}, input.Slug, name, categorySlugMaxLen, nil)
	if err != nil {
		return nil, err
	}

	category := db.NewsCategory{Name: name, Slug: slugValue, ParentID: input.ParentID}
	if err := tx.Omit("Parent").Create(&category).Error; err != nil {
		return nil, translateWriteError(err)
	}
	view := toCategoryView(category)
	return &view, nil
}

// UpdateCategory renames or moves a category, rejecting cycles.
func (s *NewsService) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*CategoryView, error) {
	tx := s.db.WithContext(ctx)
	category, err := findCategory(tx, id)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", input.Name, 100)
	if err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if _, err := findCategory(tx, *input.ParentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, invalidField("parent", "parent category does not exist")
			}
			return nil, err
		}
		if err := checkCategoryCycle(tx, category.ID, *input.ParentID); err != nil {
			return nil, err
		}
	}
	slugValue, err := refreshSlug(tx, &db.NewsCategory{}, category.Slug, input.Slug, name, categorySlugMaxLen, category.ID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slugValue
	category.ParentID = input.ParentID
	category.Parent = nil
	if err := tx.Omit("Parent").Save(category).Error; err != nil {
		return nil, translateWriteError(err)
	}
	view := toCategoryView(*category)
	return &view, nil
}

// DeleteCategory removes a category. News and child categories keep
// existing with their reference cleared.
func (s *NewsService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&db.News{}).Where("category_id = ?", category.ID).Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.NewsCategory{}).Where("parent_id = ?", category.ID).Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
}

func (s *NewsService) view(news db.News) NewsView {
	bodyHTML, err := renderMarkdown(news.Body)
	if err != nil {
		log.Printf("[news] render markdown for %s failed: %v", news.Slug, err)
		bodyHTML = ""
	}

	view := NewsView{
		ID:          news.ID,
		Title:       news.Title,
		Slug:        news.Slug,
		Body:        news.Body,
		BodyHTML:    bodyHTML,
		Image:       news.Image,
		ImageURL:    s.media.url(news.Image),
		Tags:        toTagViews(news.Tags),
		PublishedAt: news.PublishedAt,
		UpdatedAt:   news.UpdatedAt,
	}
	if news.Category != nil {
		category := toCategoryView(*news.Category)
		view.Category = &category
	}
	return view
}

func (s *NewsService) findBySlug(tx *gorm.DB, slug string) (*db.News, error) {
	var news db.News
	if err := tx.Where("slug = ?", slug).First(&news).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &news, nil
}

func preloadNews(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("tags.name asc").Order("tags.id asc")
		})
}

func findCategory(tx *gorm.DB, id uint) (*db.NewsCategory, error) {
	var category db.NewsCategory
	if err := tx.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func ensureCategoryExists(tx *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&db.NewsCategory{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField("category", "category does not exist")
	}
	return nil
}

// checkCategoryCycle 沿父分类向上回溯，遇到自身即为环。
func checkCategoryCycle(tx *gorm.DB, categoryID, parentID uint) error {
	visited := make(map[uint]struct{})
	current := &parentID
	for current != nil {
		if *current == categoryID {
			return ErrCategoryCycle
		}
		if _, seen := visited[*current]; seen {
			return ErrCategoryCycle
		}
		visited[*current] = struct{}{}

		var ancestor db.NewsCategory
		if err := tx.Select("id", "parent_id").First(&ancestor, *current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		current = ancestor.ParentID
	}
	return nil
}

func filterNewsCategory(query *gorm.DB, values []string) *gorm.DB {
	sub := query.Session(&gorm.Session{NewDB: true}).
		Model(&db.NewsCategory{}).
		Select("id").
		Where("slug IN ?", values)
	return query.Where("news.category_id IN (?)", sub)
}

func filterNewsTags(query *gorm.DB, values []string) *gorm.DB {
	sub := query.Session(&gorm.Session{NewDB: true}).
		Table("news_tags").
		Select("news_tags.news_id").
		Joins("JOIN tags ON tags.id = news_tags.tag_id").
		Where("tags.slug IN ?", values)
	return query.Where("news.id IN (?)", sub)
}
