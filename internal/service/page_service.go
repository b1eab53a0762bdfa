package service

import (
	"context"
	"errors"
	"strings"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

var pageQuerySpec = QuerySpec{
	Table: "pages",
	Filters: map[string]FilterField{
		"template":     {Column: "template"},
		"is_published": {Column: "is_published", Bool: true},
		"parent":       {Column: "parent_id", Nullable: true},
	},
	SearchFields: []string{"title", "subtitle"},
	OrderFields: map[string]string{
		"title":      "title",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
	DefaultOrder: []string{"title"},
}

// PageInput represents the fields accepted when writing a page.
// ParentSet distinguishes an explicit null parent from an omitted one on update.
type PageInput struct {
	Title       string
	Subtitle    string
	Slug        string
	Template    string
	IsPublished *bool
	ParentID    *string
	ParentSet   bool
	Images      []PageImageInput
	Contents    []ContentInput
	Children    []PageInput
}

// PageImageInput 页面图片入参
type PageImageInput struct {
	Image string
	Text  string
	Order int
}

// PageService handles page reads and writes.
type PageService struct {
	db       *gorm.DB
	media    MediaResolver
	nav      *NavigationService
	contents *ContentService
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB, media MediaResolver) *PageService {
	return &PageService{
		db:       gdb,
		media:    media,
		nav:      NewNavigationService(gdb),
		contents: NewContentService(gdb, media),
	}
}

// List returns pages matching params.
func (s *PageService) List(ctx context.Context, params ListParams) (ListResult[PageView], error) {
	result, err := list[db.Page](s.db.WithContext(ctx), pageQuerySpec, params, nil)
	if err != nil {
		return ListResult[PageView]{}, err
	}

	views := make([]PageView, 0, len(result.Items))
	for _, page := range result.Items {
		views = append(views, toPageView(page))
	}
	return ListResult[PageView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// GetBySlug fetches a page for a given slug regardless of its publish state.
func (s *PageService) GetBySlug(ctx context.Context, slug string) (*db.Page, error) {
	return findPageBySlug(s.db.WithContext(ctx), slug)
}

// Detail returns a page with its images, contents and published children.
func (s *PageService) Detail(ctx context.Context, slug string) (*PageDetail, error) {
	tx := s.db.WithContext(ctx)
	var page db.Page
	if err := tx.Preload("Images", orderBlocks).Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	var contents []db.Content
	if err := preloadContent(tx.Where("page_id = ?", page.ID)).
		Order("contents.title asc").
		Order("contents.id asc").
		Find(&contents).Error; err != nil {
		return nil, err
	}

	children, err := s.nav.Children(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	detail := &PageDetail{
		PageView: toPageView(page),
		Images:   make([]ImageView, 0, len(page.Images)),
		Contents: make([]ContentView, 0, len(contents)),
		Children: children,
	}
	for _, image := range page.Images {
		detail.Images = append(detail.Images, ImageView{
			ID:       image.ID,
			Image:    image.Image,
			ImageURL: s.media.url(image.Image),
			Text:     image.Text,
			Order:    image.SortOrder,
		})
	}
	for _, content := range contents {
		detail.Contents = append(detail.Contents, s.contents.view(content))
	}
	return detail, nil
}

// Create persists a page with its nested images, contents and child pages.
// Either everything is written or nothing is.
func (s *PageService) Create(ctx context.Context, input PageInput) (*PageDetail, error) {
	var created *db.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureParentPage(tx, input.ParentID); err != nil {
			return err
		}
		page, err := createPage(tx, input, input.ParentID, 1)
		if err != nil {
			return err
		}
		created = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Detail(ctx, created.Slug)
}

// Update applies changes to the page identified by slug. Nested images are
// replaced when provided; contents and children are managed through their
// own endpoints.
func (s *PageService) Update(ctx context.Context, slug string, input PageInput) (*PageDetail, error) {
	var updated db.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		page, err := findPageBySlug(tx, slug)
		if err != nil {
			return err
		}

		fields, err := normalizePageFields(input)
		if err != nil {
			return err
		}
		slugValue, err := refreshSlug(tx, &db.Page{}, page.Slug, input.Slug, fields.Title, pageSlugMaxLen, page.ID)
		if err != nil {
			return err
		}

		if input.ParentSet {
			if err := ensureParentPage(tx, input.ParentID); err != nil {
				return err
			}
			if err := checkPageCycle(tx, page.ID, input.ParentID); err != nil {
				return err
			}
			page.ParentID = input.ParentID
		}

		page.Title = fields.Title
		page.Subtitle = fields.Subtitle
		page.Template = fields.Template
		page.Slug = slugValue
		if input.IsPublished != nil {
			page.IsPublished = *input.IsPublished
		}
		page.Parent = nil
		page.Images = nil
		if err := tx.Omit("Parent", "Images").Save(page).Error; err != nil {
			return translateWriteError(err)
		}

		if input.Images != nil {
			if err := tx.Where("page_id = ?", page.ID).Delete(&db.PageImage{}).Error; err != nil {
				return err
			}
			if err := createPageImages(tx, page.ID, input.Images); err != nil {
				return err
			}
		}
		updated = *page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Detail(ctx, updated.Slug)
}

// Delete removes the page, its whole subtree and everything they own.
func (s *PageService) Delete(ctx context.Context, slug string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		page, err := findPageBySlug(tx, slug)
		if err != nil {
			return err
		}

		ids, err := collectSubtree(tx, page.ID)
		if err != nil {
			return err
		}

		var contentIDs []uint
		if err := tx.Model(&db.Content{}).Where("page_id IN ?", ids).Pluck("id", &contentIDs).Error; err != nil {
			return err
		}
		if err := deleteContents(tx, contentIDs); err != nil {
			return err
		}
		if err := tx.Where("page_id IN ?", ids).Delete(&db.PageImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&db.Page{}).Error
	})
}

// BulkPublish sets the publish flag on every page in ids and returns the
// number of pages changed. Unknown ids are ignored.
func (s *PageService) BulkPublish(ctx context.Context, ids []string, published bool) (int64, error) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return 0, invalidField("ids", "at least one page id is required")
	}

	result := s.db.WithContext(ctx).
		Model(&db.Page{}).
		Where("id IN ?", cleaned).
		Update("is_published", published)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

type pageFields struct {
	Title    string
	Subtitle string
	Template string
}

func normalizePageFields(input PageInput) (pageFields, error) {
	title, err := requireText("title", input.Title, 200)
	if err != nil {
		return pageFields{}, err
	}
	subtitle, err := optionalText("subtitle", input.Subtitle, 200)
	if err != nil {
		return pageFields{}, err
	}
	template := strings.TrimSpace(input.Template)
	if template == "" {
		template = db.TemplateStandard
	}
	if !db.ValidTemplate(template) {
		return pageFields{}, invalidField("template", "template must be one of standard, homepage, contact, admissions")
	}
	return pageFields{Title: title, Subtitle: subtitle, Template: template}, nil
}

// createPage 在事务内递归创建页面及其嵌套内容，depth 从 1 开始。
func createPage(tx *gorm.DB, input PageInput, parentID *string, depth int) (*db.Page, error) {
	if depth > MaxNavigationDepth {
		return nil, ErrTreeTooDeep
	}

	fields, err := normalizePageFields(input)
	if err != nil {
		return nil, err
	}
	slugValue, err := assignSlug(tx, &db.Page{}, input.Slug, fields.Title, pageSlugMaxLen, nil)
	if err != nil {
		return nil, err
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	page := db.Page{
		Title:       fields.Title,
		Subtitle:    fields.Subtitle,
		Slug:        slugValue,
		Template:    fields.Template,
		IsPublished: published,
		ParentID:    parentID,
	}
	if err := tx.Omit("Parent", "Images").Create(&page).Error; err != nil {
		return nil, translateWriteError(err)
	}

	if err := createPageImages(tx, page.ID, input.Images); err != nil {
		return nil, err
	}
	for _, content := range input.Contents {
		if _, err := createContent(tx, content, &page.ID); err != nil {
			return nil, err
		}
	}
	for _, child := range input.Children {
		if _, err := createPage(tx, child, &page.ID, depth+1); err != nil {
			return nil, err
		}
	}
	return &page, nil
}

func createPageImages(tx *gorm.DB, pageID string, inputs []PageImageInput) error {
	for _, input := range inputs {
		image := strings.TrimSpace(input.Image)
		if image == "" {
			return invalidField("images", "image is required for every image block")
		}
		record := db.PageImage{
			PageID:    pageID,
			Image:     image,
			Text:      strings.TrimSpace(input.Text),
			SortOrder: input.Order,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func findPageBySlug(tx *gorm.DB, slug string) (*db.Page, error) {
	var page db.Page
	if err := tx.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

func ensureParentPage(tx *gorm.DB, parentID *string) error {
	if parentID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&db.Page{}).Where("id = ?", *parentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField("parent", "parent page does not exist")
	}
	return nil
}

// checkPageCycle 沿新父页面向上回溯，遇到自身即为环。
func checkPageCycle(tx *gorm.DB, pageID string, parentID *string) error {
	visited := make(map[string]struct{})
	current := parentID
	for current != nil {
		if *current == pageID {
			return ErrPageCycle
		}
		if _, seen := visited[*current]; seen {
			return ErrPageCycle
		}
		visited[*current] = struct{}{}

		var ancestor db.Page
		if err := tx.Select("id", "parent_id").Where("id = ?", *current).First(&ancestor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		current = ancestor.ParentID
	}
	return nil
}

// collectSubtree 广度优先收集 rootID 及其全部后代页面的 id。
func collectSubtree(tx *gorm.DB, rootID string) ([]string, error) {
	ids := []string{rootID}
	seen := map[string]struct{}{rootID: {}}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var children []string
		if err := tx.Model(&db.Page{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			frontier = append(frontier, id)
		}
	}
	return ids, nil
}
