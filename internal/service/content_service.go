package service

import (
	"context"
	"errors"
	"strings"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

var contentQuerySpec = QuerySpec{
	Table: "contents",
	Filters: map[string]FilterField{
		"tag":         {Apply: filterContentTags},
		"tags__slug":  {Apply: filterContentTags},
		"page_id":     {Column: "page_id", Nullable: true},
		"role":        {Column: "role"},
		"is_carousel": {Apply: filterContentRole(db.RoleCarousel)},
		"is_page":     {Apply: filterContentRole(db.RoleStandalone)},
	},
	SearchFields: []string{"title"},
	OrderFields: map[string]string{
		"title":      "title",
		"page":       "page_id",
		"created_at": "created_at",
	},
	DefaultOrder: []string{"title"},
}

// ContentInput represents fields accepted when creating or updating content.
// Images and Texts are nested blocks. On update a nil TagIDs, Images or
// Texts slice leaves the existing rows untouched; a non-nil one replaces them.
type ContentInput struct {
	Title       string
	Description string
	Slug        string
	PageID      *string
	Role        string
	IsPage      *bool
	IsCarousel  *bool
	TagIDs      []uint
	Images      []ContentImageInput
	Texts       []ContentTextInput
}

// ContentImageInput 内容图片入参
type ContentImageInput struct {
	Image string
	Text  string
	Order int
}

// ContentTextInput 内容文本入参
type ContentTextInput struct {
	Text  string
	Order int
}

// ContentService assembles content aggregates and handles content writes.
type ContentService struct {
	db    *gorm.DB
	media MediaResolver
}

// NewContentService creates a ContentService instance.
func NewContentService(gdb *gorm.DB, media MediaResolver) *ContentService {
	return &ContentService{db: gdb, media: media}
}

// List returns the light projection used by list endpoints.
func (s *ContentService) List(ctx context.Context, params ListParams) (ListResult[ContentListItem], error) {
	result, err := list[db.Content](s.db.WithContext(ctx), contentQuerySpec, params, preloadContent)
	if err != nil {
		return ListResult[ContentListItem]{}, err
	}

	items := make([]ContentListItem, 0, len(result.Items))
	for _, content := range result.Items {
		items = append(items, s.listItem(content))
	}
	return ListResult[ContentListItem]{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Carousel returns full aggregates of content flagged as carousel items.
func (s *ContentService) Carousel(ctx context.Context, params ListParams) (ListResult[ContentView], error) {
	filters := make(map[string][]string, len(params.Filters)+1)
	for key, values := range params.Filters {
		filters[key] = values
	}
	filters["role"] = []string{string(db.RoleCarousel)}
	params.Filters = filters

	result, err := list[db.Content](s.db.WithContext(ctx), contentQuerySpec, params, preloadContent)
	if err != nil {
		return ListResult[ContentView]{}, err
	}

	views := make([]ContentView, 0, len(result.Items))
	for _, content := range result.Items {
		views = append(views, s.view(content))
	}
	return ListResult[ContentView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Assemble loads a content with its tags, ordered images and ordered texts.
func (s *ContentService) Assemble(ctx context.Context, id uint) (*ContentView, error) {
	content, err := loadContent(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	view := s.view(*content)
	return &view, nil
}

// Create persists a content together with its nested blocks in one transaction.
func (s *ContentService) Create(ctx context.Context, input ContentInput) (*ContentView, error) {
	var created *db.Content
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content, err := createContent(tx, input, input.PageID)
		if err != nil {
			return err
		}
		created = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Assemble(ctx, created.ID)
}

// Update applies a full update to a content. The slug is kept unless it
// is empty.
func (s *ContentService) Update(ctx context.Context, id uint, input ContentInput) (*ContentView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Content
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContentNotFound
			}
			return err
		}

		title, err := requireText("title", input.Title, 200)
		if err != nil {
			return err
		}
		role, err := resolveContentRole(input)
		if err != nil {
			return err
		}
		if err := ensurePageExists(tx, input.PageID); err != nil {
			return err
		}
		slugValue, err := refreshSlug(tx, &db.Content{}, existing.Slug, input.Slug, title, contentSlugMaxLen, existing.ID)
		if err != nil {
			return err
		}

		existing.Title = title
		existing.Description = strings.TrimSpace(input.Description)
		existing.Slug = slugValue
		existing.PageID = input.PageID
		existing.Page = nil
		existing.Role = role
		if err := tx.Save(&existing).Error; err != nil {
			return translateWriteError(err)
		}

		if input.TagIDs != nil {
			if err := replaceContentTags(tx, &existing, input.TagIDs); err != nil {
				return err
			}
		}
		if input.Images != nil {
			if err := tx.Where("content_id = ?", existing.ID).Delete(&db.ContentImage{}).Error; err != nil {
				return err
			}
			if err := createContentImages(tx, existing.ID, input.Images); err != nil {
				return err
			}
		}
		if input.Texts != nil {
			if err := tx.Where("content_id = ?", existing.ID).Delete(&db.ContentText{}).Error; err != nil {
				return err
			}
			if err := createContentTexts(tx, existing.ID, input.Texts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Assemble(ctx, id)
}

// Delete removes a content with its blocks and tag associations.
func (s *ContentService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var content db.Content
		if err := tx.Select("id").First(&content, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContentNotFound
			}
			return err
		}
		return deleteContents(tx, []uint{content.ID})
	})
}

func (s *ContentService) view(content db.Content) ContentView {
	view := ContentView{
		ID:          content.ID,
		Title:       content.Title,
		Slug:        content.Slug,
		Description: content.Description,
		Role:        content.Role,
		IsPage:      content.Role == db.RoleStandalone,
		IsCarousel:  content.Role == db.RoleCarousel,
		Page:        content.PageID,
		Tags:        toTagViews(content.Tags),
		Images:      make([]ImageView, 0, len(content.Images)),
		Texts:       make([]TextView, 0, len(content.Texts)),
		CreatedAt:   content.CreatedAt,
	}
	if content.Page != nil {
		view.PageTitle = content.Page.Title
	}
	for _, image := range content.Images {
		view.Images = append(view.Images, s.imageView(image))
	}
	for _, text := range content.Texts {
		view.Texts = append(view.Texts, TextView{ID: text.ID, Text: text.Text, Order: text.SortOrder})
	}
	return view
}

func (s *ContentService) listItem(content db.Content) ContentListItem {
	item := ContentListItem{
		ID:          content.ID,
		Title:       content.Title,
		Slug:        content.Slug,
		Description: content.Description,
		Role:        content.Role,
		IsPage:      content.Role == db.RoleStandalone,
		IsCarousel:  content.Role == db.RoleCarousel,
		Page:        content.PageID,
		Tags:        toTagViews(content.Tags),
		CreatedAt:   content.CreatedAt,
	}
	if content.Page != nil {
		item.PageTitle = content.Page.Title
	}
	// images 已按 sort_order, id 升序预加载，首张即代表图
	if len(content.Images) > 0 {
		image := s.imageView(content.Images[0])
		item.RepresentativeImage = &image
	}
	return item
}

func (s *ContentService) imageView(image db.ContentImage) ImageView {
	return ImageView{
		ID:       image.ID,
		Image:    image.Image,
		ImageURL: s.media.url(image.Image),
		Text:     image.Text,
		Order:    image.SortOrder,
	}
}

func preloadContent(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Page", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title")
		}).
		Preload("Tags", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("tags.name asc").Order("tags.id asc")
		}).
		Preload("Images", orderBlocks).
		Preload("Texts", orderBlocks)
}

func orderBlocks(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_order asc").Order("id asc")
}

func loadContent(tx *gorm.DB, id uint) (*db.Content, error) {
	var content db.Content
	if err := preloadContent(tx).First(&content, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

// createContent 在调用方事务内创建内容及其嵌套块，pageID 覆盖 input.PageID。
func createContent(tx *gorm.DB, input ContentInput, pageID *string) (*db.Content, error) {
	title, err := requireText("title", input.Title, 200)
	if err != nil {
		return nil, err
	}
	role, err := resolveContentRole(input)
	if err != nil {
		return nil, err
	}
	if err := ensurePageExists(tx, pageID); err != nil {
		return nil, err
	}
	slugValue, err := assignSlug(tx, &db.Content{}, input.Slug, title, contentSlugMaxLen, nil)
	if err != nil {
		return nil, err
	}

	content := db.Content{
		PageID:      pageID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Slug:        slugValue,
		Role:        role,
	}
	if err := tx.Omit("Page", "Tags", "Images", "Texts").Create(&content).Error; err != nil {
		return nil, translateWriteError(err)
	}

	if err := replaceContentTags(tx, &content, input.TagIDs); err != nil {
		return nil, err
	}
	if err := createContentImages(tx, content.ID, input.Images); err != nil {
		return nil, err
	}
	if err := createContentTexts(tx, content.ID, input.Texts); err != nil {
		return nil, err
	}
	return &content, nil
}

func createContentImages(tx *gorm.DB, contentID uint, inputs []ContentImageInput) error {
	for _, input := range inputs {
		image := strings.TrimSpace(input.Image)
		if image == "" {
			return invalidField("images", "image is required for every image block")
		}
		record := db.ContentImage{
			ContentID: contentID,
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

func createContentTexts(tx *gorm.DB, contentID uint, inputs []ContentTextInput) error {
	for _, input := range inputs {
		record := db.ContentText{
			ContentID: contentID,
			Text:      sanitizeRichText(input.Text),
			SortOrder: input.Order,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func replaceContentTags(tx *gorm.DB, content *db.Content, tagIDs []uint) error {
	tags, err := findTags(tx, tagIDs)
	if err != nil {
		return err
	}
	return tx.Model(content).Association("Tags").Replace(tags)
}

// findTags 按 id 取标签，缺失任意一个即视为校验失败。
func findTags(tx *gorm.DB, tagIDs []uint) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(tagIDs))
	ids := uniqueUints(tagIDs)
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, invalidField("tag_ids", "one or more tags do not exist")
	}
	return tags, nil
}

func ensurePageExists(tx *gorm.DB, pageID *string) error {
	if pageID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&db.Page{}).Where("id = ?", *pageID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField("page", "page does not exist")
	}
	return nil
}

// resolveContentRole 合并 role 与旧版布尔标记，两个布尔同时为真视为非法。
func resolveContentRole(input ContentInput) (db.ContentRole, error) {
	isPage := input.IsPage != nil && *input.IsPage
	isCarousel := input.IsCarousel != nil && *input.IsCarousel
	if isPage && isCarousel {
		return "", ErrRoleConflict
	}

	if raw := strings.TrimSpace(input.Role); raw != "" {
		role, ok := db.ParseContentRole(raw)
		if !ok {
			return "", invalidField("role", "role must be one of attachment, standalone, carousel")
		}
		if (isPage && role != db.RoleStandalone) || (isCarousel && role != db.RoleCarousel) {
			return "", ErrRoleConflict
		}
		return role, nil
	}

	switch {
	case isPage:
		return db.RoleStandalone, nil
	case isCarousel:
		return db.RoleCarousel, nil
	default:
		return db.RoleAttachment, nil
	}
}

// deleteContents 删除内容及其图片、文本和标签关联。
func deleteContents(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM content_tags WHERE content_id IN ?", ids).Error; err != nil {
		return err
	}
	if err := tx.Where("content_id IN ?", ids).Delete(&db.ContentImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("content_id IN ?", ids).Delete(&db.ContentText{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&db.Content{}).Error
}

func filterContentTags(query *gorm.DB, values []string) *gorm.DB {
	sub := query.Session(&gorm.Session{NewDB: true}).
		Table("content_tags").
		Select("content_tags.content_id").
		Joins("JOIN tags ON tags.id = content_tags.tag_id").
		Where("tags.slug IN ?", values)
	return query.Where("contents.id IN (?)", sub)
}

func filterContentRole(role db.ContentRole) func(*gorm.DB, []string) *gorm.DB {
	return func(query *gorm.DB, values []string) *gorm.DB {
		flag, ok := parseBool(values[0])
		if !ok {
			return query
		}
		if flag {
			return query.Where("contents.role = ?", role)
		}
		return query.Where("contents.role <> ?", role)
	}
}

func uniqueUints(values []uint) []uint {
	seen := make(map[uint]struct{}, len(values))
	out := make([]uint, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
